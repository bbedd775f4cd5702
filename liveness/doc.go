// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package liveness verifies that a path exists on the tracked website before the
engine registers it, keeping junk paths out of the hierarchy.

The HTTP boundary consults a Checker only for paths the engine has not seen
yet; registered pages are served without a probe. SiteChecker follows at most
one redirect and treats anything else - deeper redirect chains, non-2xx
statuses, connection failures - as "not live", with the reason reported to the
caller. Transport failures are a verdict, not an error: Check returns an error
only for local misconfiguration.
*/
package liveness
