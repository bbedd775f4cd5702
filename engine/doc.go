// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the view-accounting core: the page hierarchy, the
salted visitor ledger, the read-path accountant, and the flush cycle.

# Counting Model

Every page carries durable baselines (total_views, total_hits) plus an
ephemeral per-(page, visitor) ledger. At any instant:

	views(page) = total_views + distinct visitors in the ledger
	hits(page)  = total_hits + sum of ledger hit counters

Reads evaluate that formula in a single aggregate statement, so the observed
totals are exact regardless of when the last flush ran.

# Privacy

RecordVisit hashes fingerprint+salt with SHA3-256 and stores only the digest.
Flush folds the ledger into the baselines, wipes it, and replaces the salt in
the same transaction, so a fingerprint can be linked to itself for at most one
flush period. A returning visitor after a flush is indistinguishable from a
new one; views therefore undercount unique humans across flush boundaries,
deliberately.

# Pools

New takes two *sql.DB handles. Size the first for public traffic; give the
second a small dedicated pool so flush and admin transactions never queue
behind (or in front of) reads. Both handles may point at the same database.

# Errors

Sentinel errors (ErrNotFound, ErrNotInitialized, ErrAlreadyInitialized,
ErrRootFolder) classify the caller-visible failures; everything else is a
wrapped storage error.
*/
package engine
