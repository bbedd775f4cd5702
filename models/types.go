package models

// Settings holds the tracked-site configuration. A single copy lives in the
// settings table as JSON and is consulted by the public handlers for path
// canonicalization.
type Settings struct {
	Site             string `json:"site"`
	UseHTTPS         bool   `json:"use_https"`
	IgnoreQueries    bool   `json:"ignore_queries"`
	RemoveIndexPages bool   `json:"remove_index_pages"`
}

// DefaultSettings is what an uninitialized install behaves like: queries and
// index pages are normalized away so early hits key on stable paths.
func DefaultSettings() Settings {
	return Settings{
		Site:             "localhost",
		UseHTTPS:         true,
		IgnoreQueries:    true,
		RemoveIndexPages: true,
	}
}

// Request types

type InitRequest struct {
	Settings
	User string `json:"user"`
	Pass string `json:"pass"`
}

type UpdateSettingsRequest struct {
	Settings
}

// Response types

type ViewRecord struct {
	Page  string `json:"page"`
	Views int64  `json:"views"`
	Hits  int64  `json:"hits"`
}

type FolderRecordPartial struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FolderRecord struct {
	ID       int64                 `json:"id"`
	ParentID *int64                `json:"parent_id,omitempty"`
	Name     string                `json:"name"`
	Folders  []FolderRecordPartial `json:"folders"`
	Pages    []ViewRecord          `json:"pages"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
