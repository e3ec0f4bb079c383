package models

// VideoProgress tracks playback of a single video for one user.
// Timestamps are epoch milliseconds, positions are seconds.
type VideoProgress struct {
	Timestamp   float64 `json:"timestamp"`
	Duration    float64 `json:"duration"`
	Completed   bool    `json:"completed"`
	LastWatched int64   `json:"lastWatched"`
}

// PdfProgress tracks reading position in a document. CurrentPage is
// 1-based. Completed is set when the last page is reached but can be
// toggled by the user independently.
type PdfProgress struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Completed   bool  `json:"completed"`
	LastRead    int64 `json:"lastRead"`
}

// Note is one free-text annotation. Notes are grouped by an opaque
// context string; the group, not the note, is the unit of sync.
type Note struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// RecentCourse is one entry of the bounded recent-course list.
type RecentCourse struct {
	FolderID     string `json:"folderId"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	LastAccessed int64  `json:"lastAccessed"`
}

// Session carries the authenticated user identity and the Drive access
// token through every core operation. It is built by the auth
// middleware and passed explicitly; nothing reads it from globals.
type Session struct {
	UserID     string
	DriveToken string
}
