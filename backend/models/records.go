package models

// Rows of the local state store. Keys are natural (user id + file id or
// context); records are upserted, never versioned.

type VideoProgressRecord struct {
	UserID      string `gorm:"primaryKey"`
	FileID      string `gorm:"primaryKey"`
	Timestamp   float64
	Duration    float64
	Completed   bool
	LastWatched int64
}

func (VideoProgressRecord) TableName() string { return "video_progress" }

type PdfProgressRecord struct {
	UserID      string `gorm:"primaryKey"`
	FileID      string `gorm:"primaryKey"`
	CurrentPage int
	TotalPages  int
	Completed   bool
	LastRead    int64
}

func (PdfProgressRecord) TableName() string { return "pdf_progress" }

// NoteGroupRecord stores a whole note group as one JSON blob, matching
// the sync granularity. A blob that fails to parse reads as an empty
// group.
type NoteGroupRecord struct {
	UserID    string `gorm:"primaryKey"`
	Context   string `gorm:"primaryKey"`
	Notes     string
	UpdatedAt int64
}

func (NoteGroupRecord) TableName() string { return "note_groups" }

// RecentCourseRecord is one row of the per-installation recent list.
type RecentCourseRecord struct {
	FolderID     string `gorm:"primaryKey"`
	Name         string
	URL          string
	LastAccessed int64
}

func (RecentCourseRecord) TableName() string { return "recent_courses" }

// CourseSnapshotRecord caches the last built tree per folder. It is
// re-derivable from the Drive listing, so a corrupt or evicted snapshot
// just triggers a rebuild.
type CourseSnapshotRecord struct {
	FolderID string `gorm:"primaryKey"`
	Name     string
	DriveURL string
	Modules  string
	LoadedAt int64
}

func (CourseSnapshotRecord) TableName() string { return "course_snapshots" }
