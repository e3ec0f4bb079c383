package models

// Lesson types recognized by the course builder. Anything else is
// filtered out before it reaches the tree.
const (
	LessonVideo = "video"
	LessonPDF   = "pdf"
	LessonOther = "other"
)

// Lesson is a leaf of the course tree: one consumable Drive file.
type Lesson struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	FileID       string `json:"fileId"`
	MimeType     string `json:"mimeType"`
	WebViewLink  string `json:"webViewLink"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Size         int64  `json:"size,omitempty"`
	Order        int    `json:"order"`
}

// Module is a node of the course tree. The synthesized root bucket
// ("General") carries Order -1 and never has sub-modules.
type Module struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lessons    []Lesson `json:"lessons"`
	SubModules []Module `json:"subModules"`
	Order      int      `json:"order"`
	Depth      int      `json:"depth"`
}

// Course is the immutable tree built from one Drive folder. It is
// replaced wholesale on refresh, never mutated.
type Course struct {
	FolderID string   `json:"folderId"`
	Name     string   `json:"name"`
	DriveURL string   `json:"driveUrl,omitempty"`
	Modules  []Module `json:"modules"`
	LoadedAt int64    `json:"loadedAt"`
}

// ModuleProgress is the aggregate completion of a subtree.
type ModuleProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}
