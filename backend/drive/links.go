package drive

import "fmt"

// Viewer links hosted by Drive itself. These back the fallback path:
// whatever breaks locally, the user can always open the remote viewer.

func VideoEmbedURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", fileID)
}

func FileViewURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)
}

func ThumbnailURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w400", fileID)
}
