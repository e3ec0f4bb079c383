package drive

import "regexp"

var folderURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
}

// ParseFolderURL extracts the folder id from a shared Drive URL.
func ParseFolderURL(rawURL string) (string, bool) {
	for _, pattern := range folderURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}
