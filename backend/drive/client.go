package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultAPIBase is the Drive v3 REST endpoint.
const DefaultAPIBase = "https://www.googleapis.com/drive/v3"

// FolderMimeType marks folder entries in a listing.
const FolderMimeType = "application/vnd.google-apps.folder"

var (
	// ErrUnauthorized covers rejected or expired credentials and
	// unshared folders. Never retried automatically.
	ErrUnauthorized = errors.New("drive: unauthorized")
	// ErrNotFound covers missing files and folders.
	ErrNotFound = errors.New("drive: not found")
)

// Entry is one child of a Drive folder, validated and mapped out of the
// raw API payload at this boundary. Nothing downstream sees untyped
// JSON.
type Entry struct {
	ID          string
	Name        string
	MimeType    string
	WebViewLink string
	Size        int64
}

// IsFolder reports whether the entry is a sub-folder.
func (e Entry) IsFolder() bool { return e.MimeType == FolderMimeType }

// Listing lists remote folders. Satisfied by *Client; faked in tests.
type Listing interface {
	List(ctx context.Context, folderID, token string) ([]Entry, error)
	GetName(ctx context.Context, folderID, token string) (string, error)
}

// Stream is an incremental read of one asset's raw bytes.
type Stream struct {
	Body      io.ReadCloser
	TotalSize int64 // -1 when the server does not declare a size
	MimeType  string
}

// Transport fetches raw asset bytes. Satisfied by *Client.
type Transport interface {
	FetchStream(ctx context.Context, fileID, token string) (*Stream, error)
}

// Client talks to the Drive REST API.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

// wire shapes of the Drive API, confined to this file.

type fileResource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	WebViewLink string `json:"webViewLink"`
	Size        string `json:"size"`
}

type fileList struct {
	Files []fileResource `json:"files"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// List returns the direct children of a folder, in the server's name
// order. Any failure here aborts the tree build it belongs to.
func (c *Client) List(ctx context.Context, folderID, token string) ([]Entry, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", folderID))
	q.Set("fields", "files(id,name,mimeType,webViewLink,size)")
	q.Set("pageSize", "1000")
	q.Set("orderBy", "name")

	body, err := c.get(ctx, c.base+"/files?"+q.Encode(), token)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var list fileList
	if err := json.NewDecoder(body).Decode(&list); err != nil {
		return nil, fmt.Errorf("drive: decode listing: %w", err)
	}

	entries := make([]Entry, 0, len(list.Files))
	for _, f := range list.Files {
		if f.ID == "" {
			continue
		}
		size, _ := strconv.ParseInt(f.Size, 10, 64)
		entries = append(entries, Entry{
			ID:          f.ID,
			Name:        f.Name,
			MimeType:    f.MimeType,
			WebViewLink: f.WebViewLink,
			Size:        size,
		})
	}
	return entries, nil
}

// GetName resolves a folder's display name. Best effort: callers
// substitute a placeholder on failure instead of aborting.
func (c *Client) GetName(ctx context.Context, folderID, token string) (string, error) {
	body, err := c.get(ctx, c.base+"/files/"+url.PathEscape(folderID)+"?fields=name", token)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var f fileResource
	if err := json.NewDecoder(body).Decode(&f); err != nil {
		return "", fmt.Errorf("drive: decode name: %w", err)
	}
	if f.Name == "" {
		return "", fmt.Errorf("drive: folder %s has no name", folderID)
	}
	return f.Name, nil
}

// FetchStream opens the raw media download for a file. The caller owns
// the body and must close it.
func (c *Client) FetchStream(ctx context.Context, fileID, token string) (*Stream, error) {
	u := c.base + "/files/" + url.PathEscape(fileID) + "?alt=media"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive: fetch %s: %w", fileID, err)
	}
	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		return nil, c.statusErr(res)
	}

	total := res.ContentLength
	if total == 0 {
		total = -1
	}
	mimeType := res.Header.Get("Content-Type")
	return &Stream{Body: res.Body, TotalSize: total, MimeType: mimeType}, nil
}

func (c *Client) get(ctx context.Context, u, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive: request: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		return nil, c.statusErr(res)
	}
	return res.Body, nil
}

func (c *Client) statusErr(res *http.Response) error {
	var payload apiError
	_ = json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&payload)
	msg := payload.Error.Message
	if msg == "" {
		msg = res.Status
	}

	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	default:
		return fmt.Errorf("drive: %s", msg)
	}
}
