package syncer

import (
	"context"
	"errors"
)

// Families of documents kept in the remote durable store. Documents are
// addressed (user, family, key) and reconciled whole; the store is
// eventually consistent with no cross-document transactions.
const (
	FamilyVideoProgress = "videoProgress"
	FamilyPdfProgress   = "pdfProgress"
	FamilyNotes         = "notes"
	FamilyRecents       = "recentCourses"
)

// RecentsKey addresses the single recent-course document per user.
const RecentsKey = "list"

// MaxDocumentSize mirrors the remote store's per-document ceiling.
const MaxDocumentSize = 1 << 20

// ErrDocumentTooLarge is the structured signal for the size ceiling.
// Writes that hit it are logged and dropped; local persistence has
// already succeeded so the user sees nothing.
var ErrDocumentTooLarge = errors.New("syncer: document exceeds remote size limit")

// Document is one raw JSON payload.
type Document []byte

// RemoteStore is the per-user durable document store collaborator.
type RemoteStore interface {
	ReadAll(ctx context.Context, userID, family string) (map[string]Document, error)
	Write(ctx context.Context, userID, family, key string, doc Document) error
}
