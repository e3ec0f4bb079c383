package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"drivestudy/backend/models"
	"drivestudy/backend/progress"

	"go.uber.org/zap"
)

// Reconciler keeps the local state store and the remote durable store
// in step: a blunt pull at session start, write-through pushes on every
// mutation, and a timestamp merge for the recent-course list.
//
// Pushes are fire-and-forget relative to the caller: they are queued to
// a single worker so issue order is never reversed, and failures are
// logged, never returned to the mutating code path.
type Reconciler struct {
	store  *progress.Store
	remote RemoteStore
	log    *zap.SugaredLogger

	jobs    chan pushJob
	pending sync.WaitGroup
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

type pushJob struct {
	userID string
	family string
	key    string
	doc    Document
}

// pushTimeout bounds one background remote write.
const pushTimeout = 30 * time.Second

func NewReconciler(store *progress.Store, remote RemoteStore, log *zap.SugaredLogger) *Reconciler {
	r := &Reconciler{
		store:  store,
		remote: remote,
		log:    log,
		jobs:   make(chan pushJob, 256),
		done:   make(chan struct{}),
	}
	go r.pushLoop()
	return r
}

// Close drains the queue and stops the push worker. Pushes issued after
// Close starts are dropped. Safe to call more than once.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.pending.Wait()
	close(r.jobs)
	<-r.done
}

// Flush blocks until every queued push has been attempted.
func (r *Reconciler) Flush() {
	r.pending.Wait()
}

func (r *Reconciler) pushLoop() {
	defer close(r.done)
	for job := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		err := r.remote.Write(ctx, job.userID, job.family, job.key, job.doc)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, ErrDocumentTooLarge):
			r.log.Warnw("remote document too large, kept locally only",
				"user", job.userID, "family", job.family, "key", job.key)
		default:
			r.log.Errorw("remote push failed",
				"user", job.userID, "family", job.family, "key", job.key, "error", err)
		}
		r.pending.Done()
	}
}

// enqueue never blocks the mutating call: when the queue is full the
// push is dropped with a log entry. The local write already succeeded
// and the next mutation of the same record re-pushes the whole document,
// so a drop costs staleness, not data.
func (r *Reconciler) enqueue(userID, family, key string, v interface{}) {
	doc, err := json.Marshal(v)
	if err != nil {
		r.log.Errorw("encode push document", "family", family, "key", key, "error", err)
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Warnw("push after close dropped", "family", family, "key", key)
		return
	}
	r.pending.Add(1)
	r.mu.Unlock()

	select {
	case r.jobs <- pushJob{userID: userID, family: family, key: key, doc: doc}:
	default:
		r.pending.Done()
		r.log.Warnw("push queue full, dropping remote write",
			"user", userID, "family", family, "key", key)
	}
}

// PushVideoProgress mirrors a local video progress write remotely.
func (r *Reconciler) PushVideoProgress(userID, fileID string, p models.VideoProgress) {
	r.enqueue(userID, FamilyVideoProgress, fileID, p)
}

// PushPdfProgress mirrors a local pdf progress write remotely.
func (r *Reconciler) PushPdfProgress(userID, fileID string, p models.PdfProgress) {
	r.enqueue(userID, FamilyPdfProgress, fileID, p)
}

// PushNoteGroup mirrors a whole note group remotely.
func (r *Reconciler) PushNoteGroup(userID, groupCtx string, notes []models.Note) {
	r.enqueue(userID, FamilyNotes, groupCtx, notes)
}

// PushRecents mirrors the recent-course list remotely.
func (r *Reconciler) PushRecents(userID string, list []models.RecentCourse) {
	r.enqueue(userID, FamilyRecents, RecentsKey, list)
}

// SyncFromRemote runs the session-start pull. Video, pdf and note
// documents overwrite their local counterparts unconditionally
// (last-write-wins at whole-record granularity); the recent list goes
// through MergeRecents so local-only entries survive. Documents that
// fail to decode are skipped as absent, with a log entry.
func (r *Reconciler) SyncFromRemote(ctx context.Context, userID string) error {
	if err := r.pullVideo(ctx, userID); err != nil {
		return err
	}
	if err := r.pullPdf(ctx, userID); err != nil {
		return err
	}
	if err := r.pullNotes(ctx, userID); err != nil {
		return err
	}
	if _, err := r.MergeRecents(ctx, userID); err != nil {
		return err
	}
	return nil
}

func (r *Reconciler) pullVideo(ctx context.Context, userID string) error {
	docs, err := r.remote.ReadAll(ctx, userID, FamilyVideoProgress)
	if err != nil {
		return fmt.Errorf("pull video progress: %w", err)
	}
	for fileID, doc := range docs {
		var p models.VideoProgress
		if err := json.Unmarshal(doc, &p); err != nil {
			r.log.Warnw("skipping malformed remote document",
				"family", FamilyVideoProgress, "key", fileID, "error", err)
			continue
		}
		if err := r.store.PutVideo(userID, fileID, p); err != nil {
			return fmt.Errorf("store video progress %s: %w", fileID, err)
		}
	}
	return nil
}

func (r *Reconciler) pullPdf(ctx context.Context, userID string) error {
	docs, err := r.remote.ReadAll(ctx, userID, FamilyPdfProgress)
	if err != nil {
		return fmt.Errorf("pull pdf progress: %w", err)
	}
	for fileID, doc := range docs {
		var p models.PdfProgress
		if err := json.Unmarshal(doc, &p); err != nil {
			r.log.Warnw("skipping malformed remote document",
				"family", FamilyPdfProgress, "key", fileID, "error", err)
			continue
		}
		if err := r.store.PutPdf(userID, fileID, p); err != nil {
			return fmt.Errorf("store pdf progress %s: %w", fileID, err)
		}
	}
	return nil
}

func (r *Reconciler) pullNotes(ctx context.Context, userID string) error {
	docs, err := r.remote.ReadAll(ctx, userID, FamilyNotes)
	if err != nil {
		return fmt.Errorf("pull notes: %w", err)
	}
	for groupCtx, doc := range docs {
		var notes []models.Note
		if err := json.Unmarshal(doc, &notes); err != nil {
			r.log.Warnw("skipping malformed remote document",
				"family", FamilyNotes, "key", groupCtx, "error", err)
			continue
		}
		if err := r.store.PutNoteGroup(userID, groupCtx, notes); err != nil {
			return fmt.Errorf("store notes %s: %w", groupCtx, err)
		}
	}
	return nil
}

// MergeRecents combines the local and remote recent-course lists,
// keeping per folder whichever entry was accessed later, then re-sorts,
// caps and writes the result locally. It does not push the merge back.
func (r *Reconciler) MergeRecents(ctx context.Context, userID string) ([]models.RecentCourse, error) {
	docs, err := r.remote.ReadAll(ctx, userID, FamilyRecents)
	if err != nil {
		return nil, fmt.Errorf("pull recents: %w", err)
	}
	var remote []models.RecentCourse
	if doc, ok := docs[RecentsKey]; ok {
		if err := json.Unmarshal(doc, &remote); err != nil {
			r.log.Warnw("skipping malformed remote document",
				"family", FamilyRecents, "key", RecentsKey, "error", err)
			remote = nil
		}
	}

	merged := mergeRecents(r.store.Recents(), remote)
	if err := r.store.ReplaceRecents(merged); err != nil {
		return nil, fmt.Errorf("store recents: %w", err)
	}
	return merged, nil
}

func mergeRecents(local, remote []models.RecentCourse) []models.RecentCourse {
	byFolder := make(map[string]models.RecentCourse, len(local)+len(remote))
	for _, rc := range local {
		byFolder[rc.FolderID] = rc
	}
	for _, rc := range remote {
		if cur, ok := byFolder[rc.FolderID]; !ok || rc.LastAccessed > cur.LastAccessed {
			byFolder[rc.FolderID] = rc
		}
	}

	merged := make([]models.RecentCourse, 0, len(byFolder))
	for _, rc := range byFolder {
		merged = append(merged, rc)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].LastAccessed > merged[j].LastAccessed
	})
	if len(merged) > progress.MaxRecentCourses {
		merged = merged[:progress.MaxRecentCourses]
	}
	return merged
}
