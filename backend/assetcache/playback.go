package assetcache

import (
	"sync"

	"drivestudy/backend/models"
	"drivestudy/backend/progress"
	"drivestudy/backend/syncer"

	"go.uber.org/zap"
)

const (
	// checkpointInterval is how many whole seconds of playback pass
	// between periodic checkpoints.
	checkpointInterval = 5

	// resumeMinPosition: positions at or below this restart from zero.
	resumeMinPosition = 5

	// resumeEndWindow: positions inside the final window restart from
	// zero, so a finished video does not resume into its last seconds.
	resumeEndWindow = 10
)

// ResumePosition decides where playback restarts given the saved
// position and the media duration, both in seconds.
func ResumePosition(saved, duration float64) float64 {
	if saved > resumeMinPosition && saved < duration-resumeEndWindow {
		return saved
	}
	return 0
}

// Tracker checkpoints one user's playback position for one video:
// every 5 whole seconds while playing, immediately on pause or end.
// Each checkpoint writes through the local store and queues a remote
// push. One tracker is shared by every request for the same user and
// file, so mu serializes the checkpoint decision.
type Tracker struct {
	store  *progress.Store
	rec    *syncer.Reconciler
	log    *zap.SugaredLogger
	userID string
	fileID string

	mu             sync.Mutex
	lastCheckpoint float64
	primed         bool
}

func NewTracker(store *progress.Store, rec *syncer.Reconciler, log *zap.SugaredLogger, userID, fileID string) *Tracker {
	return &Tracker{store: store, rec: rec, log: log, userID: userID, fileID: fileID}
}

// Tick reports the current position during active playback.
func (t *Tracker) Tick(position, duration float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.primed && position >= t.lastCheckpoint && position-t.lastCheckpoint < checkpointInterval {
		return
	}
	t.checkpoint(position, duration)
}

// Pause checkpoints unconditionally.
func (t *Tracker) Pause(position, duration float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkpoint(position, duration)
}

// End checkpoints unconditionally at end of media.
func (t *Tracker) End(position, duration float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkpoint(position, duration)
}

// checkpoint requires mu held.
func (t *Tracker) checkpoint(position, duration float64) {
	t.lastCheckpoint = position
	t.primed = true
	p, err := t.store.UpdateVideo(t.userID, t.fileID, func(p *models.VideoProgress) {
		p.Timestamp = position
		if duration > 0 {
			p.Duration = duration
		}
	})
	if err != nil {
		t.log.Errorw("playback checkpoint failed", "file", t.fileID, "error", err)
		return
	}
	t.rec.PushVideoProgress(t.userID, t.fileID, p)
}

// Resume looks up the saved position and applies the resume rule.
func (t *Tracker) Resume(duration float64) float64 {
	p, ok := t.store.GetVideo(t.userID, t.fileID)
	if !ok {
		return 0
	}
	if duration <= 0 {
		duration = p.Duration
	}
	return ResumePosition(p.Timestamp, duration)
}
