package assetcache

import (
	"bytes"
	"context"
	"io"

	"drivestudy/backend/drive"
	"drivestudy/backend/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State names the phases of one asset load.
type State string

const (
	StateCheckingCache State = "checking-cache"
	StateDownloading   State = "downloading"
	StateAssembling    State = "assembling"
	StateCached        State = "cached"
	StateReady         State = "ready"
	StateFallback      State = "fallback"
)

// Update is one observation of a load in flight. Percent is 0-99 while
// downloading (0 throughout when the total size is unknown) and 100
// from assembly on.
type Update struct {
	State   State
	Percent int
}

// ProgressFunc observes load updates. May be nil.
type ProgressFunc func(Update)

// Asset is the outcome of a load: either locally held bytes, or a
// fallback pointing at the remote-hosted viewer.
type Asset struct {
	FileID      string
	MimeType    string
	Data        []byte
	FromCache   bool
	Fallback    bool
	FallbackURL string
}

const downloadChunkSize = 64 * 1024

// Engine loads assets through the content cache. Cache hits make no
// network call; misses stream, assemble, persist best-effort and serve;
// any failure degrades to the remote-hosted viewer so the user always
// has some way to watch.
type Engine struct {
	cache     ContentCache // nil when the caching capability is absent
	transport drive.Transport
	log       *zap.SugaredLogger
	group     singleflight.Group
}

func NewEngine(cache ContentCache, transport drive.Transport, log *zap.SugaredLogger) *Engine {
	return &Engine{cache: cache, transport: transport, log: log}
}

// LoadAsset runs the load state machine for one file. Concurrent loads
// of the same file join the first in-flight attempt. The returned error
// is non-nil only when ctx is torn down; every other failure resolves
// to a fallback asset.
func (e *Engine) LoadAsset(ctx context.Context, sess models.Session, fileID string, onProgress ProgressFunc) (*Asset, error) {
	v, err, _ := e.group.Do(fileID, func() (interface{}, error) {
		return e.load(ctx, sess, fileID, onProgress)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Asset), nil
}

func (e *Engine) load(ctx context.Context, sess models.Session, fileID string, onProgress ProgressFunc) (*Asset, error) {
	report := func(state State, percent int) {
		if onProgress != nil {
			onProgress(Update{State: state, Percent: percent})
		}
	}

	report(StateCheckingCache, 0)
	if e.cache != nil {
		if data, mimeType, ok := e.cache.Get(fileID); ok {
			report(StateReady, 100)
			return &Asset{FileID: fileID, MimeType: mimeType, Data: data, FromCache: true}, nil
		}
	}

	if e.transport == nil {
		report(StateFallback, 0)
		return e.fallback(fileID, "streaming capability absent", nil), nil
	}

	stream, err := e.transport.FetchStream(ctx, fileID, sess.DriveToken)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		report(StateFallback, 0)
		return e.fallback(fileID, "fetch failed", err), nil
	}
	defer stream.Body.Close()

	report(StateDownloading, 0)
	data, err := e.consume(ctx, stream, report)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		report(StateFallback, 0)
		return e.fallback(fileID, "download interrupted", err), nil
	}

	mimeType := stream.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	report(StateAssembling, 100)

	// Persistence is best effort: the object still serves this session
	// if the put is refused.
	if e.cache != nil {
		if err := e.cache.Put(fileID, data, mimeType); err != nil {
			e.log.Warnw("asset cache put failed", "file", fileID, "error", err)
		} else {
			report(StateCached, 100)
		}
	}

	report(StateReady, 100)
	return &Asset{FileID: fileID, MimeType: mimeType, Data: data}, nil
}

// consume reads the stream chunk by chunk with monotone progress.
// Cancellation stops at the next chunk boundary; nothing partial is
// ever handed back.
func (e *Engine) consume(ctx context.Context, stream *drive.Stream, report func(State, int)) ([]byte, error) {
	var buf bytes.Buffer
	if stream.TotalSize > 0 {
		buf.Grow(int(stream.TotalSize))
	}

	chunk := make([]byte, downloadChunkSize)
	var received int64
	lastPercent := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n, err := stream.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)
			if stream.TotalSize > 0 {
				p := int(received * 100 / stream.TotalSize)
				if p > 99 {
					p = 99
				}
				if p > lastPercent {
					lastPercent = p
					report(StateDownloading, p)
				}
			}
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (e *Engine) fallback(fileID, reason string, err error) *Asset {
	e.log.Warnw("asset load degraded to remote viewer", "file", fileID, "reason", reason, "error", err)
	return &Asset{
		FileID:      fileID,
		Fallback:    true,
		FallbackURL: drive.VideoEmbedURL(fileID),
	}
}

// Cached reports whether an asset is present locally.
func (e *Engine) Cached(fileID string) bool {
	return e.cache != nil && e.cache.Has(fileID)
}

// Evict removes an asset from the cache, forcing the next load to
// re-download. Any reference handed out earlier stays valid for the
// bytes it already holds.
func (e *Engine) Evict(fileID string) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Delete(fileID)
}

// Usage returns total cached bytes, zero when the capability is absent.
func (e *Engine) Usage() int64 {
	if e.cache == nil {
		return 0
	}
	n, err := e.cache.Usage()
	if err != nil {
		e.log.Warnw("cache usage probe failed", "error", err)
		return 0
	}
	return n
}
