package controllers

import (
	"sync"

	"drivestudy/backend/assetcache"
	"drivestudy/backend/middleware"
	"drivestudy/backend/progress"
	"drivestudy/backend/syncer"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AssetsController serves binary assets through the streaming cache
// engine and tracks playback positions.
type AssetsController struct {
	Engine *assetcache.Engine
	Store  *progress.Store
	Rec    *syncer.Reconciler
	Log    *zap.SugaredLogger

	trackers sync.Map // userID+"/"+fileID -> *assetcache.Tracker
}

func NewAssetsController(engine *assetcache.Engine, store *progress.Store, rec *syncer.Reconciler, log *zap.SugaredLogger) *AssetsController {
	return &AssetsController{Engine: engine, Store: store, Rec: rec, Log: log}
}

// GetAsset streams the asset body. Cache hits serve without touching
// the network; failures reply with the remote viewer URL instead.
func (ac *AssetsController) GetAsset(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	fileID := c.Params("fileId")

	asset, err := ac.Engine.LoadAsset(c.Context(), sess, fileID, nil)
	if err != nil {
		// Only context teardown lands here; the client is gone.
		return err
	}
	if asset.Fallback {
		return c.JSON(fiber.Map{"fallback": true, "url": asset.FallbackURL})
	}

	c.Set(fiber.HeaderContentType, asset.MimeType)
	c.Set("X-Asset-Cache", cacheHeader(asset.FromCache))
	return c.Send(asset.Data)
}

// DeleteAsset evicts one cached asset.
func (ac *AssetsController) DeleteAsset(c *fiber.Ctx) error {
	if err := ac.Engine.Evict(c.Params("fileId")); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUsage reports total cached bytes.
func (ac *AssetsController) GetUsage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"bytes": ac.Engine.Usage(),
	})
}

// Checkpoint records a playback event: periodic ticks while playing,
// unconditional saves on pause and end.
func (ac *AssetsController) Checkpoint(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	fileID := c.Params("fileId")

	var input struct {
		Position float64 `json:"position"`
		Duration float64 `json:"duration"`
		Event    string  `json:"event"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	tracker := ac.tracker(sess.UserID, fileID)
	switch input.Event {
	case "pause":
		tracker.Pause(input.Position, input.Duration)
	case "end":
		tracker.End(input.Position, input.Duration)
	default:
		tracker.Tick(input.Position, input.Duration)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// GetResume returns the position playback should restart from.
func (ac *AssetsController) GetResume(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	fileID := c.Params("fileId")

	duration := c.QueryFloat("duration")
	tracker := ac.tracker(sess.UserID, fileID)
	return c.JSON(fiber.Map{"position": tracker.Resume(duration)})
}

func (ac *AssetsController) tracker(userID, fileID string) *assetcache.Tracker {
	key := userID + "/" + fileID
	if t, ok := ac.trackers.Load(key); ok {
		return t.(*assetcache.Tracker)
	}
	t, _ := ac.trackers.LoadOrStore(key, assetcache.NewTracker(ac.Store, ac.Rec, ac.Log, userID, fileID))
	return t.(*assetcache.Tracker)
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
