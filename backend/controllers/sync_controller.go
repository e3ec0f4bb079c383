package controllers

import (
	"drivestudy/backend/middleware"
	"drivestudy/backend/syncer"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SyncController runs the session-start pull. Clients call it once per
// authenticated session, including silent resume, so a returning user
// sees cross-device state.
type SyncController struct {
	Rec *syncer.Reconciler
	Log *zap.SugaredLogger
}

func NewSyncController(rec *syncer.Reconciler, log *zap.SugaredLogger) *SyncController {
	return &SyncController{Rec: rec, Log: log}
}

func (sc *SyncController) SyncFromRemote(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	if err := sc.Rec.SyncFromRemote(c.Context(), sess.UserID); err != nil {
		// The pull failing must not block the session; local state
		// still serves. Report it, but as degraded rather than broken.
		sc.Log.Errorw("session-start pull failed", "user", sess.UserID, "error", err)
		return c.JSON(fiber.Map{"synced": false})
	}
	return c.JSON(fiber.Map{"synced": true})
}

func (sc *SyncController) GetRecents(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	merged, err := sc.Rec.MergeRecents(c.Context(), sess.UserID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadGateway, err)
	}
	return c.JSON(fiber.Map{"courses": merged})
}
