package controllers

import (
	"drivestudy/backend/middleware"
	"drivestudy/backend/models"
	"drivestudy/backend/progress"
	"drivestudy/backend/syncer"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// ProgressController reads and mutates per-lesson progress records.
// Every mutation writes through the local store and queues a remote
// push; the push never blocks or fails the request.
type ProgressController struct {
	Store *progress.Store
	Rec   *syncer.Reconciler
}

func NewProgressController(store *progress.Store, rec *syncer.Reconciler) *ProgressController {
	return &ProgressController{Store: store, Rec: rec}
}

func (pc *ProgressController) GetVideoProgress(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	p, ok := pc.Store.GetVideo(sess.UserID, c.Params("fileId"))
	return c.JSON(fiber.Map{"progress": p, "exists": ok})
}

func (pc *ProgressController) PutVideoProgress(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	fileID := c.Params("fileId")

	var input struct {
		Timestamp *float64 `json:"timestamp"`
		Duration  *float64 `json:"duration"`
		Completed *bool    `json:"completed"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	p, err := pc.Store.UpdateVideo(sess.UserID, fileID, func(p *models.VideoProgress) {
		if input.Timestamp != nil {
			p.Timestamp = *input.Timestamp
		}
		if input.Duration != nil {
			p.Duration = *input.Duration
		}
		if input.Completed != nil {
			p.Completed = *input.Completed
		}
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	pc.Rec.PushVideoProgress(sess.UserID, fileID, p)
	return c.JSON(fiber.Map{"progress": p})
}

func (pc *ProgressController) ToggleVideoCompleted(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	fileID := c.Params("fileId")

	p, err := pc.Store.UpdateVideo(sess.UserID, fileID, func(p *models.VideoProgress) {
		p.Completed = !p.Completed
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	pc.Rec.PushVideoProgress(sess.UserID, fileID, p)
	return c.JSON(fiber.Map{"progress": p})
}

func (pc *ProgressController) GetPdfProgress(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	p, ok := pc.Store.GetPdf(sess.UserID, c.Params("fileId"))
	if !ok {
		p = models.PdfProgress{CurrentPage: 1, TotalPages: 1}
	}
	return c.JSON(fiber.Map{"progress": p, "exists": ok})
}

func (pc *ProgressController) PutPdfProgress(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	fileID := c.Params("fileId")

	var input struct {
		CurrentPage *int `json:"currentPage"`
		TotalPages  *int `json:"totalPages"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.CurrentPage != nil && *input.CurrentPage < 1 {
		return utils.BadRequest(c, "currentPage must be 1-based")
	}

	p, err := pc.Store.UpdatePdf(sess.UserID, fileID, func(p *models.PdfProgress) {
		if input.TotalPages != nil && *input.TotalPages > 0 {
			p.TotalPages = *input.TotalPages
		}
		if input.CurrentPage != nil {
			p.CurrentPage = *input.CurrentPage
		}
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	pc.Rec.PushPdfProgress(sess.UserID, fileID, p)
	return c.JSON(fiber.Map{"progress": p})
}

func (pc *ProgressController) TogglePdfCompleted(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	fileID := c.Params("fileId")

	p, err := pc.Store.UpdatePdf(sess.UserID, fileID, func(p *models.PdfProgress) {
		p.Completed = !p.Completed
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	pc.Rec.PushPdfProgress(sess.UserID, fileID, p)
	return c.JSON(fiber.Map{"progress": p})
}
