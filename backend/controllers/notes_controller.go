package controllers

import (
	"errors"

	"drivestudy/backend/middleware"
	"drivestudy/backend/progress"
	"drivestudy/backend/syncer"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// NotesController manages the per-context note groups. The whole group
// is pushed after every mutation, matching the sync granularity.
type NotesController struct {
	Store *progress.Store
	Rec   *syncer.Reconciler
}

func NewNotesController(store *progress.Store, rec *syncer.Reconciler) *NotesController {
	return &NotesController{Store: store, Rec: rec}
}

func (nc *NotesController) GetNotes(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	notes := nc.Store.Notes(sess.UserID, c.Params("context"))
	return c.JSON(fiber.Map{"notes": notes})
}

func (nc *NotesController) AddNote(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	context := c.Params("context")

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Content == "" {
		return utils.BadRequest(c, "Content is required")
	}

	note, group, err := nc.Store.AddNote(sess.UserID, context, input.Content)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	nc.Rec.PushNoteGroup(sess.UserID, context, group)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note})
}

func (nc *NotesController) UpdateNote(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	context := c.Params("context")

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	note, group, err := nc.Store.UpdateNote(sess.UserID, context, c.Params("noteId"), input.Content)
	if err != nil {
		if errors.Is(err, progress.ErrNoteNotFound) {
			return utils.NotFound(c, "Note not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	nc.Rec.PushNoteGroup(sess.UserID, context, group)
	return c.JSON(fiber.Map{"note": note})
}

func (nc *NotesController) DeleteNote(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	context := c.Params("context")

	group, err := nc.Store.DeleteNote(sess.UserID, context, c.Params("noteId"))
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, err)
	}

	nc.Rec.PushNoteGroup(sess.UserID, context, group)
	return c.SendStatus(fiber.StatusNoContent)
}
