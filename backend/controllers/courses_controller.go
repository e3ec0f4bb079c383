package controllers

import (
	"errors"
	"time"

	"drivestudy/backend/course"
	"drivestudy/backend/drive"
	"drivestudy/backend/middleware"
	"drivestudy/backend/models"
	"drivestudy/backend/progress"
	"drivestudy/backend/syncer"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CoursesController struct {
	Builder *course.Builder
	Store   *progress.Store
	Rec     *syncer.Reconciler
	Log     *zap.SugaredLogger
}

func NewCoursesController(builder *course.Builder, store *progress.Store, rec *syncer.Reconciler, log *zap.SugaredLogger) *CoursesController {
	return &CoursesController{Builder: builder, Store: store, Rec: rec, Log: log}
}

// LoadCourse builds (or refreshes) a course from a shared Drive URL,
// caches the snapshot and records a recent entry.
func (cc *CoursesController) LoadCourse(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var input struct {
		URL     string `json:"url"`
		Refresh bool   `json:"refresh"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	folderID, ok := drive.ParseFolderURL(input.URL)
	if !ok {
		return utils.BadRequest(c, "Not a valid Drive folder URL")
	}

	var crs models.Course
	if cached, found := cc.Store.Snapshot(folderID); found && !input.Refresh {
		crs = cached
	} else {
		built, err := cc.buildAndCache(c, sess, folderID, input.URL)
		if err != nil {
			return cc.driveError(c, err)
		}
		crs = built
	}

	recents, err := cc.Store.AddRecent(models.RecentCourse{
		FolderID:     folderID,
		Name:         crs.Name,
		URL:          input.URL,
		LastAccessed: time.Now().UnixMilli(),
	})
	if err != nil {
		cc.Log.Errorw("record recent course", "folder", folderID, "error", err)
	} else {
		cc.Rec.PushRecents(sess.UserID, recents)
	}

	return c.JSON(crs)
}

// GetCourse serves the cached snapshot, rebuilding when none exists.
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	folderID := c.Params("folderId")

	if crs, ok := cc.Store.Snapshot(folderID); ok {
		return c.JSON(crs)
	}

	crs, err := cc.buildAndCache(c, sess, folderID, "")
	if err != nil {
		return cc.driveError(c, err)
	}
	return c.JSON(crs)
}

// GetRecentCourses returns the local recent list, most recent first.
func (cc *CoursesController) GetRecentCourses(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"courses": cc.Store.Recents()})
}

// GetCourseProgress aggregates completion for the whole course or, with
// ?module=<id>, for one subtree.
func (cc *CoursesController) GetCourseProgress(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)
	folderID := c.Params("folderId")

	crs, ok := cc.Store.Snapshot(folderID)
	if !ok {
		return utils.NotFound(c, "Course not loaded")
	}

	if moduleID := c.Query("module"); moduleID != "" {
		mod, found := course.FindModule(crs.Modules, moduleID)
		if !found {
			return utils.NotFound(c, "Module not found")
		}
		return c.JSON(cc.Store.AggregateModule(mod, sess.UserID))
	}
	return c.JSON(cc.Store.AggregateCourse(crs.Modules, sess.UserID))
}

func (cc *CoursesController) buildAndCache(c *fiber.Ctx, sess models.Session, folderID, url string) (models.Course, error) {
	name, modules, err := cc.Builder.BuildCourseStructure(c.Context(), sess, folderID)
	if err != nil {
		return models.Course{}, err
	}
	crs := models.Course{
		FolderID: folderID,
		Name:     name,
		DriveURL: url,
		Modules:  modules,
		LoadedAt: time.Now().UnixMilli(),
	}
	if err := cc.Store.PutSnapshot(crs); err != nil {
		cc.Log.Errorw("cache course snapshot", "folder", folderID, "error", err)
	}
	return crs, nil
}

func (cc *CoursesController) driveError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, drive.ErrUnauthorized):
		return utils.Error(c, fiber.StatusForbidden, err)
	case errors.Is(err, drive.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, err)
	default:
		return utils.BadGateway(c, err)
	}
}
