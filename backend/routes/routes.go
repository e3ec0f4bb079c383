package routes

import (
	"drivestudy/backend/assetcache"
	"drivestudy/backend/config"
	"drivestudy/backend/controllers"
	"drivestudy/backend/course"
	"drivestudy/backend/middleware"
	"drivestudy/backend/progress"
	"drivestudy/backend/syncer"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Deps carries everything the route handlers need.
type Deps struct {
	Cfg     *config.Config
	Log     *zap.SugaredLogger
	Store   *progress.Store
	Builder *course.Builder
	Rec     *syncer.Reconciler
	Engine  *assetcache.Engine
}

func SetupRoutes(app *fiber.App, d Deps) {
	// Session
	sessionController := controllers.NewSessionController(d.Cfg)
	app.Post("/api/session", sessionController.CreateSession)

	authMiddleware := middleware.AuthMiddleware(d.Cfg)

	// Courses
	coursesController := controllers.NewCoursesController(d.Builder, d.Store, d.Rec, d.Log)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Post("/", coursesController.LoadCourse)
	courses.Get("/recent", coursesController.GetRecentCourses)
	courses.Get("/:folderId", coursesController.GetCourse)
	courses.Get("/:folderId/progress", coursesController.GetCourseProgress)

	// Progress records
	progressController := controllers.NewProgressController(d.Store, d.Rec)
	prog := app.Group("/api/progress", authMiddleware)
	prog.Get("/video/:fileId", progressController.GetVideoProgress)
	prog.Put("/video/:fileId", progressController.PutVideoProgress)
	prog.Post("/video/:fileId/toggle", progressController.ToggleVideoCompleted)
	prog.Get("/pdf/:fileId", progressController.GetPdfProgress)
	prog.Put("/pdf/:fileId", progressController.PutPdfProgress)
	prog.Post("/pdf/:fileId/toggle", progressController.TogglePdfCompleted)

	// Notes
	notesController := controllers.NewNotesController(d.Store, d.Rec)
	notes := app.Group("/api/notes", authMiddleware)
	notes.Get("/:context", notesController.GetNotes)
	notes.Post("/:context", notesController.AddNote)
	notes.Put("/:context/:noteId", notesController.UpdateNote)
	notes.Delete("/:context/:noteId", notesController.DeleteNote)

	// Sync
	syncController := controllers.NewSyncController(d.Rec, d.Log)
	app.Post("/api/sync", authMiddleware, syncController.SyncFromRemote)
	app.Get("/api/sync/recents", authMiddleware, syncController.GetRecents)

	// Assets
	assetsController := controllers.NewAssetsController(d.Engine, d.Store, d.Rec, d.Log)
	assets := app.Group("/api/assets", authMiddleware)
	assets.Get("/usage", assetsController.GetUsage)
	assets.Get("/:fileId", assetsController.GetAsset)
	assets.Delete("/:fileId", assetsController.DeleteAsset)
	assets.Post("/:fileId/checkpoint", assetsController.Checkpoint)
	assets.Get("/:fileId/resume", assetsController.GetResume)
}
