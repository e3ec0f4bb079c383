package main

import (
	"log"

	"drivestudy/backend/assetcache"
	"drivestudy/backend/config"
	"drivestudy/backend/course"
	"drivestudy/backend/drive"
	"drivestudy/backend/middleware"
	"drivestudy/backend/progress"
	"drivestudy/backend/routes"
	"drivestudy/backend/syncer"
	"drivestudy/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize local state store
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	store := progress.NewStore(db)

	// Drive collaborator
	driveClient := drive.NewClient(cfg.DriveAPIBase)
	builder := course.NewBuilder(driveClient)

	// Content cache: absence of the capability is tolerated, the
	// engine then always serves the remote viewer fallback.
	var cache assetcache.ContentCache
	if fsCache, err := assetcache.NewFSCache(cfg.CacheDir); err != nil {
		logger.Warnw("content cache unavailable, running without it", "error", err)
	} else {
		cache = fsCache
	}
	engine := assetcache.NewEngine(cache, driveClient, logger)

	// Remote durable store + reconciler
	var remote syncer.RemoteStore = syncer.NewHTTPStore(cfg.RemoteStoreURL, cfg.RemoteStoreKey)
	rec := syncer.NewReconciler(store, remote, logger)
	defer rec.Close()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Drive-Token",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		Cfg:     cfg,
		Log:     logger,
		Store:   store,
		Builder: builder,
		Rec:     rec,
		Engine:  engine,
	})

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
