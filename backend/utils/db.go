package utils

import (
	"drivestudy/backend/config"
	"drivestudy/backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the local state store. It is an embedded per-installation
// database: progress, notes and recents live here and stay usable with
// no network at all.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.VideoProgressRecord{},
		&models.PdfProgressRecord{},
		&models.NoteGroupRecord{},
		&models.RecentCourseRecord{},
		&models.CourseSnapshotRecord{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
