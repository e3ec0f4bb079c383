package progress

import (
	"encoding/json"

	"drivestudy/backend/models"

	"gorm.io/gorm/clause"
)

// Snapshot returns the cached course tree for a folder. Missing or
// corrupt snapshots read as absence; the tree is re-derivable from the
// listing.
func (s *Store) Snapshot(folderID string) (models.Course, bool) {
	var rec models.CourseSnapshotRecord
	err := s.db.Where("folder_id = ?", folderID).First(&rec).Error
	if err != nil {
		return models.Course{}, false
	}
	var modules []models.Module
	if err := json.Unmarshal([]byte(rec.Modules), &modules); err != nil {
		return models.Course{}, false
	}
	return models.Course{
		FolderID: rec.FolderID,
		Name:     rec.Name,
		DriveURL: rec.DriveURL,
		Modules:  modules,
		LoadedAt: rec.LoadedAt,
	}, true
}

// PutSnapshot caches a freshly built tree, replacing any previous one
// wholesale.
func (s *Store) PutSnapshot(c models.Course) error {
	raw, err := json.Marshal(c.Modules)
	if err != nil {
		return err
	}
	rec := models.CourseSnapshotRecord{
		FolderID: c.FolderID,
		Name:     c.Name,
		DriveURL: c.DriveURL,
		Modules:  string(raw),
		LoadedAt: c.LoadedAt,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}
