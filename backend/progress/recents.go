package progress

import (
	"sort"

	"drivestudy/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxRecentCourses bounds the recent-course list.
const MaxRecentCourses = 10

// Recents returns the recent-course list, most recent first.
func (s *Store) Recents() []models.RecentCourse {
	var recs []models.RecentCourseRecord
	if err := s.db.Order("last_accessed DESC").Find(&recs).Error; err != nil {
		return nil
	}
	out := make([]models.RecentCourse, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.RecentCourse{
			FolderID:     r.FolderID,
			Name:         r.Name,
			URL:          r.URL,
			LastAccessed: r.LastAccessed,
		})
	}
	return out
}

// AddRecent records a course access, deduplicated by folder id and
// trimmed to the cap.
func (s *Store) AddRecent(rc models.RecentCourse) ([]models.RecentCourse, error) {
	if rc.LastAccessed == 0 {
		rc.LastAccessed = s.now()
	}
	list := []models.RecentCourse{rc}
	for _, existing := range s.Recents() {
		if existing.FolderID != rc.FolderID {
			list = append(list, existing)
		}
	}
	if len(list) > MaxRecentCourses {
		list = list[:MaxRecentCourses]
	}
	if err := s.ReplaceRecents(list); err != nil {
		return nil, err
	}
	return list, nil
}

// ReplaceRecents swaps the whole list, re-sorted and capped.
func (s *Store) ReplaceRecents(list []models.RecentCourse) error {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastAccessed > list[j].LastAccessed
	})
	if len(list) > MaxRecentCourses {
		list = list[:MaxRecentCourses]
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.RecentCourseRecord{}).Error; err != nil {
			return err
		}
		for _, rc := range list {
			rec := models.RecentCourseRecord{
				FolderID:     rc.FolderID,
				Name:         rc.Name,
				URL:          rc.URL,
				LastAccessed: rc.LastAccessed,
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
