package progress

import (
	"time"

	"drivestudy/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the local state store: per-user progress records, note
// groups, the recent-course list and cached course snapshots. Every
// read treats a missing or unreadable row as absence; defaults are
// substituted rather than errors propagated.
type Store struct {
	db  *gorm.DB
	now func() int64
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:  db,
		now: func() int64 { return time.Now().UnixMilli() },
	}
}

// GetVideo returns a user's progress for one video, reporting whether a
// record exists.
func (s *Store) GetVideo(userID, fileID string) (models.VideoProgress, bool) {
	var rec models.VideoProgressRecord
	err := s.db.Where("user_id = ? AND file_id = ?", userID, fileID).First(&rec).Error
	if err != nil {
		return models.VideoProgress{}, false
	}
	return models.VideoProgress{
		Timestamp:   rec.Timestamp,
		Duration:    rec.Duration,
		Completed:   rec.Completed,
		LastWatched: rec.LastWatched,
	}, true
}

// PutVideo writes a whole video progress record. Used by the sync pull,
// which is authoritative and non-merging.
func (s *Store) PutVideo(userID, fileID string, p models.VideoProgress) error {
	rec := models.VideoProgressRecord{
		UserID:      userID,
		FileID:      fileID,
		Timestamp:   p.Timestamp,
		Duration:    p.Duration,
		Completed:   p.Completed,
		LastWatched: p.LastWatched,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// UpdateVideo loads the record (or a zero default), applies mutate,
// stamps LastWatched and saves. Returns the stored value.
func (s *Store) UpdateVideo(userID, fileID string, mutate func(*models.VideoProgress)) (models.VideoProgress, error) {
	p, _ := s.GetVideo(userID, fileID)
	mutate(&p)
	p.LastWatched = s.now()
	if err := s.PutVideo(userID, fileID, p); err != nil {
		return models.VideoProgress{}, err
	}
	return p, nil
}

// GetPdf returns a user's reading progress for one document.
func (s *Store) GetPdf(userID, fileID string) (models.PdfProgress, bool) {
	var rec models.PdfProgressRecord
	err := s.db.Where("user_id = ? AND file_id = ?", userID, fileID).First(&rec).Error
	if err != nil {
		return models.PdfProgress{}, false
	}
	return models.PdfProgress{
		CurrentPage: rec.CurrentPage,
		TotalPages:  rec.TotalPages,
		Completed:   rec.Completed,
		LastRead:    rec.LastRead,
	}, true
}

// PutPdf writes a whole pdf progress record.
func (s *Store) PutPdf(userID, fileID string, p models.PdfProgress) error {
	rec := models.PdfProgressRecord{
		UserID:      userID,
		FileID:      fileID,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Completed:   p.Completed,
		LastRead:    p.LastRead,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// UpdatePdf loads the record (or the first-page default), applies
// mutate, derives completion and stamps LastRead. Reaching the last
// page marks the document completed; it never un-marks it, the user
// toggle does that.
func (s *Store) UpdatePdf(userID, fileID string, mutate func(*models.PdfProgress)) (models.PdfProgress, error) {
	p, ok := s.GetPdf(userID, fileID)
	if !ok {
		p = models.PdfProgress{CurrentPage: 1, TotalPages: 1}
	}
	before := p.CurrentPage
	mutate(&p)
	if p.CurrentPage != before && p.TotalPages > 0 && p.CurrentPage >= p.TotalPages {
		p.Completed = true
	}
	p.LastRead = s.now()
	if err := s.PutPdf(userID, fileID, p); err != nil {
		return models.PdfProgress{}, err
	}
	return p, nil
}

// LessonCompleted reports completion for one lesson by its type.
func (s *Store) LessonCompleted(userID string, lesson models.Lesson) bool {
	switch lesson.Type {
	case models.LessonVideo:
		p, _ := s.GetVideo(userID, lesson.FileID)
		return p.Completed
	case models.LessonPDF:
		p, _ := s.GetPdf(userID, lesson.FileID)
		return p.Completed
	}
	return false
}
