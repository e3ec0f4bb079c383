package progress

import (
	"encoding/json"
	"errors"

	"drivestudy/backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// ErrNoteNotFound is returned when updating a note id that is not in
// the group.
var ErrNoteNotFound = errors.New("progress: note not found")

// Notes returns a user's note group for a context, newest first. A
// missing or corrupt group reads as empty.
func (s *Store) Notes(userID, context string) []models.Note {
	var rec models.NoteGroupRecord
	err := s.db.Where("user_id = ? AND context = ?", userID, context).First(&rec).Error
	if err != nil {
		return nil
	}
	var notes []models.Note
	if err := json.Unmarshal([]byte(rec.Notes), &notes); err != nil {
		return nil
	}
	return notes
}

// PutNoteGroup replaces a whole note group, the unit of sync.
func (s *Store) PutNoteGroup(userID, context string, notes []models.Note) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	rec := models.NoteGroupRecord{
		UserID:    userID,
		Context:   context,
		Notes:     string(raw),
		UpdatedAt: s.now(),
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
}

// AddNote prepends a new note to the group and returns it with the
// stored group.
func (s *Store) AddNote(userID, context, content string) (models.Note, []models.Note, error) {
	now := s.now()
	note := models.Note{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	notes := append([]models.Note{note}, s.Notes(userID, context)...)
	if err := s.PutNoteGroup(userID, context, notes); err != nil {
		return models.Note{}, nil, err
	}
	return note, notes, nil
}

// UpdateNote rewrites an existing note's content in place.
func (s *Store) UpdateNote(userID, context, noteID, content string) (models.Note, []models.Note, error) {
	notes := s.Notes(userID, context)
	for i := range notes {
		if notes[i].ID != noteID {
			continue
		}
		notes[i].Content = content
		notes[i].UpdatedAt = s.now()
		if err := s.PutNoteGroup(userID, context, notes); err != nil {
			return models.Note{}, nil, err
		}
		return notes[i], notes, nil
	}
	return models.Note{}, nil, ErrNoteNotFound
}

// DeleteNote removes one note from the group.
func (s *Store) DeleteNote(userID, context, noteID string) ([]models.Note, error) {
	notes := s.Notes(userID, context)
	kept := notes[:0]
	for _, n := range notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	if err := s.PutNoteGroup(userID, context, kept); err != nil {
		return nil, err
	}
	return kept, nil
}
