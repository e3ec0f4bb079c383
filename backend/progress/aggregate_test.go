package progress

import (
	"testing"

	"drivestudy/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courseTree() []models.Module {
	return []models.Module{
		{
			ID:   "m1",
			Name: "Unit 1",
			Lessons: []models.Lesson{
				{FileID: "v1", Name: "intro", Type: models.LessonVideo},
				{FileID: "p1", Name: "reading", Type: models.LessonPDF},
			},
			SubModules: []models.Module{
				{
					ID:   "m1a",
					Name: "Topic A",
					Lessons: []models.Lesson{
						{FileID: "v2", Name: "deep dive", Type: models.LessonVideo},
					},
				},
			},
		},
		{
			ID:   "m2",
			Name: "Unit 2",
			Lessons: []models.Lesson{
				{FileID: "v3", Name: "outro", Type: models.LessonVideo},
				{FileID: "x1", Name: "scratch", Type: models.LessonOther},
			},
		},
	}
}

func TestAggregateCourse(t *testing.T) {
	s := newTestStore(t)
	modules := courseTree()

	got := s.AggregateCourse(modules, "u1")
	assert.Equal(t, models.ModuleProgress{Completed: 0, Total: 5, Percent: 0}, got)

	_, err := s.UpdateVideo("u1", "v1", func(p *models.VideoProgress) { p.Completed = true })
	require.NoError(t, err)
	_, err = s.UpdatePdf("u1", "p1", func(p *models.PdfProgress) { p.Completed = true })
	require.NoError(t, err)

	got = s.AggregateCourse(modules, "u1")
	assert.Equal(t, models.ModuleProgress{Completed: 2, Total: 5, Percent: 40}, got)

	// Aggregation never mutates state: repeat reads agree.
	assert.Equal(t, got, s.AggregateCourse(modules, "u1"))
}

func TestAggregateModuleIncludesDescendants(t *testing.T) {
	s := newTestStore(t)
	modules := courseTree()

	_, err := s.UpdateVideo("u1", "v2", func(p *models.VideoProgress) { p.Completed = true })
	require.NoError(t, err)

	got := s.AggregateModule(modules[0], "u1")
	assert.Equal(t, models.ModuleProgress{Completed: 1, Total: 3, Percent: 33}, got)
}

func TestAggregateScopedPerUser(t *testing.T) {
	s := newTestStore(t)
	modules := courseTree()

	_, err := s.UpdateVideo("u1", "v1", func(p *models.VideoProgress) { p.Completed = true })
	require.NoError(t, err)

	assert.Equal(t, 1, s.AggregateCourse(modules, "u1").Completed)
	assert.Equal(t, 0, s.AggregateCourse(modules, "u2").Completed)
}

func TestPercentRounding(t *testing.T) {
	assert.Equal(t, 0, percent(0, 0))
	assert.Equal(t, 0, percent(0, 7))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 100, percent(7, 7))
}
