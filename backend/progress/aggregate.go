package progress

import (
	"math"

	"drivestudy/backend/models"
)

// AggregateModule computes completion counts for a module and all of
// its descendants. Pure relative to the store snapshot: no mutation,
// safe to call per rendered node, linear in subtree size.
func (s *Store) AggregateModule(mod models.Module, userID string) models.ModuleProgress {
	var lessons []models.Lesson
	collectLessons(mod, &lessons)
	return s.reduce(lessons, userID)
}

// AggregateCourse computes completion across a whole module list.
func (s *Store) AggregateCourse(modules []models.Module, userID string) models.ModuleProgress {
	var lessons []models.Lesson
	for _, mod := range modules {
		collectLessons(mod, &lessons)
	}
	return s.reduce(lessons, userID)
}

func (s *Store) reduce(lessons []models.Lesson, userID string) models.ModuleProgress {
	total := len(lessons)
	completed := 0
	for _, l := range lessons {
		if s.LessonCompleted(userID, l) {
			completed++
		}
	}
	return models.ModuleProgress{
		Completed: completed,
		Total:     total,
		Percent:   percent(completed, total),
	}
}

func collectLessons(mod models.Module, acc *[]models.Lesson) {
	*acc = append(*acc, mod.Lessons...)
	for _, sub := range mod.SubModules {
		collectLessons(sub, acc)
	}
}

// percent rounds half up into [0, 100]; zero total is zero percent.
func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
