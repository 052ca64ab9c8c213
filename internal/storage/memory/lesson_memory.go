package memory

import (
	"CourseForge/internal/models"
	"context"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateLesson(ctx context.Context, l *models.CourseLesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	maxOrder := 0
	for _, existing := range s.lessons[l.CourseID] {
		if existing.LessonOrder > maxOrder {
			maxOrder = existing.LessonOrder
		}
	}
	l.LessonOrder = maxOrder + 1

	s.lessons[l.CourseID] = append(s.lessons[l.CourseID], *l)
	return nil
}

func (s *Store) LessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseLesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lessons := make([]models.CourseLesson, len(s.lessons[courseID]))
	copy(lessons, s.lessons[courseID])
	return lessons, nil
}

func (s *Store) CountLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.lessons[courseID]), nil
}
