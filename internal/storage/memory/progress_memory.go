package memory

import (
	"CourseForge/internal/models"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func (s *Store) UpsertProgress(ctx context.Context, p *models.CourseProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{p.EnrollmentID, p.LessonID}
	now := time.Now().UTC()

	if existing, ok := s.progress[key]; ok {
		p.ID = existing.ID
		p.StartedAt = existing.StartedAt
	} else {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.StartedAt.IsZero() {
			p.StartedAt = now
		}
	}
	p.UpdatedAt = now

	stored := *p
	s.progress[key] = &stored
	return nil
}

func (s *Store) ProgressRecord(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*models.CourseProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[pairKey{enrollmentID, lessonID}]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (s *Store) ProgressByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]models.CourseProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.CourseProgress
	for key, p := range s.progress {
		if key.a == enrollmentID {
			records = append(records, *p)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})
	return records, nil
}
