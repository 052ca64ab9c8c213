package memory

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateReview(ctx context.Context, rv *models.CourseReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{rv.CourseID, rv.StudentID}
	if _, exists := s.reviewKeys[key]; exists {
		return app_errors.ErrAlreadyReviewed
	}

	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	now := time.Now().UTC()
	rv.CreatedAt = now
	rv.UpdatedAt = now

	stored := *rv
	s.reviews[rv.ID] = &stored
	s.reviewKeys[key] = rv.ID

	if course, ok := s.courses[rv.CourseID]; ok {
		n := float64(course.RatingCount)
		course.AverageRating = (course.AverageRating*n + float64(rv.Rating)) / (n + 1)
		course.RatingCount++
		course.ReviewCount++
		course.UpdatedAt = now
	}
	return nil
}

func (s *Store) ReviewsByCourse(ctx context.Context, courseID uuid.UUID, page, limit int, sortBy string) ([]models.CourseReview, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reviews []models.CourseReview
	for _, rv := range s.reviews {
		if rv.CourseID == courseID {
			reviews = append(reviews, *rv)
		}
	}

	if sortBy == models.ReviewSortHelpful {
		sort.SliceStable(reviews, func(i, j int) bool {
			if reviews[i].HelpfulCount != reviews[j].HelpfulCount {
				return reviews[i].HelpfulCount > reviews[j].HelpfulCount
			}
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		})
	} else {
		sort.SliceStable(reviews, func(i, j int) bool {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		})
	}

	total := len(reviews)
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(reviews) {
		return []models.CourseReview{}, total, nil
	}
	end := offset + limit
	if end > len(reviews) {
		end = len(reviews)
	}
	return reviews[offset:end], total, nil
}

func (s *Store) IncrementHelpful(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rv, ok := s.reviews[id]
	if !ok {
		return app_errors.ErrReviewNotFound
	}
	rv.HelpfulCount++
	rv.UpdatedAt = time.Now().UTC()
	return nil
}
