package memory

import (
	"CourseForge/internal/models"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// CreatePurchaseWithEnrollment is atomic under the store lock: when the
// enrollment is rejected (full course, duplicate student) no purchase is
// recorded.
func (s *Store) CreatePurchaseWithEnrollment(ctx context.Context, p *models.CoursePurchase, e *models.CourseEnrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.createEnrollmentLocked(e); err != nil {
		return err
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()

	stored := *p
	s.purchases[p.ID] = &stored
	return nil
}

func (s *Store) PurchasesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CoursePurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var purchases []models.CoursePurchase
	for _, p := range s.purchases {
		if p.StudentID == studentID {
			purchases = append(purchases, *p)
		}
	}
	sort.SliceStable(purchases, func(i, j int) bool {
		return purchases[i].CreatedAt.After(purchases[j].CreatedAt)
	})
	return purchases, nil
}

func (s *Store) RevenueByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var revenue int64
	for _, p := range s.purchases {
		course, ok := s.courses[p.CourseID]
		if ok && course.OwnerID == ownerID {
			revenue += p.PricePaid
		}
	}
	return revenue, nil
}

func (s *Store) ActivePurchase(ctx context.Context, courseID, studentID uuid.UUID) (*models.CoursePurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	var newest *models.CoursePurchase
	for _, p := range s.purchases {
		if p.CourseID != courseID || p.StudentID != studentID || !p.IsActive {
			continue
		}
		if p.AccessEndsAt != nil && !p.AccessEndsAt.After(now) {
			continue
		}
		if newest == nil || p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
	}
	if newest == nil {
		return nil, nil
	}
	out := *newest
	return &out, nil
}
