package memory

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// createEnrollmentLocked applies the same guards as the postgres
// transaction: cap check first, then the (course, student) uniqueness
// constraint. Callers must hold the write lock.
func (s *Store) createEnrollmentLocked(e *models.CourseEnrollment) error {
	course, ok := s.courses[e.CourseID]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	if course.Availability.MaxEnrollments > 0 &&
		course.Availability.CurrentEnrollments >= course.Availability.MaxEnrollments {
		return app_errors.ErrCourseFull
	}

	key := pairKey{e.CourseID, e.StudentID}
	if _, exists := s.enrollmentKeys[key]; exists {
		return app_errors.ErrAlreadyEnrolled
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.EnrolledAt = now
	e.UpdatedAt = now

	course.Availability.CurrentEnrollments++
	course.EnrollmentCount++
	course.UpdatedAt = now

	stored := *e
	s.enrollments[e.ID] = &stored
	s.enrollmentKeys[key] = e.ID
	return nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e *models.CourseEnrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEnrollmentLocked(e)
}

func (s *Store) EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.CourseEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.enrollments[id]
	if !ok {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	out := *e
	return &out, nil
}

func (s *Store) EnrollmentByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.enrollmentKeys[pairKey{courseID, studentID}]
	if !ok {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	out := *s.enrollments[id]
	return &out, nil
}

func sortEnrollments(enrollments []models.CourseEnrollment) {
	sort.SliceStable(enrollments, func(i, j int) bool {
		return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt)
	})
}

func (s *Store) EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var enrollments []models.CourseEnrollment
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			enrollments = append(enrollments, *e)
		}
	}
	sortEnrollments(enrollments)
	return enrollments, nil
}

func (s *Store) EnrollmentsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var enrollments []models.CourseEnrollment
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			enrollments = append(enrollments, *e)
		}
	}
	sortEnrollments(enrollments)
	return enrollments, nil
}

func (s *Store) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (s *Store) UpdateEnrollmentStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[id]
	if !ok {
		return app_errors.ErrEnrollmentNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) SetEnrollmentProgress(ctx context.Context, id uuid.UUID, progress float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[id]
	if !ok {
		return app_errors.ErrEnrollmentNotFound
	}
	e.Progress = progress
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) CompleteEnrollment(ctx context.Context, enrollmentID, courseID uuid.UUID, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return app_errors.ErrEnrollmentNotFound
	}
	e.Status = models.EnrollmentCompleted
	e.Progress = 100
	e.CompletedAt = &completedAt
	e.UpdatedAt = time.Now().UTC()

	if course, ok := s.courses[courseID]; ok {
		course.CompletionCount++
		course.UpdatedAt = e.UpdatedAt
	}
	return nil
}

func (s *Store) MarkCertificateIssued(ctx context.Context, enrollmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return app_errors.ErrEnrollmentNotFound
	}
	e.CertificateIssued = true
	e.UpdatedAt = time.Now().UTC()
	return nil
}
