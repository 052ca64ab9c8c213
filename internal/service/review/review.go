package review

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"

	"github.com/google/uuid"
)

type enrollmentRepo interface {
	EnrollmentByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseEnrollment, error)
}

type reviewRepo interface {
	CreateReview(ctx context.Context, rv *models.CourseReview) error
	ReviewsByCourse(ctx context.Context, courseID uuid.UUID, page, limit int, sort string) ([]models.CourseReview, int, error)
	IncrementHelpful(ctx context.Context, id uuid.UUID) error
}

type ReviewService struct {
	log            logger.Log
	enrollmentRepo enrollmentRepo
	reviewRepo     reviewRepo
}

func NewReviewService(log logger.Log, enrollmentRepo enrollmentRepo, reviewRepo reviewRepo) *ReviewService {
	return &ReviewService{log: log, enrollmentRepo: enrollmentRepo, reviewRepo: reviewRepo}
}

// AddReview only accepts reviews from students who completed the
// course. The course's rating aggregates move with the insert.
func (s *ReviewService) AddReview(ctx context.Context, review models.CourseReview) (*models.CourseReview, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, app_errors.ErrInvalidRating
	}

	enrollment, err := s.enrollmentRepo.EnrollmentByCourseStudent(ctx, review.CourseID, review.StudentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentCompleted {
		return nil, app_errors.ErrEnrollmentNotCompleted
	}

	review.HelpfulCount = 0
	if err := s.reviewRepo.CreateReview(ctx, &review); err != nil {
		return nil, err
	}
	s.log.Info("review added",
		"course_id", review.CourseID.String(),
		"student_id", review.StudentID.String(),
		"rating", review.Rating,
	)
	return &review, nil
}

func (s *ReviewService) CourseReviews(ctx context.Context, courseID uuid.UUID, page, limit int, sort string) ([]models.CourseReview, int, error) {
	return s.reviewRepo.ReviewsByCourse(ctx, courseID, page, limit, sort)
}

func (s *ReviewService) MarkHelpful(ctx context.Context, reviewID uuid.UUID) error {
	return s.reviewRepo.IncrementHelpful(ctx, reviewID)
}
