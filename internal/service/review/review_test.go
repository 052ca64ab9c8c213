package review

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/storage/memory"
	"CourseForge/pkg/logger"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newTestService() (*ReviewService, *memory.Store) {
	store := memory.NewStore()
	return NewReviewService(logger.NewDiscard(), store, store), store
}

func seedCourse(t *testing.T, store *memory.Store) uuid.UUID {
	t.Helper()
	course := &models.Course{ID: uuid.New(), Slug: uuid.NewString(), Status: models.StatusPublished}
	if _, err := store.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	return course.ID
}

func enroll(t *testing.T, store *memory.Store, courseID uuid.UUID, status string) uuid.UUID {
	t.Helper()
	student := uuid.New()
	err := store.CreateEnrollment(context.Background(), &models.CourseEnrollment{
		CourseID:  courseID,
		StudentID: student,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment: %v", err)
	}
	return student
}

func TestAddReviewRequiresCompletion(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store)

	_, err := svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: uuid.New(), Rating: 5})
	if !errors.Is(err, app_errors.ErrEnrollmentNotFound) {
		t.Errorf("review without enrollment: %v, want ErrEnrollmentNotFound", err)
	}

	active := enroll(t, store, courseID, models.EnrollmentActive)
	_, err = svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: active, Rating: 5})
	if !errors.Is(err, app_errors.ErrEnrollmentNotCompleted) {
		t.Errorf("review mid-course: %v, want ErrEnrollmentNotCompleted", err)
	}

	done := enroll(t, store, courseID, models.EnrollmentCompleted)
	review, err := svc.AddReview(ctx, models.CourseReview{
		CourseID:     courseID,
		StudentID:    done,
		Rating:       4,
		Comment:      "solid material",
		HelpfulCount: 99,
	})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if review.HelpfulCount != 0 {
		t.Errorf("helpful count = %d, must start at 0", review.HelpfulCount)
	}
}

func TestAddReviewInvalidRating(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store)
	student := enroll(t, store, courseID, models.EnrollmentCompleted)

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: student, Rating: rating})
		if !errors.Is(err, app_errors.ErrInvalidRating) {
			t.Errorf("rating %d: %v, want ErrInvalidRating", rating, err)
		}
	}
}

func TestAddReviewOncePerStudent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store)
	student := enroll(t, store, courseID, models.EnrollmentCompleted)

	if _, err := svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: student, Rating: 5}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	_, err := svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: student, Rating: 3})
	if !errors.Is(err, app_errors.ErrAlreadyReviewed) {
		t.Fatalf("second review: %v, want ErrAlreadyReviewed", err)
	}
}

func TestRatingAggregates(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store)

	for _, rating := range []int{5, 4, 3} {
		student := enroll(t, store, courseID, models.EnrollmentCompleted)
		if _, err := svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: student, Rating: rating}); err != nil {
			t.Fatalf("AddReview(%d): %v", rating, err)
		}
	}

	course, err := store.CourseByID(ctx, courseID)
	if err != nil {
		t.Fatalf("CourseByID: %v", err)
	}
	if course.RatingCount != 3 || course.ReviewCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", course.RatingCount, course.ReviewCount)
	}
	if course.AverageRating != 4 {
		t.Errorf("average = %v, want 4", course.AverageRating)
	}
}

func TestMarkHelpfulAndSorting(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store)

	first := enroll(t, store, courseID, models.EnrollmentCompleted)
	second := enroll(t, store, courseID, models.EnrollmentCompleted)
	r1, err := svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: first, Rating: 5})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if _, err := svc.AddReview(ctx, models.CourseReview{CourseID: courseID, StudentID: second, Rating: 2}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}

	if err := svc.MarkHelpful(ctx, r1.ID); err != nil {
		t.Fatalf("MarkHelpful: %v", err)
	}
	if err := svc.MarkHelpful(ctx, uuid.New()); !errors.Is(err, app_errors.ErrReviewNotFound) {
		t.Errorf("unknown review: %v, want ErrReviewNotFound", err)
	}

	reviews, total, err := svc.CourseReviews(ctx, courseID, 1, 10, models.ReviewSortHelpful)
	if err != nil {
		t.Fatalf("CourseReviews: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if reviews[0].ID != r1.ID || reviews[0].HelpfulCount != 1 {
		t.Fatalf("helpful review not first: %+v", reviews[0])
	}
}
