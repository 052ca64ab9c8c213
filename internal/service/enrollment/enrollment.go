package enrollment

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	monthlyAccessDays = 30
	yearlyAccessDays  = 365
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	CreateEnrollment(ctx context.Context, e *models.CourseEnrollment) error
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.CourseEnrollment, error)
	EnrollmentByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseEnrollment, error)
	EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseEnrollment, error)
	EnrollmentsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseEnrollment, error)
	UpdateEnrollmentStatus(ctx context.Context, id uuid.UUID, status string) error
}

type purchaseRepo interface {
	CreatePurchaseWithEnrollment(ctx context.Context, p *models.CoursePurchase, e *models.CourseEnrollment) error
	PurchasesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CoursePurchase, error)
	ActivePurchase(ctx context.Context, courseID, studentID uuid.UUID) (*models.CoursePurchase, error)
}

type EnrollmentService struct {
	log            logger.Log
	courseRepo     courseRepo
	enrollmentRepo enrollmentRepo
	purchaseRepo   purchaseRepo
}

func NewEnrollmentService(log logger.Log, courseRepo courseRepo,
	enrollmentRepo enrollmentRepo, purchaseRepo purchaseRepo,
) *EnrollmentService {
	return &EnrollmentService{
		log:            log,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		purchaseRepo:   purchaseRepo,
	}
}

// PurchaseRequest is what the student picks at checkout. DurationDays
// is only consulted for the custom pricing option.
type PurchaseRequest struct {
	CourseID     uuid.UUID
	StudentID    uuid.UUID
	Option       string
	DurationDays int
	PaymentID    string
}

// resolvePrice maps the chosen pricing option onto the course's pricing
// matrix. An option the course does not offer is invalid.
func resolvePrice(course *models.Course, option string, durationDays int) (int64, error) {
	switch option {
	case models.PricingMonthly:
		if course.Pricing.Monthly == nil {
			return 0, app_errors.ErrInvalidPricingOption
		}
		return *course.Pricing.Monthly, nil
	case models.PricingYearly:
		if course.Pricing.Yearly == nil {
			return 0, app_errors.ErrInvalidPricingOption
		}
		return *course.Pricing.Yearly, nil
	case models.PricingLifetime:
		if course.Pricing.Lifetime == nil {
			return 0, app_errors.ErrInvalidPricingOption
		}
		return *course.Pricing.Lifetime, nil
	case models.PricingCustom:
		for _, tier := range course.Pricing.Custom {
			if tier.DurationDays == durationDays {
				return tier.Price, nil
			}
		}
		return 0, app_errors.ErrInvalidPricingOption
	default:
		return 0, app_errors.ErrInvalidPricingOption
	}
}

// accessWindow computes when the purchased access expires. Nil means it
// never does.
func accessWindow(option string, durationDays int, from time.Time) *time.Time {
	var days int
	switch option {
	case models.PricingMonthly:
		days = monthlyAccessDays
	case models.PricingYearly:
		days = yearlyAccessDays
	case models.PricingLifetime:
		return nil
	case models.PricingCustom:
		if durationDays <= 0 {
			return nil
		}
		days = durationDays
	}
	ends := from.AddDate(0, 0, days)
	return &ends
}

func enrollmentOpen(course *models.Course, now time.Time) error {
	deadline := course.Availability.EnrollmentDeadline
	if deadline != nil && now.After(*deadline) {
		return app_errors.ErrEnrollmentClosed
	}
	end := course.Availability.EndDate
	if end != nil && now.After(*end) {
		return app_errors.ErrEnrollmentClosed
	}
	return nil
}

// Purchase buys access to a launched course. The purchase, the
// enrollment and the seat reservation land atomically; the access
// window is always computed server-side from the pricing option.
func (s *EnrollmentService) Purchase(ctx context.Context, req PurchaseRequest) (*models.CoursePurchase, error) {
	course, err := s.courseRepo.CourseByID(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.StatusPublished {
		return nil, app_errors.ErrCourseNotPublished
	}
	if !course.IsLaunched {
		return nil, app_errors.ErrCourseNotLaunched
	}
	now := time.Now().UTC()
	if err := enrollmentOpen(course, now); err != nil {
		return nil, err
	}

	price, err := resolvePrice(course, req.Option, req.DurationDays)
	if err != nil {
		return nil, err
	}
	if price > 0 && req.PaymentID == "" {
		return nil, app_errors.ErrPaymentRequired
	}

	purchase := &models.CoursePurchase{
		CourseID:       req.CourseID,
		StudentID:      req.StudentID,
		PricingOption:  req.Option,
		PricePaid:      price,
		Currency:       course.Currency,
		PaymentID:      req.PaymentID,
		AccessStartsAt: now,
		AccessEndsAt:   accessWindow(req.Option, req.DurationDays, now),
		IsActive:       true,
	}
	// The payment reference stays on the purchase record only; access
	// expiry is judged from there, not from the enrollment.
	enrollment := &models.CourseEnrollment{
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		Status:    models.EnrollmentActive,
	}

	if err := s.purchaseRepo.CreatePurchaseWithEnrollment(ctx, purchase, enrollment); err != nil {
		return nil, err
	}
	s.log.Info("course purchased",
		"course_id", req.CourseID.String(),
		"student_id", req.StudentID.String(),
		"option", req.Option,
	)
	return purchase, nil
}

// Enroll joins a published course directly. Paid courses demand a
// payment reference; the richer purchase flow handles access windows.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID, studentID uuid.UUID, paymentID string) (*models.CourseEnrollment, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.StatusPublished {
		return nil, app_errors.ErrCourseNotPublished
	}
	if err := enrollmentOpen(course, time.Now().UTC()); err != nil {
		return nil, err
	}
	if !course.IsFree && paymentID == "" {
		return nil, app_errors.ErrPaymentRequired
	}

	enrollment := &models.CourseEnrollment{
		CourseID:  courseID,
		StudentID: studentID,
		Status:    models.EnrollmentActive,
		PaymentID: paymentID,
	}
	if err := s.enrollmentRepo.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// HasAccess reports whether the student can open course content right
// now. Free courses only need a live enrollment. Paid access comes from
// an unexpired purchase; an enrollment-level payment reference only
// exists on direct paid enrollments, which carry no expiry window.
func (s *EnrollmentService) HasAccess(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	enrollment, err := s.enrollmentRepo.EnrollmentByCourseStudent(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, app_errors.ErrEnrollmentNotFound) {
			return false, nil
		}
		return false, err
	}
	if enrollment.Status != models.EnrollmentActive && enrollment.Status != models.EnrollmentCompleted {
		return false, nil
	}

	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return false, err
	}
	if course.IsFree {
		return true, nil
	}

	purchase, err := s.purchaseRepo.ActivePurchase(ctx, courseID, studentID)
	if err != nil {
		return false, err
	}
	if purchase != nil {
		return true, nil
	}
	return enrollment.PaymentID != "", nil
}

func (s *EnrollmentService) MyEnrollments(ctx context.Context, studentID uuid.UUID) ([]models.CourseEnrollment, error) {
	return s.enrollmentRepo.EnrollmentsByStudent(ctx, studentID)
}

func (s *EnrollmentService) CourseEnrollments(ctx context.Context, courseID, requesterID uuid.UUID) ([]models.CourseEnrollment, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != requesterID {
		return nil, app_errors.ErrNotCourseOwner
	}
	return s.enrollmentRepo.EnrollmentsByCourse(ctx, courseID)
}

func (s *EnrollmentService) Drop(ctx context.Context, enrollmentID, studentID uuid.UUID) error {
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.StudentID != studentID {
		return app_errors.ErrEnrollmentNotFound
	}
	if enrollment.Status != models.EnrollmentActive {
		return app_errors.ErrEnrollmentNotActive
	}
	return s.enrollmentRepo.UpdateEnrollmentStatus(ctx, enrollmentID, models.EnrollmentDropped)
}

func (s *EnrollmentService) Suspend(ctx context.Context, enrollmentID uuid.UUID) error {
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.Status != models.EnrollmentActive {
		return app_errors.ErrEnrollmentNotActive
	}
	return s.enrollmentRepo.UpdateEnrollmentStatus(ctx, enrollmentID, models.EnrollmentSuspended)
}

func (s *EnrollmentService) Reactivate(ctx context.Context, enrollmentID uuid.UUID) error {
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if enrollment.Status != models.EnrollmentSuspended && enrollment.Status != models.EnrollmentDropped {
		return app_errors.ErrEnrollmentNotActive
	}
	return s.enrollmentRepo.UpdateEnrollmentStatus(ctx, enrollmentID, models.EnrollmentActive)
}

func (s *EnrollmentService) StudentPurchases(ctx context.Context, studentID uuid.UUID) ([]models.CoursePurchase, error) {
	return s.purchaseRepo.PurchasesByStudent(ctx, studentID)
}
