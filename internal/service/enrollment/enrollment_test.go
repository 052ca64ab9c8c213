package enrollment

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/storage/memory"
	"CourseForge/pkg/logger"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService() (*EnrollmentService, *memory.Store) {
	store := memory.NewStore()
	svc := NewEnrollmentService(logger.NewDiscard(), store, store, store)
	return svc, store
}

func int64Ptr(v int64) *int64 { return &v }

// seedCourse plants a launched, purchasable course straight into the
// store.
func seedCourse(t *testing.T, store *memory.Store, mutate func(*models.Course)) uuid.UUID {
	t.Helper()
	course := &models.Course{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		Title:      "Seeded Course",
		Price:      4900,
		Currency:   "USD",
		Status:     models.StatusPublished,
		IsLaunched: true,
		Pricing: models.PricingOptions{
			Monthly:  int64Ptr(4900),
			Yearly:   int64Ptr(49000),
			Lifetime: int64Ptr(98000),
			Custom: []models.CustomPricingTier{
				{DurationDays: 45, Price: 6900},
				{DurationDays: 0, Price: 120000},
			},
		},
	}
	course.Slug = course.ID.String()
	if mutate != nil {
		mutate(course)
	}
	if _, err := store.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	return course.ID
}

func daysUntil(t *testing.T, from time.Time, until *time.Time) int {
	t.Helper()
	if until == nil {
		t.Fatal("access window is unlimited")
	}
	return int(until.Sub(from).Hours() / 24)
}

func TestPurchaseAccessWindows(t *testing.T) {
	cases := []struct {
		name         string
		option       string
		durationDays int
		wantDays     int
		unlimited    bool
		wantPrice    int64
	}{
		{name: "monthly", option: models.PricingMonthly, wantDays: 30, wantPrice: 4900},
		{name: "yearly", option: models.PricingYearly, wantDays: 365, wantPrice: 49000},
		{name: "lifetime", option: models.PricingLifetime, unlimited: true, wantPrice: 98000},
		{name: "custom 45d", option: models.PricingCustom, durationDays: 45, wantDays: 45, wantPrice: 6900},
		{name: "custom open-ended", option: models.PricingCustom, durationDays: 0, unlimited: true, wantPrice: 120000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService()
			courseID := seedCourse(t, store, nil)

			purchase, err := svc.Purchase(context.Background(), PurchaseRequest{
				CourseID:     courseID,
				StudentID:    uuid.New(),
				Option:       tc.option,
				DurationDays: tc.durationDays,
				PaymentID:    "pay_123",
			})
			if err != nil {
				t.Fatalf("Purchase: %v", err)
			}
			if purchase.PricePaid != tc.wantPrice {
				t.Errorf("price paid = %d, want %d", purchase.PricePaid, tc.wantPrice)
			}
			if tc.unlimited {
				if purchase.AccessEndsAt != nil {
					t.Errorf("access ends at %v, want unlimited", purchase.AccessEndsAt)
				}
				return
			}
			if got := daysUntil(t, purchase.AccessStartsAt, purchase.AccessEndsAt); got != tc.wantDays {
				t.Errorf("access window = %d days, want %d", got, tc.wantDays)
			}
		})
	}
}

func TestPurchaseStateGuards(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	draft := seedCourse(t, store, func(c *models.Course) { c.Status = models.StatusDraft })
	_, err := svc.Purchase(ctx, PurchaseRequest{CourseID: draft, StudentID: uuid.New(), Option: models.PricingMonthly, PaymentID: "pay_1"})
	if !errors.Is(err, app_errors.ErrCourseNotPublished) {
		t.Errorf("draft purchase: %v, want ErrCourseNotPublished", err)
	}

	unlaunched := seedCourse(t, store, func(c *models.Course) { c.IsLaunched = false })
	_, err = svc.Purchase(ctx, PurchaseRequest{CourseID: unlaunched, StudentID: uuid.New(), Option: models.PricingMonthly, PaymentID: "pay_1"})
	if !errors.Is(err, app_errors.ErrCourseNotLaunched) {
		t.Errorf("unlaunched purchase: %v, want ErrCourseNotLaunched", err)
	}

	past := time.Now().UTC().Add(-time.Hour)
	closed := seedCourse(t, store, func(c *models.Course) { c.Availability.EnrollmentDeadline = &past })
	_, err = svc.Purchase(ctx, PurchaseRequest{CourseID: closed, StudentID: uuid.New(), Option: models.PricingMonthly, PaymentID: "pay_1"})
	if !errors.Is(err, app_errors.ErrEnrollmentClosed) {
		t.Errorf("past deadline purchase: %v, want ErrEnrollmentClosed", err)
	}
}

func TestPurchasePaymentRequired(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, nil)

	_, err := svc.Purchase(ctx, PurchaseRequest{CourseID: courseID, StudentID: uuid.New(), Option: models.PricingMonthly})
	if !errors.Is(err, app_errors.ErrPaymentRequired) {
		t.Fatalf("unpaid purchase: %v, want ErrPaymentRequired", err)
	}

	freeID := seedCourse(t, store, func(c *models.Course) {
		c.Price = 0
		c.IsFree = true
		c.Pricing = models.PricingOptions{Monthly: int64Ptr(0)}
	})
	if _, err := svc.Purchase(ctx, PurchaseRequest{CourseID: freeID, StudentID: uuid.New(), Option: models.PricingMonthly}); err != nil {
		t.Fatalf("free purchase: %v", err)
	}
}

func TestPurchaseInvalidOption(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, nil)

	_, err := svc.Purchase(ctx, PurchaseRequest{CourseID: courseID, StudentID: uuid.New(), Option: "weekly", PaymentID: "pay_1"})
	if !errors.Is(err, app_errors.ErrInvalidPricingOption) {
		t.Errorf("unknown option: %v, want ErrInvalidPricingOption", err)
	}

	_, err = svc.Purchase(ctx, PurchaseRequest{CourseID: courseID, StudentID: uuid.New(), Option: models.PricingCustom, DurationDays: 7, PaymentID: "pay_1"})
	if !errors.Is(err, app_errors.ErrInvalidPricingOption) {
		t.Errorf("unmatched custom tier: %v, want ErrInvalidPricingOption", err)
	}

	noLifetime := seedCourse(t, store, func(c *models.Course) { c.Pricing.Lifetime = nil })
	_, err = svc.Purchase(ctx, PurchaseRequest{CourseID: noLifetime, StudentID: uuid.New(), Option: models.PricingLifetime, PaymentID: "pay_1"})
	if !errors.Is(err, app_errors.ErrInvalidPricingOption) {
		t.Errorf("absent lifetime option: %v, want ErrInvalidPricingOption", err)
	}
}

func TestDuplicateEnrollmentRevertsPurchase(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, nil)
	student := uuid.New()

	if _, err := svc.Enroll(ctx, courseID, student, "pay_1"); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := svc.Enroll(ctx, courseID, student, "pay_2"); !errors.Is(err, app_errors.ErrAlreadyEnrolled) {
		t.Fatalf("second enroll: %v, want ErrAlreadyEnrolled", err)
	}

	_, err := svc.Purchase(ctx, PurchaseRequest{CourseID: courseID, StudentID: student, Option: models.PricingMonthly, PaymentID: "pay_3"})
	if !errors.Is(err, app_errors.ErrAlreadyEnrolled) {
		t.Fatalf("purchase while enrolled: %v, want ErrAlreadyEnrolled", err)
	}
	purchases, err := svc.StudentPurchases(ctx, student)
	if err != nil {
		t.Fatalf("StudentPurchases: %v", err)
	}
	if len(purchases) != 0 {
		t.Fatalf("rejected purchase was recorded: %d", len(purchases))
	}
}

func TestEnrollmentCap(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, func(c *models.Course) { c.Availability.MaxEnrollments = 1 })

	if _, err := svc.Enroll(ctx, courseID, uuid.New(), "pay_1"); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if _, err := svc.Enroll(ctx, courseID, uuid.New(), "pay_2"); !errors.Is(err, app_errors.ErrCourseFull) {
		t.Fatalf("second enroll: %v, want ErrCourseFull", err)
	}
}

func TestConcurrentPurchaseSingleSeat(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, func(c *models.Course) { c.Availability.MaxEnrollments = 1 })

	const students = 8
	errs := make([]error, students)
	var wg sync.WaitGroup
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(ctx, PurchaseRequest{
				CourseID:  courseID,
				StudentID: uuid.New(),
				Option:    models.PricingLifetime,
				PaymentID: "pay_race",
			})
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, app_errors.ErrCourseFull):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}

	course, err := store.CourseByID(ctx, courseID)
	if err != nil {
		t.Fatalf("CourseByID: %v", err)
	}
	if course.Availability.CurrentEnrollments != 1 || course.EnrollmentCount != 1 {
		t.Fatalf("counters = %d/%d, want 1/1",
			course.Availability.CurrentEnrollments, course.EnrollmentCount)
	}
}

func TestHasAccess(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	freeID := seedCourse(t, store, func(c *models.Course) {
		c.Price = 0
		c.IsFree = true
	})
	student := uuid.New()
	if ok, err := svc.HasAccess(ctx, freeID, student); err != nil || ok {
		t.Fatalf("access without enrollment = %v, %v", ok, err)
	}
	if _, err := svc.Enroll(ctx, freeID, student, ""); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if ok, err := svc.HasAccess(ctx, freeID, student); err != nil || !ok {
		t.Fatalf("free course access = %v, %v, want true", ok, err)
	}

	paidID := seedCourse(t, store, nil)
	if _, err := svc.Purchase(ctx, PurchaseRequest{CourseID: paidID, StudentID: student, Option: models.PricingMonthly, PaymentID: "pay_1"}); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if ok, err := svc.HasAccess(ctx, paidID, student); err != nil || !ok {
		t.Fatalf("purchased access = %v, %v, want true", ok, err)
	}
}

func TestPurchaseKeepsPaymentOnPurchaseRecord(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, nil)
	student := uuid.New()

	purchase, err := svc.Purchase(ctx, PurchaseRequest{
		CourseID:  courseID,
		StudentID: student,
		Option:    models.PricingMonthly,
		PaymentID: "pay_1",
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if purchase.PaymentID != "pay_1" {
		t.Errorf("purchase payment = %q, want pay_1", purchase.PaymentID)
	}

	enrollment, err := store.EnrollmentByCourseStudent(ctx, courseID, student)
	if err != nil {
		t.Fatalf("EnrollmentByCourseStudent: %v", err)
	}
	if enrollment.PaymentID != "" {
		t.Fatalf("enrollment payment = %q, the reference belongs on the purchase", enrollment.PaymentID)
	}
	if ok, err := svc.HasAccess(ctx, courseID, student); err != nil || !ok {
		t.Fatalf("fresh purchase access = %v, %v, want true", ok, err)
	}
}

func TestHasAccessExpiredPurchase(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, nil)
	student := uuid.New()

	// The same record shapes Purchase writes, with the access window
	// already behind us.
	ended := time.Now().UTC().Add(-time.Hour)
	err := store.CreatePurchaseWithEnrollment(ctx,
		&models.CoursePurchase{
			CourseID:       courseID,
			StudentID:      student,
			PricingOption:  models.PricingMonthly,
			PricePaid:      4900,
			Currency:       "USD",
			PaymentID:      "pay_1",
			AccessStartsAt: ended.AddDate(0, 0, -monthlyAccessDays),
			AccessEndsAt:   &ended,
			IsActive:       true,
		},
		&models.CourseEnrollment{CourseID: courseID, StudentID: student, Status: models.EnrollmentActive},
	)
	if err != nil {
		t.Fatalf("CreatePurchaseWithEnrollment: %v", err)
	}

	if ok, err := svc.HasAccess(ctx, courseID, student); err != nil || ok {
		t.Fatalf("expired access = %v, %v, want false", ok, err)
	}
}

func TestDropSuspendReactivate(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, func(c *models.Course) {
		c.Price = 0
		c.IsFree = true
	})
	student := uuid.New()

	enrollment, err := svc.Enroll(ctx, courseID, student, "")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if err := svc.Drop(ctx, enrollment.ID, uuid.New()); !errors.Is(err, app_errors.ErrEnrollmentNotFound) {
		t.Errorf("drop by stranger: %v, want ErrEnrollmentNotFound", err)
	}
	if err := svc.Drop(ctx, enrollment.ID, student); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if err := svc.Drop(ctx, enrollment.ID, student); !errors.Is(err, app_errors.ErrEnrollmentNotActive) {
		t.Errorf("second drop: %v, want ErrEnrollmentNotActive", err)
	}

	if err := svc.Reactivate(ctx, enrollment.ID); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if err := svc.Suspend(ctx, enrollment.ID); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	stored, _ := store.EnrollmentByID(ctx, enrollment.ID)
	if stored.Status != models.EnrollmentSuspended {
		t.Fatalf("status = %q, want suspended", stored.Status)
	}
	if err := svc.Suspend(ctx, enrollment.ID); !errors.Is(err, app_errors.ErrEnrollmentNotActive) {
		t.Errorf("double suspend: %v, want ErrEnrollmentNotActive", err)
	}
}

func TestCourseEnrollmentsOwnerOnly(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	owner := uuid.New()
	courseID := seedCourse(t, store, func(c *models.Course) {
		c.OwnerID = owner
		c.Price = 0
		c.IsFree = true
	})

	if _, err := svc.Enroll(ctx, courseID, uuid.New(), ""); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if _, err := svc.CourseEnrollments(ctx, courseID, uuid.New()); !errors.Is(err, app_errors.ErrNotCourseOwner) {
		t.Fatalf("stranger listing: %v, want ErrNotCourseOwner", err)
	}
	list, err := svc.CourseEnrollments(ctx, courseID, owner)
	if err != nil {
		t.Fatalf("CourseEnrollments: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("enrollments = %d, want 1", len(list))
	}
}
