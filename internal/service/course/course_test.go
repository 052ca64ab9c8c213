package course

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/storage/memory"
	"CourseForge/pkg/logger"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
)

type searchStub struct {
	ids     []uuid.UUID
	err     error
	indexed map[uuid.UUID]bool
}

func (s *searchStub) Index(ctx context.Context, course models.Course) error {
	s.indexed[course.ID] = true
	return nil
}

func (s *searchStub) Update(ctx context.Context, course models.Course) error { return nil }

func (s *searchStub) Search(ctx context.Context, query string, size int) ([]uuid.UUID, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

func (s *searchStub) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.indexed, id)
	return nil
}

type thumbStub struct{}

func (t *thumbStub) UploadThumbnail(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return "courses/" + courseID.String() + "/thumbnail.png", nil
}

func (t *thumbStub) ThumbnailURL(ctx context.Context, objectKey string) (string, error) {
	return "http://storage.local/" + objectKey, nil
}

func (t *thumbStub) DeleteThumbnail(ctx context.Context, objectKey string) error { return nil }

func newTestService() (*CourseService, *memory.Store, *searchStub) {
	store := memory.NewStore()
	search := &searchStub{indexed: map[uuid.UUID]bool{}}
	svc := NewCourseService(logger.NewDiscard(), store, store, store, store, search, &thumbStub{})
	return svc, store, search
}

func completeCourse(title string) models.Course {
	return models.Course{
		Title:       title,
		Description: "A long-form description of the material.",
		Category:    "engineering",
		Level:       "beginner",
		Language:    "en",
		Objectives:  []string{"learn the basics"},
		Duration:    120,
		Price:       4900,
	}
}

// readyCourse drives a course through create, lesson, submit and
// approve so it ends up published.
func readyCourse(t *testing.T, svc *CourseService, owner uuid.UUID, title string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id, err := svc.Create(ctx, completeCourse(title), owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddLesson(ctx, id, owner, models.CourseLesson{Title: "Intro", IsRequired: true}); err != nil {
		t.Fatalf("AddLesson: %v", err)
	}
	if err := svc.SubmitForApproval(ctx, id, owner); err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}
	if err := svc.Approve(ctx, id, uuid.New()); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return id
}

func TestCreateForcesDraftState(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	course := completeCourse("Go From Scratch")
	course.Status = models.StatusPublished
	course.IsLaunched = true
	course.Featured = true
	course.EnrollmentCount = 500
	course.AverageRating = 4.9

	id, err := svc.Create(ctx, course, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := store.CourseByID(ctx, id)
	if err != nil {
		t.Fatalf("CourseByID: %v", err)
	}
	if stored.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", stored.Status)
	}
	if stored.IsLaunched || stored.Featured {
		t.Error("launch state and shelf flags must not come from the caller")
	}
	if stored.EnrollmentCount != 0 || stored.AverageRating != 0 {
		t.Error("aggregates must start at zero")
	}
	if stored.Slug != "go-from-scratch" {
		t.Errorf("slug = %q, want go-from-scratch", stored.Slug)
	}
	if stored.Currency != "USD" {
		t.Errorf("currency = %q, want USD", stored.Currency)
	}
}

func TestCreatePricingDefaults(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, completeCourse("Paid Course"), uuid.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored, _ := store.CourseByID(ctx, id)
	if stored.IsFree {
		t.Fatal("priced course marked free")
	}
	if stored.Pricing.Monthly == nil || *stored.Pricing.Monthly != 4900 {
		t.Errorf("monthly = %v, want 4900", stored.Pricing.Monthly)
	}
	if stored.Pricing.Yearly == nil || *stored.Pricing.Yearly != 49000 {
		t.Errorf("yearly = %v, want 49000", stored.Pricing.Yearly)
	}
	if stored.Pricing.Lifetime == nil || *stored.Pricing.Lifetime != 98000 {
		t.Errorf("lifetime = %v, want 98000", stored.Pricing.Lifetime)
	}

	free := completeCourse("Free Course")
	free.Price = 0
	freeID, err := svc.Create(ctx, free, uuid.New())
	if err != nil {
		t.Fatalf("Create free: %v", err)
	}
	stored, _ = store.CourseByID(ctx, freeID)
	if !stored.IsFree {
		t.Error("zero price course not marked free")
	}
	if stored.Pricing.Monthly != nil {
		t.Error("free course must not grow pricing options")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Go From Scratch", "go-from-scratch"},
		{"  C++ & Rust!  ", "c-rust"},
		{"already-a-slug", "already-a-slug"},
		{"100 Days of Code", "100-days-of-code"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateSlugConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, completeCourse("Same Title"), uuid.New()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, completeCourse("Same Title"), uuid.New())
	if !errors.Is(err, app_errors.ErrSlugTaken) {
		t.Fatalf("err = %v, want ErrSlugTaken", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	id, err := svc.Create(ctx, models.Course{Title: "Bare Draft", Price: 100}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = svc.SubmitForApproval(ctx, id, owner)
	var vErr *app_errors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	missing := map[string]bool{}
	for _, f := range vErr.MissingFields {
		missing[f] = true
	}
	for _, want := range []string{"description", "category", "level", "language", "objectives", "duration", "lessons"} {
		if !missing[want] {
			t.Errorf("missing fields lack %q: %v", want, vErr.MissingFields)
		}
	}
	if missing["title"] || missing["price"] {
		t.Errorf("title and price are set, got %v", vErr.MissingFields)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	svc, store, search := newTestService()
	ctx := context.Background()
	owner := uuid.New()
	admin := uuid.New()

	id, err := svc.Create(ctx, completeCourse("Lifecycle"), owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddLesson(ctx, id, owner, models.CourseLesson{Title: "Intro"}); err != nil {
		t.Fatalf("AddLesson: %v", err)
	}

	if err := svc.SubmitForApproval(ctx, id, owner); err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}
	c, _ := store.CourseByID(ctx, id)
	if c.Status != models.StatusPending || c.SubmittedAt == nil {
		t.Fatalf("after submit: status %q, submitted_at %v", c.Status, c.SubmittedAt)
	}

	if err := svc.Approve(ctx, id, admin); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	c, _ = store.CourseByID(ctx, id)
	if c.Status != models.StatusPublished {
		t.Fatalf("after approve: status %q", c.Status)
	}
	if c.ApprovedBy == nil || *c.ApprovedBy != admin || c.ApprovedAt == nil || c.PublishedAt == nil {
		t.Error("approval stamps missing")
	}
	if !search.indexed[id] {
		t.Error("approved course not indexed")
	}

	if err := svc.Launch(ctx, id, owner); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	c, _ = store.CourseByID(ctx, id)
	if !c.IsLaunched || c.LaunchDate == nil {
		t.Error("launch state missing")
	}
	// Launching twice is a no-op.
	if err := svc.Launch(ctx, id, owner); err != nil {
		t.Fatalf("second Launch: %v", err)
	}

	if err := svc.Archive(ctx, id, owner); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	c, _ = store.CourseByID(ctx, id)
	if c.Status != models.StatusArchived || c.IsLaunched {
		t.Fatalf("after archive: status %q, launched %v", c.Status, c.IsLaunched)
	}
	if search.indexed[id] {
		t.Error("archived course still indexed")
	}
}

func TestLifecycleGuards(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()
	admin := uuid.New()

	id, _ := svc.Create(ctx, completeCourse("Guarded"), owner)
	if _, err := svc.AddLesson(ctx, id, owner, models.CourseLesson{Title: "L1"}); err != nil {
		t.Fatalf("AddLesson: %v", err)
	}

	if err := svc.Approve(ctx, id, admin); !errors.Is(err, app_errors.ErrCourseNotPending) {
		t.Errorf("approving a draft: %v, want ErrCourseNotPending", err)
	}
	if err := svc.Launch(ctx, id, owner); !errors.Is(err, app_errors.ErrCourseNotPublished) {
		t.Errorf("launching a draft: %v, want ErrCourseNotPublished", err)
	}
	if err := svc.SubmitForApproval(ctx, id, uuid.New()); !errors.Is(err, app_errors.ErrNotCourseOwner) {
		t.Errorf("submit by stranger: %v, want ErrNotCourseOwner", err)
	}

	if err := svc.SubmitForApproval(ctx, id, owner); err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}
	if err := svc.SubmitForApproval(ctx, id, owner); !errors.Is(err, app_errors.ErrCourseNotDraft) {
		t.Errorf("double submit: %v, want ErrCourseNotDraft", err)
	}
}

func TestReject(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()
	admin := uuid.New()

	id, _ := svc.Create(ctx, completeCourse("Rejected"), owner)
	svc.AddLesson(ctx, id, owner, models.CourseLesson{Title: "L1"})
	if err := svc.SubmitForApproval(ctx, id, owner); err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}

	if err := svc.Reject(ctx, id, admin, "  "); !errors.Is(err, app_errors.ErrRejectionReasonRequired) {
		t.Fatalf("blank reason: %v, want ErrRejectionReasonRequired", err)
	}
	if err := svc.Reject(ctx, id, admin, "curriculum too thin"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	c, _ := store.CourseByID(ctx, id)
	if c.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", c.Status)
	}
	if c.SubmittedAt != nil {
		t.Error("submitted_at not cleared")
	}
	if c.RejectionReason != "curriculum too thin" {
		t.Errorf("rejection reason = %q", c.RejectionReason)
	}
}

func TestVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	id, _ := svc.Create(ctx, completeCourse("Hidden Draft"), owner)

	if _, err := svc.GetByID(ctx, id, owner); err != nil {
		t.Fatalf("owner view: %v", err)
	}
	if _, err := svc.GetByID(ctx, id, uuid.New()); !errors.Is(err, app_errors.ErrCourseNotFound) {
		t.Fatalf("stranger view: %v, want ErrCourseNotFound", err)
	}
	if _, err := svc.GetBySlug(ctx, "hidden-draft", uuid.Nil); !errors.Is(err, app_errors.ErrCourseNotFound) {
		t.Fatalf("anonymous slug view: %v, want ErrCourseNotFound", err)
	}

	pubID := readyCourse(t, svc, owner, "Visible Course")
	if _, err := svc.GetByID(ctx, pubID, uuid.Nil); err != nil {
		t.Fatalf("anonymous view of published: %v", err)
	}
}

func TestDeleteBlockedByEnrollments(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	id := readyCourse(t, svc, owner, "Enrolled Course")
	err := store.CreateEnrollment(ctx, &models.CourseEnrollment{
		CourseID:  id,
		StudentID: uuid.New(),
		Status:    models.EnrollmentActive,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment: %v", err)
	}

	if err := svc.Delete(ctx, id, owner); !errors.Is(err, app_errors.ErrCourseHasEnrollments) {
		t.Fatalf("delete with enrollments: %v, want ErrCourseHasEnrollments", err)
	}

	emptyID := readyCourse(t, svc, owner, "Empty Course")
	if err := svc.Delete(ctx, emptyID, owner); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, emptyID, owner); !errors.Is(err, app_errors.ErrCourseNotFound) {
		t.Fatalf("deleted course still readable: %v", err)
	}
}

func TestAddLessonLockedAfterSubmit(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	id, _ := svc.Create(ctx, completeCourse("Frozen Curriculum"), owner)
	if _, err := svc.AddLesson(ctx, id, uuid.New(), models.CourseLesson{Title: "L1"}); !errors.Is(err, app_errors.ErrNotCourseOwner) {
		t.Fatalf("stranger lesson: %v, want ErrNotCourseOwner", err)
	}

	lesson, err := svc.AddLesson(ctx, id, owner, models.CourseLesson{Title: "L1"})
	if err != nil {
		t.Fatalf("AddLesson: %v", err)
	}
	if lesson.Type != models.LessonTypeVideo {
		t.Errorf("default type = %q, want video", lesson.Type)
	}
	if lesson.LessonOrder != 1 {
		t.Errorf("lesson order = %d, want 1", lesson.LessonOrder)
	}

	if err := svc.SubmitForApproval(ctx, id, owner); err != nil {
		t.Fatalf("SubmitForApproval: %v", err)
	}
	if _, err := svc.AddLesson(ctx, id, owner, models.CourseLesson{Title: "L2"}); !errors.Is(err, app_errors.ErrLessonEditLocked) {
		t.Fatalf("lesson after submit: %v, want ErrLessonEditLocked", err)
	}
}

func TestSearchReturnsOnlyPublished(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	readyCourse(t, svc, owner, "Published One")
	svc.Create(ctx, completeCourse("Draft One"), owner)

	result, err := svc.Search(ctx, models.CourseFilters{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 1 || len(result.Courses) != 1 {
		t.Fatalf("total = %d, courses = %d, want 1", result.Total, len(result.Courses))
	}
	if result.Courses[0].Title != "Published One" {
		t.Errorf("got %q", result.Courses[0].Title)
	}
	if result.HasMore {
		t.Error("HasMore set for a single page")
	}
}

func TestSearchIndexNarrowsCandidates(t *testing.T) {
	svc, _, search := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	first := readyCourse(t, svc, owner, "Go Basics")
	readyCourse(t, svc, owner, "Go Advanced")

	search.ids = []uuid.UUID{first}
	result, err := svc.Search(ctx, models.CourseFilters{Search: "go"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Courses) != 1 || result.Courses[0].ID != first {
		t.Fatalf("index hint ignored: %+v", result.Courses)
	}

	// No index hits means no rows, even though substrings would match.
	search.ids = []uuid.UUID{}
	result, err = svc.Search(ctx, models.CourseFilters{Search: "go"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("empty hint total = %d, want 0", result.Total)
	}

	// An index outage degrades to substring matching.
	search.err = errors.New("connection refused")
	result, err = svc.Search(ctx, models.CourseFilters{Search: "basics"})
	if err != nil {
		t.Fatalf("Search with fallback: %v", err)
	}
	if result.Total != 1 || result.Courses[0].ID != first {
		t.Fatalf("fallback missed: total %d", result.Total)
	}
}

func TestInstructorStats(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	owner := uuid.New()

	id := readyCourse(t, svc, owner, "Stats Course")
	svc.Create(ctx, completeCourse("Stats Draft"), owner)

	student := uuid.New()
	err := store.CreatePurchaseWithEnrollment(ctx,
		&models.CoursePurchase{CourseID: id, StudentID: student, PricePaid: 4900, IsActive: true},
		&models.CourseEnrollment{CourseID: id, StudentID: student, Status: models.EnrollmentActive},
	)
	if err != nil {
		t.Fatalf("CreatePurchaseWithEnrollment: %v", err)
	}

	stats, err := svc.InstructorStats(ctx, owner)
	if err != nil {
		t.Fatalf("InstructorStats: %v", err)
	}
	if stats.TotalCourses != 2 || stats.PublishedCourses != 1 {
		t.Errorf("courses = %d/%d, want 2/1", stats.TotalCourses, stats.PublishedCourses)
	}
	if stats.TotalStudents != 1 {
		t.Errorf("students = %d, want 1", stats.TotalStudents)
	}
	if stats.TotalRevenue != 4900 {
		t.Errorf("revenue = %d, want 4900", stats.TotalRevenue)
	}
}
