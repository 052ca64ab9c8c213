package course

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxThumbnailSizeBytes = 5 << 20
	searchCandidateLimit  = 1000
)

type courseRepo interface {
	CreateCourse(ctx context.Context, course *models.Course) (uuid.UUID, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	CourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	UpdateThumbnail(ctx context.Context, id uuid.UUID, objectKey string) error
	CoursesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Course, error)
	PendingCourses(ctx context.Context) ([]models.Course, error)
	FlaggedCourses(ctx context.Context, flag string, limit int) ([]models.Course, error)
	SearchCourses(ctx context.Context, filters models.CourseFilters, idHint []uuid.UUID) ([]models.Course, int, error)
}

type lessonRepo interface {
	CreateLesson(ctx context.Context, lesson *models.CourseLesson) error
	LessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseLesson, error)
	CountLessons(ctx context.Context, courseID uuid.UUID) (int, error)
}

type enrollmentRepo interface {
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error)
}

type purchaseRepo interface {
	RevenueByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
	Update(ctx context.Context, course models.Course) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type thumbnailRepo interface {
	UploadThumbnail(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (objectKey string, err error)
	ThumbnailURL(ctx context.Context, objectKey string) (string, error)
	DeleteThumbnail(ctx context.Context, objectKey string) error
}

type CourseService struct {
	log            logger.Log
	courseRepo     courseRepo
	lessonRepo     lessonRepo
	enrollmentRepo enrollmentRepo
	purchaseRepo   purchaseRepo
	searchRepo     searchRepo
	thumbnailRepo  thumbnailRepo
}

func NewCourseService(log logger.Log, courseRepo courseRepo, lessonRepo lessonRepo,
	enrollmentRepo enrollmentRepo, purchaseRepo purchaseRepo,
	searchRepo searchRepo, thumbnailRepo thumbnailRepo,
) *CourseService {
	return &CourseService{
		log:            log,
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		purchaseRepo:   purchaseRepo,
		searchRepo:     searchRepo,
		thumbnailRepo:  thumbnailRepo,
	}
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// applyPricingDefaults fills the pricing options a paid course left
// unset: monthly follows the base price, yearly and lifetime scale it.
func applyPricingDefaults(course *models.Course) {
	course.IsFree = course.Price == 0
	if course.IsFree {
		return
	}
	if course.Pricing.Monthly == nil {
		monthly := course.Price
		course.Pricing.Monthly = &monthly
	}
	if course.Pricing.Yearly == nil {
		yearly := course.Price * 10
		course.Pricing.Yearly = &yearly
	}
	if course.Pricing.Lifetime == nil {
		lifetime := course.Price * 20
		course.Pricing.Lifetime = &lifetime
	}
}

// Create registers a new draft. Lifecycle stamps, launch state and
// aggregate counters are never taken from the caller.
func (s *CourseService) Create(ctx context.Context, course models.Course, ownerID uuid.UUID) (uuid.UUID, error) {
	course.OwnerID = ownerID
	course.Status = models.StatusDraft
	course.IsLaunched = false
	course.LaunchDate = nil
	course.SubmittedAt = nil
	course.ApprovedBy = nil
	course.ApprovedAt = nil
	course.PublishedAt = nil
	course.RejectionReason = ""
	course.EnrollmentCount = 0
	course.CompletionCount = 0
	course.AverageRating = 0
	course.RatingCount = 0
	course.ReviewCount = 0
	course.Availability.CurrentEnrollments = 0
	course.Featured = false
	course.Trending = false
	course.Bestseller = false

	if course.Slug == "" {
		course.Slug = slugify(course.Title)
	}
	if course.Currency == "" {
		course.Currency = "USD"
	}
	applyPricingDefaults(&course)

	id, err := s.courseRepo.CreateCourse(ctx, &course)
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("course created", "course_id", id.String(), "owner_id", ownerID.String())
	return id, nil
}

// Update merges the editable fields onto the stored course. Status,
// lifecycle stamps and aggregates stay server-owned.
func (s *CourseService) Update(ctx context.Context, course models.Course, editorID uuid.UUID) error {
	stored, err := s.courseRepo.CourseByID(ctx, course.ID)
	if err != nil {
		return err
	}
	if stored.OwnerID != editorID {
		return app_errors.ErrNotCourseOwner
	}

	stored.Title = course.Title
	stored.ShortDescription = course.ShortDescription
	stored.Description = course.Description
	stored.Category = course.Category
	stored.Subcategory = course.Subcategory
	stored.Tags = course.Tags
	stored.Level = course.Level
	stored.Language = course.Language
	stored.Price = course.Price
	if course.Currency != "" {
		stored.Currency = course.Currency
	}
	stored.Pricing = course.Pricing
	stored.Duration = course.Duration
	stored.Objectives = course.Objectives
	stored.Prerequisites = course.Prerequisites
	stored.TargetAudience = course.TargetAudience
	stored.CertificateAvailable = course.CertificateAvailable
	stored.Availability.StartDate = course.Availability.StartDate
	stored.Availability.EndDate = course.Availability.EndDate
	stored.Availability.EnrollmentDeadline = course.Availability.EnrollmentDeadline
	stored.Availability.MaxEnrollments = course.Availability.MaxEnrollments
	if course.Slug != "" {
		stored.Slug = course.Slug
	}
	applyPricingDefaults(stored)

	if err := s.courseRepo.UpdateCourse(ctx, stored); err != nil {
		return err
	}

	if stored.Status == models.StatusPublished {
		if err := s.searchRepo.Update(ctx, *stored); err != nil {
			s.log.ErrorErr("failed to update course in search index", err)
		}
	}
	return nil
}

// Delete refuses once anyone has enrolled, ever.
func (s *CourseService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if course.OwnerID != ownerID {
		return app_errors.ErrNotCourseOwner
	}
	count, err := s.enrollmentRepo.CountByCourse(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return app_errors.ErrCourseHasEnrollments
	}
	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}
	if err := s.searchRepo.Delete(ctx, id); err != nil {
		s.log.ErrorErr("failed to remove deleted course from search index", err)
	}
	return nil
}

// submissionGaps lists the requirements a draft does not meet yet.
func (s *CourseService) submissionGaps(ctx context.Context, course *models.Course) ([]string, error) {
	var missing []string
	if strings.TrimSpace(course.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(course.Description) == "" {
		missing = append(missing, "description")
	}
	if course.Category == "" {
		missing = append(missing, "category")
	}
	if course.Level == "" {
		missing = append(missing, "level")
	}
	if course.Language == "" {
		missing = append(missing, "language")
	}
	if len(course.Objectives) == 0 {
		missing = append(missing, "objectives")
	}
	if course.Duration <= 0 {
		missing = append(missing, "duration")
	}
	if !course.IsFree && course.Price <= 0 {
		missing = append(missing, "price")
	}
	lessons, err := s.lessonRepo.CountLessons(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	if lessons == 0 {
		missing = append(missing, "lessons")
	}
	return missing, nil
}

func (s *CourseService) SubmitForApproval(ctx context.Context, id, ownerID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if course.OwnerID != ownerID {
		return app_errors.ErrNotCourseOwner
	}
	if course.Status != models.StatusDraft {
		return app_errors.ErrCourseNotDraft
	}

	missing, err := s.submissionGaps(ctx, course)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &app_errors.ValidationError{
			Message:       "course does not meet submission requirements",
			MissingFields: missing,
		}
	}

	now := time.Now().UTC()
	course.Status = models.StatusPending
	course.SubmittedAt = &now
	course.RejectionReason = ""
	course.ApprovedBy = nil
	course.ApprovedAt = nil
	return s.courseRepo.UpdateCourse(ctx, course)
}

func (s *CourseService) Approve(ctx context.Context, id, adminID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if course.Status != models.StatusPending {
		return app_errors.ErrCourseNotPending
	}

	now := time.Now().UTC()
	course.Status = models.StatusPublished
	course.ApprovedBy = &adminID
	course.ApprovedAt = &now
	course.PublishedAt = &now
	course.RejectionReason = ""
	if err := s.courseRepo.UpdateCourse(ctx, course); err != nil {
		return err
	}

	if err := s.searchRepo.Index(ctx, *course); err != nil {
		s.log.ErrorErr("failed to index approved course", err)
	}
	s.log.Info("course approved", "course_id", id.String(), "admin_id", adminID.String())
	return nil
}

func (s *CourseService) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return app_errors.ErrRejectionReasonRequired
	}
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if course.Status != models.StatusPending {
		return app_errors.ErrCourseNotPending
	}

	course.Status = models.StatusDraft
	course.SubmittedAt = nil
	course.RejectionReason = reason
	if err := s.courseRepo.UpdateCourse(ctx, course); err != nil {
		return err
	}
	s.log.Info("course rejected", "course_id", id.String(), "admin_id", adminID.String())
	return nil
}

// Launch opens a published course for purchase. Launching twice is a
// no-op.
func (s *CourseService) Launch(ctx context.Context, id, ownerID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if course.OwnerID != ownerID {
		return app_errors.ErrNotCourseOwner
	}
	if course.Status != models.StatusPublished {
		return app_errors.ErrCourseNotPublished
	}
	if course.IsLaunched {
		return nil
	}

	now := time.Now().UTC()
	course.IsLaunched = true
	course.LaunchDate = &now
	return s.courseRepo.UpdateCourse(ctx, course)
}

func (s *CourseService) Archive(ctx context.Context, id, ownerID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if course.OwnerID != ownerID {
		return app_errors.ErrNotCourseOwner
	}
	if course.Status != models.StatusPublished {
		return app_errors.ErrCourseNotPublished
	}

	course.Status = models.StatusArchived
	course.IsLaunched = false
	if err := s.courseRepo.UpdateCourse(ctx, course); err != nil {
		return err
	}
	if err := s.searchRepo.Delete(ctx, id); err != nil {
		s.log.ErrorErr("failed to remove archived course from search index", err)
	}
	return nil
}

// visibleTo hides anything unpublished from everyone but the owner.
func visibleTo(course *models.Course, viewerID uuid.UUID) error {
	if course.Status == models.StatusPublished || course.OwnerID == viewerID {
		return nil
	}
	return app_errors.ErrCourseNotFound
}

func (s *CourseService) GetByID(ctx context.Context, id, viewerID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := visibleTo(course, viewerID); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetBySlug(ctx context.Context, slug string, viewerID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := visibleTo(course, viewerID); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) MyCourses(ctx context.Context, ownerID uuid.UUID) ([]models.Course, error) {
	return s.courseRepo.CoursesByOwner(ctx, ownerID)
}

func (s *CourseService) PendingCourses(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.PendingCourses(ctx)
}

func (s *CourseService) Shelf(ctx context.Context, flag string, limit int) ([]models.Course, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.courseRepo.FlaggedCourses(ctx, flag, limit)
}

func (s *CourseService) InstructorStats(ctx context.Context, ownerID uuid.UUID) (*models.InstructorStats, error) {
	courses, err := s.courseRepo.CoursesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &models.InstructorStats{TotalCourses: len(courses)}
	var ratingSum float64
	var ratingCount int
	for _, c := range courses {
		if c.Status == models.StatusPublished {
			stats.PublishedCourses++
		}
		stats.TotalStudents += c.EnrollmentCount
		ratingSum += c.AverageRating * float64(c.RatingCount)
		ratingCount += c.RatingCount
	}
	if ratingCount > 0 {
		stats.AverageRating = ratingSum / float64(ratingCount)
	}

	revenue, err := s.purchaseRepo.RevenueByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = revenue
	return stats, nil
}

// Search serves the catalog. The text index only narrows the candidate
// set; structured filters and pagination are applied by the primary
// store. An index outage degrades to substring matching instead of
// failing the request.
func (s *CourseService) Search(ctx context.Context, filters models.CourseFilters) (*models.CourseSearchResult, error) {
	var idHint []uuid.UUID
	if filters.Search != "" {
		ids, err := s.searchRepo.Search(ctx, filters.Search, searchCandidateLimit)
		if err != nil {
			s.log.ErrorErr("course search index unavailable, using fallback", err)
		} else {
			if ids == nil {
				ids = []uuid.UUID{}
			}
			idHint = ids
		}
	}

	courses, total, err := s.courseRepo.SearchCourses(ctx, filters, idHint)
	if err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	return &models.CourseSearchResult{
		Courses: courses,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: page*limit < total,
	}, nil
}

// AddLesson appends curriculum to a draft. Once submitted the lesson
// list is frozen.
func (s *CourseService) AddLesson(ctx context.Context, courseID, ownerID uuid.UUID, lesson models.CourseLesson) (*models.CourseLesson, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != ownerID {
		return nil, app_errors.ErrNotCourseOwner
	}
	if course.Status != models.StatusDraft {
		return nil, app_errors.ErrLessonEditLocked
	}

	lesson.CourseID = courseID
	if lesson.Type == "" {
		lesson.Type = models.LessonTypeVideo
	}
	if err := s.lessonRepo.CreateLesson(ctx, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *CourseService) CourseLessons(ctx context.Context, courseID, viewerID uuid.UUID) ([]models.CourseLesson, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := visibleTo(course, viewerID); err != nil {
		return nil, err
	}
	return s.lessonRepo.LessonsByCourse(ctx, courseID)
}

func (s *CourseService) UploadThumbnail(
	ctx context.Context,
	courseID, ownerID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (string, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return "", err
	}
	if course.OwnerID != ownerID {
		return "", app_errors.ErrNotCourseOwner
	}

	if size > maxThumbnailSizeBytes {
		return "", app_errors.ErrFileSize
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", app_errors.ErrNotImage
	}

	if course.ThumbnailObjectKey != "" {
		if err := s.thumbnailRepo.DeleteThumbnail(ctx, course.ThumbnailObjectKey); err != nil {
			s.log.ErrorErr("failed to delete previous thumbnail", err)
		}
	}

	objectKey, err := s.thumbnailRepo.UploadThumbnail(ctx, courseID, filename, reader, size, contentType)
	if err != nil {
		s.log.ErrorErr("failed to upload thumbnail to storage", err)
		return "", err
	}

	if err = s.courseRepo.UpdateThumbnail(ctx, courseID, objectKey); err != nil {
		s.log.ErrorErr("failed to save thumbnail key to db", err)
		return "", err
	}
	url, err := s.thumbnailRepo.ThumbnailURL(ctx, objectKey)
	if err != nil {
		s.log.ErrorErr("failed to get presigned URL", err)
		return "", err
	}

	return url, nil
}

func (s *CourseService) ThumbnailURL(ctx context.Context, courseID uuid.UUID) (string, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return "", err
	}
	if course.Status != models.StatusPublished {
		return "", app_errors.ErrCourseNotPublished
	}
	if course.ThumbnailObjectKey == "" {
		return "", app_errors.ErrCourseNotFound
	}
	return s.thumbnailRepo.ThumbnailURL(ctx, course.ThumbnailObjectKey)
}
