package controllers

import (
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CourseService interface {
	Create(ctx context.Context, course models.Course, ownerID uuid.UUID) (uuid.UUID, error)
	Update(ctx context.Context, course models.Course, editorID uuid.UUID) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	SubmitForApproval(ctx context.Context, id, ownerID uuid.UUID) error
	Approve(ctx context.Context, id, adminID uuid.UUID) error
	Reject(ctx context.Context, id, adminID uuid.UUID, reason string) error
	Launch(ctx context.Context, id, ownerID uuid.UUID) error
	Archive(ctx context.Context, id, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id, viewerID uuid.UUID) (*models.Course, error)
	GetBySlug(ctx context.Context, slug string, viewerID uuid.UUID) (*models.Course, error)
	MyCourses(ctx context.Context, ownerID uuid.UUID) ([]models.Course, error)
	PendingCourses(ctx context.Context) ([]models.Course, error)
	Shelf(ctx context.Context, flag string, limit int) ([]models.Course, error)
	InstructorStats(ctx context.Context, ownerID uuid.UUID) (*models.InstructorStats, error)
	Search(ctx context.Context, filters models.CourseFilters) (*models.CourseSearchResult, error)
	AddLesson(ctx context.Context, courseID, ownerID uuid.UUID, lesson models.CourseLesson) (*models.CourseLesson, error)
	CourseLessons(ctx context.Context, courseID, viewerID uuid.UUID) ([]models.CourseLesson, error)
	UploadThumbnail(ctx context.Context, courseID, ownerID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	ThumbnailURL(ctx context.Context, courseID uuid.UUID) (string, error)
}

type CourseHandler struct {
	CourseService CourseService
	log           logger.Log
}

func NewCourseHandler(l logger.Log, courseService CourseService) *CourseHandler {
	return &CourseHandler{
		CourseService: courseService,
		log:           l,
	}
}

type pricingOptionsRequest struct {
	Monthly  *int64 `json:"monthly"`
	Yearly   *int64 `json:"yearly"`
	Lifetime *int64 `json:"lifetime"`
	Custom   []struct {
		DurationDays int   `json:"duration_days"`
		Price        int64 `json:"price"`
	} `json:"custom"`
}

type availabilityRequest struct {
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline"`
	MaxEnrollments     int        `json:"max_enrollments"`
}

type courseRequest struct {
	Slug                 string                 `json:"slug"`
	Title                string                 `json:"title" binding:"required"`
	ShortDescription     string                 `json:"short_description"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Subcategory          string                 `json:"subcategory"`
	Tags                 []string               `json:"tags"`
	Level                string                 `json:"level"`
	Language             string                 `json:"language"`
	Price                int64                  `json:"price"`
	Currency             string                 `json:"currency"`
	Pricing              *pricingOptionsRequest `json:"pricing_options"`
	Duration             int                    `json:"duration"`
	Objectives           []string               `json:"objectives"`
	Prerequisites        []string               `json:"prerequisites"`
	TargetAudience       []string               `json:"target_audience"`
	CertificateAvailable bool                   `json:"certificate_available"`
	Availability         *availabilityRequest   `json:"availability_schedule"`
}

func (in *courseRequest) toModel() models.Course {
	course := models.Course{
		Slug:                 in.Slug,
		Title:                in.Title,
		ShortDescription:     in.ShortDescription,
		Description:          in.Description,
		Category:             in.Category,
		Subcategory:          in.Subcategory,
		Tags:                 in.Tags,
		Level:                in.Level,
		Language:             in.Language,
		Price:                in.Price,
		Currency:             in.Currency,
		Duration:             in.Duration,
		Objectives:           in.Objectives,
		Prerequisites:        in.Prerequisites,
		TargetAudience:       in.TargetAudience,
		CertificateAvailable: in.CertificateAvailable,
	}
	if in.Pricing != nil {
		course.Pricing.Monthly = in.Pricing.Monthly
		course.Pricing.Yearly = in.Pricing.Yearly
		course.Pricing.Lifetime = in.Pricing.Lifetime
		for _, tier := range in.Pricing.Custom {
			course.Pricing.Custom = append(course.Pricing.Custom, models.CustomPricingTier{
				DurationDays: tier.DurationDays,
				Price:        tier.Price,
			})
		}
	}
	if in.Availability != nil {
		course.Availability.StartDate = in.Availability.StartDate
		course.Availability.EndDate = in.Availability.EndDate
		course.Availability.EnrollmentDeadline = in.Availability.EnrollmentDeadline
		course.Availability.MaxEnrollments = in.Availability.MaxEnrollments
	}
	return course
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var input courseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.CourseService.Create(c.Request.Context(), input.toModel(), clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	var input courseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := input.toModel()
	course.ID = courseID
	if err := h.CourseService.Update(c.Request.Context(), course, clientID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	if err := h.CourseService.Delete(c.Request.Context(), courseID, clientID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CourseHandler) SubmitCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	if err := h.CourseService.SubmitForApproval(c.Request.Context(), courseID, clientID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusPending})
}

func (h *CourseHandler) ApproveCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	if err := h.CourseService.Approve(c.Request.Context(), courseID, clientID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusPublished})
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *CourseHandler) RejectCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	var input rejectRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.CourseService.Reject(c.Request.Context(), courseID, clientID(c), input.Reason); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusDraft})
}

func (h *CourseHandler) LaunchCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	if err := h.CourseService.Launch(c.Request.Context(), courseID, clientID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	if err := h.CourseService.Archive(c.Request.Context(), courseID, clientID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusArchived})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	course, err := h.CourseService.GetByID(c.Request.Context(), courseID, clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) GetCourseBySlug(c *gin.Context) {
	slug := c.Param("slug")
	course, err := h.CourseService.GetBySlug(c.Request.Context(), slug, clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func queryInt64Ptr(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBoolPtr(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func (h *CourseHandler) SearchCourses(c *gin.Context) {
	filters := models.CourseFilters{
		Category:       c.Query("category"),
		Subcategory:    c.Query("subcategory"),
		Level:          c.Query("level"),
		Language:       c.Query("language"),
		Search:         c.Query("search"),
		Sort:           c.Query("sort"),
		MinPrice:       queryInt64Ptr(c, "min_price"),
		MaxPrice:       queryInt64Ptr(c, "max_price"),
		IsFree:         queryBoolPtr(c, "is_free"),
		HasCertificate: queryBoolPtr(c, "has_certificate"),
		Tags:           c.QueryArray("tag"),
	}
	if raw := c.Query("min_rating"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.MinRating = &v
		}
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.CourseService.Search(c.Request.Context(), filters)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CourseHandler) GetMyCourses(c *gin.Context) {
	courses, err := h.CourseService.MyCourses(c.Request.Context(), clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) GetPendingCourses(c *gin.Context) {
	courses, err := h.CourseService.PendingCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) GetShelf(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	courses, err := h.CourseService.Shelf(c.Request.Context(), c.Param("shelf"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) GetInstructorStats(c *gin.Context) {
	stats, err := h.CourseService.InstructorStats(c.Request.Context(), clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type lessonRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Type        string `json:"type"`
	ContentURL  string `json:"content_url"`
	IsPreview   bool   `json:"is_preview"`
	IsRequired  bool   `json:"is_required"`
}

func (h *CourseHandler) AddLesson(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	var input lessonRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, err := h.CourseService.AddLesson(c.Request.Context(), courseID, clientID(c), models.CourseLesson{
		Title:       input.Title,
		Description: input.Description,
		Duration:    input.Duration,
		Type:        input.Type,
		ContentURL:  input.ContentURL,
		IsPreview:   input.IsPreview,
		IsRequired:  input.IsRequired,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *CourseHandler) GetCourseLessons(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	lessons, err := h.CourseService.CourseLessons(c.Request.Context(), courseID, clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thumbnail file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	url, err := h.CourseService.UploadThumbnail(
		c.Request.Context(),
		courseID, clientID(c),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *CourseHandler) GetThumbnailURL(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	url, err := h.CourseService.ThumbnailURL(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
