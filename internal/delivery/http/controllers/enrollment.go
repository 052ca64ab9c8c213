package controllers

import (
	"CourseForge/internal/models"
	"CourseForge/internal/service/enrollment"
	"CourseForge/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EnrollmentService interface {
	Purchase(ctx context.Context, req enrollment.PurchaseRequest) (*models.CoursePurchase, error)
	Enroll(ctx context.Context, courseID, studentID uuid.UUID, paymentID string) (*models.CourseEnrollment, error)
	HasAccess(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
	MyEnrollments(ctx context.Context, studentID uuid.UUID) ([]models.CourseEnrollment, error)
	CourseEnrollments(ctx context.Context, courseID, requesterID uuid.UUID) ([]models.CourseEnrollment, error)
	Drop(ctx context.Context, enrollmentID, studentID uuid.UUID) error
	Suspend(ctx context.Context, enrollmentID uuid.UUID) error
	Reactivate(ctx context.Context, enrollmentID uuid.UUID) error
	StudentPurchases(ctx context.Context, studentID uuid.UUID) ([]models.CoursePurchase, error)
}

type EnrollmentHandler struct {
	EnrollmentService EnrollmentService
	log               logger.Log
}

func NewEnrollmentHandler(l logger.Log, service EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		EnrollmentService: service,
		log:               l,
	}
}

type purchaseRequest struct {
	Option       string `json:"pricing_option" binding:"required"`
	DurationDays int    `json:"duration_days"`
	PaymentID    string `json:"payment_id"`
}

func (h *EnrollmentHandler) PurchaseCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	var input purchaseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.EnrollmentService.Purchase(c.Request.Context(), enrollment.PurchaseRequest{
		CourseID:     courseID,
		StudentID:    clientID(c),
		Option:       input.Option,
		DurationDays: input.DurationDays,
		PaymentID:    input.PaymentID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

type enrollRequest struct {
	PaymentID string `json:"payment_id"`
}

func (h *EnrollmentHandler) EnrollCourse(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	var input enrollRequest
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.EnrollmentService.Enroll(c.Request.Context(), courseID, clientID(c), input.PaymentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *EnrollmentHandler) CheckAccess(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	hasAccess, err := h.EnrollmentService.HasAccess(c.Request.Context(), courseID, clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_access": hasAccess})
}

func (h *EnrollmentHandler) GetMyEnrollments(c *gin.Context) {
	enrollments, err := h.EnrollmentService.MyEnrollments(c.Request.Context(), clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

func (h *EnrollmentHandler) GetCourseEnrollments(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	enrollments, err := h.EnrollmentService.CourseEnrollments(c.Request.Context(), courseID, clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

func (h *EnrollmentHandler) DropEnrollment(c *gin.Context) {
	enrollmentID, ok := pathUUID(c, "enrollment_id")
	if !ok {
		return
	}
	if err := h.EnrollmentService.Drop(c.Request.Context(), enrollmentID, clientID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.EnrollmentDropped})
}

func (h *EnrollmentHandler) SuspendEnrollment(c *gin.Context) {
	enrollmentID, ok := pathUUID(c, "enrollment_id")
	if !ok {
		return
	}
	if err := h.EnrollmentService.Suspend(c.Request.Context(), enrollmentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.EnrollmentSuspended})
}

func (h *EnrollmentHandler) ReactivateEnrollment(c *gin.Context) {
	enrollmentID, ok := pathUUID(c, "enrollment_id")
	if !ok {
		return
	}
	if err := h.EnrollmentService.Reactivate(c.Request.Context(), enrollmentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.EnrollmentActive})
}

func (h *EnrollmentHandler) GetMyPurchases(c *gin.Context) {
	purchases, err := h.EnrollmentService.StudentPurchases(c.Request.Context(), clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}
