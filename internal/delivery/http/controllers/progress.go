package controllers

import (
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProgressService interface {
	UpdateLessonProgress(ctx context.Context, enrollmentID, lessonID, studentID uuid.UUID, patch models.ProgressPatch) (*models.CourseProgress, error)
	EnrollmentProgress(ctx context.Context, enrollmentID, studentID uuid.UUID) ([]models.CourseProgress, error)
}

type ProgressHandler struct {
	ProgressService ProgressService
	log             logger.Log
}

func NewProgressHandler(l logger.Log, service ProgressService) *ProgressHandler {
	return &ProgressHandler{
		ProgressService: service,
		log:             l,
	}
}

func (h *ProgressHandler) UpdateLessonProgress(c *gin.Context) {
	enrollmentID, ok := pathUUID(c, "enrollment_id")
	if !ok {
		return
	}
	lessonID, ok := pathUUID(c, "lesson_id")
	if !ok {
		return
	}
	var patch models.ProgressPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.ProgressService.UpdateLessonProgress(c.Request.Context(), enrollmentID, lessonID, clientID(c), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ProgressHandler) GetEnrollmentProgress(c *gin.Context) {
	enrollmentID, ok := pathUUID(c, "enrollment_id")
	if !ok {
		return
	}
	records, err := h.ProgressService.EnrollmentProgress(c.Request.Context(), enrollmentID, clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": records})
}
