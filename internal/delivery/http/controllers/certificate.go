package controllers

import (
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CertificateService interface {
	Issue(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseCertificate, error)
	Verify(ctx context.Context, code string) (*models.CourseCertificate, error)
	Revoke(ctx context.Context, courseID, studentID uuid.UUID) error
	StudentCertificates(ctx context.Context, studentID uuid.UUID) ([]models.CourseCertificate, error)
}

type CertificateHandler struct {
	CertificateService CertificateService
	log                logger.Log
}

func NewCertificateHandler(l logger.Log, service CertificateService) *CertificateHandler {
	return &CertificateHandler{
		CertificateService: service,
		log:                l,
	}
}

func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	cert, err := h.CertificateService.Issue(c.Request.Context(), courseID, clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// VerifyCertificate is public: anyone holding a code can check it.
func (h *CertificateHandler) VerifyCertificate(c *gin.Context) {
	code := c.Param("code")
	cert, err := h.CertificateService.Verify(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

type revokeCertificateRequest struct {
	CourseID  uuid.UUID `json:"course_id" binding:"required"`
	StudentID uuid.UUID `json:"student_id" binding:"required"`
}

func (h *CertificateHandler) RevokeCertificate(c *gin.Context) {
	var input revokeCertificateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.CertificateService.Revoke(c.Request.Context(), input.CourseID, input.StudentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CertificateHandler) GetMyCertificates(c *gin.Context) {
	certs, err := h.CertificateService.StudentCertificates(c.Request.Context(), clientID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs})
}
