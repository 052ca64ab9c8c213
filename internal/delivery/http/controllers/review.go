package controllers

import (
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewService interface {
	AddReview(ctx context.Context, review models.CourseReview) (*models.CourseReview, error)
	CourseReviews(ctx context.Context, courseID uuid.UUID, page, limit int, sort string) ([]models.CourseReview, int, error)
	MarkHelpful(ctx context.Context, reviewID uuid.UUID) error
}

type ReviewHandler struct {
	ReviewService ReviewService
	log           logger.Log
}

func NewReviewHandler(l logger.Log, service ReviewService) *ReviewHandler {
	return &ReviewHandler{
		ReviewService: service,
		log:           l,
	}
}

type reviewRequest struct {
	Rating  int      `json:"rating" binding:"required"`
	Title   string   `json:"title"`
	Comment string   `json:"comment"`
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
}

func (h *ReviewHandler) AddReview(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	var input reviewRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.ReviewService.AddReview(c.Request.Context(), models.CourseReview{
		CourseID:  courseID,
		StudentID: clientID(c),
		Rating:    input.Rating,
		Title:     input.Title,
		Comment:   input.Comment,
		Pros:      input.Pros,
		Cons:      input.Cons,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetCourseReviews(c *gin.Context) {
	courseID, ok := pathUUID(c, "course_id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	sort := c.DefaultQuery("sort", models.ReviewSortNewest)

	reviews, total, err := h.ReviewService.CourseReviews(c.Request.Context(), courseID, page, limit, sort)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *ReviewHandler) MarkReviewHelpful(c *gin.Context) {
	reviewID, ok := pathUUID(c, "review_id")
	if !ok {
		return
	}
	if err := h.ReviewService.MarkHelpful(c.Request.Context(), reviewID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
