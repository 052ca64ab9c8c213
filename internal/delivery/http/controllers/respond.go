package controllers

import (
	"CourseForge/internal/app_errors"
	"CourseForge/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 and gets logged; known errors answer with the
// sentinel's message.
func respondError(c *gin.Context, log logger.Log, err error) {
	var vErr *app_errors.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": vErr.Message,
			"details": gin.H{
				"missingFields": vErr.MissingFields,
			},
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app_errors.ErrCourseNotFound),
		errors.Is(err, app_errors.ErrLessonNotFound),
		errors.Is(err, app_errors.ErrEnrollmentNotFound),
		errors.Is(err, app_errors.ErrReviewNotFound),
		errors.Is(err, app_errors.ErrCertificateNotFound),
		errors.Is(err, app_errors.ErrUserNotFound),
		errors.Is(err, app_errors.ErrTokenNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app_errors.ErrNotCourseOwner):
		status = http.StatusForbidden
	case errors.Is(err, app_errors.ErrPaymentRequired):
		status = http.StatusPaymentRequired
	case errors.Is(err, app_errors.ErrIncorrectPassword),
		errors.Is(err, app_errors.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, app_errors.ErrSlugTaken),
		errors.Is(err, app_errors.ErrUserExists),
		errors.Is(err, app_errors.ErrAlreadyEnrolled),
		errors.Is(err, app_errors.ErrAlreadyReviewed),
		errors.Is(err, app_errors.ErrCertificateExists),
		errors.Is(err, app_errors.ErrCourseFull),
		errors.Is(err, app_errors.ErrCourseHasEnrollments):
		status = http.StatusConflict
	case errors.Is(err, app_errors.ErrCourseNotDraft),
		errors.Is(err, app_errors.ErrCourseNotPending),
		errors.Is(err, app_errors.ErrCourseNotPublished),
		errors.Is(err, app_errors.ErrCourseNotLaunched),
		errors.Is(err, app_errors.ErrLessonEditLocked),
		errors.Is(err, app_errors.ErrEnrollmentClosed),
		errors.Is(err, app_errors.ErrEnrollmentNotActive),
		errors.Is(err, app_errors.ErrEnrollmentNotCompleted),
		errors.Is(err, app_errors.ErrInvalidPricingOption),
		errors.Is(err, app_errors.ErrInvalidRating),
		errors.Is(err, app_errors.ErrRejectionReasonRequired),
		errors.Is(err, app_errors.ErrNotImage),
		errors.Is(err, app_errors.ErrFileSize),
		errors.Is(err, app_errors.ErrInvalidRole):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.ErrorErr("unhandled request error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
