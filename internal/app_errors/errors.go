package app_errors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrInvalidRole = errors.New("invalid signup role")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")

var ErrCourseNotFound = errors.New("course not found")
var ErrNotCourseOwner = errors.New("you do not have permission to modify this course")
var ErrSlugTaken = errors.New("slug is already in use")
var ErrCourseNotDraft = errors.New("only draft courses can be submitted for approval")
var ErrCourseNotPending = errors.New("only pending courses can be approved or rejected")
var ErrCourseNotPublished = errors.New("course is not published")
var ErrCourseNotLaunched = errors.New("course has not been launched for purchase")
var ErrCourseHasEnrollments = errors.New("course has active enrollments")
var ErrRejectionReasonRequired = errors.New("rejection reason is required")
var ErrLessonNotFound = errors.New("lesson not found")
var ErrLessonEditLocked = errors.New("lessons can only be changed before the course is published")

var ErrEnrollmentClosed = errors.New("enrollment deadline has passed")
var ErrCourseFull = errors.New("course has reached its enrollment limit")
var ErrInvalidPricingOption = errors.New("invalid pricing option")
var ErrPaymentRequired = errors.New("payment is required before enrollment")
var ErrAlreadyEnrolled = errors.New("already enrolled in this course")
var ErrEnrollmentNotFound = errors.New("enrollment not found")
var ErrEnrollmentNotActive = errors.New("enrollment is not active")
var ErrEnrollmentNotCompleted = errors.New("course is not completed")

var ErrInvalidRating = errors.New("rating must be between 1 and 5")
var ErrAlreadyReviewed = errors.New("course already reviewed")
var ErrReviewNotFound = errors.New("review not found")

var ErrCertificateExists = errors.New("certificate already issued for this course")
var ErrCertificateNotFound = errors.New("certificate not found")
var ErrVerificationCodeTaken = errors.New("verification code already in use")

var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")

// ValidationError lists the submission requirements a course does not
// meet. Controllers echo MissingFields under details.missingFields.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return e.Message
}
