package service

import (
	"CourseForge/internal/service/auth"
	"CourseForge/internal/service/certificate"
	"CourseForge/internal/service/course"
	"CourseForge/internal/service/enrollment"
	"CourseForge/internal/service/progress"
	"CourseForge/internal/service/review"
)

type Collection struct {
	*auth.AuthService
	*course.CourseService
	*enrollment.EnrollmentService
	*progress.ProgressService
	*review.ReviewService
	*certificate.CertificateService
}
