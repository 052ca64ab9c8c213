package http

import (
	"CourseForge/internal/delivery/http/controllers"
	"CourseForge/internal/models"
	"CourseForge/internal/service"
	"CourseForge/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler()
	authController := controllers.NewAuthHandler(l, u.AuthService)
	courseController := controllers.NewCourseHandler(l, u.CourseService)
	enrollmentController := controllers.NewEnrollmentHandler(l, u.EnrollmentService)
	progressController := controllers.NewProgressHandler(l, u.ProgressService)
	reviewController := controllers.NewReviewHandler(l, u.ReviewService)
	certificateController := controllers.NewCertificateHandler(l, u.CertificateService)

	v1 := r.Group("/v1", controllers.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", authController.AuthMiddleware, authController.Me)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/refresh", authController.Refresh)
		}

		v1.GET("/certificates/verify/:code", certificateController.VerifyCertificate)

		courses := v1.Group("/courses")
		{
			courses.GET("", courseController.SearchCourses)
			courses.GET("/shelves/:shelf", courseController.GetShelf)
			courses.GET("/slug/:slug", authController.OptionalAuthMiddleware, courseController.GetCourseBySlug)
			courses.GET("/:course_id", authController.OptionalAuthMiddleware, courseController.GetCourse)
			courses.GET("/:course_id/lessons", authController.OptionalAuthMiddleware, courseController.GetCourseLessons)
			courses.GET("/:course_id/reviews", reviewController.GetCourseReviews)
			courses.GET("/:course_id/thumbnail", courseController.GetThumbnailURL)

			instructor := courses.Group("", authController.AuthMiddleware, controllers.RequireRoles(models.ConsultantRole))
			{
				instructor.POST("", courseController.CreateCourse)
				instructor.PUT("/:course_id", courseController.UpdateCourse)
				instructor.DELETE("/:course_id", courseController.DeleteCourse)
				instructor.PATCH("/:course_id/submit", courseController.SubmitCourse)
				instructor.PATCH("/:course_id/launch", courseController.LaunchCourse)
				instructor.PATCH("/:course_id/archive", courseController.ArchiveCourse)
				instructor.PUT("/:course_id/thumbnail", courseController.UploadThumbnail)
				instructor.POST("/:course_id/lessons", courseController.AddLesson)
				instructor.GET("/my-courses", courseController.GetMyCourses)
				instructor.GET("/instructor-stats", courseController.GetInstructorStats)
				instructor.GET("/:course_id/enrollments", enrollmentController.GetCourseEnrollments)
			}

			admin := courses.Group("", authController.AuthMiddleware, controllers.RequireRoles(models.AdminRole))
			{
				admin.GET("/pending", courseController.GetPendingCourses)
				admin.PATCH("/:course_id/approve", courseController.ApproveCourse)
				admin.PATCH("/:course_id/reject", courseController.RejectCourse)
			}

			student := courses.Group("", authController.AuthMiddleware, controllers.RequireRoles(models.StudentRole))
			{
				student.POST("/:course_id/purchase", enrollmentController.PurchaseCourse)
				student.POST("/:course_id/enroll", enrollmentController.EnrollCourse)
				student.GET("/:course_id/access", enrollmentController.CheckAccess)
				student.POST("/:course_id/reviews", reviewController.AddReview)
				student.POST("/:course_id/certificate", certificateController.IssueCertificate)
			}
		}

		enrollments := v1.Group("/enrollments", authController.AuthMiddleware, controllers.RequireRoles(models.StudentRole))
		{
			enrollments.GET("", enrollmentController.GetMyEnrollments)
			enrollments.PATCH("/:enrollment_id/drop", enrollmentController.DropEnrollment)
			enrollments.PUT("/:enrollment_id/lessons/:lesson_id/progress", progressController.UpdateLessonProgress)
			enrollments.GET("/:enrollment_id/progress", progressController.GetEnrollmentProgress)
		}

		v1.GET("/purchases", authController.AuthMiddleware, controllers.RequireRoles(models.StudentRole), enrollmentController.GetMyPurchases)
		v1.GET("/certificates", authController.AuthMiddleware, controllers.RequireRoles(models.StudentRole), certificateController.GetMyCertificates)

		reviews := v1.Group("/reviews", authController.AuthMiddleware, controllers.RequireRoles(models.StudentRole))
		{
			reviews.POST("/:review_id/helpful", reviewController.MarkReviewHelpful)
		}

		adminOps := v1.Group("/admin", authController.AuthMiddleware, controllers.RequireRoles(models.AdminRole))
		{
			adminOps.POST("/certificates/revoke", certificateController.RevokeCertificate)
			adminOps.PATCH("/enrollments/:enrollment_id/suspend", enrollmentController.SuspendEnrollment)
			adminOps.PATCH("/enrollments/:enrollment_id/reactivate", enrollmentController.ReactivateEnrollment)
		}
	}
	return r
}
