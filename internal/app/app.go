package app

import (
	"CourseForge/internal/app/server"
	"CourseForge/internal/config"
	"CourseForge/internal/delivery/http"
	"CourseForge/internal/service"
	"CourseForge/internal/service/auth"
	"CourseForge/internal/service/certificate"
	"CourseForge/internal/service/course"
	"CourseForge/internal/service/enrollment"
	"CourseForge/internal/service/progress"
	"CourseForge/internal/service/review"
	"CourseForge/internal/storage/elastic"
	"CourseForge/internal/storage/minio_storage"
	"CourseForge/internal/storage/postgres"
	"CourseForge/pkg/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
)

const thumbnailsBucket = "thumbnails"

func Run(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(context.Background()); err != nil {
		log.FatalErr("error preparing course search index", err)
	}

	minioStorage, err := minio_storage.NewMinioStorage(
		cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Buckets,
	)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	bucketCfg := cfg.Minio.Buckets[thumbnailsBucket]
	thumbnailRepo, err := minio_storage.NewThumbnailStorage(minioStorage, bucketCfg.Name, bucketCfg.PresignTTL)
	if err != nil {
		log.FatalErr("error preparing thumbnail bucket", err)
	}

	userRepo := postgres.NewUserPostgres(pg.Pool)
	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	lessonRepo := postgres.NewLessonPostgres(pg.Pool)
	enrollmentRepo := postgres.NewEnrollmentPostgres(pg.Pool)
	purchaseRepo := postgres.NewPurchasePostgres(pg.Pool)
	progressRepo := postgres.NewProgressPostgres(pg.Pool)
	reviewRepo := postgres.NewReviewPostgres(pg.Pool)
	certificateRepo := postgres.NewCertificatePostgres(pg.Pool)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "courseforge", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	u := service.Collection{
		AuthService:        auth.NewAuthService(log, jwtManager, userRepo, tokenRepo),
		CourseService:      course.NewCourseService(log, courseRepo, lessonRepo, enrollmentRepo, purchaseRepo, searchRepo, thumbnailRepo),
		EnrollmentService:  enrollment.NewEnrollmentService(log, courseRepo, enrollmentRepo, purchaseRepo),
		ProgressService:    progress.NewProgressService(log, enrollmentRepo, lessonRepo, progressRepo),
		ReviewService:      review.NewReviewService(log, enrollmentRepo, reviewRepo),
		CertificateService: certificate.NewCertificateService(log, courseRepo, enrollmentRepo, certificateRepo),
	}

	r := http.InitRoutes(log, u)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	if err := srv.Shutdown(); err != nil {
		log.ErrorErr("server shutdown failed", err)
	}
}
