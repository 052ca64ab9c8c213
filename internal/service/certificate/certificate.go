package certificate

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	verificationCodeLength   = 12
	verificationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeRetries              = 5

	// Largest multiple of len(verificationCodeAlphabet) below 256.
	// Bytes at or above it are redrawn so every symbol is equally
	// likely; a plain modulo would skew toward the low end.
	codeByteLimit = 252
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	EnrollmentByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseEnrollment, error)
	MarkCertificateIssued(ctx context.Context, enrollmentID uuid.UUID) error
}

type certificateRepo interface {
	CreateCertificate(ctx context.Context, c *models.CourseCertificate) error
	CertificateByCode(ctx context.Context, code string) (*models.CourseCertificate, error)
	CertificateByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseCertificate, error)
	CertificatesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseCertificate, error)
	RevokeCertificate(ctx context.Context, id uuid.UUID) error
}

type CertificateService struct {
	log             logger.Log
	courseRepo      courseRepo
	enrollmentRepo  enrollmentRepo
	certificateRepo certificateRepo
}

func NewCertificateService(log logger.Log, courseRepo courseRepo,
	enrollmentRepo enrollmentRepo, certificateRepo certificateRepo,
) *CertificateService {
	return &CertificateService{
		log:             log,
		courseRepo:      courseRepo,
		enrollmentRepo:  enrollmentRepo,
		certificateRepo: certificateRepo,
	}
}

// appendCodeBytes maps accepted random bytes onto the code alphabet,
// skipping rejected ones, until dst reaches the full code length.
func appendCodeBytes(dst, src []byte) []byte {
	for _, b := range src {
		if len(dst) == verificationCodeLength {
			break
		}
		if int(b) >= codeByteLimit {
			continue
		}
		dst = append(dst, verificationCodeAlphabet[int(b)%len(verificationCodeAlphabet)])
	}
	return dst
}

func newVerificationCode() (string, error) {
	code := make([]byte, 0, verificationCodeLength)
	buf := make([]byte, verificationCodeLength)
	for len(code) < verificationCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		code = appendCodeBytes(code, buf)
	}
	return string(code), nil
}

// Issue creates the certificate for a completed enrollment. A code
// collision retries with a fresh code; a duplicate issue surfaces the
// existing-certificate error.
func (s *CertificateService) Issue(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseCertificate, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.CertificateAvailable {
		return nil, app_errors.ErrCertificateNotFound
	}

	enrollment, err := s.enrollmentRepo.EnrollmentByCourseStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentCompleted {
		return nil, app_errors.ErrEnrollmentNotCompleted
	}

	cert := &models.CourseCertificate{
		CourseID:     courseID,
		StudentID:    studentID,
		EnrollmentID: enrollment.ID,
	}
	for attempt := 0; attempt < codeRetries; attempt++ {
		cert.VerificationCode, err = newVerificationCode()
		if err != nil {
			return nil, err
		}
		err = s.certificateRepo.CreateCertificate(ctx, cert)
		if err == nil {
			break
		}
		if errors.Is(err, app_errors.ErrVerificationCodeTaken) {
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := s.enrollmentRepo.MarkCertificateIssued(ctx, enrollment.ID); err != nil {
		s.log.ErrorErr("failed to flag enrollment as certified", err)
	}
	s.log.Info("certificate issued",
		"course_id", courseID.String(),
		"student_id", studentID.String(),
		"code", cert.VerificationCode,
	)
	return cert, nil
}

// Verify resolves a verification code anonymously. Revoked codes are
// indistinguishable from unknown ones.
func (s *CertificateService) Verify(ctx context.Context, code string) (*models.CourseCertificate, error) {
	return s.certificateRepo.CertificateByCode(ctx, code)
}

func (s *CertificateService) Revoke(ctx context.Context, courseID, studentID uuid.UUID) error {
	cert, err := s.certificateRepo.CertificateByCourseStudent(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	return s.certificateRepo.RevokeCertificate(ctx, cert.ID)
}

func (s *CertificateService) StudentCertificates(ctx context.Context, studentID uuid.UUID) ([]models.CourseCertificate, error) {
	return s.certificateRepo.CertificatesByStudent(ctx, studentID)
}
