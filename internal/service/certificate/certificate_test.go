package certificate

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/storage/memory"
	"CourseForge/pkg/logger"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestService() (*CertificateService, *memory.Store) {
	store := memory.NewStore()
	return NewCertificateService(logger.NewDiscard(), store, store, store), store
}

func seedCourse(t *testing.T, store *memory.Store, certAvailable bool) uuid.UUID {
	t.Helper()
	course := &models.Course{
		ID:                   uuid.New(),
		Slug:                 uuid.NewString(),
		Status:               models.StatusPublished,
		CertificateAvailable: certAvailable,
	}
	if _, err := store.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	return course.ID
}

func enroll(t *testing.T, store *memory.Store, courseID uuid.UUID, status string) uuid.UUID {
	t.Helper()
	student := uuid.New()
	err := store.CreateEnrollment(context.Background(), &models.CourseEnrollment{
		CourseID:  courseID,
		StudentID: student,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment: %v", err)
	}
	return student
}

func TestVerificationCodeMapping(t *testing.T) {
	// 0 and 36 both map to 'A', 35 and 251 to '9'; 252-255 are redrawn
	// so no symbol is favored by the byte range.
	got := appendCodeBytes(nil, []byte{0, 35, 36, 251, 252, 255})
	if string(got) != "A9A9" {
		t.Fatalf("mapped %q, want \"A9A9\"", got)
	}

	full := appendCodeBytes(nil, make([]byte, verificationCodeLength+4))
	if len(full) != verificationCodeLength {
		t.Fatalf("length = %d, want %d", len(full), verificationCodeLength)
	}

	code, err := newVerificationCode()
	if err != nil {
		t.Fatalf("newVerificationCode: %v", err)
	}
	if len(code) != verificationCodeLength {
		t.Fatalf("code %q, want %d characters", code, verificationCodeLength)
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, true)
	student := enroll(t, store, courseID, models.EnrollmentCompleted)

	cert, err := svc.Issue(ctx, courseID, student)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(cert.VerificationCode) != 12 {
		t.Fatalf("code %q, want 12 characters", cert.VerificationCode)
	}
	for _, r := range cert.VerificationCode {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
			t.Fatalf("code %q contains %q", cert.VerificationCode, r)
		}
	}

	verified, err := svc.Verify(ctx, cert.VerificationCode)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.CourseID != courseID || verified.StudentID != student {
		t.Fatalf("verified wrong certificate: %+v", verified)
	}

	enrollment, err := store.EnrollmentByCourseStudent(ctx, courseID, student)
	if err != nil {
		t.Fatalf("EnrollmentByCourseStudent: %v", err)
	}
	if !enrollment.CertificateIssued {
		t.Error("enrollment not flagged as certified")
	}
}

func TestIssueGuards(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	noCert := seedCourse(t, store, false)
	done := enroll(t, store, noCert, models.EnrollmentCompleted)
	if _, err := svc.Issue(ctx, noCert, done); !errors.Is(err, app_errors.ErrCertificateNotFound) {
		t.Errorf("course without certificates: %v, want ErrCertificateNotFound", err)
	}

	courseID := seedCourse(t, store, true)
	active := enroll(t, store, courseID, models.EnrollmentActive)
	if _, err := svc.Issue(ctx, courseID, active); !errors.Is(err, app_errors.ErrEnrollmentNotCompleted) {
		t.Errorf("incomplete enrollment: %v, want ErrEnrollmentNotCompleted", err)
	}
	if _, err := svc.Issue(ctx, courseID, uuid.New()); !errors.Is(err, app_errors.ErrEnrollmentNotFound) {
		t.Errorf("no enrollment: %v, want ErrEnrollmentNotFound", err)
	}
}

func TestIssueOncePerEnrollment(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, true)
	student := enroll(t, store, courseID, models.EnrollmentCompleted)

	if _, err := svc.Issue(ctx, courseID, student); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err := svc.Issue(ctx, courseID, student)
	if !errors.Is(err, app_errors.ErrCertificateExists) {
		t.Fatalf("second issue: %v, want ErrCertificateExists", err)
	}
}

func TestRevokeHidesCertificate(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	courseID := seedCourse(t, store, true)
	student := enroll(t, store, courseID, models.EnrollmentCompleted)

	cert, err := svc.Issue(ctx, courseID, student)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := svc.Revoke(ctx, courseID, student); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// A revoked code verifies like it never existed.
	if _, err := svc.Verify(ctx, cert.VerificationCode); !errors.Is(err, app_errors.ErrCertificateNotFound) {
		t.Fatalf("verify revoked: %v, want ErrCertificateNotFound", err)
	}
	certs, err := svc.StudentCertificates(ctx, student)
	if err != nil {
		t.Fatalf("StudentCertificates: %v", err)
	}
	if len(certs) != 0 {
		t.Fatalf("revoked certificate still listed: %d", len(certs))
	}

	if err := svc.Revoke(ctx, courseID, student); !errors.Is(err, app_errors.ErrCertificateNotFound) {
		t.Fatalf("double revoke: %v, want ErrCertificateNotFound", err)
	}
}

func TestStudentCertificates(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	first := seedCourse(t, store, true)
	second := seedCourse(t, store, true)
	student := uuid.New()
	for _, courseID := range []uuid.UUID{first, second} {
		err := store.CreateEnrollment(ctx, &models.CourseEnrollment{
			CourseID:  courseID,
			StudentID: student,
			Status:    models.EnrollmentCompleted,
		})
		if err != nil {
			t.Fatalf("CreateEnrollment: %v", err)
		}
		if _, err := svc.Issue(ctx, courseID, student); err != nil {
			t.Fatalf("Issue: %v", err)
		}
	}

	certs, err := svc.StudentCertificates(ctx, student)
	if err != nil {
		t.Fatalf("StudentCertificates: %v", err)
	}
	if len(certs) != 2 {
		t.Fatalf("certificates = %d, want 2", len(certs))
	}
}
