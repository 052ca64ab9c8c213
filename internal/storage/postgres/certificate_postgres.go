package postgres

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CertificatePostgres struct {
	db *pgxpool.Pool
}

func NewCertificatePostgres(db *pgxpool.Pool) *CertificatePostgres {
	return &CertificatePostgres{db: db}
}

const certificateColumns = `
    id, course_id, student_id, enrollment_id, verification_code,
    issued_at, is_revoked, revoked_at
`

func scanCertificate(row rowScanner) (*models.CourseCertificate, error) {
	c := &models.CourseCertificate{}
	err := row.Scan(
		&c.ID, &c.CourseID, &c.StudentID, &c.EnrollmentID, &c.VerificationCode,
		&c.IssuedAt, &c.IsRevoked, &c.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCertificate distinguishes the two unique constraints on insert:
// a clash on the verification code is retryable with a fresh code, a
// clash on (course, student) is terminal.
func (r *CertificatePostgres) CreateCertificate(ctx context.Context, c *models.CourseCertificate) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO course_certificates (` + certificateColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query,
		c.ID, c.CourseID, c.StudentID, c.EnrollmentID, c.VerificationCode,
		c.IssuedAt, c.IsRevoked, c.RevokedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "verification_code") {
				return app_errors.ErrVerificationCodeTaken
			}
			return app_errors.ErrCertificateExists
		}
		return err
	}
	return nil
}

// CertificateByCode only returns live certificates. Revoked ones look
// like they never existed to verifiers.
func (r *CertificatePostgres) CertificateByCode(ctx context.Context, code string) (*models.CourseCertificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM course_certificates WHERE verification_code = $1 AND is_revoked = FALSE`
	c, err := scanCertificate(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCertificateNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CertificatePostgres) CertificateByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseCertificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM course_certificates WHERE course_id = $1 AND student_id = $2`
	c, err := scanCertificate(r.db.QueryRow(ctx, query, courseID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCertificateNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CertificatePostgres) CertificatesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseCertificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM course_certificates WHERE student_id = $1 AND is_revoked = FALSE ORDER BY issued_at DESC`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query student certificates: %w", err)
	}
	defer rows.Close()

	var certs []models.CourseCertificate
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, *c)
	}
	return certs, rows.Err()
}

func (r *CertificatePostgres) RevokeCertificate(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE course_certificates
           SET is_revoked = TRUE,
               revoked_at = NOW()
         WHERE id = $1 AND is_revoked = FALSE
    `, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCertificateNotFound
	}
	return nil
}
