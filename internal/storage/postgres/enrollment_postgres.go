package postgres

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

const enrollmentColumns = `
    id, course_id, student_id, status, progress, enrolled_at,
    completed_at, certificate_issued, payment_id, updated_at
`

func scanEnrollment(row rowScanner) (*models.CourseEnrollment, error) {
	e := &models.CourseEnrollment{}
	err := row.Scan(
		&e.ID, &e.CourseID, &e.StudentID, &e.Status, &e.Progress, &e.EnrolledAt,
		&e.CompletedAt, &e.CertificateIssued, &e.PaymentID, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// The courses counter update is conditional on the enrollment cap so a
// read-check-write race cannot oversell a course.
const incrementEnrollmentCounters = `
    UPDATE courses
       SET enrollment_count = enrollment_count + 1,
           current_enrollments = current_enrollments + 1,
           updated_at = NOW()
     WHERE id = $1
       AND (max_enrollments = 0 OR current_enrollments < max_enrollments)
`

func insertEnrollment(ctx context.Context, tx pgx.Tx, e *models.CourseEnrollment) error {
	query := `
        INSERT INTO course_enrollments (` + enrollmentColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := tx.Exec(ctx, query,
		e.ID, e.CourseID, e.StudentID, e.Status, e.Progress, e.EnrolledAt,
		e.CompletedAt, e.CertificateIssued, e.PaymentID, e.UpdatedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return app_errors.ErrAlreadyEnrolled
		}
		return err
	}
	return nil
}

// CreateEnrollment inserts the enrollment and bumps the course counters
// in one transaction. Uniqueness per (course, student) is enforced by
// the table constraint, not by a prior read.
func (r *EnrollmentPostgres) CreateEnrollment(ctx context.Context, e *models.CourseEnrollment) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.EnrolledAt = now
	e.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, incrementEnrollmentCounters, e.CourseID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseFull
	}

	if err := insertEnrollment(ctx, tx, e); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *EnrollmentPostgres) EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE id = $1`
	e, err := scanEnrollment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EnrollmentPostgres) EnrollmentByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE course_id = $1 AND student_id = $2`
	e, err := scanEnrollment(r.db.QueryRow(ctx, query, courseID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrEnrollmentNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EnrollmentPostgres) collectEnrollments(rows pgx.Rows) ([]models.CourseEnrollment, error) {
	defer rows.Close()
	var enrollments []models.CourseEnrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}

func (r *EnrollmentPostgres) EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE student_id = $1 ORDER BY enrolled_at DESC`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query student enrollments: %w", err)
	}
	return r.collectEnrollments(rows)
}

func (r *EnrollmentPostgres) EnrollmentsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE course_id = $1 ORDER BY enrolled_at DESC`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course enrollments: %w", err)
	}
	return r.collectEnrollments(rows)
}

func (r *EnrollmentPostgres) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM course_enrollments WHERE course_id = $1`, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

func (r *EnrollmentPostgres) UpdateEnrollmentStatus(ctx context.Context, id uuid.UUID, status string) error {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE course_enrollments
           SET status = $2,
               updated_at = NOW()
         WHERE id = $1
    `, id, status)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrEnrollmentNotFound
	}
	return nil
}

func (r *EnrollmentPostgres) SetEnrollmentProgress(ctx context.Context, id uuid.UUID, progress float64) error {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE course_enrollments
           SET progress = $2,
               updated_at = NOW()
         WHERE id = $1
    `, id, progress)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrEnrollmentNotFound
	}
	return nil
}

// CompleteEnrollment flips the enrollment to completed and bumps the
// course completion counter in the same transaction.
func (r *EnrollmentPostgres) CompleteEnrollment(ctx context.Context, enrollmentID, courseID uuid.UUID, completedAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
        UPDATE course_enrollments
           SET status = $2,
               progress = 100,
               completed_at = $3,
               updated_at = NOW()
         WHERE id = $1
    `, enrollmentID, models.EnrollmentCompleted, completedAt)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrEnrollmentNotFound
	}

	_, err = tx.Exec(ctx, `
        UPDATE courses
           SET completion_count = completion_count + 1,
               updated_at = NOW()
         WHERE id = $1
    `, courseID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *EnrollmentPostgres) MarkCertificateIssued(ctx context.Context, enrollmentID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE course_enrollments
           SET certificate_issued = TRUE,
               updated_at = NOW()
         WHERE id = $1
    `, enrollmentID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrEnrollmentNotFound
	}
	return nil
}
