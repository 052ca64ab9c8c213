package postgres

import (
	"CourseForge/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressPostgres struct {
	db *pgxpool.Pool
}

func NewProgressPostgres(db *pgxpool.Pool) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

const progressColumns = `
    id, enrollment_id, lesson_id, student_id, progress, time_spent,
    watch_time, last_position, completed, started_at, completed_at, updated_at
`

func scanProgress(row rowScanner) (*models.CourseProgress, error) {
	p := &models.CourseProgress{}
	err := row.Scan(
		&p.ID, &p.EnrollmentID, &p.LessonID, &p.StudentID, &p.Progress, &p.TimeSpent,
		&p.WatchTime, &p.LastPosition, &p.Completed, &p.StartedAt, &p.CompletedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertProgress writes the merged progress record. On conflict the row
// keeps its original started_at; everything else is replaced.
func (r *ProgressPostgres) UpsertProgress(ctx context.Context, p *models.CourseProgress) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.StartedAt.IsZero() {
		p.StartedAt = now
	}
	p.UpdatedAt = now

	query := `
        INSERT INTO course_progress (` + progressColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (enrollment_id, lesson_id) DO UPDATE SET
            progress = EXCLUDED.progress,
            time_spent = EXCLUDED.time_spent,
            watch_time = EXCLUDED.watch_time,
            last_position = EXCLUDED.last_position,
            completed = EXCLUDED.completed,
            completed_at = EXCLUDED.completed_at,
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.db.Exec(ctx, query,
		p.ID, p.EnrollmentID, p.LessonID, p.StudentID, p.Progress, p.TimeSpent,
		p.WatchTime, p.LastPosition, p.Completed, p.StartedAt, p.CompletedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lesson progress: %w", err)
	}
	return nil
}

// ProgressRecord returns nil without error when the lesson has not been
// started.
func (r *ProgressPostgres) ProgressRecord(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*models.CourseProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM course_progress WHERE enrollment_id = $1 AND lesson_id = $2`
	p, err := scanProgress(r.db.QueryRow(ctx, query, enrollmentID, lessonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ProgressPostgres) ProgressByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]models.CourseProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM course_progress WHERE enrollment_id = $1 ORDER BY started_at`
	rows, err := r.db.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollment progress: %w", err)
	}
	defer rows.Close()

	var records []models.CourseProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *p)
	}
	return records, rows.Err()
}
