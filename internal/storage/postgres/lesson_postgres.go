package postgres

import (
	"CourseForge/internal/models"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LessonPostgres struct {
	db *pgxpool.Pool
}

func NewLessonPostgres(db *pgxpool.Pool) *LessonPostgres {
	return &LessonPostgres{db: db}
}

const lessonColumns = `
    id, course_id, title, description, lesson_order, duration, type,
    content_url, is_preview, is_required, created_at, updated_at
`

func scanLesson(row rowScanner) (*models.CourseLesson, error) {
	l := &models.CourseLesson{}
	err := row.Scan(
		&l.ID, &l.CourseID, &l.Title, &l.Description, &l.LessonOrder, &l.Duration, &l.Type,
		&l.ContentURL, &l.IsPreview, &l.IsRequired, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CreateLesson appends to the course: the order is assigned from the
// current maximum inside the insert statement so two concurrent appends
// cannot pick the same slot.
func (r *LessonPostgres) CreateLesson(ctx context.Context, l *models.CourseLesson) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	query := `
        INSERT INTO course_lessons (` + lessonColumns + `)
        SELECT $1, $2, $3, $4,
               COALESCE((SELECT MAX(lesson_order) FROM course_lessons WHERE course_id = $2), 0) + 1,
               $5, $6, $7, $8, $9, $10, $11
        RETURNING lesson_order
    `
	err := r.db.QueryRow(ctx, query,
		l.ID, l.CourseID, l.Title, l.Description, l.Duration, l.Type,
		l.ContentURL, l.IsPreview, l.IsRequired, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.LessonOrder)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (r *LessonPostgres) LessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseLesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM course_lessons WHERE course_id = $1 ORDER BY lesson_order`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.CourseLesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

func (r *LessonPostgres) CountLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM course_lessons WHERE course_id = $1`, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}
