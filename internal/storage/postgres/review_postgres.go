package postgres

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewPostgres struct {
	db *pgxpool.Pool
}

func NewReviewPostgres(db *pgxpool.Pool) *ReviewPostgres {
	return &ReviewPostgres{db: db}
}

const reviewColumns = `
    id, course_id, student_id, rating, title, comment, pros, cons,
    helpful_count, created_at, updated_at
`

func scanReview(row rowScanner) (*models.CourseReview, error) {
	rv := &models.CourseReview{}
	err := row.Scan(
		&rv.ID, &rv.CourseID, &rv.StudentID, &rv.Rating, &rv.Title, &rv.Comment, &rv.Pros, &rv.Cons,
		&rv.HelpfulCount, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// CreateReview inserts the review and folds its rating into the course
// aggregates in one transaction. All SET expressions read the old row,
// so the incremental mean stays consistent under concurrent inserts.
func (r *ReviewPostgres) CreateReview(ctx context.Context, rv *models.CourseReview) error {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	now := time.Now().UTC()
	rv.CreatedAt = now
	rv.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO course_reviews (` + reviewColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err = tx.Exec(ctx, query,
		rv.ID, rv.CourseID, rv.StudentID, rv.Rating, rv.Title, rv.Comment, rv.Pros, rv.Cons,
		rv.HelpfulCount, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return app_errors.ErrAlreadyReviewed
		}
		return err
	}

	_, err = tx.Exec(ctx, `
        UPDATE courses
           SET average_rating = ((average_rating * rating_count) + $2) / (rating_count + 1),
               rating_count = rating_count + 1,
               review_count = review_count + 1,
               updated_at = NOW()
         WHERE id = $1
    `, rv.CourseID, float64(rv.Rating))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var reviewSortClauses = map[string]string{
	models.ReviewSortNewest:  "created_at DESC",
	models.ReviewSortHelpful: "helpful_count DESC, created_at DESC",
}

func (r *ReviewPostgres) ReviewsByCourse(ctx context.Context, courseID uuid.UUID, page, limit int, sort string) ([]models.CourseReview, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	orderBy, ok := reviewSortClauses[sort]
	if !ok {
		orderBy = reviewSortClauses[models.ReviewSortNewest]
	}

	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM course_reviews WHERE course_id = $1`, courseID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `SELECT ` + reviewColumns + ` FROM course_reviews WHERE course_id = $1 ORDER BY ` + orderBy + ` LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, courseID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.CourseReview
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, *rv)
	}
	return reviews, total, rows.Err()
}

func (r *ReviewPostgres) IncrementHelpful(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE course_reviews
           SET helpful_count = helpful_count + 1,
               updated_at = NOW()
         WHERE id = $1
    `, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrReviewNotFound
	}
	return nil
}
