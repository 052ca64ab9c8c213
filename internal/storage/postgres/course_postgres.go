package postgres

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

const courseColumns = `
    id, owner_id, slug, title, short_description, description,
    category, subcategory, tags, level, language,
    price, currency, is_free, monthly_price, yearly_price, lifetime_price, custom_pricing,
    thumbnail_object_key, duration, objectives, prerequisites, target_audience, certificate_available,
    status, is_launched, launch_date, submitted_at, approved_by, approved_at, rejection_reason, published_at,
    start_date, end_date, enrollment_deadline, max_enrollments, current_enrollments,
    enrollment_count, completion_count, average_rating, rating_count, review_count,
    featured, trending, bestseller, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	c := &models.Course{}
	var customPricing []byte
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Slug, &c.Title, &c.ShortDescription, &c.Description,
		&c.Category, &c.Subcategory, &c.Tags, &c.Level, &c.Language,
		&c.Price, &c.Currency, &c.IsFree, &c.Pricing.Monthly, &c.Pricing.Yearly, &c.Pricing.Lifetime, &customPricing,
		&c.ThumbnailObjectKey, &c.Duration, &c.Objectives, &c.Prerequisites, &c.TargetAudience, &c.CertificateAvailable,
		&c.Status, &c.IsLaunched, &c.LaunchDate, &c.SubmittedAt, &c.ApprovedBy, &c.ApprovedAt, &c.RejectionReason, &c.PublishedAt,
		&c.Availability.StartDate, &c.Availability.EndDate, &c.Availability.EnrollmentDeadline,
		&c.Availability.MaxEnrollments, &c.Availability.CurrentEnrollments,
		&c.EnrollmentCount, &c.CompletionCount, &c.AverageRating, &c.RatingCount, &c.ReviewCount,
		&c.Featured, &c.Trending, &c.Bestseller, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(customPricing) > 0 {
		if err := json.Unmarshal(customPricing, &c.Pricing.Custom); err != nil {
			return nil, fmt.Errorf("decode custom pricing: %w", err)
		}
	}
	return c, nil
}

func encodeCustomPricing(tiers []models.CustomPricingTier) ([]byte, error) {
	if len(tiers) == 0 {
		return nil, nil
	}
	return json.Marshal(tiers)
}

func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course) (uuid.UUID, error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	customPricing, err := encodeCustomPricing(course.Pricing.Custom)
	if err != nil {
		return uuid.Nil, err
	}

	query := `
        INSERT INTO courses (` + courseColumns + `)
        VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9, $10, $11,
            $12, $13, $14, $15, $16, $17, $18,
            $19, $20, $21, $22, $23, $24,
            $25, $26, $27, $28, $29, $30, $31, $32,
            $33, $34, $35, $36, $37,
            $38, $39, $40, $41, $42,
            $43, $44, $45, $46, $47
        )
    `
	_, err = r.db.Exec(ctx, query,
		course.ID, course.OwnerID, course.Slug, course.Title, course.ShortDescription, course.Description,
		course.Category, course.Subcategory, course.Tags, course.Level, course.Language,
		course.Price, course.Currency, course.IsFree, course.Pricing.Monthly, course.Pricing.Yearly, course.Pricing.Lifetime, customPricing,
		course.ThumbnailObjectKey, course.Duration, course.Objectives, course.Prerequisites, course.TargetAudience, course.CertificateAvailable,
		course.Status, course.IsLaunched, course.LaunchDate, course.SubmittedAt, course.ApprovedBy, course.ApprovedAt, course.RejectionReason, course.PublishedAt,
		course.Availability.StartDate, course.Availability.EndDate, course.Availability.EnrollmentDeadline,
		course.Availability.MaxEnrollments, course.Availability.CurrentEnrollments,
		course.EnrollmentCount, course.CompletionCount, course.AverageRating, course.RatingCount, course.ReviewCount,
		course.Featured, course.Trending, course.Bestseller, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return uuid.Nil, app_errors.ErrSlugTaken
		}
		return uuid.Nil, err
	}
	return course.ID, nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *CoursePostgres) CourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1`
	course, err := scanCourse(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// UpdateCourse writes the whole row in one statement so partial updates
// cannot be observed.
func (r *CoursePostgres) UpdateCourse(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()

	customPricing, err := encodeCustomPricing(course.Pricing.Custom)
	if err != nil {
		return err
	}

	query := `
        UPDATE courses SET
            slug = $2, title = $3, short_description = $4, description = $5,
            category = $6, subcategory = $7, tags = $8, level = $9, language = $10,
            price = $11, currency = $12, is_free = $13,
            monthly_price = $14, yearly_price = $15, lifetime_price = $16, custom_pricing = $17,
            thumbnail_object_key = $18, duration = $19,
            objectives = $20, prerequisites = $21, target_audience = $22, certificate_available = $23,
            status = $24, is_launched = $25, launch_date = $26, submitted_at = $27,
            approved_by = $28, approved_at = $29, rejection_reason = $30, published_at = $31,
            start_date = $32, end_date = $33, enrollment_deadline = $34, max_enrollments = $35,
            featured = $36, trending = $37, bestseller = $38,
            updated_at = $39
        WHERE id = $1
    `
	cmdTag, err := r.db.Exec(ctx, query,
		course.ID,
		course.Slug, course.Title, course.ShortDescription, course.Description,
		course.Category, course.Subcategory, course.Tags, course.Level, course.Language,
		course.Price, course.Currency, course.IsFree,
		course.Pricing.Monthly, course.Pricing.Yearly, course.Pricing.Lifetime, customPricing,
		course.ThumbnailObjectKey, course.Duration,
		course.Objectives, course.Prerequisites, course.TargetAudience, course.CertificateAvailable,
		course.Status, course.IsLaunched, course.LaunchDate, course.SubmittedAt,
		course.ApprovedBy, course.ApprovedAt, course.RejectionReason, course.PublishedAt,
		course.Availability.StartDate, course.Availability.EndDate, course.Availability.EnrollmentDeadline,
		course.Availability.MaxEnrollments,
		course.Featured, course.Trending, course.Bestseller,
		course.UpdatedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return app_errors.ErrSlugTaken
		}
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) UpdateThumbnail(ctx context.Context, id uuid.UUID, objectKey string) error {
	cmdTag, err := r.db.Exec(ctx, `
        UPDATE courses
           SET thumbnail_object_key = $2,
               updated_at = NOW()
         WHERE id = $1
    `, id, objectKey)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func (r *CoursePostgres) collectCourses(rows pgx.Rows) ([]models.Course, error) {
	defer rows.Close()
	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func (r *CoursePostgres) CoursesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses by owner: %w", err)
	}
	return r.collectCourses(rows)
}

func (r *CoursePostgres) PendingCourses(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending courses: %w", err)
	}
	return r.collectCourses(rows)
}

var shelfColumns = map[string]string{
	"featured":   "featured",
	"trending":   "trending",
	"bestseller": "bestseller",
}

func (r *CoursePostgres) FlaggedCourses(ctx context.Context, flag string, limit int) ([]models.Course, error) {
	column, ok := shelfColumns[flag]
	if !ok {
		return nil, fmt.Errorf("unknown course shelf %q", flag)
	}
	query := `SELECT ` + courseColumns + ` FROM courses
        WHERE status = $1 AND ` + column + ` = TRUE
        ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, models.StatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s courses: %w", flag, err)
	}
	return r.collectCourses(rows)
}

var sortClauses = map[string]string{
	models.SortNewest:     "created_at DESC",
	models.SortOldest:     "created_at ASC",
	models.SortPriceLow:   "price ASC, created_at DESC",
	models.SortPriceHigh:  "price DESC, created_at DESC",
	models.SortRatingHigh: "average_rating DESC, created_at DESC",
	models.SortRatingLow:  "average_rating ASC, created_at DESC",
	models.SortPopular:    "enrollment_count DESC, created_at DESC",
}

// SearchCourses only ever returns published courses regardless of the
// supplied filters. idHint, when non-nil, restricts the result to the
// candidate set produced by the text-search index; an empty non-nil hint
// yields no rows.
func (r *CoursePostgres) SearchCourses(ctx context.Context, filters models.CourseFilters, idHint []uuid.UUID) ([]models.Course, int, error) {
	conditions := []string{"status = $1"}
	args := []any{models.StatusPublished}

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filters.Category != "" {
		add("category = $%d", filters.Category)
	}
	if filters.Subcategory != "" {
		add("subcategory = $%d", filters.Subcategory)
	}
	if filters.Level != "" {
		add("level = $%d", filters.Level)
	}
	if filters.Language != "" {
		add("language = $%d", filters.Language)
	}
	if filters.MinPrice != nil {
		add("price >= $%d", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		add("price <= $%d", *filters.MaxPrice)
	}
	if filters.MinRating != nil {
		add("average_rating >= $%d", *filters.MinRating)
	}
	if filters.IsFree != nil {
		add("is_free = $%d", *filters.IsFree)
	}
	if filters.HasCertificate != nil {
		add("certificate_available = $%d", *filters.HasCertificate)
	}
	if len(filters.Tags) > 0 {
		add("tags && $%d", filters.Tags)
	}
	if idHint != nil {
		if len(idHint) == 0 {
			return []models.Course{}, 0, nil
		}
		add("id = ANY($%d)", idHint)
	} else if filters.Search != "" {
		// Fallback path when the search index is unavailable.
		args = append(args, "%"+filters.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM courses WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	orderBy, ok := sortClauses[filters.Sort]
	if !ok {
		orderBy = sortClauses[models.SortNewest]
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(
		`SELECT %s FROM courses WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		courseColumns, where, orderBy, limit, offset,
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search courses: %w", err)
	}
	courses, err := r.collectCourses(rows)
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}
