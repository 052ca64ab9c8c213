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

type PurchasePostgres struct {
	db *pgxpool.Pool
}

func NewPurchasePostgres(db *pgxpool.Pool) *PurchasePostgres {
	return &PurchasePostgres{db: db}
}

const purchaseColumns = `
    id, course_id, student_id, pricing_option, price_paid, currency, payment_id,
    access_starts_at, access_ends_at, is_active, auto_renew,
    refund_requested, refund_amount, refunded_at, created_at
`

func scanPurchase(row rowScanner) (*models.CoursePurchase, error) {
	p := &models.CoursePurchase{}
	err := row.Scan(
		&p.ID, &p.CourseID, &p.StudentID, &p.PricingOption, &p.PricePaid, &p.Currency, &p.PaymentID,
		&p.AccessStartsAt, &p.AccessEndsAt, &p.IsActive, &p.AutoRenew,
		&p.RefundRequested, &p.RefundAmount, &p.RefundedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePurchaseWithEnrollment commits the purchase, its enrollment and
// the course counter bump as one transaction: a failed enrollment insert
// (duplicate student) rolls everything back.
func (r *PurchasePostgres) CreatePurchaseWithEnrollment(ctx context.Context, p *models.CoursePurchase, e *models.CourseEnrollment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	e.EnrolledAt = now
	e.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, incrementEnrollmentCounters, p.CourseID)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseFull
	}

	if err := insertEnrollment(ctx, tx, e); err != nil {
		return err
	}

	query := `
        INSERT INTO course_purchases (` + purchaseColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err = tx.Exec(ctx, query,
		p.ID, p.CourseID, p.StudentID, p.PricingOption, p.PricePaid, p.Currency, p.PaymentID,
		p.AccessStartsAt, p.AccessEndsAt, p.IsActive, p.AutoRenew,
		p.RefundRequested, p.RefundAmount, p.RefundedAt, p.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PurchasePostgres) PurchasesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CoursePurchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM course_purchases WHERE student_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query student purchases: %w", err)
	}
	defer rows.Close()

	var purchases []models.CoursePurchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

// RevenueByOwner totals what students paid across all of an
// instructor's courses.
func (r *PurchasePostgres) RevenueByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var revenue int64
	err := r.db.QueryRow(ctx, `
        SELECT COALESCE(SUM(p.price_paid), 0)
        FROM course_purchases p
        JOIN courses c ON p.course_id = c.id
        WHERE c.owner_id = $1
    `, ownerID).Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("failed to total owner revenue: %w", err)
	}
	return revenue, nil
}

// ActivePurchase returns the newest purchase still granting access, or
// nil when none exists.
func (r *PurchasePostgres) ActivePurchase(ctx context.Context, courseID, studentID uuid.UUID) (*models.CoursePurchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM course_purchases
        WHERE course_id = $1 AND student_id = $2 AND is_active = TRUE
          AND (access_ends_at IS NULL OR access_ends_at > NOW())
        ORDER BY created_at DESC
        LIMIT 1`
	p, err := scanPurchase(r.db.QueryRow(ctx, query, courseID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
