package models

import (
	"time"

	"github.com/google/uuid"
)

// CoursePurchase grants time-boxed or lifetime access. AccessEndsAt is
// always computed from the pricing option, never taken from the client;
// nil means unlimited access.
type CoursePurchase struct {
	ID              uuid.UUID  `json:"id"`
	CourseID        uuid.UUID  `json:"course_id"`
	StudentID       uuid.UUID  `json:"student_id"`
	PricingOption   string     `json:"pricing_option"`
	PricePaid       int64      `json:"price_paid"`
	Currency        string     `json:"currency"`
	PaymentID       string     `json:"payment_id"`
	AccessStartsAt  time.Time  `json:"access_starts_at"`
	AccessEndsAt    *time.Time `json:"access_ends_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	AutoRenew       bool       `json:"auto_renew"`
	RefundRequested bool       `json:"refund_requested"`
	RefundAmount    int64      `json:"refund_amount,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
