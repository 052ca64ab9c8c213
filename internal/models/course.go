package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

const (
	PricingMonthly  = "monthly"
	PricingYearly   = "yearly"
	PricingLifetime = "lifetime"
	PricingCustom   = "custom"
)

const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortPriceLow   = "price-low"
	SortPriceHigh  = "price-high"
	SortRatingHigh = "rating-high"
	SortRatingLow  = "rating-low"
	SortPopular    = "popular"
)

// CustomPricingTier is one entry of the custom pricing matrix. A zero
// DurationDays means open-ended access.
type CustomPricingTier struct {
	DurationDays int   `json:"duration_days"`
	Price        int64 `json:"price"`
}

type PricingOptions struct {
	Monthly  *int64              `json:"monthly,omitempty"`
	Yearly   *int64              `json:"yearly,omitempty"`
	Lifetime *int64              `json:"lifetime,omitempty"`
	Custom   []CustomPricingTier `json:"custom,omitempty"`
}

// AvailabilitySchedule bounds when and how many students may enroll.
// MaxEnrollments == 0 means unlimited.
type AvailabilitySchedule struct {
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	EnrollmentDeadline *time.Time `json:"enrollment_deadline,omitempty"`
	MaxEnrollments     int        `json:"max_enrollments"`
	CurrentEnrollments int        `json:"current_enrollments"`
}

type Course struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Subcategory      string    `json:"subcategory"`
	Tags             []string  `json:"tags"`
	Level            string    `json:"level"`
	Language         string    `json:"language"`

	// Price is in minor currency units (cents).
	Price    int64          `json:"price"`
	Currency string         `json:"currency"`
	IsFree   bool           `json:"is_free"`
	Pricing  PricingOptions `json:"pricing_options"`

	ThumbnailObjectKey string `json:"thumbnail_object_key,omitempty"`

	Duration             int      `json:"duration"` // total minutes
	Objectives           []string `json:"objectives"`
	Prerequisites        []string `json:"prerequisites"`
	TargetAudience       []string `json:"target_audience"`
	CertificateAvailable bool     `json:"certificate_available"`

	Status          string     `json:"status"`
	IsLaunched      bool       `json:"is_launched"`
	LaunchDate      *time.Time `json:"launch_date,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ApprovedBy      *uuid.UUID `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`

	Availability AvailabilitySchedule `json:"availability_schedule"`

	// Aggregate statistics, maintained by the lifecycle subsystem only.
	EnrollmentCount int     `json:"enrollment_count"`
	CompletionCount int     `json:"completion_count"`
	AverageRating   float64 `json:"average_rating"`
	RatingCount     int     `json:"rating_count"`
	ReviewCount     int     `json:"review_count"`

	Featured   bool `json:"featured"`
	Trending   bool `json:"trending"`
	Bestseller bool `json:"bestseller"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseFilters is the normalized search filter bag. Status is not a
// filter: search only ever returns published courses.
type CourseFilters struct {
	Category       string
	Subcategory    string
	Level          string
	Language       string
	MinPrice       *int64
	MaxPrice       *int64
	MinRating      *float64
	Tags           []string
	IsFree         *bool
	HasCertificate *bool
	Search         string
	Sort           string
	Page           int
	Limit          int
}

type CourseSearchResult struct {
	Courses []Course `json:"courses"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	HasMore bool     `json:"has_more"`
}

type InstructorStats struct {
	TotalCourses     int     `json:"total_courses"`
	PublishedCourses int     `json:"published_courses"`
	TotalStudents    int     `json:"total_students"`
	TotalRevenue     int64   `json:"total_revenue"`
	AverageRating    float64 `json:"average_rating"`
}
