package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
	EnrollmentSuspended = "suspended"
)

// CourseEnrollment is unique per (CourseID, StudentID). Enrollments are
// never deleted, only moved between soft states.
type CourseEnrollment struct {
	ID                uuid.UUID  `json:"id"`
	CourseID          uuid.UUID  `json:"course_id"`
	StudentID         uuid.UUID  `json:"student_id"`
	Status            string     `json:"status"`
	Progress          float64    `json:"progress"` // 0-100
	EnrolledAt        time.Time  `json:"enrolled_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CertificateIssued bool       `json:"certificate_issued"`
	PaymentID         string     `json:"payment_id,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
