package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseCertificate is issued at most once per (CourseID, StudentID).
// VerificationCode is a globally unique 12-character uppercase
// alphanumeric token usable for anonymous verification.
type CourseCertificate struct {
	ID               uuid.UUID  `json:"id"`
	CourseID         uuid.UUID  `json:"course_id"`
	StudentID        uuid.UUID  `json:"student_id"`
	EnrollmentID     uuid.UUID  `json:"enrollment_id"`
	VerificationCode string     `json:"verification_code"`
	IssuedAt         time.Time  `json:"issued_at"`
	IsRevoked        bool       `json:"is_revoked"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
}
