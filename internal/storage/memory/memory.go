// Package memory is an in-process implementation of the storage
// contracts. It mirrors the postgres behavior, sentinel for sentinel,
// and backs the service tests.
package memory

import (
	"sync"

	"CourseForge/internal/models"

	"github.com/google/uuid"
)

type pairKey struct {
	a uuid.UUID
	b uuid.UUID
}

type Store struct {
	mu sync.RWMutex

	courses map[uuid.UUID]*models.Course
	slugs   map[string]uuid.UUID

	lessons map[uuid.UUID][]models.CourseLesson

	enrollments    map[uuid.UUID]*models.CourseEnrollment
	enrollmentKeys map[pairKey]uuid.UUID

	purchases map[uuid.UUID]*models.CoursePurchase

	progress map[pairKey]*models.CourseProgress

	reviews    map[uuid.UUID]*models.CourseReview
	reviewKeys map[pairKey]uuid.UUID

	certificates map[uuid.UUID]*models.CourseCertificate
	certByCode   map[string]uuid.UUID
	certKeys     map[pairKey]uuid.UUID

	users     map[uuid.UUID]*models.User
	usernames map[string]uuid.UUID
}

func NewStore() *Store {
	return &Store{
		courses:        make(map[uuid.UUID]*models.Course),
		slugs:          make(map[string]uuid.UUID),
		lessons:        make(map[uuid.UUID][]models.CourseLesson),
		enrollments:    make(map[uuid.UUID]*models.CourseEnrollment),
		enrollmentKeys: make(map[pairKey]uuid.UUID),
		purchases:      make(map[uuid.UUID]*models.CoursePurchase),
		progress:       make(map[pairKey]*models.CourseProgress),
		reviews:        make(map[uuid.UUID]*models.CourseReview),
		reviewKeys:     make(map[pairKey]uuid.UUID),
		certificates:   make(map[uuid.UUID]*models.CourseCertificate),
		certByCode:     make(map[string]uuid.UUID),
		certKeys:       make(map[pairKey]uuid.UUID),
		users:          make(map[uuid.UUID]*models.User),
		usernames:      make(map[string]uuid.UUID),
	}
}
