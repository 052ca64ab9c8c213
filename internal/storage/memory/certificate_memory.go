package memory

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateCertificate(ctx context.Context, c *models.CourseCertificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{c.CourseID, c.StudentID}
	if _, exists := s.certKeys[key]; exists {
		return app_errors.ErrCertificateExists
	}
	if _, taken := s.certByCode[c.VerificationCode]; taken {
		return app_errors.ErrVerificationCodeTaken
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = time.Now().UTC()
	}

	stored := *c
	s.certificates[c.ID] = &stored
	s.certByCode[c.VerificationCode] = c.ID
	s.certKeys[key] = c.ID
	return nil
}

func (s *Store) CertificateByCode(ctx context.Context, code string) (*models.CourseCertificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.certByCode[code]
	if !ok {
		return nil, app_errors.ErrCertificateNotFound
	}
	c := s.certificates[id]
	if c.IsRevoked {
		return nil, app_errors.ErrCertificateNotFound
	}
	out := *c
	return &out, nil
}

func (s *Store) CertificateByCourseStudent(ctx context.Context, courseID, studentID uuid.UUID) (*models.CourseCertificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.certKeys[pairKey{courseID, studentID}]
	if !ok {
		return nil, app_errors.ErrCertificateNotFound
	}
	out := *s.certificates[id]
	return &out, nil
}

func (s *Store) CertificatesByStudent(ctx context.Context, studentID uuid.UUID) ([]models.CourseCertificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var certs []models.CourseCertificate
	for _, c := range s.certificates {
		if c.StudentID == studentID && !c.IsRevoked {
			certs = append(certs, *c)
		}
	}
	sort.SliceStable(certs, func(i, j int) bool {
		return certs[i].IssuedAt.After(certs[j].IssuedAt)
	})
	return certs, nil
}

func (s *Store) RevokeCertificate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.certificates[id]
	if !ok || c.IsRevoked {
		return app_errors.ErrCertificateNotFound
	}
	now := time.Now().UTC()
	c.IsRevoked = true
	c.RevokedAt = &now
	return nil
}
