package memory

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateCourse(ctx context.Context, course *models.Course) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.slugs[course.Slug]; taken {
		return uuid.Nil, app_errors.ErrSlugTaken
	}
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	stored := *course
	s.courses[course.ID] = &stored
	s.slugs[course.Slug] = course.ID
	return course.ID, nil
}

func (s *Store) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	c := *course
	return &c, nil
}

func (s *Store) CourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.slugs[slug]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	c := *s.courses[id]
	return &c, nil
}

// UpdateCourse replaces the mutable fields and, like the postgres
// implementation, leaves the aggregate counters untouched.
func (s *Store) UpdateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.courses[course.ID]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	if other, taken := s.slugs[course.Slug]; taken && other != course.ID {
		return app_errors.ErrSlugTaken
	}

	course.UpdatedAt = time.Now().UTC()
	course.CreatedAt = stored.CreatedAt
	course.EnrollmentCount = stored.EnrollmentCount
	course.CompletionCount = stored.CompletionCount
	course.AverageRating = stored.AverageRating
	course.RatingCount = stored.RatingCount
	course.ReviewCount = stored.ReviewCount
	course.Availability.CurrentEnrollments = stored.Availability.CurrentEnrollments

	if stored.Slug != course.Slug {
		delete(s.slugs, stored.Slug)
		s.slugs[course.Slug] = course.ID
	}
	next := *course
	s.courses[course.ID] = &next
	return nil
}

func (s *Store) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[id]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	delete(s.slugs, course.Slug)
	delete(s.courses, id)
	delete(s.lessons, id)
	return nil
}

func (s *Store) UpdateThumbnail(ctx context.Context, id uuid.UUID, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[id]
	if !ok {
		return app_errors.ErrCourseNotFound
	}
	course.ThumbnailObjectKey = objectKey
	course.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) CoursesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var courses []models.Course
	for _, c := range s.courses {
		if c.OwnerID == ownerID {
			courses = append(courses, *c)
		}
	}
	sortCourses(courses, models.SortNewest)
	return courses, nil
}

func (s *Store) PendingCourses(ctx context.Context) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var courses []models.Course
	for _, c := range s.courses {
		if c.Status == models.StatusPending {
			courses = append(courses, *c)
		}
	}
	sortCourses(courses, models.SortNewest)
	return courses, nil
}

func (s *Store) FlaggedCourses(ctx context.Context, flag string, limit int) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var courses []models.Course
	for _, c := range s.courses {
		if c.Status != models.StatusPublished {
			continue
		}
		var flagged bool
		switch flag {
		case "featured":
			flagged = c.Featured
		case "trending":
			flagged = c.Trending
		case "bestseller":
			flagged = c.Bestseller
		default:
			return nil, fmt.Errorf("unknown course shelf %q", flag)
		}
		if flagged {
			courses = append(courses, *c)
		}
	}
	sortCourses(courses, models.SortNewest)
	if limit > 0 && len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func matchesFilters(c *models.Course, f models.CourseFilters) bool {
	if c.Status != models.StatusPublished {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && c.Subcategory != f.Subcategory {
		return false
	}
	if f.Level != "" && c.Level != f.Level {
		return false
	}
	if f.Language != "" && c.Language != f.Language {
		return false
	}
	if f.MinPrice != nil && c.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && c.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && c.AverageRating < *f.MinRating {
		return false
	}
	if f.IsFree != nil && c.IsFree != *f.IsFree {
		return false
	}
	if f.HasCertificate != nil && c.CertificateAvailable != *f.HasCertificate {
		return false
	}
	if len(f.Tags) > 0 && !tagsOverlap(c.Tags, f.Tags) {
		return false
	}
	return true
}

func tagsOverlap(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func matchesText(c *models.Course, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(c.Title), needle) ||
		strings.Contains(strings.ToLower(c.Description), needle)
}

// sortCourses mirrors the postgres ORDER BY clauses, including the
// created_at DESC tie-break every non-oldest sort carries. Map
// iteration order would otherwise leak into tied results.
func sortCourses(courses []models.Course, by string) {
	newer := func(a, b *models.Course) bool { return a.CreatedAt.After(b.CreatedAt) }
	less := newer
	switch by {
	case models.SortOldest:
		less = func(a, b *models.Course) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case models.SortPriceLow:
		less = func(a, b *models.Course) bool {
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return newer(a, b)
		}
	case models.SortPriceHigh:
		less = func(a, b *models.Course) bool {
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return newer(a, b)
		}
	case models.SortRatingHigh:
		less = func(a, b *models.Course) bool {
			if a.AverageRating != b.AverageRating {
				return a.AverageRating > b.AverageRating
			}
			return newer(a, b)
		}
	case models.SortRatingLow:
		less = func(a, b *models.Course) bool {
			if a.AverageRating != b.AverageRating {
				return a.AverageRating < b.AverageRating
			}
			return newer(a, b)
		}
	case models.SortPopular:
		less = func(a, b *models.Course) bool {
			if a.EnrollmentCount != b.EnrollmentCount {
				return a.EnrollmentCount > b.EnrollmentCount
			}
			return newer(a, b)
		}
	}
	sort.SliceStable(courses, func(i, j int) bool { return less(&courses[i], &courses[j]) })
}

// SearchCourses follows the postgres contract: only published courses,
// an empty non-nil idHint short-circuits to no rows, a text query with
// no hint falls back to substring matching.
func (s *Store) SearchCourses(ctx context.Context, filters models.CourseFilters, idHint []uuid.UUID) ([]models.Course, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hintSet map[uuid.UUID]struct{}
	if idHint != nil {
		if len(idHint) == 0 {
			return []models.Course{}, 0, nil
		}
		hintSet = make(map[uuid.UUID]struct{}, len(idHint))
		for _, id := range idHint {
			hintSet[id] = struct{}{}
		}
	}

	var matched []models.Course
	for _, c := range s.courses {
		if !matchesFilters(c, filters) {
			continue
		}
		if hintSet != nil {
			if _, ok := hintSet[c.ID]; !ok {
				continue
			}
		} else if filters.Search != "" && !matchesText(c, filters.Search) {
			continue
		}
		matched = append(matched, *c)
	}

	sortCourses(matched, filters.Sort)
	total := len(matched)

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return []models.Course{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}
