package memory

import (
	"CourseForge/internal/models"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func seedPublished(t *testing.T, s *Store, n int, price int64) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		course := &models.Course{
			OwnerID: uuid.New(),
			Title:   fmt.Sprintf("Course %d", i),
			Slug:    uuid.NewString(),
			Status:  models.StatusPublished,
			Price:   price,
		}
		id, err := s.CreateCourse(context.Background(), course)
		if err != nil {
			t.Fatalf("CreateCourse: %v", err)
		}
		ids = append(ids, id)
		// CreateCourse stamps created_at itself, so space the writes out.
		time.Sleep(time.Millisecond)
	}
	return ids
}

func TestSearchCoursesPriceSortTieBreak(t *testing.T) {
	store := NewStore()

	same := seedPublished(t, store, 6, 4900)
	cheap := seedPublished(t, store, 1, 900)

	got, total, err := store.SearchCourses(context.Background(),
		models.CourseFilters{Sort: models.SortPriceLow, Limit: 10}, nil)
	if err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if total != 7 || len(got) != 7 {
		t.Fatalf("total = %d, rows = %d, want 7/7", total, len(got))
	}
	if got[0].ID != cheap[0] {
		t.Fatalf("position 0 = %s, want the cheapest course %s", got[0].ID, cheap[0])
	}
	// Equal prices fall back to created_at DESC, like the SQL ORDER BY.
	for i, id := range same {
		pos := 1 + (len(same) - 1 - i)
		if got[pos].ID != id {
			t.Errorf("position %d = %s, want %s", pos, got[pos].ID, id)
		}
	}
}

func TestSearchCoursesRatingSortTieBreak(t *testing.T) {
	store := NewStore()
	ids := seedPublished(t, store, 4, 0)

	got, _, err := store.SearchCourses(context.Background(),
		models.CourseFilters{Sort: models.SortRatingHigh, Limit: 10}, nil)
	if err != nil {
		t.Fatalf("SearchCourses: %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("rows = %d, want %d", len(got), len(ids))
	}
	for i, id := range ids {
		pos := len(ids) - 1 - i
		if got[pos].ID != id {
			t.Errorf("position %d = %s, want %s", pos, got[pos].ID, id)
		}
	}
}
