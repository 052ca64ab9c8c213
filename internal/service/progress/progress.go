package progress

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
	"context"
	"time"

	"github.com/google/uuid"
)

type enrollmentRepo interface {
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.CourseEnrollment, error)
	SetEnrollmentProgress(ctx context.Context, id uuid.UUID, progress float64) error
	CompleteEnrollment(ctx context.Context, enrollmentID, courseID uuid.UUID, completedAt time.Time) error
}

type lessonRepo interface {
	LessonsByCourse(ctx context.Context, courseID uuid.UUID) ([]models.CourseLesson, error)
}

type progressRepo interface {
	UpsertProgress(ctx context.Context, p *models.CourseProgress) error
	ProgressRecord(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*models.CourseProgress, error)
	ProgressByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]models.CourseProgress, error)
}

type ProgressService struct {
	log            logger.Log
	enrollmentRepo enrollmentRepo
	lessonRepo     lessonRepo
	progressRepo   progressRepo
}

func NewProgressService(log logger.Log, enrollmentRepo enrollmentRepo,
	lessonRepo lessonRepo, progressRepo progressRepo,
) *ProgressService {
	return &ProgressService{
		log:            log,
		enrollmentRepo: enrollmentRepo,
		lessonRepo:     lessonRepo,
		progressRepo:   progressRepo,
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// mergePatch folds the supplied fields over the current record. An
// explicit completed flag wins; otherwise reaching 100% completes the
// lesson.
func mergePatch(current *models.CourseProgress, patch models.ProgressPatch) {
	if patch.Progress != nil {
		current.Progress = clampPercent(*patch.Progress)
	}
	if patch.TimeSpent != nil {
		current.TimeSpent = *patch.TimeSpent
	}
	if patch.WatchTime != nil {
		current.WatchTime = *patch.WatchTime
	}
	if patch.LastPosition != nil {
		current.LastPosition = *patch.LastPosition
	}
	if patch.Completed != nil {
		current.Completed = *patch.Completed
	} else if current.Progress >= 100 {
		current.Completed = true
	}
	if current.Completed {
		current.Progress = 100
		if current.CompletedAt == nil {
			now := time.Now().UTC()
			current.CompletedAt = &now
		}
	}
}

// courseProgress averages over every lesson of the course, counting
// unstarted lessons as zero.
func courseProgress(lessons []models.CourseLesson, records []models.CourseProgress) (overall float64, requiredDone bool) {
	if len(lessons) == 0 {
		return 0, false
	}

	byLesson := make(map[uuid.UUID]*models.CourseProgress, len(records))
	for i := range records {
		byLesson[records[i].LessonID] = &records[i]
	}

	var sum float64
	requiredDone = true
	for _, lesson := range lessons {
		if rec, ok := byLesson[lesson.ID]; ok {
			sum += rec.Progress
			if lesson.IsRequired && !rec.Completed {
				requiredDone = false
			}
		} else if lesson.IsRequired {
			requiredDone = false
		}
	}
	return sum / float64(len(lessons)), requiredDone
}

// UpdateLessonProgress merges a progress patch for one lesson, then
// recomputes the enrollment's overall progress. The enrollment flips to
// completed once overall progress reaches 100% and every required
// lesson is done.
func (s *ProgressService) UpdateLessonProgress(ctx context.Context, enrollmentID, lessonID, studentID uuid.UUID, patch models.ProgressPatch) (*models.CourseProgress, error) {
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.StudentID != studentID {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	if enrollment.Status != models.EnrollmentActive {
		return nil, app_errors.ErrEnrollmentNotActive
	}

	lessons, err := s.lessonRepo.LessonsByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	var lessonKnown bool
	for _, l := range lessons {
		if l.ID == lessonID {
			lessonKnown = true
			break
		}
	}
	if !lessonKnown {
		return nil, app_errors.ErrLessonNotFound
	}

	current, err := s.progressRepo.ProgressRecord(ctx, enrollmentID, lessonID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = &models.CourseProgress{
			EnrollmentID: enrollmentID,
			LessonID:     lessonID,
			StudentID:    studentID,
		}
	}
	mergePatch(current, patch)

	if err := s.progressRepo.UpsertProgress(ctx, current); err != nil {
		return nil, err
	}

	records, err := s.progressRepo.ProgressByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	overall, requiredDone := courseProgress(lessons, records)

	if overall >= 100 && requiredDone {
		if err := s.enrollmentRepo.CompleteEnrollment(ctx, enrollmentID, enrollment.CourseID, time.Now().UTC()); err != nil {
			return nil, err
		}
		s.log.Info("enrollment completed",
			"enrollment_id", enrollmentID.String(),
			"course_id", enrollment.CourseID.String(),
		)
	} else if err := s.enrollmentRepo.SetEnrollmentProgress(ctx, enrollmentID, overall); err != nil {
		return nil, err
	}

	return current, nil
}

func (s *ProgressService) EnrollmentProgress(ctx context.Context, enrollmentID, studentID uuid.UUID) ([]models.CourseProgress, error) {
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.StudentID != studentID {
		return nil, app_errors.ErrEnrollmentNotFound
	}
	return s.progressRepo.ProgressByEnrollment(ctx, enrollmentID)
}
