package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/academic-api/internal/models"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
)

type assignmentReader interface {
	GetCurrent(ctx context.Context, studentID, courseID string) (*models.Assignment, error)
}

type timetableRepo interface {
	Replace(ctx context.Context, timetable *models.Timetable) error
	FindCurrent(ctx context.Context, studentID, courseID string) (*models.Timetable, error)
}

// SlotInput describes one submitted schedule slot.
type SlotInput struct {
	Day         string `json:"day" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Classroom   string `json:"classroom"`
	Description string `json:"description"`
}

// TimetableService owns per-student schedule construction. Writes are
// authorized against the current assignment at call time and replace the
// stored timetable wholesale.
type TimetableService struct {
	students    studentReader
	assignments assignmentReader
	timetables  timetableRepo
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTimetableService creates a service instance.
func NewTimetableService(
	students studentReader,
	assignments assignmentReader,
	timetables timetableRepo,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		students:    students,
		assignments: assignments,
		timetables:  timetables,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Create builds the timetable for (student, course). The caller must be the
// teacher named by the current assignment; the whole batch is validated and
// conflict-checked before anything is written.
func (s *TimetableService) Create(ctx context.Context, teacherID, studentID, courseID string, slots []SlotInput) (*models.Timetable, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if courseID == "" {
		if student.CourseID == nil || *student.CourseID == "" {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no course set")
		}
		courseID = *student.CourseID
	} else if student.CourseID == nil || *student.CourseID != courseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in the course")
	}

	if err := s.authorize(ctx, teacherID, studentID, courseID); err != nil {
		return nil, err
	}

	validated, err := s.validateSlots(slots)
	if err != nil {
		return nil, err
	}

	timetable := &models.Timetable{
		StudentID: studentID,
		TeacherID: teacherID,
		CourseID:  courseID,
		Slots:     validated,
	}
	if err := s.timetables.Replace(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}

	s.metrics.RecordTimetableReplaced()
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, "facade:timetable:"+studentID)
	}

	models.SortSlots(timetable.Slots)
	return timetable, nil
}

// Update revalidates and replaces the student's timetable. Authorization is
// re-checked against the current assignment, so a superseded teacher cannot
// touch a timetable they once owned.
func (s *TimetableService) Update(ctx context.Context, teacherID, studentID string, slots []SlotInput) (*models.Timetable, error) {
	return s.Create(ctx, teacherID, studentID, "", slots)
}

// Get returns the authoritative timetable for (student, course) with slots in
// stable day-then-start-time order. A stale timetable reads as absent.
func (s *TimetableService) Get(ctx context.Context, studentID, courseID string) (*models.Timetable, error) {
	timetable, err := s.timetables.FindCurrent(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	models.SortSlots(timetable.Slots)
	return timetable, nil
}

func (s *TimetableService) loadStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *TimetableService) authorize(ctx context.Context, teacherID, studentID, courseID string) error {
	assignment, err := s.assignments.GetCurrent(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "student has no current assignment for this course")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrUnauthorized, "timetable can only be edited by the currently assigned teacher")
	}
	return nil
}

// validateSlots normalises and checks every submitted slot, then runs the
// pairwise same-day overlap scan. All-or-nothing: the first problem rejects
// the whole batch.
func (s *TimetableService) validateSlots(slots []SlotInput) ([]models.ScheduleSlot, error) {
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one slot is required")
	}

	validated := make([]models.ScheduleSlot, len(slots))
	for i, input := range slots {
		if err := s.validator.Struct(input); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("slot %d is incomplete", i+1))
		}

		day, ok := models.CanonicalDay(input.Day)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("slot %d: %q is not a teaching day", i+1, input.Day))
		}

		start, err := models.MinuteOfDay(input.StartTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("slot %d: invalid start time", i+1))
		}
		end, err := models.MinuteOfDay(input.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("slot %d: invalid end time", i+1))
		}
		if start >= end {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("slot %d: start time must precede end time", i+1))
		}
		if strings.TrimSpace(input.Subject) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("slot %d: subject is required", i+1))
		}

		validated[i] = models.ScheduleSlot{
			Day:         day,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			Subject:     strings.TrimSpace(input.Subject),
			Classroom:   strings.TrimSpace(input.Classroom),
			Description: strings.TrimSpace(input.Description),
		}
	}

	for i := 0; i < len(validated); i++ {
		for j := i + 1; j < len(validated); j++ {
			if validated[i].Overlaps(validated[j]) {
				detail := &models.SlotConflictError{
					Message: fmt.Sprintf("slots %d and %d overlap on %s", i+1, j+1, validated[i].Day),
					First:   validated[i],
					Second:  validated[j],
				}
				return nil, appErrors.Wrap(detail, appErrors.ErrSlotConflict.Code, appErrors.ErrSlotConflict.Status, detail.Message)
			}
		}
	}

	return validated, nil
}
