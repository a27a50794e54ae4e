package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuskit/academic-api/internal/models"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
)

type assignmentDirectory interface {
	GetCurrent(ctx context.Context, studentID, courseID string) (*models.Assignment, error)
	ListAssignedStudents(ctx context.Context, teacherID string) ([]models.AssignedStudent, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type attendanceHistoryReader interface {
	ListByStudentSubjectBatch(ctx context.Context, studentID, subjectID, batch string) ([]models.AttendanceRecord, error)
}

// TimetableView is the student-facing "resolved timetable" projection. A
// missing or stale timetable reads as an explicit none-yet state.
type TimetableView struct {
	Available  bool                  `json:"available"`
	CourseID   string                `json:"course_id,omitempty"`
	CourseName string                `json:"course_name,omitempty"`
	TeacherID  string                `json:"teacher_id,omitempty"`
	Slots      []models.ScheduleSlot `json:"slots"`
}

// AttendanceHistoryView pairs a student's records with their aggregate.
type AttendanceHistoryView struct {
	Records []models.AttendanceRecord `json:"records"`
	Summary *models.AttendanceSummary `json:"summary"`
}

// FacadeService composes read projections over the write-side managers so the
// presentation layer never reaches into them directly. It holds no state of
// its own beyond the shared projection cache.
type FacadeService struct {
	students    studentReader
	courses     courseReader
	assignments assignmentDirectory
	timetables  *TimetableService
	attendance  *AttendanceService
	history     attendanceHistoryReader
	cache       *CacheService
	logger      *zap.Logger
}

// NewFacadeService creates a facade instance.
func NewFacadeService(
	students studentReader,
	courses courseReader,
	assignments assignmentDirectory,
	timetables *TimetableService,
	attendance *AttendanceService,
	history attendanceHistoryReader,
	cache *CacheService,
	logger *zap.Logger,
) *FacadeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacadeService{
		students:    students,
		courses:     courses,
		assignments: assignments,
		timetables:  timetables,
		attendance:  attendance,
		history:     history,
		cache:       cache,
		logger:      logger,
	}
}

// AssignedStudents returns students whose current assignment points at the teacher.
func (s *FacadeService) AssignedStudents(ctx context.Context, teacherID string) ([]models.AssignedStudent, error) {
	cacheKey := "facade:assigned_students:" + teacherID
	var cached []models.AssignedStudent
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	students, err := s.assignments.ListAssignedStudents(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned students")
	}

	_ = s.cache.Set(ctx, cacheKey, students, 0)
	return students, nil
}

// ResolvedTimetable returns the student's current timetable, mapping an
// absent one to an explicit empty view rather than an error.
func (s *FacadeService) ResolvedTimetable(ctx context.Context, studentID string) (*TimetableView, error) {
	cacheKey := "facade:timetable:" + studentID
	var cached TimetableView
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	view := &TimetableView{Slots: []models.ScheduleSlot{}}
	if student.CourseID != nil && *student.CourseID != "" {
		timetable, err := s.timetables.Get(ctx, studentID, *student.CourseID)
		if err != nil {
			var appErr *appErrors.Error
			if !errors.As(err, &appErr) || appErr.Code != appErrors.ErrNotFound.Code {
				return nil, err
			}
		} else {
			view.Available = true
			view.CourseID = timetable.CourseID
			view.TeacherID = timetable.TeacherID
			view.Slots = timetable.Slots

			course, err := s.courses.FindByID(ctx, timetable.CourseID)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
				}
			} else {
				view.CourseName = course.Name
			}
		}
	}

	_ = s.cache.Set(ctx, cacheKey, view, 0)
	return view, nil
}

// ResolvedTimetableForTeacher returns the student's timetable view only when
// the caller is the teacher named by the student's current assignment. Admin
// reads bypass this through ResolvedTimetable directly.
func (s *FacadeService) ResolvedTimetableForTeacher(ctx context.Context, teacherID, studentID string) (*TimetableView, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.CourseID == nil || *student.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "student is not assigned to the caller")
	}

	assignment, err := s.assignments.GetCurrent(ctx, studentID, *student.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "student is not assigned to the caller")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "student is not assigned to the caller")
	}

	return s.ResolvedTimetable(ctx, studentID)
}

// AttendanceHistory returns one student's records and summary for a subject
// within a batch period.
func (s *FacadeService) AttendanceHistory(ctx context.Context, studentID, subjectID, batch string) (*AttendanceHistoryView, error) {
	if _, _, err := models.ParseBatch(batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch")
	}

	cacheKey := fmt.Sprintf("facade:attendance:%s:%s:%s", studentID, subjectID, batch)
	var cached AttendanceHistoryView
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	records, err := s.history.ListByStudentSubjectBatch(ctx, studentID, subjectID, batch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	summary, err := s.attendance.StatusSummary(ctx, studentID, subjectID, batch)
	if err != nil {
		return nil, err
	}

	view := &AttendanceHistoryView{Records: records, Summary: summary}
	_ = s.cache.Set(ctx, cacheKey, view, 0)
	return view, nil
}
