package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/campuskit/academic-api/internal/models"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
)

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type teacherDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Teacher, error)
	TeachesCourse(ctx context.Context, teacherID, courseID string) (bool, error)
	ListSubjects(ctx context.Context, teacherID string) ([]models.SubjectRef, error)
}

type assignmentRepo interface {
	GetCurrent(ctx context.Context, studentID, courseID string) (*models.Assignment, error)
	Supersede(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error)
}

// AssignmentService owns the student-to-teacher selection protocol: one
// active assignment per (student, course), idempotent reselection, atomic
// supersede on change.
type AssignmentService struct {
	students    studentReader
	teachers    teacherDirectory
	assignments assignmentRepo
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAssignmentService creates a service instance.
func NewAssignmentService(
	students studentReader,
	teachers teacherDirectory,
	assignments assignmentRepo,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		students:    students,
		teachers:    teachers,
		assignments: assignments,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListEligibleTeachers returns teachers assigned to the student's course,
// each with their subject roster for display. No eligible teacher is an
// empty list, not an error.
func (s *AssignmentService) ListEligibleTeachers(ctx context.Context, studentID string) ([]models.TeacherDetail, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.CourseID == nil || *student.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no course set")
	}
	courseID := *student.CourseID

	teachers, err := s.teachers.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list eligible teachers")
	}

	details := make([]models.TeacherDetail, 0, len(teachers))
	for _, teacher := range teachers {
		subjects, err := s.teachers.ListSubjects(ctx, teacher.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher roster")
		}
		details = append(details, models.TeacherDetail{
			Teacher:          teacher,
			SubjectsAssigned: subjects,
			CoursesAssigned:  []string{courseID},
		})
	}
	return details, nil
}

// SelectTeacher binds the student to the teacher for the student's course.
// Reselecting the current teacher is a no-op that returns the existing
// assignment unchanged; a different teacher supersedes the prior binding and
// flags any timetable built on it as stale.
func (s *AssignmentService) SelectTeacher(ctx context.Context, studentID, teacherID string) (*models.Assignment, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active() {
		return nil, appErrors.Clone(appErrors.ErrInvalidAssignment, "student is not actively enrolled")
	}
	if student.CourseID == nil || *student.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no course set")
	}
	courseID := *student.CourseID

	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return nil, appErrors.Clone(appErrors.ErrInvalidAssignment, "teacher is inactive")
	}

	eligible, err := s.teachers.TeachesCourse(ctx, teacherID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check eligibility")
	}
	if !eligible {
		return nil, appErrors.Clone(appErrors.ErrInvalidAssignment, "teacher does not cover the student's course")
	}

	current, err := s.assignments.GetCurrent(ctx, studentID, courseID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current assignment")
	}
	if current != nil && current.TeacherID == teacherID {
		return current, nil
	}

	stored, err := s.assignments.Supersede(ctx, &models.Assignment{
		StudentID: studentID,
		TeacherID: teacherID,
		CourseID:  courseID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignment")
	}

	s.metrics.RecordAssignmentSuperseded()
	s.logger.Info("assignment superseded",
		zap.String("student_id", studentID),
		zap.String("teacher_id", teacherID),
		zap.String("course_id", courseID),
	)

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, "facade:assigned_students:*")
		_ = s.cache.Invalidate(ctx, "facade:timetable:"+studentID)
	}

	return stored, nil
}
