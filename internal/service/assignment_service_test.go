package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/academic-api/internal/models"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
)

type mockStudentRepo struct {
	students  map[string]*models.Student
	err       error
	findCalls int
}

func (m *mockStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	m.findCalls++
	if m.err != nil {
		return nil, m.err
	}
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type mockTeacherRepo struct {
	teachers map[string]*models.Teacher
	byCourse map[string][]models.Teacher
	courses  map[string]bool
	subjects map[string]bool
	rosters  map[string][]models.SubjectRef
}

func (m *mockTeacherRepo) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return teacher, nil
}

func (m *mockTeacherRepo) ListByCourse(_ context.Context, courseID string) ([]models.Teacher, error) {
	return m.byCourse[courseID], nil
}

func (m *mockTeacherRepo) TeachesCourse(_ context.Context, teacherID, courseID string) (bool, error) {
	return m.courses[teacherID+"|"+courseID], nil
}

func (m *mockTeacherRepo) CarriesSubject(_ context.Context, teacherID, subjectID string) (bool, error) {
	return m.subjects[teacherID+"|"+subjectID], nil
}

func (m *mockTeacherRepo) ListSubjects(_ context.Context, teacherID string) ([]models.SubjectRef, error) {
	return m.rosters[teacherID], nil
}

type mockAssignmentRepo struct {
	current        map[string]*models.Assignment
	supersedeCalls int
	supersedeErr   error
}

func assignmentKey(studentID, courseID string) string {
	return fmt.Sprintf("%s|%s", studentID, courseID)
}

func (m *mockAssignmentRepo) GetCurrent(_ context.Context, studentID, courseID string) (*models.Assignment, error) {
	assignment, ok := m.current[assignmentKey(studentID, courseID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return assignment, nil
}

func (m *mockAssignmentRepo) Supersede(_ context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	m.supersedeCalls++
	if m.supersedeErr != nil {
		return nil, m.supersedeErr
	}
	if m.current == nil {
		m.current = make(map[string]*models.Assignment)
	}
	key := assignmentKey(assignment.StudentID, assignment.CourseID)
	stored := &models.Assignment{
		ID:         uuid.NewString(),
		StudentID:  assignment.StudentID,
		TeacherID:  assignment.TeacherID,
		CourseID:   assignment.CourseID,
		SelectedAt: time.Now(),
	}
	if existing, ok := m.current[key]; ok {
		stored.ID = existing.ID
	}
	m.current[key] = stored
	return stored, nil
}

func strPtr(s string) *string {
	return &s
}

func activeStudent(id, courseID string) *models.Student {
	return &models.Student{
		ID:       id,
		FullName: "Student " + id,
		CourseID: strPtr(courseID),
		Status:   models.StudentStatusActive,
	}
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
}

func TestAssignmentServiceListEligibleTeachers(t *testing.T) {
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-1"),
	}}
	teachers := &mockTeacherRepo{
		byCourse: map[string][]models.Teacher{
			"course-1": {
				{ID: "teacher-1", FullName: "Asha Rao", Active: true},
				{ID: "teacher-2", FullName: "Vikram Shah", Active: true},
			},
		},
		rosters: map[string][]models.SubjectRef{
			"teacher-1": {
				{SubjectID: "subject-1", NameSnapshot: "Mathematics"},
				{SubjectID: "subject-2", NameSnapshot: "Physics"},
			},
		},
	}
	svc := NewAssignmentService(students, teachers, &mockAssignmentRepo{}, disabledCache(), nil, zap.NewNop())

	result, err := svc.ListEligibleTeachers(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "teacher-1", result[0].ID)
	require.Len(t, result[0].SubjectsAssigned, 2)
	assert.Equal(t, "Mathematics", result[0].SubjectsAssigned[0].NameSnapshot)
	assert.Equal(t, []string{"course-1"}, result[0].CoursesAssigned)
	assert.Empty(t, result[1].SubjectsAssigned)
}

func TestAssignmentServiceListEligibleTeachersEmptyIsNotAnError(t *testing.T) {
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-9"),
	}}
	svc := NewAssignmentService(students, &mockTeacherRepo{}, &mockAssignmentRepo{}, disabledCache(), nil, zap.NewNop())

	result, err := svc.ListEligibleTeachers(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestAssignmentServiceListEligibleTeachersStudentMissing(t *testing.T) {
	svc := NewAssignmentService(&mockStudentRepo{}, &mockTeacherRepo{}, &mockAssignmentRepo{}, disabledCache(), nil, zap.NewNop())

	_, err := svc.ListEligibleTeachers(context.Background(), "ghost")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestAssignmentServiceSelectTeacherFirstSelection(t *testing.T) {
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-1"),
	}}
	teachers := &mockTeacherRepo{
		teachers: map[string]*models.Teacher{"teacher-1": {ID: "teacher-1", Active: true}},
		courses:  map[string]bool{"teacher-1|course-1": true},
	}
	assignments := &mockAssignmentRepo{}
	svc := NewAssignmentService(students, teachers, assignments, disabledCache(), nil, zap.NewNop())

	stored, err := svc.SelectTeacher(context.Background(), "student-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", stored.TeacherID)
	assert.Equal(t, "course-1", stored.CourseID)
	assert.Equal(t, 1, assignments.supersedeCalls)
}

func TestAssignmentServiceSelectTeacherIdempotentReselect(t *testing.T) {
	selectedAt := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-1"),
	}}
	teachers := &mockTeacherRepo{
		teachers: map[string]*models.Teacher{"teacher-1": {ID: "teacher-1", Active: true}},
		courses:  map[string]bool{"teacher-1|course-1": true},
	}
	assignments := &mockAssignmentRepo{current: map[string]*models.Assignment{
		assignmentKey("student-1", "course-1"): {
			ID: "assignment-1", StudentID: "student-1", TeacherID: "teacher-1",
			CourseID: "course-1", SelectedAt: selectedAt,
		},
	}}
	svc := NewAssignmentService(students, teachers, assignments, disabledCache(), nil, zap.NewNop())

	stored, err := svc.SelectTeacher(context.Background(), "student-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "assignment-1", stored.ID)
	assert.True(t, stored.SelectedAt.Equal(selectedAt))
	assert.Zero(t, assignments.supersedeCalls)
}

func TestAssignmentServiceSelectTeacherSupersedes(t *testing.T) {
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-1"),
	}}
	teachers := &mockTeacherRepo{
		teachers: map[string]*models.Teacher{
			"teacher-1": {ID: "teacher-1", Active: true},
			"teacher-2": {ID: "teacher-2", Active: true},
		},
		courses: map[string]bool{
			"teacher-1|course-1": true,
			"teacher-2|course-1": true,
		},
	}
	assignments := &mockAssignmentRepo{current: map[string]*models.Assignment{
		assignmentKey("student-1", "course-1"): {
			ID: "assignment-1", StudentID: "student-1", TeacherID: "teacher-1",
			CourseID: "course-1", SelectedAt: time.Now().Add(-time.Hour),
		},
	}}
	svc := NewAssignmentService(students, teachers, assignments, disabledCache(), nil, zap.NewNop())

	stored, err := svc.SelectTeacher(context.Background(), "student-1", "teacher-2")
	require.NoError(t, err)
	assert.Equal(t, "teacher-2", stored.TeacherID)
	assert.Equal(t, 1, assignments.supersedeCalls)

	current, err := assignments.GetCurrent(context.Background(), "student-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-2", current.TeacherID)
}

func TestAssignmentServiceSelectTeacherNotEligible(t *testing.T) {
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-1"),
	}}
	teachers := &mockTeacherRepo{
		teachers: map[string]*models.Teacher{"teacher-1": {ID: "teacher-1", Active: true}},
		courses:  map[string]bool{"teacher-1|course-other": true},
	}
	assignments := &mockAssignmentRepo{}
	svc := NewAssignmentService(students, teachers, assignments, disabledCache(), nil, zap.NewNop())

	_, err := svc.SelectTeacher(context.Background(), "student-1", "teacher-1")
	requireAppError(t, err, appErrors.ErrInvalidAssignment.Code)
	assert.Zero(t, assignments.supersedeCalls)
}

func TestAssignmentServiceSelectTeacherInactive(t *testing.T) {
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-1"),
	}}
	teachers := &mockTeacherRepo{
		teachers: map[string]*models.Teacher{"teacher-1": {ID: "teacher-1", Active: false}},
		courses:  map[string]bool{"teacher-1|course-1": true},
	}
	svc := NewAssignmentService(students, teachers, &mockAssignmentRepo{}, disabledCache(), nil, zap.NewNop())

	_, err := svc.SelectTeacher(context.Background(), "student-1", "teacher-1")
	requireAppError(t, err, appErrors.ErrInvalidAssignment.Code)
}

func TestAssignmentServiceSelectTeacherInactiveStudent(t *testing.T) {
	student := activeStudent("student-1", "course-1")
	student.Status = "withdrawn"
	students := &mockStudentRepo{students: map[string]*models.Student{"student-1": student}}
	teachers := &mockTeacherRepo{
		teachers: map[string]*models.Teacher{"teacher-1": {ID: "teacher-1", Active: true}},
		courses:  map[string]bool{"teacher-1|course-1": true},
	}
	assignments := &mockAssignmentRepo{}
	svc := NewAssignmentService(students, teachers, assignments, disabledCache(), nil, zap.NewNop())

	_, err := svc.SelectTeacher(context.Background(), "student-1", "teacher-1")
	requireAppError(t, err, appErrors.ErrInvalidAssignment.Code)
	assert.Zero(t, assignments.supersedeCalls)
}

func TestAssignmentServiceSelectTeacherMissingParties(t *testing.T) {
	students := &mockStudentRepo{students: map[string]*models.Student{
		"student-1": activeStudent("student-1", "course-1"),
	}}
	svc := NewAssignmentService(students, &mockTeacherRepo{}, &mockAssignmentRepo{}, disabledCache(), nil, zap.NewNop())

	_, err := svc.SelectTeacher(context.Background(), "ghost", "teacher-1")
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	_, err = svc.SelectTeacher(context.Background(), "student-1", "ghost")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}
