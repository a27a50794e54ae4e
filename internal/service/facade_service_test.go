package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/academic-api/internal/models"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
)

type mockAssignedStudentsRepo struct {
	byTeacher map[string][]models.AssignedStudent
	current   map[string]*models.Assignment
	listCalls int
}

func (m *mockAssignedStudentsRepo) ListAssignedStudents(_ context.Context, teacherID string) ([]models.AssignedStudent, error) {
	m.listCalls++
	return m.byTeacher[teacherID], nil
}

func (m *mockAssignedStudentsRepo) GetCurrent(_ context.Context, studentID, courseID string) (*models.Assignment, error) {
	assignment, ok := m.current[assignmentKey(studentID, courseID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return assignment, nil
}

type mockCourseRepo struct {
	courses map[string]*models.Course
}

func (m *mockCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

type facadeFixture struct {
	students    *mockStudentRepo
	courses     *mockCourseRepo
	assigned    *mockAssignedStudentsRepo
	assignments *mockAssignmentRepo
	timetables  *mockTimetableRepo
	records     *mockAttendanceRepo
	svc         *FacadeService
}

func newFacadeFixture(cache *CacheService) *facadeFixture {
	f := &facadeFixture{
		students: &mockStudentRepo{students: map[string]*models.Student{
			"student-1": activeStudent("student-1", "course-1"),
		}},
		courses: &mockCourseRepo{courses: map[string]*models.Course{
			"course-1": {ID: "course-1", Code: "BSC-PHY", Name: "B.Sc. Physics"},
		}},
		assigned:    &mockAssignedStudentsRepo{byTeacher: map[string][]models.AssignedStudent{}, current: map[string]*models.Assignment{}},
		assignments: &mockAssignmentRepo{current: map[string]*models.Assignment{}},
		timetables:  &mockTimetableRepo{},
		records:     &mockAttendanceRepo{},
	}
	timetableSvc := NewTimetableService(f.students, f.assignments, f.timetables, cache, nil, nil, zap.NewNop())
	teachers := &mockTeacherRepo{
		teachers: map[string]*models.Teacher{"teacher-1": {ID: "teacher-1", Active: true}},
		subjects: map[string]bool{"teacher-1|subject-1": true},
	}
	subjects := &mockSubjectRepo{subjects: map[string]*models.Subject{
		"subject-1": {ID: "subject-1", Name: "Mathematics", CourseID: "course-1"},
	}}
	attendanceSvc := NewAttendanceService(teachers, subjects, f.assignments, f.records, cache, nil, nil, zap.NewNop())
	f.svc = NewFacadeService(f.students, f.courses, f.assigned, timetableSvc, attendanceSvc, f.records, cache, zap.NewNop())
	return f
}

func TestFacadeServiceResolvedTimetableNoneYet(t *testing.T) {
	f := newFacadeFixture(disabledCache())

	view, err := f.svc.ResolvedTimetable(context.Background(), "student-1")
	require.NoError(t, err)
	assert.False(t, view.Available)
	assert.Empty(t, view.TeacherID)
	assert.NotNil(t, view.Slots)
	assert.Empty(t, view.Slots)
}

func TestFacadeServiceResolvedTimetableStudentMissing(t *testing.T) {
	f := newFacadeFixture(disabledCache())

	_, err := f.svc.ResolvedTimetable(context.Background(), "ghost")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestFacadeServiceResolvedTimetable(t *testing.T) {
	f := newFacadeFixture(disabledCache())
	f.timetables.tables = map[string]*models.Timetable{
		assignmentKey("student-1", "course-1"): {
			StudentID: "student-1", TeacherID: "teacher-1", CourseID: "course-1", Authoritative: true,
			Slots: []models.ScheduleSlot{
				{Day: "Tuesday", StartTime: "09:00", EndTime: "10:00", Subject: "Physics"},
				{Day: "Monday", StartTime: "09:00", EndTime: "10:00", Subject: "Mathematics"},
			},
		},
	}

	view, err := f.svc.ResolvedTimetable(context.Background(), "student-1")
	require.NoError(t, err)
	assert.True(t, view.Available)
	assert.Equal(t, "teacher-1", view.TeacherID)
	assert.Equal(t, "course-1", view.CourseID)
	assert.Equal(t, "B.Sc. Physics", view.CourseName)
	require.Len(t, view.Slots, 2)
	assert.Equal(t, "Mathematics", view.Slots[0].Subject)
}

func TestFacadeServiceResolvedTimetableForTeacher(t *testing.T) {
	f := newFacadeFixture(disabledCache())
	f.assigned.current[assignmentKey("student-1", "course-1")] = &models.Assignment{
		StudentID: "student-1", TeacherID: "teacher-1", CourseID: "course-1",
	}
	f.timetables.tables = map[string]*models.Timetable{
		assignmentKey("student-1", "course-1"): {
			StudentID: "student-1", TeacherID: "teacher-1", CourseID: "course-1", Authoritative: true,
			Slots: []models.ScheduleSlot{
				{Day: "Monday", StartTime: "09:00", EndTime: "10:00", Subject: "Mathematics"},
			},
		},
	}

	view, err := f.svc.ResolvedTimetableForTeacher(context.Background(), "teacher-1", "student-1")
	require.NoError(t, err)
	assert.True(t, view.Available)
	assert.Equal(t, "teacher-1", view.TeacherID)

	_, err = f.svc.ResolvedTimetableForTeacher(context.Background(), "teacher-2", "student-1")
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)
}

func TestFacadeServiceResolvedTimetableForTeacherNoAssignment(t *testing.T) {
	f := newFacadeFixture(disabledCache())

	_, err := f.svc.ResolvedTimetableForTeacher(context.Background(), "teacher-1", "student-1")
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)

	_, err = f.svc.ResolvedTimetableForTeacher(context.Background(), "teacher-1", "ghost")
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestFacadeServiceResolvedTimetableCaching(t *testing.T) {
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	f := newFacadeFixture(cache)

	_, err := f.svc.ResolvedTimetable(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.students.findCalls)

	_, err = f.svc.ResolvedTimetable(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.students.findCalls)
}

func TestFacadeServiceAssignedStudentsCaching(t *testing.T) {
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	f := newFacadeFixture(cache)
	f.assigned.byTeacher["teacher-1"] = []models.AssignedStudent{
		{Student: models.Student{ID: "student-1", FullName: "Meera Nair"}, AssignmentID: "assignment-1"},
	}

	first, err := f.svc.AssignedStudents(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, f.assigned.listCalls)

	second, err := f.svc.AssignedStudents(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.assigned.listCalls)
}

func TestFacadeServiceAttendanceHistory(t *testing.T) {
	f := newFacadeFixture(disabledCache())
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	f.records.records = map[string]*models.AttendanceRecord{
		attendanceKey("student-1", "subject-1", date): {
			StudentID: "student-1", SubjectID: "subject-1", Date: date,
			Status: models.AttendanceStatusPresent, Batch: "2026-08",
		},
	}

	view, err := f.svc.AttendanceHistory(context.Background(), "student-1", "subject-1", "2026-08")
	require.NoError(t, err)
	require.Len(t, view.Records, 1)
	require.NotNil(t, view.Summary)
	assert.Equal(t, 1, view.Summary.PresentCount)
	assert.Equal(t, float64(100), view.Summary.Percentage)

	_, err = f.svc.AttendanceHistory(context.Background(), "student-1", "subject-1", "bad")
	requireAppError(t, err, appErrors.ErrValidation.Code)
}
