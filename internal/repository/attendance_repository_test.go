package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/academic-api/internal/models"
)

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AttendanceRecord{
		StudentID:          "student-1",
		SubjectID:          "subject-1",
		Date:               time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Status:             models.AttendanceStatusPresent,
		RecordingTeacherID: "teacher-1",
		Batch:              "2026-08",
	}
	require.NoError(t, repo.Upsert(context.Background(), record))
	require.NotEmpty(t, record.ID)
	require.False(t, record.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListBySubjectBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "subject_id", "date", "status", "recording_teacher_id", "batch",
		"created_at", "updated_at", "student_name",
	}).
		AddRow("record-1", "student-1", "subject-1", now, "present", "teacher-1", "2026-08", now, now, "Meera Nair").
		AddRow("record-2", "student-2", "subject-1", now, "absent", "teacher-1", "2026-08", now, now, "Vikram Shah")
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records ar")).
		WithArgs("subject-1", "2026-08").
		WillReturnRows(rows)

	records, err := repo.ListBySubjectBatch(context.Background(), "subject-1", "2026-08")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Meera Nair", records[0].StudentName)
	require.Equal(t, models.AttendanceStatusAbsent, records[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE status = 'present')")).
		WithArgs("student-1", "subject-1", "2026-08").
		WillReturnRows(sqlmock.NewRows([]string{"present", "absent"}).AddRow(18, 2))

	present, absent, err := repo.Summary(context.Background(), "student-1", "subject-1", "2026-08")
	require.NoError(t, err)
	require.Equal(t, 18, present)
	require.Equal(t, 2, absent)
	require.NoError(t, mock.ExpectationsWereMet())
}
