package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academic-api/internal/models"
)

// AttendanceRepository persists attendance marks. The table carries
// UNIQUE (student_id, subject_id, date) so a resubmission overwrites in place.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes one mark, overwriting any existing record for the same
// (student, subject, date) key in a single statement.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	const query = `
INSERT INTO attendance_records (id, student_id, subject_id, date, status, recording_teacher_id, batch, created_at, updated_at)
VALUES (:id, :student_id, :subject_id, :date, :status, :recording_teacher_id, :batch, :created_at, :updated_at)
ON CONFLICT (student_id, subject_id, date) DO UPDATE
SET status = EXCLUDED.status, recording_teacher_id = EXCLUDED.recording_teacher_id,
    batch = EXCLUDED.batch, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}
	return nil
}

// ListBySubjectBatch returns all marks for a subject within the batch month,
// ordered by date then student name for deterministic display.
func (r *AttendanceRepository) ListBySubjectBatch(ctx context.Context, subjectID, batch string) ([]models.AttendanceRecordDetail, error) {
	const query = `
SELECT ar.id, ar.student_id, ar.subject_id, ar.date, ar.status, ar.recording_teacher_id, ar.batch,
       ar.created_at, ar.updated_at, s.full_name AS student_name
FROM attendance_records ar
JOIN students s ON s.id = ar.student_id
WHERE ar.subject_id = $1 AND ar.batch = $2
ORDER BY ar.date ASC, s.full_name ASC`
	records := []models.AttendanceRecordDetail{}
	if err := r.db.SelectContext(ctx, &records, query, subjectID, batch); err != nil {
		return nil, fmt.Errorf("list attendance by subject: %w", err)
	}
	return records, nil
}

// ListByStudentSubjectBatch returns one student's marks for a subject and batch.
func (r *AttendanceRepository) ListByStudentSubjectBatch(ctx context.Context, studentID, subjectID, batch string) ([]models.AttendanceRecord, error) {
	const query = `
SELECT id, student_id, subject_id, date, status, recording_teacher_id, batch, created_at, updated_at
FROM attendance_records
WHERE student_id = $1 AND subject_id = $2 AND batch = $3
ORDER BY date ASC`
	records := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &records, query, studentID, subjectID, batch); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// Summary counts present and absent marks for a student, subject and batch.
func (r *AttendanceRepository) Summary(ctx context.Context, studentID, subjectID, batch string) (present, absent int, err error) {
	const query = `
SELECT COUNT(*) FILTER (WHERE status = 'present') AS present,
       COUNT(*) FILTER (WHERE status = 'absent') AS absent
FROM attendance_records
WHERE student_id = $1 AND subject_id = $2 AND batch = $3`
	var row struct {
		Present int `db:"present"`
		Absent  int `db:"absent"`
	}
	if err := r.db.GetContext(ctx, &row, query, studentID, subjectID, batch); err != nil {
		return 0, 0, fmt.Errorf("summarise attendance: %w", err)
	}
	return row.Present, row.Absent, nil
}
