package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academic-api/internal/models"
)

// TimetableRepository persists per-student timetables. A timetable is replaced
// wholesale inside one transaction so readers never observe a partial slot list.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Replace installs the timetable as the authoritative one for its
// (student, course) pair, discarding any previously stored slots.
func (r *TimetableRepository) Replace(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now
	timetable.Authoritative = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace timetable: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `
INSERT INTO timetables (id, student_id, teacher_id, course_id, authoritative, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, $5, $6)
ON CONFLICT (student_id, course_id) DO UPDATE
SET teacher_id = EXCLUDED.teacher_id, authoritative = TRUE, updated_at = EXCLUDED.updated_at
RETURNING id`
	if err := tx.GetContext(ctx, &timetable.ID, upsert,
		timetable.ID, timetable.StudentID, timetable.TeacherID, timetable.CourseID,
		timetable.CreatedAt, timetable.UpdatedAt); err != nil {
		return fmt.Errorf("upsert timetable: %w", err)
	}

	const clear = `DELETE FROM timetable_slots WHERE timetable_id = $1`
	if _, err := tx.ExecContext(ctx, clear, timetable.ID); err != nil {
		return fmt.Errorf("clear timetable slots: %w", err)
	}

	const insertSlot = `
INSERT INTO timetable_slots (id, timetable_id, day, start_time, end_time, subject, classroom, description, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i := range timetable.Slots {
		slot := &timetable.Slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insertSlot,
			slot.ID, timetable.ID, slot.Day, slot.StartTime, slot.EndTime,
			slot.Subject, slot.Classroom, slot.Description, i); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace timetable: %w", err)
	}
	return nil
}

// FindCurrent returns the authoritative timetable for (student, course) with
// its slots, or sql.ErrNoRows when none is current.
func (r *TimetableRepository) FindCurrent(ctx context.Context, studentID, courseID string) (*models.Timetable, error) {
	const header = `
SELECT id, student_id, teacher_id, course_id, authoritative, created_at, updated_at
FROM timetables
WHERE student_id = $1 AND course_id = $2 AND authoritative = TRUE`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, header, studentID, courseID); err != nil {
		return nil, err
	}

	const slots = `
SELECT id, day, start_time, end_time, subject, classroom, description
FROM timetable_slots
WHERE timetable_id = $1
ORDER BY position ASC`
	timetable.Slots = []models.ScheduleSlot{}
	if err := r.db.SelectContext(ctx, &timetable.Slots, slots, timetable.ID); err != nil {
		return nil, fmt.Errorf("load timetable slots: %w", err)
	}
	return &timetable, nil
}
