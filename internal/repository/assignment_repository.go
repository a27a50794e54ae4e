package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academic-api/internal/models"
)

// AssignmentRepository persists the student-teacher assignment edge. The edge
// table carries UNIQUE (student_id, course_id); the students.preferred_teacher_id
// mirror is kept in sync inside the same transaction.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// GetCurrent returns the current assignment for (student, course) or sql.ErrNoRows.
func (r *AssignmentRepository) GetCurrent(ctx context.Context, studentID, courseID string) (*models.Assignment, error) {
	const query = `
SELECT id, student_id, teacher_id, course_id, selected_at
FROM student_assignments
WHERE student_id = $1 AND course_id = $2`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Supersede atomically installs the assignment as the current edge for
// (student, course). The conditional ON CONFLICT update makes a concurrent
// reselect of the same teacher a no-op that preserves selected_at; a different
// teacher overwrites the edge, flags any timetable for the pair as stale and
// refreshes the preferred-teacher mirror. The stored row is returned either way.
func (r *AssignmentRepository) Supersede(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.SelectedAt.IsZero() {
		assignment.SelectedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin supersede assignment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `
INSERT INTO student_assignments (id, student_id, teacher_id, course_id, selected_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, course_id) DO UPDATE
SET teacher_id = EXCLUDED.teacher_id, selected_at = EXCLUDED.selected_at
WHERE student_assignments.teacher_id <> EXCLUDED.teacher_id
RETURNING id, student_id, teacher_id, course_id, selected_at`
	var stored models.Assignment
	err = tx.GetContext(ctx, &stored, upsert,
		assignment.ID, assignment.StudentID, assignment.TeacherID, assignment.CourseID, assignment.SelectedAt)
	if err == sql.ErrNoRows {
		// Lost the race to an identical edge; read it back unchanged.
		const current = `
SELECT id, student_id, teacher_id, course_id, selected_at
FROM student_assignments
WHERE student_id = $1 AND course_id = $2`
		if err := tx.GetContext(ctx, &stored, current, assignment.StudentID, assignment.CourseID); err != nil {
			return nil, fmt.Errorf("reload assignment: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("upsert assignment: %w", err)
	} else {
		const staleTimetables = `
UPDATE timetables SET authoritative = FALSE, updated_at = $3
WHERE student_id = $1 AND course_id = $2 AND teacher_id <> $4`
		if _, err := tx.ExecContext(ctx, staleTimetables,
			assignment.StudentID, assignment.CourseID, assignment.SelectedAt, assignment.TeacherID); err != nil {
			return nil, fmt.Errorf("invalidate stale timetables: %w", err)
		}
	}

	const mirror = `UPDATE students SET preferred_teacher_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, mirror, assignment.StudentID, stored.TeacherID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("update preferred teacher: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit supersede assignment: %w", err)
	}
	return &stored, nil
}

// ListAssignedStudents returns students whose current assignment points at the teacher.
func (r *AssignmentRepository) ListAssignedStudents(ctx context.Context, teacherID string) ([]models.AssignedStudent, error) {
	const query = `
SELECT s.id, s.registration_no, s.full_name, s.email, s.course_id, s.preferred_teacher_id, s.status,
       s.created_at, s.updated_at,
       sa.id AS assignment_id, sa.selected_at, c.name AS course_name
FROM student_assignments sa
JOIN students s ON s.id = sa.student_id
LEFT JOIN courses c ON c.id = sa.course_id
WHERE sa.teacher_id = $1
ORDER BY s.full_name ASC`
	students := []models.AssignedStudent{}
	if err := r.db.SelectContext(ctx, &students, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assigned students: %w", err)
	}
	return students, nil
}
