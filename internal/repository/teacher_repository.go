package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academic-api/internal/models"
)

// TeacherRepository reads instructor records and roster membership.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID returns a single teacher or sql.ErrNoRows.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `
SELECT id, full_name, email, department, designation, active, created_at, updated_at
FROM teachers
WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListByCourse returns active teachers assigned to the course, ordered by name.
func (r *TeacherRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Teacher, error) {
	const query = `
SELECT t.id, t.full_name, t.email, t.department, t.designation, t.active, t.created_at, t.updated_at
FROM teachers t
JOIN teacher_courses tc ON tc.teacher_id = t.id
WHERE tc.course_id = $1 AND t.active = TRUE
ORDER BY t.full_name ASC`
	teachers := []models.Teacher{}
	if err := r.db.SelectContext(ctx, &teachers, query, courseID); err != nil {
		return nil, fmt.Errorf("list teachers by course: %w", err)
	}
	return teachers, nil
}

// TeachesCourse checks the teacher-course membership edge.
func (r *TeacherRepository) TeachesCourse(ctx context.Context, teacherID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_courses WHERE teacher_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher course: %w", err)
	}
	return true, nil
}

// CarriesSubject checks whether the subject appears on the teacher's roster.
func (r *TeacherRepository) CarriesSubject(ctx context.Context, teacherID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher subject: %w", err)
	}
	return true, nil
}

// ListSubjects returns the teacher's roster with name snapshots for display.
func (r *TeacherRepository) ListSubjects(ctx context.Context, teacherID string) ([]models.SubjectRef, error) {
	const query = `
SELECT ts.subject_id, ts.name_snapshot
FROM teacher_subjects ts
WHERE ts.teacher_id = $1
ORDER BY ts.position ASC`
	refs := []models.SubjectRef{}
	if err := r.db.SelectContext(ctx, &refs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return refs, nil
}
