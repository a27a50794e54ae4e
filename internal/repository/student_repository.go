package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academic-api/internal/models"
)

// StudentRepository reads learner records from the directory store.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a single student or sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `
SELECT id, registration_no, full_name, email, course_id, preferred_teacher_id, status, created_at, updated_at
FROM students
WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

