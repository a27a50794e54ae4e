package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academic-api/internal/models"
)

// CourseRepository reads programme records from the directory store.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a single course or sql.ErrNoRows.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `
SELECT id, code, name, created_at, updated_at
FROM courses
WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
