package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academic-api/internal/models"
)

// SubjectRepository resolves subjects and their owning courses.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID returns a single subject or sql.ErrNoRows.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `
SELECT id, code, name, course_id, created_at, updated_at
FROM subjects
WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
