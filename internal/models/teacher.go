package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Email       string    `db:"email" json:"email"`
	Department  string    `db:"department" json:"department"`
	Designation string    `db:"designation" json:"designation"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectRef is a tagged subject reference carried on a teacher's roster.
// The name is a display snapshot; authorization checks use the ID only.
type SubjectRef struct {
	SubjectID    string `db:"subject_id" json:"subject_id"`
	NameSnapshot string `db:"name_snapshot" json:"name_snapshot"`
}

// TeacherDetail enriches a teacher with roster membership for listings.
type TeacherDetail struct {
	Teacher
	SubjectsAssigned []SubjectRef `json:"subjects_assigned"`
	CoursesAssigned  []string     `json:"courses_assigned"`
}
