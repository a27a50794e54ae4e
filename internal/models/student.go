package models

import "time"

// Student represents a learner registered in the institution. The course and
// preferred teacher references are owned by the directory store; the preferred
// teacher mirror is written only through the assignment workflow.
type Student struct {
	ID                 string    `db:"id" json:"id"`
	RegistrationNo     string    `db:"registration_no" json:"registration_no"`
	FullName           string    `db:"full_name" json:"full_name"`
	Email              string    `db:"email" json:"email"`
	CourseID           *string   `db:"course_id" json:"course_id,omitempty"`
	PreferredTeacherID *string   `db:"preferred_teacher_id" json:"preferred_teacher_id,omitempty"`
	Status             string    `db:"status" json:"status"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// StudentStatusActive marks a currently enrolled student.
const StudentStatusActive = "active"

// Active reports whether the student is currently enrolled.
func (s *Student) Active() bool {
	return s != nil && s.Status == StudentStatusActive
}
