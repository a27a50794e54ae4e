package models

import "time"

// Assignment is the current binding of one student to one teacher for one
// course. At most one row exists per (student, course); selecting a different
// teacher supersedes the previous binding in place.
type Assignment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	SelectedAt time.Time `db:"selected_at" json:"selected_at"`
}

// AssignedStudent is a directory projection of a student together with the
// assignment edge that points at the queried teacher.
type AssignedStudent struct {
	Student
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	SelectedAt   time.Time `db:"selected_at" json:"selected_at"`
	CourseName   *string   `db:"course_name" json:"course_name,omitempty"`
}
