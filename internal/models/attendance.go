package models

import (
	"fmt"
	"time"
)

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// ParseBatch validates a "YYYY-MM" batch key and returns the half-open
// [first-of-month, first-of-next-month) date range it covers.
func ParseBatch(batch string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", batch)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid batch %q, expected YYYY-MM", batch)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// AttendanceRecord is one student's mark for one subject on one date. At most
// one record exists per (student, subject, date); resubmission overwrites.
type AttendanceRecord struct {
	ID                 string           `db:"id" json:"id"`
	StudentID          string           `db:"student_id" json:"student_id"`
	SubjectID          string           `db:"subject_id" json:"subject_id"`
	Date               time.Time        `db:"date" json:"date"`
	Status             AttendanceStatus `db:"status" json:"status"`
	RecordingTeacherID string           `db:"recording_teacher_id" json:"recording_teacher_id"`
	Batch              string           `db:"batch" json:"batch"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecordDetail extends a record with student metadata for listings.
type AttendanceRecordDetail struct {
	AttendanceRecord
	StudentName string `db:"student_name" json:"student_name"`
}

// MarkResult summarises a roster submission. Skips are reported outcomes,
// not errors; the written entries stay committed.
type MarkResult struct {
	Written             int      `json:"written"`
	SkippedUnauthorized int      `json:"skipped_unauthorized"`
	SkippedStudentIDs   []string `json:"skipped_student_ids,omitempty"`
}

// AttendanceSummary aggregates a student's marks for one subject and batch.
type AttendanceSummary struct {
	PresentCount int     `json:"present_count"`
	AbsentCount  int     `json:"absent_count"`
	Percentage   float64 `json:"percentage"`
}
