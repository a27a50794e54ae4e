package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// weekdays is the fixed teaching-day set. Sunday is not schedulable.
var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayIndex resolves a weekday name to its position in the teaching week.
// Matching is case-insensitive; unknown days return ok=false.
func DayIndex(day string) (int, bool) {
	for i, d := range weekdays {
		if strings.EqualFold(d, day) {
			return i, true
		}
	}
	return 0, false
}

// CanonicalDay returns the canonical spelling for a valid weekday.
func CanonicalDay(day string) (string, bool) {
	if i, ok := DayIndex(day); ok {
		return weekdays[i], true
	}
	return "", false
}

// MinuteOfDay parses an "HH:MM" clock string into minutes since midnight.
// Cross-midnight slots are not modeled, so 24:00 and beyond are rejected.
func MinuteOfDay(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", clock)
	}
	return hour*60 + minute, nil
}

// ScheduleSlot is one scheduled class occurrence within a timetable, bound to
// a weekday and a half-open [start, end) time range on that day.
type ScheduleSlot struct {
	ID          string `db:"id" json:"id"`
	Day         string `db:"day" json:"day"`
	StartTime   string `db:"start_time" json:"start_time"`
	EndTime     string `db:"end_time" json:"end_time"`
	Subject     string `db:"subject" json:"subject"`
	Classroom   string `db:"classroom" json:"classroom"`
	Description string `db:"description" json:"description"`
}

// Overlaps reports whether two slots collide on the same day. Ranges are
// half-open, so back-to-back slots sharing a boundary do not overlap.
// Slots with unparseable fields never report an overlap; validation rejects
// them before this check runs.
func (s ScheduleSlot) Overlaps(other ScheduleSlot) bool {
	di, ok := DayIndex(s.Day)
	if !ok {
		return false
	}
	dj, ok := DayIndex(other.Day)
	if !ok || di != dj {
		return false
	}
	aStart, err := MinuteOfDay(s.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := MinuteOfDay(s.EndTime)
	if err != nil {
		return false
	}
	bStart, err := MinuteOfDay(other.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := MinuteOfDay(other.EndTime)
	if err != nil {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// SortSlots orders slots by day index then start minute, giving the stable
// weekly-grid order independent of insertion order.
func SortSlots(slots []ScheduleSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		di, _ := DayIndex(slots[i].Day)
		dj, _ := DayIndex(slots[j].Day)
		if di != dj {
			return di < dj
		}
		si, _ := MinuteOfDay(slots[i].StartTime)
		sj, _ := MinuteOfDay(slots[j].StartTime)
		return si < sj
	})
}

// Timetable is the weekly schedule a teacher builds for one assigned student.
// Authoritative is cleared when the underlying assignment is superseded; a
// stale timetable is retained but never served.
type Timetable struct {
	ID            string         `db:"id" json:"id"`
	StudentID     string         `db:"student_id" json:"student_id"`
	TeacherID     string         `db:"teacher_id" json:"teacher_id"`
	CourseID      string         `db:"course_id" json:"course_id"`
	Authoritative bool           `db:"authoritative" json:"authoritative"`
	Slots         []ScheduleSlot `json:"slots"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// SlotConflictError identifies the first colliding pair in a submitted batch.
type SlotConflictError struct {
	Message string       `json:"message"`
	First   ScheduleSlot `json:"first"`
	Second  ScheduleSlot `json:"second"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
