package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/academic-api/internal/models"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
)

type teacherRoster interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	CarriesSubject(ctx context.Context, teacherID, subjectID string) (bool, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type attendanceRepo interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	ListBySubjectBatch(ctx context.Context, subjectID, batch string) ([]models.AttendanceRecordDetail, error)
	Summary(ctx context.Context, studentID, subjectID, batch string) (present, absent int, err error)
}

// RegisterAttendanceValidations installs the custom attendance tags on the
// validator. Call it once per validator instance before sharing it across
// services.
func RegisterAttendanceValidations(v *validator.Validate) error {
	return v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToLower(fl.Field().String())).Valid()
	})
}

// MarkEntry is one roster line in an attendance submission. An empty status
// defaults to absent.
type MarkEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"omitempty,attendance_status"`
}

// MarkAttendanceRequest describes a roster submission for one subject session.
type MarkAttendanceRequest struct {
	SubjectID string      `json:"subject_id" validate:"required"`
	Date      string      `json:"date" validate:"required"`
	Batch     string      `json:"batch" validate:"required"`
	Entries   []MarkEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceService owns attendance record creation and aggregation. Roster
// entries that fail the assignment check are skipped and counted, never fatal
// to the rest of the batch.
type AttendanceService struct {
	teachers    teacherRoster
	subjects    subjectReader
	assignments assignmentReader
	records     attendanceRepo
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(
	teachers teacherRoster,
	subjects subjectReader,
	assignments assignmentReader,
	records attendanceRepo,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
		if err := RegisterAttendanceValidations(validate); err != nil {
			logger.Error("failed to register attendance validations", zap.Error(err))
		}
	}
	return &AttendanceService{
		teachers:    teachers,
		subjects:    subjects,
		assignments: assignments,
		records:     records,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Mark records attendance for a roster of students. The teacher must carry
// the subject; each entry additionally requires a current assignment naming
// this teacher for the subject's course. Per-student writes are independent
// upserts, so resubmitting a batch overwrites rather than duplicates.
func (s *AttendanceService) Mark(ctx context.Context, teacherID string, req MarkAttendanceRequest) (*models.MarkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	authorized, err := s.teachers.CarriesSubject(ctx, teacherID, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject roster")
	}
	if !authorized {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "subject is not on the teacher's roster")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	batchStart, batchEnd, err := models.ParseBatch(req.Batch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	if date.Before(batchStart) || !date.Before(batchEnd) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is outside the batch period")
	}

	seen := make(map[string]struct{}, len(req.Entries))
	for _, entry := range req.Entries {
		if _, ok := seen[entry.StudentID]; ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate student in entries")
		}
		seen[entry.StudentID] = struct{}{}
	}

	result := &models.MarkResult{}
	for _, entry := range req.Entries {
		assignment, err := s.assignments.GetCurrent(ctx, entry.StudentID, subject.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.SkippedUnauthorized++
				result.SkippedStudentIDs = append(result.SkippedStudentIDs, entry.StudentID)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
		}
		if assignment.TeacherID != teacherID {
			result.SkippedUnauthorized++
			result.SkippedStudentIDs = append(result.SkippedStudentIDs, entry.StudentID)
			continue
		}

		status := models.AttendanceStatus(strings.ToLower(entry.Status))
		if entry.Status == "" {
			status = models.AttendanceStatusAbsent
		}

		record := &models.AttendanceRecord{
			StudentID:          entry.StudentID,
			SubjectID:          req.SubjectID,
			Date:               date,
			Status:             status,
			RecordingTeacherID: teacherID,
			Batch:              req.Batch,
		}
		if err := s.records.Upsert(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance record")
		}
		result.Written++

		if s.cache.Enabled() {
			_ = s.cache.Invalidate(ctx, fmt.Sprintf("facade:attendance:%s:*", entry.StudentID))
		}
	}

	s.metrics.RecordAttendanceMarks(result.Written, result.SkippedUnauthorized)
	s.logger.Info("attendance marked",
		zap.String("teacher_id", teacherID),
		zap.String("subject_id", req.SubjectID),
		zap.String("date", req.Date),
		zap.Int("written", result.Written),
		zap.Int("skipped_unauthorized", result.SkippedUnauthorized),
	)
	return result, nil
}

// List returns all records for the subject within the batch period, ordered
// by date then student name. The teacher must carry the subject.
func (s *AttendanceService) List(ctx context.Context, teacherID, subjectID, batch string) ([]models.AttendanceRecordDetail, error) {
	authorized, err := s.teachers.CarriesSubject(ctx, teacherID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject roster")
	}
	if !authorized {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "subject is not on the teacher's roster")
	}
	if _, _, err := models.ParseBatch(batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch")
	}

	records, err := s.records.ListBySubjectBatch(ctx, subjectID, batch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// StatusSummary aggregates one student's marks for a subject and batch.
// An empty period reports zero percent, never NaN.
func (s *AttendanceService) StatusSummary(ctx context.Context, studentID, subjectID, batch string) (*models.AttendanceSummary, error) {
	if _, _, err := models.ParseBatch(batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch")
	}

	present, absent, err := s.records.Summary(ctx, studentID, subjectID, batch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}

	summary := &models.AttendanceSummary{PresentCount: present, AbsentCount: absent}
	if total := present + absent; total > 0 {
		summary.Percentage = float64(present) / float64(total) * 100
	}
	return summary, nil
}
