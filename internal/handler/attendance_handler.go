package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academic-api/internal/middleware"
	"github.com/campuskit/academic-api/internal/models"
	"github.com/campuskit/academic-api/internal/service"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
	"github.com/campuskit/academic-api/pkg/export"
	"github.com/campuskit/academic-api/pkg/response"
)

// AttendanceHandler exposes attendance marking, listing, export and the
// student-facing history projection.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	facade     *service.FacadeService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService, facade *service.FacadeService) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		facade:     facade,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
	}
}

// Mark godoc
// @Summary Mark attendance for a subject roster
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance roster"
// @Success 200 {object} response.Envelope
// @Router /teachers/me/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.attendance.Mark(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List attendance for a subject and batch
// @Tags Attendance
// @Produce json
// @Param subjectId query string true "Subject ID"
// @Param batch query string true "Batch (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /teachers/me/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	records, err := h.attendance.List(c.Request.Context(), claims.UserID, c.Query("subjectId"), c.Query("batch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Export godoc
// @Summary Export attendance for a subject and batch as CSV or PDF
// @Tags Attendance
// @Produce octet-stream
// @Param subjectId query string true "Subject ID"
// @Param batch query string true "Batch (YYYY-MM)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /teachers/me/attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	subjectID := c.Query("subjectId")
	batch := c.Query("batch")
	records, err := h.attendance.List(c.Request.Context(), claims.UserID, subjectID, batch)
	if err != nil {
		response.Error(c, err)
		return
	}

	sheet := attendanceSheet(subjectID, batch, records)
	filename := fmt.Sprintf("attendance-%s-%s", subjectID, batch)

	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := h.pdf.Render(sheet)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", payload)
	case "csv":
		payload, err := h.csv.Render(sheet)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// MyHistory godoc
// @Summary Read the caller's attendance history for a subject and batch
// @Tags Attendance
// @Produce json
// @Param subjectId query string true "Subject ID"
// @Param batch query string true "Batch (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /students/me/attendance [get]
func (h *AttendanceHandler) MyHistory(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.facade.AttendanceHistory(c.Request.Context(), claims.UserID, c.Query("subjectId"), c.Query("batch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

func attendanceSheet(subjectID, batch string, records []models.AttendanceRecordDetail) export.Sheet {
	sheet := export.Sheet{
		Title:    "Attendance Sheet",
		Subtitle: fmt.Sprintf("Subject %s, %s", subjectID, batch),
		Headers:  []string{"Date", "Student", "Status", "Recorded By"},
	}
	for _, record := range records {
		sheet.Rows = append(sheet.Rows, []string{
			record.Date.Format("2006-01-02"),
			record.StudentName,
			string(record.Status),
			record.RecordingTeacherID,
		})
	}
	return sheet
}
