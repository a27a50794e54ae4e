package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academic-api/internal/middleware"
	"github.com/campuskit/academic-api/internal/models"
	"github.com/campuskit/academic-api/internal/service"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
	"github.com/campuskit/academic-api/pkg/response"
)

// TimetableHandler exposes per-student timetable construction and reads.
type TimetableHandler struct {
	timetables *service.TimetableService
	facade     *service.FacadeService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(timetables *service.TimetableService, facade *service.FacadeService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, facade: facade}
}

// CreateTimetableRequest carries the submitted slot batch. CourseID may be
// omitted, in which case the student's enrolled course is used.
type CreateTimetableRequest struct {
	CourseID string              `json:"course_id"`
	Slots    []service.SlotInput `json:"slots" binding:"required"`
}

// Create godoc
// @Summary Create a student's timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body CreateTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Router /teachers/me/students/{studentId}/timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	timetable, err := h.timetables.Create(c.Request.Context(), claims.UserID, c.Param("studentId"), req.CourseID, req.Slots)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, timetable)
}

// Update godoc
// @Summary Replace a student's timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body CreateTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /teachers/me/students/{studentId}/timetable [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	timetable, err := h.timetables.Update(c.Request.Context(), claims.UserID, c.Param("studentId"), req.Slots)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// GetForStudent godoc
// @Summary Read a student's resolved timetable
// @Tags Timetables
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/me/students/{studentId}/timetable [get]
func (h *TimetableHandler) GetForStudent(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// Admins may read any student; teachers only students currently
	// assigned to them.
	var (
		view *service.TimetableView
		err  error
	)
	if claims.Role == models.RoleAdmin {
		view, err = h.facade.ResolvedTimetable(c.Request.Context(), c.Param("studentId"))
	} else {
		view, err = h.facade.ResolvedTimetableForTeacher(c.Request.Context(), claims.UserID, c.Param("studentId"))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// GetMine godoc
// @Summary Read the caller's own resolved timetable
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/timetable [get]
func (h *TimetableHandler) GetMine(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.facade.ResolvedTimetable(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
