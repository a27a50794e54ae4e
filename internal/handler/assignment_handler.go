package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academic-api/internal/middleware"
	"github.com/campuskit/academic-api/internal/service"
	appErrors "github.com/campuskit/academic-api/pkg/errors"
	"github.com/campuskit/academic-api/pkg/response"
)

// AssignmentHandler exposes the teacher-selection workflow and the teacher's
// assigned-students projection.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	facade      *service.FacadeService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignments *service.AssignmentService, facade *service.FacadeService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, facade: facade}
}

// SelectTeacherRequest is the student's teacher selection payload.
type SelectTeacherRequest struct {
	TeacherID string `json:"teacher_id" binding:"required"`
}

// ListEligibleTeachers godoc
// @Summary List teachers eligible for the caller's course
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/eligible-teachers [get]
func (h *AssignmentHandler) ListEligibleTeachers(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	teachers, err := h.assignments.ListEligibleTeachers(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// SelectTeacher godoc
// @Summary Select or switch the caller's teacher for their course
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body SelectTeacherRequest true "Teacher selection"
// @Success 200 {object} response.Envelope
// @Router /students/me/teacher [post]
func (h *AssignmentHandler) SelectTeacher(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req SelectTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	assignment, err := h.assignments.SelectTeacher(c.Request.Context(), claims.UserID, req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// AssignedStudents godoc
// @Summary List students currently assigned to the caller
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/me/students [get]
func (h *AssignmentHandler) AssignedStudents(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	students, err := h.facade.AssignedStudents(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
