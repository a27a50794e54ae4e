package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/academic-api/internal/middleware"
	"github.com/campuskit/academic-api/internal/models"
	"github.com/campuskit/academic-api/internal/service"
)

// Router wires the core handlers onto a gin engine.
type Router struct {
	tokens      *service.TokenService
	metrics     *service.MetricsService
	assignments *AssignmentHandler
	timetables  *TimetableHandler
	attendance  *AttendanceHandler
}

// NewRouter constructs the route registrar.
func NewRouter(
	tokens *service.TokenService,
	metrics *service.MetricsService,
	assignments *AssignmentHandler,
	timetables *TimetableHandler,
	attendance *AttendanceHandler,
) *Router {
	return &Router{
		tokens:      tokens,
		metrics:     metrics,
		assignments: assignments,
		timetables:  timetables,
		attendance:  attendance,
	}
}

// Register mounts all routes under the API prefix.
func (r *Router) Register(engine *gin.Engine, prefix string) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := engine.Group(prefix)
	api.Use(middleware.JWT(r.tokens))

	students := api.Group("/students/me")
	students.Use(middleware.RequireRoles(models.RoleStudent))
	{
		students.GET("/eligible-teachers", r.assignments.ListEligibleTeachers)
		students.POST("/teacher", r.assignments.SelectTeacher)
		students.GET("/timetable", r.timetables.GetMine)
		students.GET("/attendance", r.attendance.MyHistory)
	}

	teachers := api.Group("/teachers/me")
	teachers.Use(middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin))
	{
		teachers.GET("/students", r.assignments.AssignedStudents)
		teachers.POST("/students/:studentId/timetable", r.timetables.Create)
		teachers.PUT("/students/:studentId/timetable", r.timetables.Update)
		teachers.GET("/students/:studentId/timetable", r.timetables.GetForStudent)
		teachers.POST("/attendance", r.attendance.Mark)
		teachers.GET("/attendance", r.attendance.List)
		teachers.GET("/attendance/export", r.attendance.Export)
	}
}
