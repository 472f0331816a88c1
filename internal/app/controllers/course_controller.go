package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/bgrs/internal/app/models/dto"
	"github.com/yigit/bgrs/internal/app/services"
	"github.com/yigit/bgrs/internal/middleware"
)

// ConnectionCounter reports the number of open client connections
type ConnectionCounter interface {
	Count() int
}

// CourseController serves read-only views of the engine to operators
type CourseController struct {
	service     services.RegistrationService
	connections ConnectionCounter
	logger      zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(service services.RegistrationService, connections ConnectionCounter, logger zerolog.Logger) *CourseController {
	return &CourseController{
		service:     service,
		connections: connections,
		logger:      logger.With().Str("component", "ops").Logger(),
	}
}

type courseURI struct {
	ID int `uri:"id" binding:"min=0,max=65535"`
}

type studentURI struct {
	Username string `uri:"username" binding:"required"`
}

// Health reports whether the server is ready to serve registrations
func (c *CourseController) Health(ctx *gin.Context) {
	resp := dto.HealthResponse{
		Status:        "ok",
		CatalogLoaded: c.service.CatalogLoaded(),
		Courses:       c.service.CourseCount(),
		Sessions:      c.service.SessionCount(),
	}
	if c.connections != nil {
		resp.Connections = c.connections.Count()
	}

	status := http.StatusOK
	if !resp.CatalogLoaded {
		resp.Status = "catalog not loaded"
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, resp)
}

// GetAllCourses lists every course in catalog order
func (c *CourseController) GetAllCourses(ctx *gin.Context) {
	stats := c.service.InspectCourses()
	courses := make([]*dto.CourseResponse, 0, len(stats))
	for _, s := range stats {
		courses = append(courses, dto.NewCourseResponse(s))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(courses))
}

// GetCourseByID returns one course with its roster
func (c *CourseController) GetCourseByID(ctx *gin.Context) {
	var uri courseURI
	if err := ctx.ShouldBindUri(&uri); err != nil {
		c.logger.Debug().Err(err).Str("id", ctx.Param("id")).Msg("Invalid course id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.ValidationErrorDetail(err)))
		return
	}

	stat, err := c.service.InspectCourse(uri.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewCourseResponse(stat)))
}

// GetStudent returns the courses of a student
func (c *CourseController) GetStudent(ctx *gin.Context) {
	var uri studentURI
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.ValidationErrorDetail(err)))
		return
	}

	stat, err := c.service.InspectStudent(uri.Username)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(stat)))
}
