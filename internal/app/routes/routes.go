package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/bgrs/internal/app/controllers"
	"github.com/yigit/bgrs/internal/app/models"
	"github.com/yigit/bgrs/internal/middleware"
)

// SetupRouter configures the ops API routes
func SetupRouter(
	router *gin.Engine,
	courseController *controllers.CourseController,
	authMiddleware *middleware.AuthMiddleware,
	metricsHandler http.Handler,
) {
	// Public probes
	router.GET("/healthz", courseController.Health)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API version group, administrators only
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.JWTAuth(), authMiddleware.RoleRequired(string(models.RoleAdministrator)))

	courses := v1.Group("/courses")
	{
		courses.GET("", courseController.GetAllCourses)
		courses.GET("/:id", courseController.GetCourseByID)
	}

	v1.GET("/students/:username", courseController.GetStudent)
}
