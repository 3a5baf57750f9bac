package router

import (
	"github.com/gin-gonic/gin"

	"budgetgrader/internal/handler"
	"budgetgrader/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	healthH *handler.HealthHandler,
	gradeH *handler.GradeHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	v1.POST("/extract", gradeH.Extract)

	grade := v1.Group("/grade")
	grade.POST("", gradeH.Grade)
	grade.POST("/export", gradeH.Export)
	grade.POST("/batch", gradeH.GradeBatch)

	return r
}
