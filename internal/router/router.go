package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/handler"
	"github.com/roadready/permitprep-backend/internal/middleware"
	"github.com/roadready/permitprep-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam       *handler.ExamHandler
	Generation *handler.GenerationHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// ─── Exams ─────────────────────────────────────────────────────────
	// Starting an exam issues the session cookie; everything mid-exam
	// requires it.
	exams := v1.Group("/exams")
	{
		exams.POST("", handlers.Exam.StartExam)
		exams.POST("/custom", handlers.Exam.StartCustomExam)

		active := exams.Group("")
		active.Use(middleware.RequireSession())
		{
			active.GET("/current", handlers.Exam.CurrentQuestion)
			active.POST("/answers", handlers.Exam.SubmitAnswer)
			active.GET("/result", handlers.Exam.GetResult)
		}
	}

	// ─── Generation ────────────────────────────────────────────────────
	// Uploads are rate-limited per IP; each accepted upload costs a full
	// model run.
	generations := v1.Group("/generations")
	{
		uploadLimiter := middleware.NewRateLimiter(5, time.Minute)
		generations.POST("", uploadLimiter.Middleware(), handlers.Generation.CreateGeneration)
		generations.GET("/:job_id", handlers.Generation.GetGeneration)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	router.GET("/ws/v1/generations/:job_id", handlers.WS.GenerationStream)

	return router
}
