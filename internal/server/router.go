package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/studydrops/backend/internal/handlers"
)

type RouterConfig struct {
	ServiceName      string
	TelemetryHandler *handlers.TelemetryHandler
	TrailHandler     *handlers.TrailHandler
	SrsHandler       *handlers.SrsHandler
	ExamHandler      *handlers.ExamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		users := api.Group("/users/:userId")
		{
			// Telemetry + state
			users.POST("/telemetry/cognitive", cfg.TelemetryHandler.RecordCognitive)
			users.POST("/telemetry/emotional", cfg.TelemetryHandler.RecordEmotional)
			users.GET("/state", cfg.TelemetryHandler.GetState)

			// Trails
			users.POST("/trails", cfg.TrailHandler.GenerateTrail)
			users.GET("/trails/today", cfg.TrailHandler.GetTodayTrail)
			users.PATCH("/trail-items/:itemId", cfg.TrailHandler.UpdateTrailItem)

			// SRS
			users.POST("/srs/reviews", cfg.SrsHandler.SubmitReview)
			users.GET("/srs/queue", cfg.SrsHandler.GetQueue)
			users.GET("/srs/summary", cfg.SrsHandler.GetSummary)
			users.PUT("/srs/settings", cfg.SrsHandler.UpdateSettings)
			users.GET("/srs/intervals", cfg.SrsHandler.ListIntervals)
			users.PUT("/srs/intervals", cfg.SrsHandler.UpdateInterval)

			// Exams
			users.POST("/exams", cfg.ExamHandler.StartExam)
		}

		exams := api.Group("/exams/:executionId")
		{
			exams.GET("/next-question", cfg.ExamHandler.NextQuestion)
			exams.POST("/answers", cfg.ExamHandler.ProcessAnswer)
			exams.POST("/finish", cfg.ExamHandler.FinishExam)
			exams.GET("/report", cfg.ExamHandler.GetReport)
		}
	}

	return router
}
