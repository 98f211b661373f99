package routes

import (
	"github.com/gin-gonic/gin"

	"media-notes/internal/api/middleware"
	"media-notes/internal/api/v1/handlers"
	"media-notes/internal/api/v1/services"
)

// Secrets carries the credentials the v1 routes check
type Secrets struct {
	JWT     string
	Webhook string
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer, secrets Secrets) {
	authed := router.Group("", middleware.BearerAuth(secrets.JWT))

	jobHandler := handlers.NewJobHandler(container.JobService)
	authed.POST("/jobs", jobHandler.Submit)

	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService)
	transcriptions := authed.Group("/transcriptions")
	{
		transcriptions.POST("", transcriptionHandler.Create)
		transcriptions.GET("", transcriptionHandler.List)
		transcriptions.GET("/:id", transcriptionHandler.Get)
		transcriptions.GET("/:id/download", transcriptionHandler.Download)
		transcriptions.POST("/:id/analyses", jobHandler.Analyze)
	}

	creditHandler := handlers.NewCreditHandler(container.CreditService)
	authed.GET("/credits", creditHandler.Get)

	// payment provider callback, authenticated by shared secret instead of a user token
	router.POST("/credits/topups", middleware.WebhookSecret(secrets.Webhook), creditHandler.TopUp)
}

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	JobService           services.JobService
	TranscriptionService services.TranscriptionService
	CreditService        services.CreditService
}
