package server

import (
	"time"

	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/configuration"
	httpHandler "ai-promoter/interfaces/http"
	"ai-promoter/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User     httpHandler.IUserHandler
	Content  httpHandler.IContentHandler
	Publish  httpHandler.IPublishHandler
	LinkedIn httpHandler.ILinkedInOAuthHandler
	Jobs     httpHandler.IJobsHandler
	// Stream serves the per-user SSE feed of pipeline events.
	Stream gin.HandlerFunc
}

func InitiateRouter(app configuration.App, userRepository repository.IUser, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.Auth(userRepository, app.SecretKey)
	api := router.Group("api")
	api.Use(auth)

	router.POST("/login", h.User.Login)
	router.POST("/register", h.User.Register)
	router.GET("/healthz", h.Jobs.Healthz)

	// The callback arrives from the browser without a bearer token; the state carries the user.
	router.GET("/auth/linkedin", auth, h.LinkedIn.GetAuthURL)
	router.GET("/auth/linkedin/callback", h.LinkedIn.Callback)
	api.GET("/linkedin/status", h.LinkedIn.Status)
	api.POST("/linkedin/disconnect", h.LinkedIn.Disconnect)

	content := api.Group("/content")
	{
		content.POST("", h.Content.Submit)
		content.GET("/stream", h.Stream)
		content.GET("/:id", h.Content.Get)
		content.PUT("/:id/copy", h.Content.UpdateCopy)
		content.DELETE("/:id", h.Content.Delete)
		content.GET("/:id/shares", h.Content.Shares)
		content.POST("/:id/rescrape", h.Content.Rescrape)
	}

	api.POST("/publish", h.Publish.Publish)
	api.POST("/publish/validate", h.Publish.Validate)

	jobs := api.Group("/jobs")
	{
		jobs.POST("/poll-feeds", h.Jobs.PollFeeds)
		jobs.POST("/process-scrapes", h.Jobs.ProcessScrapes)
	}

	return router
}
