package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskproof/api/handler"
)

type Handlers struct {
	Feed    *apiHandler.FeedHandler
	Task    *apiHandler.TaskHandler
	Profile *apiHandler.ProfileHandler
	Capture *apiHandler.CaptureHandler
	Health  *apiHandler.HealthHandler
}

// New registers every route; identity wraps all /api/v1 routes.
func New(handlers Handlers, identity func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	api.GET("/feed", identity(handlers.Feed.GetFeed))
	api.POST("/feed/swipe", identity(handlers.Feed.Swipe))
	api.POST("/feed/{id}/viewed", identity(handlers.Feed.MarkViewed))

	api.GET("/tasks", identity(handlers.Task.GetTasks))
	api.POST("/tasks", identity(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", identity(handlers.Task.GetTask))
	api.GET("/tasks/{id}/progress", identity(handlers.Task.GetProgress))
	api.POST("/tasks/{id}/complete", identity(handlers.Task.CompleteTask))
	api.POST("/tasks/{id}/abandon", identity(handlers.Task.AbandonTask))
	api.DELETE("/tasks/{id}", identity(handlers.Task.DeleteTask))

	api.GET("/profile", identity(handlers.Profile.GetProfile))
	api.PUT("/profile", identity(handlers.Profile.UpdateProfile))
	api.GET("/friends", identity(handlers.Profile.ListFriends))
	api.POST("/friends/{id}", identity(handlers.Profile.AddFriend))

	api.POST("/capture", identity(handlers.Capture.Capture))
	api.POST("/capture/confirm", identity(handlers.Capture.Confirm))

	return r
}
