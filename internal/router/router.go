package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/budokan/backend/api/handler"
)

type Handlers struct {
	Watch      *apiHandler.WatchHandler
	Progress   *apiHandler.ProgressHandler
	Attendance *apiHandler.AttendanceHandler
	Health     *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New builds the route table. Watch pages take the optional-identity
// middleware so anonymous viewers reach the access evaluator; all write
// paths require a verified viewer.
func New(handlers Handlers, requireViewer, optionalViewer Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Watch pages (redirect-or-render)
	r.GET("/api/v1/watch/live/{id}", optionalViewer(handlers.Watch.Live))
	r.GET("/api/v1/watch/vod/{id}", optionalViewer(handlers.Watch.VOD))

	// Watch progress
	r.GET("/api/v1/sessions/{id}/progress", requireViewer(handlers.Progress.Get))
	r.POST("/api/v1/sessions/{id}/progress", requireViewer(handlers.Progress.Record))
	r.PUT("/api/v1/sessions/{id}/progress", requireViewer(handlers.Progress.Record))
	r.GET("/api/v1/sessions/{id}/progress/all", requireViewer(handlers.Progress.ListSession))

	// Attendance
	r.POST("/api/v1/sessions/{id}/attendance", requireViewer(handlers.Attendance.Join))
	r.GET("/api/v1/sessions/{id}/attendance/{userId}", requireViewer(handlers.Attendance.Get))
	r.PUT("/api/v1/sessions/{id}/attendance/{userId}", requireViewer(handlers.Attendance.AddWatchTime))
	r.DELETE("/api/v1/sessions/{id}/attendance/{userId}", requireViewer(handlers.Attendance.Leave))

	return r
}
