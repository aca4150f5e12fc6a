package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	middleware "task-lifecycle.com/task-lifecycle/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int, gatherer prometheus.Gatherer, log zerolog.Logger) {
	e.Use(middleware.RequestLogger(log))

	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("", middleware.Identity(), middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	api.GET("/templates", h.ListTemplates)
	api.GET("/templates/:ref", h.GetTemplate)
	api.PUT("/templates", h.UpsertTemplate)
	api.POST("/templates/:ref/deactivate", h.DeactivateTemplate)

	api.GET("/domains/:domainId/adoptable-templates", h.ListAdoptableTemplates)
	api.POST("/domains/:domainId/adoptions", h.AdoptTemplate)
	api.GET("/domains/:domainId/tasks", h.ListDomainTasks)
	api.POST("/domains/:domainId/tasks/:taskId/deactivate", h.DeactivateDomainTask)
	api.POST("/domains/:domainId/tasks/:taskId/assignments", h.AssignTask)

	api.GET("/user-tasks", h.ListUserTasks)
	api.GET("/user-tasks/:id", h.GetUserTask)
	api.POST("/user-tasks/:id/view", h.MarkTaskViewed)
	api.POST("/user-tasks/:id/complete", h.CompleteTask)
	api.POST("/user-tasks/:id/visibility", h.ToggleTaskVisibility)

	api.POST("/executions", h.CreateExecution)
	api.GET("/executions", h.ListExecutions)
	api.GET("/executions/:id", h.GetExecution)
	api.POST("/executions/:id/complete", h.CompleteExecution)
	api.DELETE("/executions/:id", h.DeleteExecution)
	api.POST("/executions/:id/messages", h.AppendMessage)
	api.GET("/executions/:id/messages", h.GetMessages)

	api.PUT("/messages/:id/feedback", h.UpdateFeedback)
}
