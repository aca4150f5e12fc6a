package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-lifecycle.com/task-lifecycle/internal/data_models"
	middleware "task-lifecycle.com/task-lifecycle/internal/http/middlewares"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

func (h *Handler) ListUserTasks(c echo.Context) error {
	includeCompleted, err := queryBool(c, "include_completed")
	if err != nil {
		return err
	}
	includeHidden, err := queryBool(c, "include_hidden")
	if err != nil {
		return err
	}

	tasks, err := h.pipeline.Assignments.GetUserTasks(c.Request().Context(), middleware.UserID(c), repository.UserTaskFilter{
		DomainID:         c.QueryParam("domain_id"),
		IncludeCompleted: includeCompleted,
		IncludeHidden:    includeHidden,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListResponse(tasks))
}

func (h *Handler) GetUserTask(c echo.Context) error {
	ut, err := h.pipeline.Assignments.GetUserTask(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, ut)
}

func (h *Handler) MarkTaskViewed(c echo.Context) error {
	ut, err := h.pipeline.Assignments.MarkTaskViewed(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, ut)
}

func (h *Handler) CompleteTask(c echo.Context) error {
	var req dto.CompleteTaskRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	ut, err := h.pipeline.Assignments.CompleteTask(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.CompletionData)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, ut)
}

func (h *Handler) ToggleTaskVisibility(c echo.Context) error {
	ut, err := h.pipeline.Assignments.ToggleTaskVisibility(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, ut)
}
