package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	dto "task-lifecycle.com/task-lifecycle/internal/data_models"
	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	middleware "task-lifecycle.com/task-lifecycle/internal/http/middlewares"
	"task-lifecycle.com/task-lifecycle/internal/http/validators"
	model "task-lifecycle.com/task-lifecycle/internal/models"
	"task-lifecycle.com/task-lifecycle/internal/services"
)

func (h *Handler) CreateExecution(c echo.Context) error {
	var req dto.CreateExecutionRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateCreateExecutionRequest(&req); err != nil {
		return err
	}

	ex, err := h.pipeline.Executions.CreateExecution(c.Request().Context(), services.CreateExecutionInput{
		UserID:               middleware.UserID(c),
		DomainID:             req.DomainID,
		DomainTaskID:         req.DomainTaskID,
		UserTaskID:           req.UserTaskID,
		SystemPromptOverride: req.SystemPromptOverride,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusCreated, ex)
}

func (h *Handler) ListExecutions(c echo.Context) error {
	executions, err := h.pipeline.Executions.ListExecutions(c.Request().Context(), middleware.UserID(c), c.QueryParam("domain_task_id"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListResponse(executions))
}

// ownedExecution loads the execution in the path and checks the caller owns it.
func (h *Handler) ownedExecution(c echo.Context) (*model.Execution, error) {
	ex, err := h.pipeline.Executions.GetExecution(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, h.fail(c, err)
	}
	if ex.UserID != middleware.UserID(c) {
		return nil, h.fail(c, exceptions.ErrNotOwner)
	}
	return ex, nil
}

func (h *Handler) GetExecution(c echo.Context) error {
	ex, err := h.ownedExecution(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ex)
}

func (h *Handler) CompleteExecution(c echo.Context) error {
	var req dto.CompleteExecutionRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateCompleteExecutionRequest(&req); err != nil {
		return err
	}

	ex, err := h.ownedExecution(c)
	if err != nil {
		return err
	}

	closed, err := h.pipeline.Executions.CompleteExecution(c.Request().Context(), ex.ID, constants.ExecutionStatus(req.Outcome))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, closed)
}

func (h *Handler) DeleteExecution(c echo.Context) error {
	if err := h.pipeline.Executions.DeleteExecution(c.Request().Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		return h.fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AppendMessage(c echo.Context) error {
	var req dto.AppendMessageRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateAppendMessageRequest(&req); err != nil {
		return err
	}

	msg, err := h.pipeline.Messages.AppendMessage(c.Request().Context(), services.AppendMessageInput{
		ExecutionID:     c.Param("id"),
		Role:            constants.MessageRole(req.Role),
		Content:         req.Content,
		UserID:          middleware.UserID(c),
		ParentMessageID: req.ParentMessageID,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusCreated, msg)
}

func (h *Handler) GetMessages(c echo.Context) error {
	page := services.MessagePage{Before: c.QueryParam("before")}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return h.fail(c, exceptions.ErrInvalidLimit)
		}
		page.Limit = limit
	}

	ex, err := h.ownedExecution(c)
	if err != nil {
		return err
	}

	messages, err := h.pipeline.Messages.GetMessages(c.Request().Context(), ex.ID, page)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListResponse(messages))
}

func (h *Handler) UpdateFeedback(c echo.Context) error {
	var req dto.FeedbackRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateFeedbackRequest(&req); err != nil {
		return err
	}

	msg, err := h.pipeline.Messages.UpdateFeedback(c.Request().Context(), middleware.UserID(c), c.Param("id"), model.Feedback{
		Rating:  constants.FeedbackRating(req.Rating),
		Comment: req.Comment,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, msg)
}
