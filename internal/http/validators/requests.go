package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	dto "task-lifecycle.com/task-lifecycle/internal/data_models"
)

const maxContentLength = 32 * 1024

func ValidateAdoptTemplateRequest(r *dto.AdoptTemplateRequest) error {
	if strings.TrimSpace(r.TemplateID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "template_id is required")
	}
	if p := r.Customizations.Priority; p != "" && !p.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "priority must be one of low, medium, high, urgent")
	}
	return nil
}

func ValidateAssignTaskRequest(r *dto.AssignTaskRequest) error {
	if strings.TrimSpace(r.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	return nil
}

func ValidateCreateExecutionRequest(r *dto.CreateExecutionRequest) error {
	if r.DomainTaskID == "" && r.UserTaskID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "domain_task_id or user_task_id is required")
	}
	return nil
}

func ValidateCompleteExecutionRequest(r *dto.CompleteExecutionRequest) error {
	if !constants.ExecutionStatus(r.Outcome).IsTerminal() {
		return echo.NewHTTPError(http.StatusBadRequest, "outcome must be completed or failed")
	}
	return nil
}

func ValidateAppendMessageRequest(r *dto.AppendMessageRequest) error {
	if !constants.MessageRole(r.Role).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be one of user, assistant, system, tool")
	}
	if strings.TrimSpace(r.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}
	if len(r.Content) > maxContentLength {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "content is too long")
	}
	return nil
}

func ValidateFeedbackRequest(r *dto.FeedbackRequest) error {
	switch constants.FeedbackRating(r.Rating) {
	case constants.RatingUp, constants.RatingDown:
		return nil
	}
	return echo.NewHTTPError(http.StatusBadRequest, "rating must be up or down")
}
