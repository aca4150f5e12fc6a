package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"task-lifecycle.com/task-lifecycle/internal/constants"
	dto "task-lifecycle.com/task-lifecycle/internal/data_models"
	repository "task-lifecycle.com/task-lifecycle/internal/repositories"
)

func (h *Handler) ListTemplates(c echo.Context) error {
	templates, err := h.pipeline.Templates.ListActiveTemplates(c.Request().Context(), repository.TemplateFilter{
		Category:       c.QueryParam("category"),
		ExecutionModel: constants.ExecutionModel(c.QueryParam("execution_model")),
		Scope:          constants.TemplateScope(c.QueryParam("scope")),
		DomainID:       c.QueryParam("domain_id"),
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListResponse(templates))
}

func (h *Handler) GetTemplate(c echo.Context) error {
	tmpl, err := h.pipeline.Templates.GetTemplate(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, tmpl)
}

func (h *Handler) UpsertTemplate(c echo.Context) error {
	if err := h.requirePlatformAdmin(c); err != nil {
		return err
	}

	var req dto.UpsertTemplateRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	saved, err := h.pipeline.Templates.UpsertTemplate(c.Request().Context(), req.Template(), req.IsActive)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeactivateTemplate(c echo.Context) error {
	if err := h.requirePlatformAdmin(c); err != nil {
		return err
	}

	if err := h.pipeline.Templates.Deactivate(c.Request().Context(), c.Param("ref")); err != nil {
		return h.fail(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
