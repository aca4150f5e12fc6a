package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-lifecycle.com/task-lifecycle/internal/data_models"
	middleware "task-lifecycle.com/task-lifecycle/internal/http/middlewares"
	"task-lifecycle.com/task-lifecycle/internal/http/validators"
)

func (h *Handler) ListAdoptableTemplates(c echo.Context) error {
	templates, err := h.pipeline.Adoptions.ListAdoptableTemplates(c.Request().Context(), c.Param("domainId"), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListResponse(templates))
}

func (h *Handler) AdoptTemplate(c echo.Context) error {
	var req dto.AdoptTemplateRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateAdoptTemplateRequest(&req); err != nil {
		return err
	}

	dt, err := h.pipeline.Adoptions.AdoptTemplate(
		c.Request().Context(),
		c.Param("domainId"),
		req.TemplateID,
		req.Customizations,
		middleware.UserID(c),
	)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dt)
}

func (h *Handler) ListDomainTasks(c echo.Context) error {
	includeInactive, err := queryBool(c, "include_inactive")
	if err != nil {
		return err
	}

	tasks, err := h.pipeline.Adoptions.ListDomainTasks(c.Request().Context(), c.Param("domainId"), includeInactive, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListResponse(tasks))
}

func (h *Handler) DeactivateDomainTask(c echo.Context) error {
	dt, err := h.pipeline.Adoptions.DeactivateDomainTask(
		c.Request().Context(),
		c.Param("domainId"),
		c.Param("taskId"),
		middleware.UserID(c),
	)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, dt)
}

func (h *Handler) AssignTask(c echo.Context) error {
	var req dto.AssignTaskRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateAssignTaskRequest(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	dt, err := h.pipeline.Adoptions.GetDomainTask(ctx, c.Param("taskId"))
	if err != nil {
		return h.fail(c, err)
	}
	if dt.DomainID != c.Param("domainId") {
		return echo.NewHTTPError(http.StatusNotFound, "domain task not found")
	}

	ut, err := h.pipeline.Assignments.AssignTask(ctx, req.UserID, dt.ID, middleware.UserID(c), req.Reason)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, ut)
}
