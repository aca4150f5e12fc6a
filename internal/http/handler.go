package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"task-lifecycle.com/task-lifecycle/internal/exceptions"
	middleware "task-lifecycle.com/task-lifecycle/internal/http/middlewares"
	"task-lifecycle.com/task-lifecycle/internal/services"
)

type Handler struct {
	pipeline       *services.Pipeline
	platformAdmins map[string]struct{}
	log            zerolog.Logger
}

func NewHandler(pipeline *services.Pipeline, platformAdmins []string, log zerolog.Logger) *Handler {
	admins := make(map[string]struct{}, len(platformAdmins))
	for _, id := range platformAdmins {
		admins[id] = struct{}{}
	}

	return &Handler{
		pipeline:       pipeline,
		platformAdmins: admins,
		log:            log.With().Str("component", "http").Logger(),
	}
}

// fail maps service errors onto HTTP errors. Unknown errors are logged and
// reported as 500 without detail.
func (h *Handler) fail(c echo.Context, err error) error {
	status := exceptions.StatusCode(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return echo.NewHTTPError(status, "internal server error")
	}
	return echo.NewHTTPError(status, err.Error())
}

func (h *Handler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(exceptions.ErrInvalidJSON.StatusCode, exceptions.ErrInvalidJSON.Message)
	}
	return nil
}

func (h *Handler) requirePlatformAdmin(c echo.Context) error {
	if _, ok := h.platformAdmins[middleware.UserID(c)]; !ok {
		return h.fail(c, exceptions.ErrPlatformAdminRequired)
	}
	return nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, name+" must be a boolean")
	}
	return v, nil
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
