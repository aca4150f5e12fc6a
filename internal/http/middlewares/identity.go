package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"task-lifecycle.com/task-lifecycle/internal/exceptions"
)

// UserIDHeader carries the caller identity, already verified upstream.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
			if userID == "" {
				return echo.NewHTTPError(exceptions.ErrIdentityRequired.StatusCode, exceptions.ErrIdentityRequired.Message)
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
