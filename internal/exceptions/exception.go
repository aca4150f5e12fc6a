package exceptions

import (
	"errors"
	"net/http"
)

type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func hasStatus(err error, status int) bool {
	var appErr *Exception
	return errors.As(err, &appErr) && appErr.StatusCode == status
}

func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func IsAuthorization(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

func IsValidation(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}
