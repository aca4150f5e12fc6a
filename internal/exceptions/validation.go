package exceptions

import (
	"fmt"
	"net/http"
)

var ErrInvalidJSON = &Exception{
	Message:    "invalid JSON payload",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidLimit = &Exception{
	Message:    "limit must be between 1 and 500",
	StatusCode: http.StatusBadRequest,
}

// Validation builds a 400 exception for a field-level failure.
func Validation(format string, args ...any) *Exception {
	return &Exception{
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusBadRequest,
	}
}
