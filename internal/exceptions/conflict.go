package exceptions

import "net/http"

var ErrInvalidTransition = &Exception{
	Message:    "invalid state transition",
	StatusCode: http.StatusConflict,
}

var ErrExecutionClosed = &Exception{
	Message:    "execution is in a terminal state",
	StatusCode: http.StatusConflict,
}

var ErrConcurrentUpdate = &Exception{
	Message:    "record was modified concurrently, retry the request",
	StatusCode: http.StatusConflict,
}
