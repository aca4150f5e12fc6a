package exceptions

import "net/http"

var ErrTemplateNotFound = &Exception{
	Message:    "template not found",
	StatusCode: http.StatusNotFound,
}

var ErrDomainTaskNotFound = &Exception{
	Message:    "domain task not found",
	StatusCode: http.StatusNotFound,
}

var ErrUserTaskNotFound = &Exception{
	Message:    "user task not found",
	StatusCode: http.StatusNotFound,
}

var ErrExecutionNotFound = &Exception{
	Message:    "execution not found",
	StatusCode: http.StatusNotFound,
}

var ErrMessageNotFound = &Exception{
	Message:    "message not found",
	StatusCode: http.StatusNotFound,
}
