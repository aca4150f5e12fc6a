package exceptions

import "net/http"

var ErrDomainAccessDenied = &Exception{
	Message:    "user has no access to this domain",
	StatusCode: http.StatusForbidden,
}

var ErrDomainAdminRequired = &Exception{
	Message:    "domain admin role required",
	StatusCode: http.StatusForbidden,
}

var ErrPlatformAdminRequired = &Exception{
	Message:    "platform admin role required",
	StatusCode: http.StatusForbidden,
}

var ErrNotOwner = &Exception{
	Message:    "record belongs to another user",
	StatusCode: http.StatusForbidden,
}

var ErrIdentityRequired = &Exception{
	Message:    "user identity is required",
	StatusCode: http.StatusUnauthorized,
}
