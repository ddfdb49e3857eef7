package auth

import "evalportal/internal/platform/apperr"

var ErrInvalidCredentials = apperr.Validation("credentials", "invalid email or password")
