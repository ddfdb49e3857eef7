package feedback

import "evalportal/internal/platform/apperr"

var (
	ErrRecipientNotFound = apperr.Lookup("recipient not found")
	ErrTypeNotFound      = apperr.Lookup("feedback type not found")
	ErrCycleNotFound     = apperr.Lookup("evaluation cycle not found")

	ErrSelfFeedback    = apperr.Validation("employeeId", "cannot send feedback to yourself")
	ErrEmptyContent    = apperr.Validation("content", "is required")
	ErrContentTooLong  = apperr.Validation("content", "must be at most 4000 characters")
	ErrMissingSender   = apperr.Validation("senderId", "is required")
	ErrInactiveAddress = apperr.State("recipient is not active")
)

const maxContentLength = 4000
