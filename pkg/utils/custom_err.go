package utils

import "errors"

var (
	ErrDatabaseError      = errors.New("database error")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrUnknownPlan       = errors.New("unknown plan type")
	ErrPlanUnresolved    = errors.New("plan could not be resolved from event")
	ErrUserUnresolved    = errors.New("user could not be resolved from event")
	ErrPlanNotBillable   = errors.New("plan is not billable")
	ErrQuotaExceeded     = errors.New("generation quota exceeded")
	ErrUnexpectedAIShape = errors.New("unexpected model output shape")

	ErrSignatureInvalid      = errors.New("webhook signature invalid")
	ErrMalformedNotification = errors.New("malformed webhook notification")
	ErrProviderUnavailable   = errors.New("payment provider unavailable")
)
