package entity

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrLeadUnavailable    = errors.New("lead unavailable")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrMalformedReference = errors.New("malformed reference")
	ErrAlreadyResolved    = errors.New("report already resolved")
	ErrAlreadyReported    = errors.New("lead already reported")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrQuotaExceeded      = errors.New("daily purchase quota exceeded")
	ErrInvalidTransition  = errors.New("invalid status transition")

	// ErrStorageConflict is transient: the caller may retry the whole atomic operation.
	ErrStorageConflict = errors.New("storage conflict")
)
