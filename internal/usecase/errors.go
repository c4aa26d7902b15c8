package usecase

import (
	"errors"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

var domainCodes = []struct {
	err  error
	code string
}{
	{entity.ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{entity.ErrLeadUnavailable, "LEAD_UNAVAILABLE"},
	{entity.ErrInvalidAmount, "INVALID_AMOUNT"},
	{entity.ErrInvalidSignature, "INVALID_SIGNATURE"},
	{entity.ErrMalformedReference, "MALFORMED_REFERENCE"},
	{entity.ErrAlreadyResolved, "ALREADY_RESOLVED"},
	{entity.ErrAlreadyReported, "ALREADY_REPORTED"},
	{entity.ErrUnauthenticated, "UNAUTHENTICATED"},
	{entity.ErrForbidden, "FORBIDDEN"},
	{entity.ErrQuotaExceeded, "QUOTA_EXCEEDED"},
	{entity.ErrInvalidTransition, "INVALID_TRANSITION"},
	{entity.ErrNotFound, "NOT_FOUND"},
}

// classify wraps err as a DomainError when it carries one of the entity sentinels,
// and as a TechnicalError otherwise. StorageConflict stays technical (retryable).
func classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) || IsTechnicalError(err) {
		return err
	}
	for _, dc := range domainCodes {
		if errors.Is(err, dc.err) {
			return &DomainError{Code: dc.code, Message: dc.err.Error(), Err: err}
		}
	}
	if errors.Is(err, entity.ErrStorageConflict) {
		return &TechnicalError{Code: "STORAGE_CONFLICT", Message: message + ": " + err.Error(), Err: err}
	}
	return &TechnicalError{Code: "DATABASE_ERROR", Message: message + ": " + err.Error(), Err: err}
}
