package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Details []usecase.ValidationError `json:"details,omitempty"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{entity.ErrLeadUnavailable, http.StatusConflict},
	{entity.ErrInsufficientFunds, http.StatusPaymentRequired},
	{entity.ErrInvalidAmount, http.StatusBadRequest},
	{entity.ErrMalformedReference, http.StatusBadRequest},
	{entity.ErrInvalidSignature, http.StatusUnauthorized},
	{entity.ErrUnauthenticated, http.StatusUnauthorized},
	{entity.ErrForbidden, http.StatusForbidden},
	{entity.ErrNotFound, http.StatusNotFound},
	{entity.ErrAlreadyResolved, http.StatusConflict},
	{entity.ErrAlreadyReported, http.StatusConflict},
	{entity.ErrQuotaExceeded, http.StatusTooManyRequests},
	{entity.ErrInvalidTransition, http.StatusConflict},
	{entity.ErrStorageConflict, http.StatusServiceUnavailable},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeError maps use case errors to HTTP. Technical details are logged, not returned.
func writeError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	var verrs usecase.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR", Message: "invalid input", Details: verrs})
		return
	}

	status := http.StatusInternalServerError
	for _, es := range errorStatus {
		if errors.Is(err, es.err) {
			status = es.status
			break
		}
	}

	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeErrorResponse(w, status, de.Code, de.Message)
		return
	}

	code := "INTERNAL_ERROR"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	logger.WithError(err).WithField("code", code).Error("❌ request failed")
	message := "internal error"
	if status == http.StatusServiceUnavailable {
		message = "temporarily unavailable, please retry"
	}
	writeErrorResponse(w, status, code, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body")
		return false
	}
	return true
}

// outcomeLabel turns an error into a bounded metrics label.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var de *usecase.DomainError
	if errors.As(err, &de) {
		return strings.ToLower(de.Code)
	}
	return "error"
}

// companyOf resolves the company owned by the authenticated user.
func companyOf(r *http.Request, companies *usecase.CompanyUseCase) (*entity.Company, error) {
	return companies.ByUser(r.Context(), middleware.UserIDFromContext(r.Context()))
}
