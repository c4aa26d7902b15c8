package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type SubscriptionHandler struct {
	Subscriptions *usecase.SubscriptionUseCase
	Companies     *usecase.CompanyUseCase
	Logger        logrus.FieldLogger
}

func NewSubscriptionHandler(subs *usecase.SubscriptionUseCase, companies *usecase.CompanyUseCase, logger logrus.FieldLogger) *SubscriptionHandler {
	return &SubscriptionHandler{Subscriptions: subs, Companies: companies, Logger: logger}
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	subs, err := h.Subscriptions.List(r.Context(), company.ID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var input usecase.SubscriptionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	sub, err := h.Subscriptions.Create(r.Context(), company.ID, input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var input usecase.SubscriptionInput
	if !decodeJSON(w, r, &input) {
		return
	}
	sub, err := h.Subscriptions.Update(r.Context(), company.ID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var input struct {
		Active *bool `json:"active"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Active == nil {
		writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "active is required")
		return
	}
	sub, err := h.Subscriptions.SetActive(r.Context(), company.ID, chi.URLParam(r, "id"), *input.Active)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if err := h.Subscriptions.Delete(r.Context(), company.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
