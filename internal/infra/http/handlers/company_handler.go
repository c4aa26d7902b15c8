package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type CompanyHandler struct {
	Companies *usecase.CompanyUseCase
	Ledger    *usecase.LedgerUseCase
	Logger    logrus.FieldLogger
}

func NewCompanyHandler(companies *usecase.CompanyUseCase, ledger *usecase.LedgerUseCase, logger logrus.FieldLogger) *CompanyHandler {
	return &CompanyHandler{Companies: companies, Ledger: ledger, Logger: logger}
}

func (h *CompanyHandler) Me(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Plan entity.Plan `json:"plan"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	company, err := h.Companies.ChangePlan(r.Context(), chi.URLParam(r, "id"), input.Plan)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	h.Logger.WithFields(logrus.Fields{
		"company_id": company.ID,
		"plan":       company.Plan,
	}).Info("company plan changed")
	writeJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var input usecase.AdjustBalanceInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.CompanyID = chi.URLParam(r, "id")

	balance, err := h.Ledger.AdjustBalance(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance_cents": balance})
}
