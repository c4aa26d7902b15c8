package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type LeadHandler struct {
	Match     *usecase.MatchLeadsUseCase
	Purchase  *usecase.PurchaseLeadUseCase
	Admin     *usecase.LeadAdminUseCase
	Companies *usecase.CompanyUseCase
	Logger    logrus.FieldLogger
}

func NewLeadHandler(
	match *usecase.MatchLeadsUseCase,
	purchase *usecase.PurchaseLeadUseCase,
	admin *usecase.LeadAdminUseCase,
	companies *usecase.CompanyUseCase,
	logger logrus.FieldLogger,
) *LeadHandler {
	return &LeadHandler{
		Match:     match,
		Purchase:  purchase,
		Admin:     admin,
		Companies: companies,
		Logger:    logger,
	}
}

// ListAvailable accepts optional vertical, risk and limit query parameters.
func (h *LeadHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	q := r.URL.Query()
	var filter entity.LeadFilter
	if v := q.Get("vertical"); v != "" {
		vertical := entity.Vertical(v)
		filter.Vertical = &vertical
	}
	if v := q.Get("risk"); v != "" {
		risk := entity.Risk(v)
		if !risk.Valid() {
			writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "risk must be low, medium or high")
			return
		}
		filter.Risk = &risk
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeErrorResponse(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	leads, err := h.Match.ListAvailable(r.Context(), company.ID, filter)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Buy(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	out, err := h.Purchase.Execute(r.Context(), usecase.PurchaseLeadInput{
		CompanyID: company.ID,
		LeadID:    chi.URLParam(r, "leadID"),
	})
	middleware.RecordPurchase(outcomeLabel(err))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	purchase, err := h.Purchase.MarkConverted(r.Context(), company.ID, chi.URLParam(r, "purchaseID"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Admin.CreateLead(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status entity.LeadStatus `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.Admin.UpdateStatus(r.Context(), chi.URLParam(r, "leadID"), input.Status)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}
