package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type ReportHandler struct {
	Reports   *usecase.ReportUseCase
	Companies *usecase.CompanyUseCase
	Logger    logrus.FieldLogger
}

func NewReportHandler(reports *usecase.ReportUseCase, companies *usecase.CompanyUseCase, logger logrus.FieldLogger) *ReportHandler {
	return &ReportHandler{Reports: reports, Companies: companies, Logger: logger}
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	var input usecase.CreateReportInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.CompanyID = company.ID

	report, err := h.Reports.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	if err := h.Reports.MarkInReview(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(entity.ReportInReview)})
}

func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Decision entity.ReportStatus `json:"decision"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	res, err := h.Reports.Resolve(r.Context(), chi.URLParam(r, "id"), input.Decision)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.RecordReportResolution(string(input.Decision))
	writeJSON(w, http.StatusOK, res)
}
