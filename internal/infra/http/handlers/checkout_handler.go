package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type CheckoutHandler struct {
	Checkout  *usecase.CreateCheckoutUseCase
	Watcher   *usecase.RechargeWatcher
	Companies *usecase.CompanyUseCase
	Logger    logrus.FieldLogger
}

func NewCheckoutHandler(checkout *usecase.CreateCheckoutUseCase, watcher *usecase.RechargeWatcher, companies *usecase.CompanyUseCase, logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{Checkout: checkout, Watcher: watcher, Companies: companies, Logger: logger}
}

// Handle creates the signed widget parameters for a recharge.
func (h *CheckoutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateCheckoutInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.UserID = middleware.UserIDFromContext(r.Context())

	output, err := h.Checkout.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, output)
}

// Await blocks until the balance moves above initial_balance_cents or the watcher
// gives up. It only reads.
func (h *CheckoutHandler) Await(w http.ResponseWriter, r *http.Request) {
	initial, err := strconv.ParseInt(r.URL.Query().Get("initial_balance_cents"), 10, 64)
	if err != nil || initial < 0 {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_AMOUNT", "initial_balance_cents must be a non-negative integer")
		return
	}

	company, err := companyOf(r, h.Companies)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, h.Watcher.Await(r.Context(), company.ID, initial))
}
