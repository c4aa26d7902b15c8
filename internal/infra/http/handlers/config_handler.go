package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type ConfigHandler struct {
	Config *usecase.AppConfigUseCase
	Logger logrus.FieldLogger
}

func NewConfigHandler(config *usecase.AppConfigUseCase, logger logrus.FieldLogger) *ConfigHandler {
	return &ConfigHandler{Config: config, Logger: logger}
}

func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Config.Get(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.AppConfigInput
	if !decodeJSON(w, r, &input) {
		return
	}
	cfg, err := h.Config.Update(r.Context(), input)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
