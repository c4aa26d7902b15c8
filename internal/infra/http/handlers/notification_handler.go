package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/crebit-marketplace/internal/infra/http/middleware"
	"github.com/xavierca1/crebit-marketplace/internal/usecase"
)

type NotificationHandler struct {
	Notifications *usecase.NotificationUseCase
	Logger        logrus.FieldLogger
}

func NewNotificationHandler(notifications *usecase.NotificationUseCase, logger logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications, Logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Notifications.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notifications.MarkAllRead(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
