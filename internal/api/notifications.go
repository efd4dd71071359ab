package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/atelierhq/atelier-admin/internal/store"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, total, err := h.store.ListNotifications(r.Context(), page, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get notifications")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	h.respondWithData(w, http.StatusOK, "", map[string]interface{}{
		"notifications": notifications,
		"total":         total,
	})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.MarkNotificationRead(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Notification not found")
			return
		}
		h.logger.WithError(err).Error("Failed to mark notification read")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to mark notification read")
		return
	}
	h.respondWithData(w, http.StatusOK, "Notification marked as read", nil)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkAllNotificationsRead(r.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to mark notifications read")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}
	h.respondWithData(w, http.StatusOK, "All notifications marked as read", nil)
}
