package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/atelierhq/atelier-admin/internal/events"
	"github.com/atelierhq/atelier-admin/internal/store"
	"github.com/atelierhq/atelier-admin/pkg/models"
)

// orderRequest is the wire shape of an order submission. Dates arrive as
// strings because the staff portal sends bare calendar days.
type orderRequest struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customer_id"`
	CustomerName   string              `json:"customer"`
	Items          []string            `json:"items"`
	Measurements   models.Measurements `json:"measurements"`
	Status         string              `json:"status"`
	TailorID       string              `json:"tailor_id"`
	StyleImageURL  string              `json:"style_image_url"`
	FirstFitting   string              `json:"first_fitting"`
	SecondFitting  string              `json:"second_fitting"`
	CollectionDate string              `json:"collection_date"`
}

// parseClientDate accepts a bare date or an RFC 3339 timestamp. An
// unparseable value degrades to no date, but loudly: the upstream source
// of this data has shipped corrupt dates before, and a silently dropped
// fitting is an appointment nobody shows up for.
func (h *Handler) parseClientDate(field, value, orderID string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t
		}
	}
	h.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"field":    field,
		"value":    value,
	}).Warn("Unparseable date in order payload, field left unscheduled")
	return nil
}

func (h *Handler) decodeOrder(req orderRequest) *models.Order {
	return &models.Order{
		ID:             req.ID,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		Items:          req.Items,
		Measurements:   req.Measurements,
		Status:         req.Status,
		TailorID:       req.TailorID,
		StyleImageURL:  req.StyleImageURL,
		FirstFitting:   h.parseClientDate("first_fitting", req.FirstFitting, req.ID),
		SecondFitting:  h.parseClientDate("second_fitting", req.SecondFitting, req.ID),
		CollectionDate: h.parseClientDate("collection_date", req.CollectionDate, req.ID),
	}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode order request")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CustomerName == "" || len(req.Items) == 0 {
		h.respondWithError(w, http.StatusBadRequest, "Customer name and at least one item are required")
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	order := h.decodeOrder(req)
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	order.CreatedAt = time.Now()

	if err := h.store.CreateOrder(r.Context(), order); err != nil {
		h.logger.WithError(err).Error("Failed to save order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save order")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer":    order.CustomerName,
		"items_count": len(order.Items),
	}).Info("Order created")

	h.publishOrderCreated(order)
	h.broadcast("order_created", order)

	h.respondWithData(w, http.StatusCreated, "Order created successfully", order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get orders")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get orders")
		return
	}

	h.logger.WithField("count", len(orders)).Info("Retrieved orders")
	h.respondWithData(w, http.StatusOK, "", orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}

	h.respondWithData(w, http.StatusOK, "", order)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode order update")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ID = orderID

	existing, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load order for update")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	order := h.decodeOrder(req)
	order.CreatedAt = existing.CreatedAt
	if order.Status == "" {
		order.Status = existing.Status
	}

	if err := h.store.UpdateOrder(r.Context(), order); err != nil {
		h.logger.WithError(err).Error("Failed to update order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	h.publishNewAppointments(existing, order)

	h.logger.WithField("order_id", orderID).Info("Order updated")
	h.broadcast("order_updated", order)
	h.respondWithData(w, http.StatusOK, "Order updated successfully", order)
}

func (h *Handler) CloseOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load order for closure")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to close order")
		return
	}

	if err := h.store.UpdateOrderStatus(r.Context(), orderID, models.OrderStatusClosed); err != nil {
		h.logger.WithError(err).Error("Failed to close order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to close order")
		return
	}
	order.Status = models.OrderStatusClosed

	if h.producer != nil {
		if err := h.producer.PublishOrderClosed(events.OrderEvent{
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			CustomerName: order.CustomerName,
			Status:       order.Status,
		}); err != nil {
			h.logger.WithError(err).Error("Failed to publish order closed event")
			// Don't fail the request, just log the error
		}
	}

	h.logger.WithField("order_id", orderID).Info("Order closed")
	h.broadcast("order_closed", order)
	h.respondWithData(w, http.StatusOK, "Order closed successfully", order)
}

// setOrderStatus backs the style-approval workflow endpoints, which all
// reduce to a status transition plus a live update.
func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request, status, message string) {
	orderID := mux.Vars(r)["id"]

	if err := h.store.UpdateOrderStatus(r.Context(), orderID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update order status")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("Order status updated")

	h.broadcast("order_status_changed", map[string]string{
		"order_id": orderID,
		"status":   status,
	})
	h.respondWithData(w, http.StatusOK, message, map[string]string{
		"order_id": orderID,
		"status":   status,
	})
}

func (h *Handler) AcceptTailorStyle(w http.ResponseWriter, r *http.Request) {
	h.setOrderStatus(w, r, models.OrderStatusStyleAccepted, "Style accepted")
}

func (h *Handler) RejectTailorStyle(w http.ResponseWriter, r *http.Request) {
	h.setOrderStatus(w, r, models.OrderStatusStyleRejected, "Style rejected")
}

func (h *Handler) SendToCustomer(w http.ResponseWriter, r *http.Request) {
	h.setOrderStatus(w, r, models.OrderStatusSentToCustomer, "Order sent to customer")
}

func (h *Handler) publishOrderCreated(order *models.Order) {
	if h.producer == nil {
		return
	}
	if err := h.producer.PublishOrderCreated(events.OrderEvent{
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		CustomerName: order.CustomerName,
		Status:       order.Status,
	}); err != nil {
		h.logger.WithError(err).Error("Failed to publish order created event")
		// Don't fail the request, just log the error
	}
	h.publishNewAppointments(&models.Order{ID: order.ID}, order)
}

// publishNewAppointments emits one event per date that was absent before
// the write and present after it.
func (h *Handler) publishNewAppointments(before, after *models.Order) {
	if h.producer == nil {
		return
	}
	pairs := []struct {
		kind string
		prev *time.Time
		curr *time.Time
	}{
		{"first_fitting", before.FirstFitting, after.FirstFitting},
		{"second_fitting", before.SecondFitting, after.SecondFitting},
		{"collection", before.CollectionDate, after.CollectionDate},
	}
	for _, p := range pairs {
		if p.curr == nil || p.prev != nil {
			continue
		}
		if err := h.producer.PublishAppointmentScheduled(events.AppointmentEvent{
			OrderID: after.ID,
			Kind:    p.kind,
			Date:    *p.curr,
		}); err != nil {
			h.logger.WithError(err).Error("Failed to publish appointment event")
		}
	}
}
