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

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get customers")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get customers")
		return
	}
	h.respondWithData(w, http.StatusOK, "", customers)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Customer not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get customer")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get customer")
		return
	}
	h.respondWithData(w, http.StatusOK, "", customer)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.logger.WithError(err).Error("Failed to decode customer request")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if customer.Name == "" || customer.Phone == "" {
		h.respondWithError(w, http.StatusBadRequest, "Name and phone are required")
		return
	}
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	customer.CreatedAt = time.Now()

	if err := h.store.CreateCustomer(r.Context(), &customer); err != nil {
		h.logger.WithError(err).Error("Failed to save customer")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save customer")
		return
	}

	h.logger.WithField("customer_id", customer.ID).Info("Customer created")
	h.respondWithData(w, http.StatusCreated, "Customer created successfully", customer)
}

func (h *Handler) ListHeadsOfTailoring(w http.ResponseWriter, r *http.Request) {
	h.listStaff(w, r, models.RoleHeadOfTailoring)
}

func (h *Handler) ListTailors(w http.ResponseWriter, r *http.Request) {
	h.listStaff(w, r, models.RoleTailor)
}

// CreateTailor registers a staff member in the directory.
func (h *Handler) CreateTailor(w http.ResponseWriter, r *http.Request) {
	var tailor models.Tailor
	if err := json.NewDecoder(r.Body).Decode(&tailor); err != nil {
		h.logger.WithError(err).Error("Failed to decode staff request")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if tailor.Name == "" {
		h.respondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}
	switch tailor.Role {
	case models.RoleHeadOfTailoring, models.RoleTailor, models.RoleClientManager:
	default:
		h.respondWithError(w, http.StatusBadRequest, "Unknown staff role")
		return
	}
	if tailor.ID == "" {
		tailor.ID = uuid.New().String()
	}
	tailor.CreatedAt = time.Now()

	if err := h.store.CreateTailor(r.Context(), &tailor); err != nil {
		h.logger.WithError(err).Error("Failed to save staff member")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save staff member")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"tailor_id": tailor.ID,
		"role":      tailor.Role,
	}).Info("Staff member registered")
	h.respondWithData(w, http.StatusCreated, "Staff member registered", tailor)
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request, role string) {
	staff, err := h.store.ListTailorsByRole(r.Context(), role)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get staff list")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get staff list")
		return
	}
	h.respondWithData(w, http.StatusOK, "", staff)
}

// ListTailorJobs returns the job queue for one tailor.
func (h *Handler) ListTailorJobs(w http.ResponseWriter, r *http.Request) {
	tailorID := mux.Vars(r)["id"]

	jobs, err := h.store.ListTailorJobs(r.Context(), tailorID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get tailor jobs")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get tailor jobs")
		return
	}
	h.respondWithData(w, http.StatusOK, "", jobs)
}

// AssignTailorJob creates a job for the tailor in the path and marks the
// order assigned.
func (h *Handler) AssignTailorJob(w http.ResponseWriter, r *http.Request) {
	tailorID := mux.Vars(r)["id"]

	var job models.TailorJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		h.logger.WithError(err).Error("Failed to decode job request")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if job.OrderID == "" {
		h.respondWithError(w, http.StatusBadRequest, "Order ID is required")
		return
	}

	order, err := h.store.GetOrder(r.Context(), job.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load order for assignment")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to assign job")
		return
	}

	job.ID = uuid.New().String()
	job.TailorID = tailorID
	job.Status = models.JobStatusAssigned
	job.AssignedAt = time.Now()
	job.UpdatedAt = job.AssignedAt

	if err := h.store.CreateTailorJob(r.Context(), &job); err != nil {
		h.logger.WithError(err).Error("Failed to save tailor job")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to assign job")
		return
	}

	order.TailorID = tailorID
	order.Status = models.OrderStatusAssigned
	if err := h.store.UpdateOrder(r.Context(), order); err != nil {
		h.logger.WithError(err).Error("Failed to mark order assigned")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to assign job")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"job_id":    job.ID,
		"order_id":  job.OrderID,
		"tailor_id": tailorID,
	}).Info("Tailor job assigned")

	h.broadcast("job_assigned", job)
	h.respondWithData(w, http.StatusCreated, "Job assigned successfully", job)
}

// EditTailorJob lets a tailor update progress and attach a style image.
func (h *Handler) EditTailorJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	var req struct {
		Description   string `json:"description"`
		Status        string `json:"status"`
		StyleImageURL string `json:"style_image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode job edit")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.store.GetTailorJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load tailor job")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to edit job")
		return
	}

	if req.Description != "" {
		job.Description = req.Description
	}
	if req.Status != "" {
		job.Status = req.Status
	}
	if req.StyleImageURL != "" {
		job.StyleImageURL = req.StyleImageURL
	}
	job.UpdatedAt = time.Now()

	if err := h.store.UpdateTailorJob(r.Context(), job); err != nil {
		h.logger.WithError(err).Error("Failed to update tailor job")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to edit job")
		return
	}

	h.logger.WithField("job_id", jobID).Info("Tailor job updated")
	h.respondWithData(w, http.StatusOK, "Job updated successfully", job)
}

// SendToOrder submits a finished job back onto its order: the style image
// moves to the order record and the order enters style review.
func (h *Handler) SendToOrder(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	job, err := h.store.GetTailorJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load tailor job")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	order, err := h.store.GetOrder(r.Context(), job.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load order for submission")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	job.Status = models.JobStatusSubmitted
	job.UpdatedAt = time.Now()
	if err := h.store.UpdateTailorJob(r.Context(), job); err != nil {
		h.logger.WithError(err).Error("Failed to update tailor job")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	order.StyleImageURL = job.StyleImageURL
	order.Status = models.OrderStatusStyleSubmitted
	if err := h.store.UpdateOrder(r.Context(), order); err != nil {
		h.logger.WithError(err).Error("Failed to move style onto order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishStyleSubmitted(events.StyleEvent{
			OrderID:  order.ID,
			TailorID: job.TailorID,
			ImageURL: job.StyleImageURL,
		}); err != nil {
			h.logger.WithError(err).Error("Failed to publish style submitted event")
		}
	}

	h.logger.WithFields(logrus.Fields{
		"job_id":   jobID,
		"order_id": order.ID,
	}).Info("Style submitted for review")

	h.broadcast("style_submitted", order)
	h.respondWithData(w, http.StatusOK, "Style submitted for review", order)
}
