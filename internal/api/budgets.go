package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/atelierhq/atelier-admin/internal/budget"
	"github.com/atelierhq/atelier-admin/internal/store"
	"github.com/atelierhq/atelier-admin/pkg/models"
)

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var b models.Budget
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		h.logger.WithError(err).Error("Failed to decode budget request")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if b.Name == "" {
		h.respondWithError(w, http.StatusBadRequest, "Budget name is required")
		return
	}
	if b.TotalBudget < 0 {
		h.respondWithError(w, http.StatusBadRequest, "Budget total cannot be negative")
		return
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now()

	if err := h.store.CreateBudget(r.Context(), &b); err != nil {
		h.logger.WithError(err).Error("Failed to save budget")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save budget")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"budget_id": b.ID,
		"total":     b.TotalBudget,
	}).Info("Budget created")
	h.respondWithData(w, http.StatusCreated, "Budget created successfully", b)
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.store.ListBudgets(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get budgets")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get budgets")
		return
	}
	h.respondWithData(w, http.StatusOK, "", budgets)
}

// BudgetBreakdown serves the dashboard report: totals, category chart rows
// and the daily spend trend.
func (h *Handler) BudgetBreakdown(w http.ResponseWriter, r *http.Request) {
	budgetID := mux.Vars(r)["id"]

	b, err := h.store.GetBudget(r.Context(), budgetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Budget not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get budget")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get budget")
		return
	}

	expenses, err := h.store.ListExpenses(r.Context(), budgetID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get expenses")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get expenses")
		return
	}

	h.respondWithData(w, http.StatusOK, "", budget.BuildBreakdown(*b, expenses))
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	budgetID := mux.Vars(r)["id"]

	var req struct {
		Category    string  `json:"category"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode expense request")
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Category == "" || req.Amount <= 0 {
		h.respondWithError(w, http.StatusBadRequest, "Category and a positive amount are required")
		return
	}

	if _, err := h.store.GetBudget(r.Context(), budgetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Budget not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get budget")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save expense")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Invalid expense date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	expense := models.Expense{
		ID:          uuid.New().String(),
		BudgetID:    budgetID,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	}

	if err := h.store.CreateExpense(r.Context(), &expense); err != nil {
		h.logger.WithError(err).Error("Failed to save expense")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save expense")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"expense_id": expense.ID,
		"budget_id":  budgetID,
		"category":   expense.Category,
		"amount":     expense.Amount,
	}).Info("Expense recorded")
	h.respondWithData(w, http.StatusCreated, "Expense recorded successfully", expense)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID := mux.Vars(r)["id"]

	if err := h.store.DeleteExpense(r.Context(), expenseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Expense not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete expense")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	h.logger.WithField("expense_id", expenseID).Info("Expense deleted")
	h.respondWithData(w, http.StatusOK, "Expense deleted successfully", nil)
}
