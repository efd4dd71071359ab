package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierhq/atelier-admin/internal/events"
	"github.com/atelierhq/atelier-admin/pkg/models"
)

// Store is the persistence surface the handlers depend on, satisfied by
// the Postgres store and by stubs in tests.
type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersInWindow(ctx context.Context, from, to time.Time) ([]models.Order, error)

	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListTailorsByRole(ctx context.Context, role string) ([]models.Tailor, error)
	CreateTailor(ctx context.Context, t *models.Tailor) error

	CreateTailorJob(ctx context.Context, job *models.TailorJob) error
	GetTailorJob(ctx context.Context, id string) (*models.TailorJob, error)
	ListTailorJobs(ctx context.Context, tailorID string) ([]models.TailorJob, error)
	UpdateTailorJob(ctx context.Context, job *models.TailorJob) error

	CreateBudget(ctx context.Context, b *models.Budget) error
	GetBudget(ctx context.Context, id string) (*models.Budget, error)
	ListBudgets(ctx context.Context) ([]models.Budget, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	ListExpenses(ctx context.Context, budgetID string) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, page, limit int) ([]models.Notification, int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error

	Ping(ctx context.Context) error
}

// Publisher pushes workshop events onto the bus. Nil-able: the server runs
// without Kafka in development.
type Publisher interface {
	PublishOrderCreated(event events.OrderEvent) error
	PublishOrderClosed(event events.OrderEvent) error
	PublishAppointmentScheduled(event events.AppointmentEvent) error
	PublishStyleSubmitted(event events.StyleEvent) error
}

type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

type Handler struct {
	store    Store
	producer Publisher
	logger   *logrus.Logger
	wsHub    WebSocketHub
}

func NewHandler(store Store, producer Publisher, logger *logrus.Logger) *Handler {
	return &Handler{
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

func (h *Handler) SetWebSocketHub(hub WebSocketHub) {
	h.wsHub = hub
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": "atelier-admin",
			"error":   "database connection failed",
		})
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "atelier-admin",
	})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithData wraps the payload in the standard envelope.
func (h *Handler) respondWithData(w http.ResponseWriter, code int, message string, data interface{}) {
	h.respondWithJSON(w, code, models.Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, models.Envelope{
		Success: false,
		Message: message,
	})
}

func (h *Handler) broadcast(messageType string, data interface{}) {
	if h.wsHub != nil {
		h.wsHub.Broadcast(messageType, data)
	}
}
