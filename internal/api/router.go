package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the full HTTP surface. The health check and the
// WebSocket upgrade stay outside the authenticated subtree.
func NewRouter(h *Handler, verifier TokenVerifier, wsHandler http.HandlerFunc, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware(logger))

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	if wsHandler != nil {
		router.HandleFunc("/ws", wsHandler)
	}

	api := router.PathPrefix("/").Subrouter()
	api.Use(AuthMiddleware(verifier, logger))

	// Orders
	api.HandleFunc("/orderslist", h.ListOrders).Methods("GET")
	api.HandleFunc("/orderslist", h.CreateOrder).Methods("POST")
	api.HandleFunc("/orderslist/{id}", h.GetOrder).Methods("GET")
	api.HandleFunc("/orderslist/{id}", h.UpdateOrder).Methods("PUT")
	api.HandleFunc("/closeorder/{id}", h.CloseOrder).Methods("POST")

	// Customers
	api.HandleFunc("/customerslist", h.ListCustomers).Methods("GET")
	api.HandleFunc("/customerslist", h.CreateCustomer).Methods("POST")
	api.HandleFunc("/customerslist/{id}", h.GetCustomer).Methods("GET")

	// Staff directories
	api.HandleFunc("/headoftailoringlist", h.ListHeadsOfTailoring).Methods("GET")
	api.HandleFunc("/listoftailors", h.ListTailors).Methods("GET")
	api.HandleFunc("/staff", h.CreateTailor).Methods("POST")

	// Tailor job workflow
	api.HandleFunc("/tailorjoblists/{id}", h.ListTailorJobs).Methods("GET")
	api.HandleFunc("/tailorjoblists/{id}", h.AssignTailorJob).Methods("POST")
	api.HandleFunc("/edittailorjob/{id}", h.EditTailorJob).Methods("POST")
	api.HandleFunc("/sendtoorder/{id}", h.SendToOrder).Methods("PUT")

	// Style approval workflow
	api.HandleFunc("/accepttailorstyle/{id}", h.AcceptTailorStyle).Methods("PUT")
	api.HandleFunc("/rejecttailorstyle/{id}", h.RejectTailorStyle).Methods("PUT")
	api.HandleFunc("/sendtocustomer/{id}", h.SendToCustomer).Methods("PUT")

	// Calendar views
	api.HandleFunc("/appointments", h.DayAppointments).Methods("GET")
	api.HandleFunc("/appointments/month", h.MonthAppointments).Methods("GET")
	api.HandleFunc("/appointments/week", h.WeekAppointments).Methods("GET")

	// Budgets and expenses
	api.HandleFunc("/budgets", h.ListBudgets).Methods("GET")
	api.HandleFunc("/budgets", h.CreateBudget).Methods("POST")
	api.HandleFunc("/budgets/{id}/breakdown", h.BudgetBreakdown).Methods("GET")
	api.HandleFunc("/budgets/{id}/expenses", h.CreateExpense).Methods("POST")
	api.HandleFunc("/expenses/{id}", h.DeleteExpense).Methods("DELETE")

	// Notifications
	api.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("PUT")
	api.HandleFunc("/notifications/read-all", h.MarkAllNotificationsRead).Methods("PUT")

	return router
}

func LoggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			}).Info("Request received")

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).Milliseconds(),
			}).Info("Request completed")
		})
	}
}
