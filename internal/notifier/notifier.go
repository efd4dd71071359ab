package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/atelierhq/atelier-admin/internal/events"
	"github.com/atelierhq/atelier-admin/pkg/models"
)

// NotificationStore is the slice of persistence the notifier needs.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Notifier turns workshop events into notification rows for the staff
// notification feed. It implements events.AtelierEventHandler.
type Notifier struct {
	store  NotificationStore
	logger *logrus.Logger
}

func New(store NotificationStore, logger *logrus.Logger) *Notifier {
	return &Notifier{store: store, logger: logger}
}

func (n *Notifier) HandleOrderCreated(event events.OrderEvent) error {
	return n.save("order_created", event.OrderID,
		fmt.Sprintf("New order for %s", event.CustomerName))
}

func (n *Notifier) HandleOrderClosed(event events.OrderEvent) error {
	return n.save("order_closed", event.OrderID,
		fmt.Sprintf("Order for %s closed", event.CustomerName))
}

func (n *Notifier) HandleAppointmentScheduled(event events.AppointmentEvent) error {
	return n.save("appointment_scheduled", event.OrderID,
		fmt.Sprintf("%s scheduled for %s", appointmentLabel(event.Kind),
			event.Date.Format("2006-01-02")))
}

func (n *Notifier) HandleStyleSubmitted(event events.StyleEvent) error {
	return n.save("style_submitted", event.OrderID,
		"A style is awaiting review")
}

func (n *Notifier) save(kind, orderID, message string) error {
	notification := &models.Notification{
		ID:        uuid.New().String(),
		Type:      kind,
		Message:   message,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.store.CreateNotification(ctx, notification); err != nil {
		n.logger.WithError(err).Error("Failed to save notification")
		return err
	}

	n.logger.WithFields(logrus.Fields{
		"type":     kind,
		"order_id": orderID,
	}).Info("Notification created")
	return nil
}

func appointmentLabel(kind string) string {
	switch kind {
	case "first_fitting":
		return "First fitting"
	case "second_fitting":
		return "Second fitting"
	case "collection":
		return "Collection"
	default:
		return "Appointment"
	}
}
