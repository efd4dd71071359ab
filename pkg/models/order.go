package models

import (
	"time"
)

// Order statuses as they move through the workshop.
const (
	OrderStatusPending        = "pending"
	OrderStatusAssigned       = "assigned"
	OrderStatusInProduction   = "in_production"
	OrderStatusStyleSubmitted = "style_submitted"
	OrderStatusStyleAccepted  = "style_accepted"
	OrderStatusStyleRejected  = "style_rejected"
	OrderStatusSentToCustomer = "sent_to_customer"
	OrderStatusClosed         = "closed"
)

type Order struct {
	ID             string       `json:"id"`
	CustomerID     string       `json:"customer_id"`
	CustomerName   string       `json:"customer"`
	Items          []string     `json:"items"`
	Measurements   Measurements `json:"measurements"`
	Status         string       `json:"status"`
	TailorID       string       `json:"tailor_id,omitempty"`
	StyleImageURL  string       `json:"style_image_url,omitempty"`
	FirstFitting   *time.Time   `json:"first_fitting,omitempty"`
	SecondFitting  *time.Time   `json:"second_fitting,omitempty"`
	CollectionDate *time.Time   `json:"collection_date,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Measurements captures the customer's body measurements taken at intake,
// in centimetres.
type Measurements struct {
	Chest     float64 `json:"chest,omitempty"`
	Waist     float64 `json:"waist,omitempty"`
	Hips      float64 `json:"hips,omitempty"`
	Shoulder  float64 `json:"shoulder,omitempty"`
	SleeveLen float64 `json:"sleeve_length,omitempty"`
	Inseam    float64 `json:"inseam,omitempty"`
	Neck      float64 `json:"neck,omitempty"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Staff roles.
const (
	RoleHeadOfTailoring = "head_of_tailoring"
	RoleTailor          = "tailor"
	RoleClientManager   = "client_manager"
)

type Tailor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TailorJob job statuses.
const (
	JobStatusAssigned   = "assigned"
	JobStatusInProgress = "in_progress"
	JobStatusSubmitted  = "submitted"
	JobStatusDone       = "done"
)

// TailorJob is a unit of work assigned to a tailor for a specific order.
type TailorJob struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	TailorID      string    `json:"tailor_id"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	StyleImageURL string    `json:"style_image_url,omitempty"`
	AssignedAt    time.Time `json:"assigned_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Budget struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TotalBudget float64   `json:"total_budget"`
	CreatedAt   time.Time `json:"created_at"`
}

type Expense struct {
	ID          string    `json:"id"`
	BudgetID    string    `json:"budget_id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	OrderID   string    `json:"order_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Envelope is the standard response wrapper. Handlers put their payload
// under Data so list and detail endpoints share one shape on the wire.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
