package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierhq/atelier-admin/internal/events"
	"github.com/atelierhq/atelier-admin/internal/store"
	"github.com/atelierhq/atelier-admin/pkg/models"
)

type stubStore struct {
	orders        map[string]models.Order
	customers     map[string]models.Customer
	tailors       []models.Tailor
	jobs          map[string]models.TailorJob
	budgets       map[string]models.Budget
	expenses      map[string]models.Expense
	notifications []models.Notification
}

func newStubStore() *stubStore {
	return &stubStore{
		orders:    make(map[string]models.Order),
		customers: make(map[string]models.Customer),
		jobs:      make(map[string]models.TailorJob),
		budgets:   make(map[string]models.Budget),
		expenses:  make(map[string]models.Expense),
	}
}

func (s *stubStore) CreateOrder(_ context.Context, o *models.Order) error {
	s.orders[o.ID] = *o
	return nil
}

func (s *stubStore) UpdateOrder(_ context.Context, o *models.Order) error {
	if _, ok := s.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	s.orders[o.ID] = *o
	return nil
}

func (s *stubStore) UpdateOrderStatus(_ context.Context, id, status string) error {
	o, ok := s.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *stubStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *stubStore) ListOrders(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *stubStore) ListOrdersInWindow(_ context.Context, from, to time.Time) ([]models.Order, error) {
	inWindow := func(t *time.Time) bool {
		return t != nil && !t.Before(from) && t.Before(to)
	}
	var out []models.Order
	for _, o := range s.orders {
		if inWindow(o.FirstFitting) || inWindow(o.SecondFitting) || inWindow(o.CollectionDate) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubStore) CreateCustomer(_ context.Context, c *models.Customer) error {
	s.customers[c.ID] = *c
	return nil
}

func (s *stubStore) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *stubStore) ListCustomers(_ context.Context) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubStore) ListTailorsByRole(_ context.Context, role string) ([]models.Tailor, error) {
	var out []models.Tailor
	for _, t := range s.tailors {
		if role == "" || t.Role == role {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) CreateTailor(_ context.Context, t *models.Tailor) error {
	s.tailors = append(s.tailors, *t)
	return nil
}

func (s *stubStore) CreateTailorJob(_ context.Context, j *models.TailorJob) error {
	s.jobs[j.ID] = *j
	return nil
}

func (s *stubStore) GetTailorJob(_ context.Context, id string) (*models.TailorJob, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &j, nil
}

func (s *stubStore) ListTailorJobs(_ context.Context, tailorID string) ([]models.TailorJob, error) {
	var out []models.TailorJob
	for _, j := range s.jobs {
		if j.TailorID == tailorID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateTailorJob(_ context.Context, j *models.TailorJob) error {
	if _, ok := s.jobs[j.ID]; !ok {
		return store.ErrNotFound
	}
	s.jobs[j.ID] = *j
	return nil
}

func (s *stubStore) CreateBudget(_ context.Context, b *models.Budget) error {
	s.budgets[b.ID] = *b
	return nil
}

func (s *stubStore) GetBudget(_ context.Context, id string) (*models.Budget, error) {
	b, ok := s.budgets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (s *stubStore) ListBudgets(_ context.Context) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range s.budgets {
		out = append(out, b)
	}
	return out, nil
}

func (s *stubStore) CreateExpense(_ context.Context, e *models.Expense) error {
	s.expenses[e.ID] = *e
	return nil
}

func (s *stubStore) ListExpenses(_ context.Context, budgetID string) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range s.expenses {
		if e.BudgetID == budgetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubStore) DeleteExpense(_ context.Context, id string) error {
	if _, ok := s.expenses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *stubStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *stubStore) ListNotifications(_ context.Context, page, limit int) ([]models.Notification, int, error) {
	return s.notifications, len(s.notifications), nil
}

func (s *stubStore) MarkNotificationRead(_ context.Context, id string) error {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *stubStore) MarkAllNotificationsRead(_ context.Context) error {
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	return nil
}

func (s *stubStore) Ping(_ context.Context) error { return nil }

type stubPublisher struct {
	orderCreated []events.OrderEvent
	orderClosed  []events.OrderEvent
	appointments []events.AppointmentEvent
	styles       []events.StyleEvent
}

func (p *stubPublisher) PublishOrderCreated(e events.OrderEvent) error {
	p.orderCreated = append(p.orderCreated, e)
	return nil
}

func (p *stubPublisher) PublishOrderClosed(e events.OrderEvent) error {
	p.orderClosed = append(p.orderClosed, e)
	return nil
}

func (p *stubPublisher) PublishAppointmentScheduled(e events.AppointmentEvent) error {
	p.appointments = append(p.appointments, e)
	return nil
}

func (p *stubPublisher) PublishStyleSubmitted(e events.StyleEvent) error {
	p.styles = append(p.styles, e)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func newTestServer(t *testing.T, st Store, pub Publisher) *httptest.Server {
	t.Helper()
	handler := NewHandler(st, pub, testLogger())
	verifier := NewStaticTokenVerifier([]string{"test-token"})
	router := NewRouter(handler, verifier, nil, testLogger())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path string, body interface{}) (*http.Response, models.Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var envelope models.Envelope
	json.NewDecoder(resp.Body).Decode(&envelope)
	return resp, envelope
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)

	resp, err := srv.Client().Get(srv.URL + "/orderslist")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareRejectsWrongToken(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)

	req, _ := http.NewRequest("GET", srv.URL+"/orderslist", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", resp.StatusCode)
	}
}

func TestHealthCheckBypassesAuth(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)

	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health check should not require auth, got %d", resp.StatusCode)
	}
}

func TestCreateOrder(t *testing.T) {
	st := newStubStore()
	pub := &stubPublisher{}
	srv := newTestServer(t, st, pub)

	resp, envelope := doRequest(t, srv, "POST", "/orderslist", map[string]interface{}{
		"customer":      "Ama Mensah",
		"customer_id":   "cus-1",
		"items":         []string{"kaftan", "two-piece suit"},
		"first_fitting": "2026-09-10",
	})

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if !envelope.Success {
		t.Errorf("expected success envelope, got %+v", envelope)
	}
	if len(st.orders) != 1 {
		t.Fatalf("expected stored order, got %d", len(st.orders))
	}
	for _, o := range st.orders {
		if o.Status != models.OrderStatusPending {
			t.Errorf("new order should default to pending, got %s", o.Status)
		}
		if o.FirstFitting == nil || o.FirstFitting.Day() != 10 {
			t.Errorf("first fitting date not decoded: %v", o.FirstFitting)
		}
	}
	if len(pub.orderCreated) != 1 {
		t.Errorf("expected order created event, got %d", len(pub.orderCreated))
	}
	if len(pub.appointments) != 1 || pub.appointments[0].Kind != "first_fitting" {
		t.Errorf("expected one first_fitting appointment event, got %v", pub.appointments)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)

	resp, envelope := doRequest(t, srv, "POST", "/orderslist", map[string]interface{}{
		"customer": "No Items",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for order without items, got %d", resp.StatusCode)
	}
	if envelope.Success {
		t.Error("expected failure envelope")
	}
}

func TestCreateOrderUnparseableDateDegrades(t *testing.T) {
	st := newStubStore()
	srv := newTestServer(t, st, nil)

	resp, _ := doRequest(t, srv, "POST", "/orderslist", map[string]interface{}{
		"customer":      "Kofi Annor",
		"items":         []string{"shirt"},
		"first_fitting": "not-a-date",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("corrupt date should not reject the order, got %d", resp.StatusCode)
	}
	for _, o := range st.orders {
		if o.FirstFitting != nil {
			t.Errorf("corrupt date should decode to no date, got %v", o.FirstFitting)
		}
	}
}

func TestGetOrderNotFound(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)

	resp, _ := doRequest(t, srv, "GET", "/orderslist/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCloseOrderPublishesEvent(t *testing.T) {
	st := newStubStore()
	st.orders["ord-1"] = models.Order{ID: "ord-1", CustomerName: "Ama Mensah", Status: models.OrderStatusSentToCustomer}
	pub := &stubPublisher{}
	srv := newTestServer(t, st, pub)

	resp, _ := doRequest(t, srv, "POST", "/closeorder/ord-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if st.orders["ord-1"].Status != models.OrderStatusClosed {
		t.Errorf("order should be closed, got %s", st.orders["ord-1"].Status)
	}
	if len(pub.orderClosed) != 1 {
		t.Errorf("expected order closed event, got %d", len(pub.orderClosed))
	}
}

func TestStyleWorkflow(t *testing.T) {
	st := newStubStore()
	st.orders["ord-1"] = models.Order{ID: "ord-1", Status: models.OrderStatusStyleSubmitted}
	srv := newTestServer(t, st, nil)

	tests := []struct {
		path       string
		wantStatus string
	}{
		{"/accepttailorstyle/ord-1", models.OrderStatusStyleAccepted},
		{"/rejecttailorstyle/ord-1", models.OrderStatusStyleRejected},
		{"/sendtocustomer/ord-1", models.OrderStatusSentToCustomer},
	}
	for _, tt := range tests {
		resp, _ := doRequest(t, srv, "PUT", tt.path, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", tt.path, resp.StatusCode)
		}
		if got := st.orders["ord-1"].Status; got != tt.wantStatus {
			t.Errorf("%s: expected status %s, got %s", tt.path, tt.wantStatus, got)
		}
	}
}

func TestSendToOrderMovesStyleToOrder(t *testing.T) {
	st := newStubStore()
	st.orders["ord-1"] = models.Order{ID: "ord-1", Status: models.OrderStatusAssigned}
	st.jobs["job-1"] = models.TailorJob{
		ID: "job-1", OrderID: "ord-1", TailorID: "tlr-1",
		Status: models.JobStatusInProgress, StyleImageURL: "https://img.example/style.jpg",
	}
	pub := &stubPublisher{}
	srv := newTestServer(t, st, pub)

	resp, _ := doRequest(t, srv, "PUT", "/sendtoorder/job-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	order := st.orders["ord-1"]
	if order.Status != models.OrderStatusStyleSubmitted {
		t.Errorf("order should enter style review, got %s", order.Status)
	}
	if order.StyleImageURL != "https://img.example/style.jpg" {
		t.Errorf("style image should move onto order, got %q", order.StyleImageURL)
	}
	if st.jobs["job-1"].Status != models.JobStatusSubmitted {
		t.Errorf("job should be submitted, got %s", st.jobs["job-1"].Status)
	}
	if len(pub.styles) != 1 {
		t.Errorf("expected style submitted event, got %d", len(pub.styles))
	}
}

func TestAssignTailorJob(t *testing.T) {
	st := newStubStore()
	st.orders["ord-1"] = models.Order{ID: "ord-1", Status: models.OrderStatusPending}
	srv := newTestServer(t, st, nil)

	resp, _ := doRequest(t, srv, "POST", "/tailorjoblists/tlr-1", map[string]interface{}{
		"order_id":    "ord-1",
		"description": "Stitch kaftan",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if len(st.jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(st.jobs))
	}
	if st.orders["ord-1"].Status != models.OrderStatusAssigned {
		t.Errorf("order should be assigned, got %s", st.orders["ord-1"].Status)
	}
	if st.orders["ord-1"].TailorID != "tlr-1" {
		t.Errorf("order should carry the tailor, got %q", st.orders["ord-1"].TailorID)
	}
}

func TestStaffDirectoriesFilterByRole(t *testing.T) {
	st := newStubStore()
	st.tailors = []models.Tailor{
		{ID: "t1", Name: "Efua", Role: models.RoleTailor},
		{ID: "t2", Name: "Kwame", Role: models.RoleHeadOfTailoring},
	}
	srv := newTestServer(t, st, nil)

	_, envelope := doRequest(t, srv, "GET", "/listoftailors", nil)
	tailors, _ := json.Marshal(envelope.Data)
	var list []models.Tailor
	json.Unmarshal(tailors, &list)
	if len(list) != 1 || list[0].Role != models.RoleTailor {
		t.Errorf("expected only tailors, got %v", list)
	}

	_, envelope = doRequest(t, srv, "GET", "/headoftailoringlist", nil)
	heads, _ := json.Marshal(envelope.Data)
	list = nil
	json.Unmarshal(heads, &list)
	if len(list) != 1 || list[0].Role != models.RoleHeadOfTailoring {
		t.Errorf("expected only heads of tailoring, got %v", list)
	}
}

func TestCreateTailorRejectsUnknownRole(t *testing.T) {
	st := newStubStore()
	srv := newTestServer(t, st, nil)

	resp, _ := doRequest(t, srv, "POST", "/staff", map[string]interface{}{
		"name": "Efua",
		"role": "apprentice",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown role should be rejected, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, srv, "POST", "/staff", map[string]interface{}{
		"name": "Efua",
		"role": models.RoleTailor,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
	if len(st.tailors) != 1 {
		t.Errorf("expected one staff member, got %d", len(st.tailors))
	}
}

func TestDayAppointmentsFilter(t *testing.T) {
	st := newStubStore()
	fitting := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.Local)
	collection := fitting
	st.orders["ord-1"] = models.Order{ID: "ord-1", FirstFitting: &fitting}
	st.orders["ord-2"] = models.Order{ID: "ord-2", CollectionDate: &collection}
	srv := newTestServer(t, st, nil)

	_, envelope := doRequest(t, srv, "GET", "/appointments?date=2026-09-10&filter=collection", nil)
	raw, _ := json.Marshal(envelope.Data)
	var payload struct {
		Appointments []struct {
			Kind string `json:"kind"`
		} `json:"appointments"`
	}
	json.Unmarshal(raw, &payload)
	if len(payload.Appointments) != 1 || payload.Appointments[0].Kind != "collection" {
		t.Errorf("expected one collection appointment, got %+v", payload.Appointments)
	}
}

func TestDayAppointmentsBadDate(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)
	resp, _ := doRequest(t, srv, "GET", "/appointments?date=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", resp.StatusCode)
	}
}

func TestMonthAppointmentsLeapFebruary(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)

	_, envelope := doRequest(t, srv, "GET", "/appointments/month?year=2024&month=2", nil)
	raw, _ := json.Marshal(envelope.Data)
	var payload struct {
		Cells []struct {
			Blank bool `json:"blank"`
			Day   int  `json:"day"`
		} `json:"cells"`
	}
	json.Unmarshal(raw, &payload)

	var days int
	for _, c := range payload.Cells {
		if !c.Blank {
			days++
		}
	}
	if days != 29 {
		t.Errorf("February 2024 should render 29 day cells, got %d", days)
	}
}

func TestBudgetBreakdown(t *testing.T) {
	st := newStubStore()
	st.budgets["bud-1"] = models.Budget{ID: "bud-1", Name: "Q3", TotalBudget: 1000}
	st.expenses["e1"] = models.Expense{ID: "e1", BudgetID: "bud-1", Category: "fabric", Amount: 100, Date: time.Now()}
	st.expenses["e2"] = models.Expense{ID: "e2", BudgetID: "bud-1", Category: "fabric", Amount: 50, Date: time.Now()}
	st.expenses["e3"] = models.Expense{ID: "e3", BudgetID: "bud-1", Category: "labor", Amount: 25, Date: time.Now()}
	srv := newTestServer(t, st, nil)

	_, envelope := doRequest(t, srv, "GET", "/budgets/bud-1/breakdown", nil)
	raw, _ := json.Marshal(envelope.Data)
	var payload struct {
		TotalSpent float64 `json:"total_spent"`
		Remaining  float64 `json:"remaining"`
		Status     string  `json:"status"`
		Categories []struct {
			Category string  `json:"category"`
			Total    float64 `json:"total"`
		} `json:"categories"`
	}
	json.Unmarshal(raw, &payload)

	if payload.TotalSpent != 175 || payload.Remaining != 825 {
		t.Errorf("unexpected totals: %+v", payload)
	}
	if payload.Status != "good" {
		t.Errorf("17.5%% spend should be good, got %s", payload.Status)
	}
	if len(payload.Categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(payload.Categories))
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	st := newStubStore()
	st.budgets["bud-1"] = models.Budget{ID: "bud-1", TotalBudget: 100}
	srv := newTestServer(t, st, nil)

	resp, _ := doRequest(t, srv, "POST", "/budgets/bud-1/expenses", map[string]interface{}{
		"category": "fabric",
		"amount":   -5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative amount should be rejected, got %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, srv, "POST", "/budgets/missing/expenses", map[string]interface{}{
		"category": "fabric",
		"amount":   5,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown budget should 404, got %d", resp.StatusCode)
	}
}

func TestNotificationsMarkRead(t *testing.T) {
	st := newStubStore()
	st.notifications = []models.Notification{
		{ID: "n1", Type: "order_created", Message: "New order"},
		{ID: "n2", Type: "order_closed", Message: "Order closed"},
	}
	srv := newTestServer(t, st, nil)

	resp, _ := doRequest(t, srv, "PUT", "/notifications/n1/read", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !st.notifications[0].Read || st.notifications[1].Read {
		t.Errorf("only n1 should be read: %+v", st.notifications)
	}

	resp, _ = doRequest(t, srv, "PUT", "/notifications/read-all", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !st.notifications[1].Read {
		t.Error("read-all should mark every notification")
	}
}

func TestDeleteExpense(t *testing.T) {
	st := newStubStore()
	st.expenses["e1"] = models.Expense{ID: "e1", BudgetID: "bud-1"}
	srv := newTestServer(t, st, nil)

	resp, _ := doRequest(t, srv, "DELETE", "/expenses/e1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(st.expenses) != 0 {
		t.Error("expense should be deleted")
	}

	resp, _ = doRequest(t, srv, "DELETE", "/expenses/e1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleting twice should 404, got %d", resp.StatusCode)
	}
}
