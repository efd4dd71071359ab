package store

import (
	"context"
	"database/sql"

	"github.com/atelierhq/atelier-admin/pkg/models"
)

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, email, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.Name, c.Phone, nullString(c.Email), nullString(c.Address), c.CreatedAt)
	return err
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	c := &models.Customer{}
	var email, address sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address, created_at FROM customers WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Phone, &email, &address, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Email = email.String
	c.Address = address.String
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, email, address, created_at
		FROM customers ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		var email, address sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &email, &address, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Email = email.String
		c.Address = address.String
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ListTailorsByRole backs the staff directory endpoints; an empty role
// returns everyone.
func (s *Store) ListTailorsByRole(ctx context.Context, role string) ([]models.Tailor, error) {
	query := `SELECT id, name, role, phone, created_at FROM tailors`
	args := []interface{}{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tailors []models.Tailor
	for rows.Next() {
		var t models.Tailor
		var phone sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Role, &phone, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Phone = phone.String
		tailors = append(tailors, t)
	}
	return tailors, rows.Err()
}

func (s *Store) CreateTailor(ctx context.Context, t *models.Tailor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tailors (id, name, role, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.Name, t.Role, nullString(t.Phone), t.CreatedAt)
	return err
}

func (s *Store) CreateTailorJob(ctx context.Context, job *models.TailorJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tailor_jobs (id, order_id, tailor_id, description, status,
			style_image_url, assigned_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, job.ID, job.OrderID, job.TailorID, job.Description, job.Status,
		nullString(job.StyleImageURL), job.AssignedAt, job.UpdatedAt)
	return err
}

func (s *Store) GetTailorJob(ctx context.Context, id string) (*models.TailorJob, error) {
	job := &models.TailorJob{}
	var styleURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_id, tailor_id, description, status, style_image_url,
			assigned_at, updated_at
		FROM tailor_jobs WHERE id = $1
	`, id).Scan(&job.ID, &job.OrderID, &job.TailorID, &job.Description,
		&job.Status, &styleURL, &job.AssignedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	job.StyleImageURL = styleURL.String
	return job, nil
}

func (s *Store) ListTailorJobs(ctx context.Context, tailorID string) ([]models.TailorJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, tailor_id, description, status, style_image_url,
			assigned_at, updated_at
		FROM tailor_jobs WHERE tailor_id = $1 ORDER BY assigned_at DESC
	`, tailorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.TailorJob
	for rows.Next() {
		var job models.TailorJob
		var styleURL sql.NullString
		if err := rows.Scan(&job.ID, &job.OrderID, &job.TailorID, &job.Description,
			&job.Status, &styleURL, &job.AssignedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		job.StyleImageURL = styleURL.String
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *Store) UpdateTailorJob(ctx context.Context, job *models.TailorJob) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tailor_jobs SET description = $2, status = $3, style_image_url = $4,
			updated_at = $5
		WHERE id = $1
	`, job.ID, job.Description, job.Status, nullString(job.StyleImageURL), job.UpdatedAt)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
