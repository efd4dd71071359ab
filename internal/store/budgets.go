package store

import (
	"context"
	"database/sql"

	"github.com/atelierhq/atelier-admin/pkg/models"
)

func (s *Store) CreateBudget(ctx context.Context, b *models.Budget) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, name, total_budget, created_at)
		VALUES ($1, $2, $3, $4)
	`, b.ID, b.Name, b.TotalBudget, b.CreatedAt)
	return err
}

func (s *Store) GetBudget(ctx context.Context, id string) (*models.Budget, error) {
	b := &models.Budget{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, total_budget, created_at FROM budgets WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.TotalBudget, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBudgets(ctx context.Context) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, total_budget, created_at FROM budgets ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.Name, &b.TotalBudget, &b.CreatedAt); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, budget_id, category, amount, description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.BudgetID, e.Category, e.Amount, nullString(e.Description), e.Date)
	return err
}

func (s *Store) ListExpenses(ctx context.Context, budgetID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, budget_id, category, amount, description, date
		FROM expenses WHERE budget_id = $1 ORDER BY date ASC
	`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var desc sql.NullString
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.Category, &e.Amount, &desc, &e.Date); err != nil {
			return nil, err
		}
		e.Description = desc.String
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
