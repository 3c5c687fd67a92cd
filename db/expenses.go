package db

import (
	"context"

	"tendercrm/models"

	"github.com/jmoiron/sqlx"
)

var expenseColumns = map[string]bool{
	"amount":      true,
	"description": true,
	"category":    true,
	"date":        true,
}

func (s *Storage) GetExpensesByTender(ctx context.Context, tenderID int) ([]models.Expense, error) {
	expenses := []models.Expense{}
	query := `SELECT * FROM expenses WHERE tender_id = $1 ORDER BY date DESC, id DESC`
	if err := s.db.SelectContext(ctx, &expenses, query, tenderID); err != nil {
		return nil, translate(err)
	}
	return expenses, nil
}

// ExpenseTotals суммирует расходы по каждому из тендеров.
// Тендеры без расходов в результат не попадают.
func (s *Storage) ExpenseTotals(ctx context.Context, tenderIDs []int) (map[int]float64, error) {
	totals := make(map[int]float64, len(tenderIDs))
	if len(tenderIDs) == 0 {
		return totals, nil
	}
	query, args, err := sqlx.In(
		`SELECT tender_id, SUM(amount) AS total FROM expenses WHERE tender_id IN (?) GROUP BY tender_id`,
		tenderIDs)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		TenderID int     `db:"tender_id"`
		Total    float64 `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, translate(err)
	}
	for _, r := range rows {
		totals[r.TenderID] = r.Total
	}
	return totals, nil
}

func (s *Storage) CreateExpense(ctx context.Context, e *models.Expense) error {
	query := `
        INSERT INTO expenses (tender_id, amount, description, category, date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING *`
	err := s.db.GetContext(ctx, e, query, e.TenderID, e.Amount, e.Description, e.Category, e.Date)
	return translate(err)
}

func (s *Storage) GetExpense(ctx context.Context, id int) (*models.Expense, error) {
	e := &models.Expense{}
	if err := s.db.GetContext(ctx, e, `SELECT * FROM expenses WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func (s *Storage) UpdateExpense(ctx context.Context, id int, c Changes) (*models.Expense, error) {
	if len(c) == 0 {
		return s.GetExpense(ctx, id)
	}
	query, args, err := buildUpdate("expenses", expenseColumns, id, c, false)
	if err != nil {
		return nil, err
	}
	e := &models.Expense{}
	if err := s.db.GetContext(ctx, e, query, args...); err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func (s *Storage) DeleteExpense(ctx context.Context, id int) error {
	return execDelete(ctx, s.db, "expenses", id)
}
