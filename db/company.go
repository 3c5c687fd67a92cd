package db

import (
	"context"
	"fmt"
	"strings"

	"tendercrm/models"
)

var companyColumns = map[string]bool{
	"name":                  true,
	"inn":                   true,
	"kpp":                   true,
	"ogrn":                  true,
	"bank_name":             true,
	"bik":                   true,
	"checking_account":      true,
	"correspondent_account": true,
	"director_name":         true,
	"phone":                 true,
	"email":                 true,
	"address":               true,
}

// Строка реквизитов всегда одна, с id = 1 (CHECK в схеме).
const companyRowID = 1

func (s *Storage) GetCompanyInfo(ctx context.Context) (*models.CompanyInfo, error) {
	c := &models.CompanyInfo{}
	if err := s.db.GetContext(ctx, c, `SELECT * FROM company_info WHERE id = $1`, companyRowID); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// UpsertCompanyInfo создаёт строку при первой записи, дальше обновляет только
// переданные колонки. Один оператор, поэтому гонки двух первых записей нет.
func (s *Storage) UpsertCompanyInfo(ctx context.Context, c Changes) (*models.CompanyInfo, error) {
	cols := c.Columns()
	insertCols := []string{"id"}
	values := []string{"$1"}
	updates := []string{"updated_at = NOW()"}
	args := []interface{}{companyRowID}

	for i, col := range cols {
		if !companyColumns[col] {
			return nil, fmt.Errorf("%w: company_info.%s", ErrBadColumn, col)
		}
		insertCols = append(insertCols, col)
		values = append(values, fmt.Sprintf("$%d", i+2))
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		args = append(args, c[col])
	}

	query := fmt.Sprintf(`
        INSERT INTO company_info (%s)
        VALUES (%s)
        ON CONFLICT (id) DO UPDATE SET %s
        RETURNING *`,
		strings.Join(insertCols, ", "), strings.Join(values, ", "), strings.Join(updates, ", "))

	info := &models.CompanyInfo{}
	if err := s.db.GetContext(ctx, info, query, args...); err != nil {
		return nil, translate(err)
	}
	return info, nil
}
