package db

import (
	"context"
	"strings"

	"tendercrm/models"
)

var supplierColumns = map[string]bool{
	"name":           true,
	"contact_person": true,
	"phone":          true,
	"email":          true,
	"address":        true,
	"inn":            true,
	"website":        true,
	"notes":          true,
}

func (s *Storage) GetSuppliers(ctx context.Context, q string) ([]models.Supplier, error) {
	suppliers := []models.Supplier{}
	var err error
	if q = strings.TrimSpace(q); q != "" {
		err = s.db.SelectContext(ctx, &suppliers,
			`SELECT * FROM suppliers WHERE name ILIKE $1 ORDER BY name ASC`, "%"+q+"%")
	} else {
		err = s.db.SelectContext(ctx, &suppliers, `SELECT * FROM suppliers ORDER BY name ASC`)
	}
	if err != nil {
		return nil, translate(err)
	}
	return suppliers, nil
}

func (s *Storage) GetSupplier(ctx context.Context, id int) (*models.Supplier, error) {
	sp := &models.Supplier{}
	if err := s.db.GetContext(ctx, sp, `SELECT * FROM suppliers WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return sp, nil
}

func (s *Storage) CreateSupplier(ctx context.Context, sp *models.Supplier) error {
	query := `
        INSERT INTO suppliers (name, contact_person, phone, email, address, inn, website, notes, owner_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING *`
	err := s.db.GetContext(ctx, sp, query,
		sp.Name, sp.ContactPerson, sp.Phone, sp.Email, sp.Address, sp.INN, sp.Website, sp.Notes, sp.OwnerID)
	return translate(err)
}

func (s *Storage) UpdateSupplier(ctx context.Context, id int, c Changes) (*models.Supplier, error) {
	if len(c) == 0 {
		return s.GetSupplier(ctx, id)
	}
	query, args, err := buildUpdate("suppliers", supplierColumns, id, c, true)
	if err != nil {
		return nil, err
	}
	sp := &models.Supplier{}
	if err := s.db.GetContext(ctx, sp, query, args...); err != nil {
		return nil, translate(err)
	}
	return sp, nil
}

func (s *Storage) DeleteSupplier(ctx context.Context, id int) error {
	return execDelete(ctx, s.db, "suppliers", id)
}
