package db

import (
	"context"

	"tendercrm/models"
)

var userColumns = map[string]bool{
	"email":         true,
	"password_hash": true,
	"role":          true,
	"full_name":     true,
}

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (email, password_hash, role, full_name)
        VALUES ($1, $2, $3, $4)
        RETURNING *`
	err := s.db.GetContext(ctx, u, query, models.NormalizeEmail(u.Email), u.PasswordHash, u.Role, u.FullName)
	return translate(err)
}

func (s *Storage) GetUser(ctx context.Context, id int) (*models.User, error) {
	u := &models.User{}
	if err := s.db.GetContext(ctx, u, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	err := s.db.GetContext(ctx, u, `SELECT * FROM users WHERE email = $1`, models.NormalizeEmail(email))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Storage) GetUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY email ASC`); err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id int, c Changes) (*models.User, error) {
	if len(c) == 0 {
		return s.GetUser(ctx, id)
	}
	if email, ok := c["email"].(string); ok {
		c["email"] = models.NormalizeEmail(email)
	}
	query, args, err := buildUpdate("users", userColumns, id, c, true)
	if err != nil {
		return nil, err
	}
	u := &models.User{}
	if err := s.db.GetContext(ctx, u, query, args...); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int) error {
	return execDelete(ctx, s.db, "users", id)
}
