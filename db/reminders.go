package db

import (
	"context"
	"strings"
	"time"

	"tendercrm/models"

	"github.com/jmoiron/sqlx"
)

var reminderColumns = map[string]bool{
	"tender_id":   true,
	"type":        true,
	"datetime":    true,
	"description": true,
	"completed":   true,
}

type ReminderFilter struct {
	TenderID  *int
	Completed *bool
	Type      *models.ReminderType
}

func (s *Storage) GetReminders(ctx context.Context, f ReminderFilter) ([]models.Reminder, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.TenderID != nil {
		where = append(where, "tender_id = ?")
		args = append(args, *f.TenderID)
	}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}
	if f.Type != nil {
		where = append(where, "type = ?")
		args = append(args, *f.Type)
	}

	query := "SELECT * FROM reminders"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY datetime ASC, id ASC"

	reminders := []models.Reminder{}
	if err := s.db.SelectContext(ctx, &reminders, s.db.Rebind(query), args...); err != nil {
		return nil, translate(err)
	}
	return reminders, nil
}

// UpcomingReminders: ближайшие невыполненные напоминания после from.
func (s *Storage) UpcomingReminders(ctx context.Context, from time.Time, limit int) ([]models.Reminder, error) {
	query := `
        SELECT * FROM reminders
        WHERE NOT completed AND datetime > $1
        ORDER BY datetime ASC
        LIMIT $2`
	reminders := []models.Reminder{}
	if err := s.db.SelectContext(ctx, &reminders, query, from, limit); err != nil {
		return nil, translate(err)
	}
	return reminders, nil
}

func (s *Storage) GetReminder(ctx context.Context, id int) (*models.Reminder, error) {
	r := &models.Reminder{}
	if err := s.db.GetContext(ctx, r, `SELECT * FROM reminders WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return r, nil
}

func (s *Storage) CreateReminder(ctx context.Context, r *models.Reminder) error {
	return insertReminder(ctx, s.db, r)
}

func insertReminder(ctx context.Context, q sqlx.QueryerContext, r *models.Reminder) error {
	query := `
        INSERT INTO reminders (tender_id, type, datetime, description, completed, is_auto, owner_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING *`
	err := sqlx.GetContext(ctx, q, r, query,
		r.TenderID, r.Type, r.DateTime, r.Description, r.Completed, r.IsAuto, r.OwnerID)
	return translate(err)
}

func (s *Storage) UpdateReminder(ctx context.Context, id int, c Changes) (*models.Reminder, error) {
	if len(c) == 0 {
		return s.GetReminder(ctx, id)
	}
	query, args, err := buildUpdate("reminders", reminderColumns, id, c, true)
	if err != nil {
		return nil, err
	}
	r := &models.Reminder{}
	if err := s.db.GetContext(ctx, r, query, args...); err != nil {
		return nil, translate(err)
	}
	return r, nil
}

func (s *Storage) DeleteReminder(ctx context.Context, id int) error {
	return execDelete(ctx, s.db, "reminders", id)
}

// upsertAutoReminder держит не больше одного авто-напоминания на тендер
// (частичный уникальный индекс reminders_auto_tender_uniq).
func upsertAutoReminder(ctx context.Context, tx *sqlx.Tx, t *models.Tender, at time.Time, text string) error {
	query := `
        INSERT INTO reminders (tender_id, type, datetime, description, completed, is_auto, owner_id)
        VALUES ($1, $2, $3, $4, FALSE, TRUE, $5)
        ON CONFLICT (tender_id) WHERE is_auto
        DO UPDATE SET datetime = EXCLUDED.datetime, description = EXCLUDED.description, updated_at = NOW()`
	_, err := tx.ExecContext(ctx, query, t.ID, models.ReminderSubmission, at, text, t.OwnerID)
	return translate(err)
}

// dropAutoReminder удаляет авто-напоминание тендера, ручные не трогает.
func dropAutoReminder(ctx context.Context, tx *sqlx.Tx, tenderID int) error {
	query := `DELETE FROM reminders WHERE tender_id = $1 AND is_auto`
	_, err := tx.ExecContext(ctx, query, tenderID)
	return translate(err)
}
