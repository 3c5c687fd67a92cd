package db

import (
	"context"
	"strings"
	"time"

	"tendercrm/models"

	"github.com/jmoiron/sqlx"
)

var tenderColumns = map[string]bool{
	"title":                      true,
	"link":                       true,
	"status":                     true,
	"publish_date":               true,
	"deadline":                   true,
	"submission_date":            true,
	"review_date":                true,
	"completion_deadline":        true,
	"amount":                     true,
	"win_amount":                 true,
	"winner_price":               true,
	"contract_guarantee_percent": true,
	"comment":                    true,
	"is_archived":                true,
	"archived_at":                true,
}

// TenderFilter: фильтры списка тендеров. Limit == 0 означает без ограничения.
type TenderFilter struct {
	Statuses []models.Status
	Archived *bool
	Query    string
	Limit    int
	Offset   int
}

func (s *Storage) GetTenders(ctx context.Context, f TenderFilter) ([]models.Tender, error) {
	var (
		where []string
		args  []interface{}
	)
	if len(f.Statuses) > 0 {
		where = append(where, "status IN (?)")
		args = append(args, f.Statuses)
	}
	if f.Archived != nil {
		where = append(where, "is_archived = ?")
		args = append(args, *f.Archived)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "title ILIKE ?")
		args = append(args, "%"+q+"%")
	}

	query := "SELECT * FROM tenders"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	// sqlx.In раскрывает срез статусов в список плейсхолдеров
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	tenders := []models.Tender{}
	err = s.db.SelectContext(ctx, &tenders, s.db.Rebind(query), args...)
	if err != nil {
		return nil, translate(err)
	}
	return tenders, nil
}

func (s *Storage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	t := &models.Tender{}
	err := s.db.GetContext(ctx, t, `SELECT * FROM tenders WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

const insertTender = `
        INSERT INTO tenders
            (title, link, status, publish_date, deadline, submission_date, review_date,
             completion_deadline, amount, win_amount, winner_price, contract_guarantee_percent,
             comment, is_archived, owner_id)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING *`

// CreateTender вставляет тендер и, если передано, авто-напоминание о дедлайне
// в одной транзакции. Поля t перезаписываются строкой из БД.
func (s *Storage) CreateTender(ctx context.Context, t *models.Tender, auto *models.Reminder) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, t, insertTender,
			t.Title, t.Link, t.Status, t.PublishDate, t.Deadline, t.SubmissionDate, t.ReviewDate,
			t.CompletionDeadline, t.Amount, t.WinAmount, t.WinnerPrice, t.ContractGuaranteePercent,
			t.Comment, t.IsArchived, t.OwnerID)
		if err != nil {
			return translate(err)
		}
		if auto == nil {
			return nil
		}
		auto.TenderID = t.ID
		auto.IsAuto = true
		return insertReminder(ctx, tx, auto)
	})
}

// ReminderSync: что сделать с авто-напоминанием тендера после обновления.
type ReminderSync int

const (
	ReminderKeep ReminderSync = iota
	ReminderUpsert
	ReminderDrop
)

// TenderUpdate: план обновления тендера, построенный по текущему состоянию.
type TenderUpdate struct {
	Changes      Changes
	Reminder     ReminderSync
	ReminderAt   time.Time
	ReminderText string
}

// TenderPlanner строит план по текущей строке (взятой FOR UPDATE).
type TenderPlanner func(current *models.Tender) (TenderUpdate, error)

// UpdateTender читает тендер под блокировкой, строит план и применяет его
// вместе с побочными эффектами на напоминания в одной транзакции.
func (s *Storage) UpdateTender(ctx context.Context, id int, plan TenderPlanner) (*models.Tender, error) {
	var updated models.Tender
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var current models.Tender
		if err := tx.GetContext(ctx, &current, `SELECT * FROM tenders WHERE id = $1 FOR UPDATE`, id); err != nil {
			return translate(err)
		}

		up, err := plan(&current)
		if err != nil {
			return err
		}

		if len(up.Changes) == 0 {
			updated = current
		} else {
			query, args, err := buildUpdate("tenders", tenderColumns, id, up.Changes, true)
			if err != nil {
				return err
			}
			if err := tx.GetContext(ctx, &updated, query, args...); err != nil {
				return translate(err)
			}
		}

		switch up.Reminder {
		case ReminderUpsert:
			return upsertAutoReminder(ctx, tx, &updated, up.ReminderAt, up.ReminderText)
		case ReminderDrop:
			return dropAutoReminder(ctx, tx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTender удаляет тендер; расходы и напоминания удаляются каскадом (FK).
func (s *Storage) DeleteTender(ctx context.Context, id int) error {
	return execDelete(ctx, s.db, "tenders", id)
}

// CountTendersByStatus: количество тендеров по статусам (без архивных).
func (s *Storage) CountTendersByStatus(ctx context.Context) (map[models.Status]int, error) {
	var rows []struct {
		Status models.Status `db:"status"`
		Count  int           `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM tenders WHERE NOT is_archived GROUP BY status`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, translate(err)
	}
	counts := make(map[models.Status]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
