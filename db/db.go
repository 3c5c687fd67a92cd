package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Ping проверяет соединение с БД
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var (
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("unique constraint violation")
	ErrForeignKey = errors.New("foreign key violation")
	ErrBadColumn  = errors.New("column is not updatable")
)

// Коды ошибок Postgres
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate переводит ошибки драйвера в ошибки пакета, чтобы хендлеры
// не зависели от lib/pq.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrForeignKey, pqErr.Constraint)
		}
	}
	return err
}

// Changes: набор колонок для частичного обновления.
// nil в значении означает очистку колонки (SET col = NULL).
type Changes map[string]interface{}

func (c Changes) Columns() []string {
	cols := make([]string, 0, len(c))
	for k := range c {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// buildUpdate собирает UPDATE ... RETURNING * с именованными параметрами.
// Колонки сортируются, чтобы текст запроса был стабильным.
func buildUpdate(table string, updatable map[string]bool, id int, c Changes, touch bool) (string, []interface{}, error) {
	sets := make([]string, 0, len(c)+1)
	arg := make(map[string]interface{}, len(c)+1)
	for _, col := range c.Columns() {
		if !updatable[col] {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrBadColumn, table, col)
		}
		sets = append(sets, fmt.Sprintf("%s = :%s", col, col))
		arg[col] = c[col]
	}
	if touch {
		sets = append(sets, "updated_at = NOW()")
	}
	arg["id"] = id

	named := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id RETURNING *", table, strings.Join(sets, ", "))
	query, args, err := sqlx.Named(named, arg)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}

// withTx выполняет fn в транзакции; при ошибке или панике откатывает.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// execDelete удаляет строку по id и возвращает ErrNotFound, если её не было.
func execDelete(ctx context.Context, q sqlx.ExecerContext, table string, id int) error {
	res, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
