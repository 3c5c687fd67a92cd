package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var embedded embed.FS

const dir = "sql"

// Run выполняет команду goose (up, down, status, ...) над встроенными миграциями.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(embedded)
	goose.SetLogger(log.StandardLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.WithField("command", command).Info("running migrations")
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("migrations %s: %w", command, err)
	}
	return nil
}

// Up накатывает все миграции.
func Up(ctx context.Context, db *sql.DB) error {
	return Run(ctx, db, "up")
}
