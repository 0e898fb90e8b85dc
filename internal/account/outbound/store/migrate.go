package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrMigrate wraps any failure while applying schema migrations.
var ErrMigrate = errors.New("store: failed to apply migrations")

// Migrate applies the embedded schema migrations through the pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close migration connection", "error", err)
		}
	}()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	return nil
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...), "component", "goose")
}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", "goose")
}
