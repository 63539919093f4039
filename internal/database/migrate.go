package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mehmetcc/flightdesk/migrations"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const dialect = "postgres"

// Migrate applies every pending migration embedded in the migrations package.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zapGooseLogger{s: logger.Named("goose").Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("database schema up to date", zap.Int64("version", v))
	return nil
}

// Ping reports whether the pool can reach the database; used by the health endpoint.
func Ping(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

type zapGooseLogger struct{ s *zap.SugaredLogger }

func (l zapGooseLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(format, v...)
}

// Fatalf must not exit the process; main decides what a failed migration means.
func (l zapGooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Errorf(format, v...)
}
