package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"workshop_tool_tracker/logger"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedded embed.FS

const Dir = "migrations"

// Run executes a goose command (up, down, status, version, redo, reset...)
// against the embedded postgres migrations.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, Dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up is the startup hook behind AUTO_MIGRATE.
func Up(ctx context.Context, db *sql.DB, logg *logger.Logger) error {
	ctx = logg.WithField(ctx, "dir", Dir)
	logg.Info(ctx, "running goose migrations")
	if err := Run(ctx, db, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}
