package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/config"
	"workshop_tool_tracker/db"
	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = config.LoadEnv()

	cmd := flag.String("cmd", "up", "goose command: up|down|status|version|redo|reset|up-to|down-to")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)
	logg = app.NewLogger(cfg.App, "migrate")

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"db":  cfg.DB.Driver,
	})

	conn, err := db.Connect(cfg.DB)
	requireResource(ctx, logg, "database", err)
	defer db.Close(conn)

	if cfg.DB.Driver == config.DriverSQLite {
		// sqlite 没有 goose 迁移，只支持 up
		if *cmd != "up" {
			fmt.Fprintf(os.Stderr, "sqlite only supports -cmd=up, got %q\n", *cmd)
			os.Exit(1)
		}
		if err := db.Migrate(conn); err != nil {
			fmt.Fprintf(os.Stderr, "auto migrate failed: %v\n", err)
			os.Exit(1)
		}
		logg.Info(ctx, "sqlite schema migrated")
		return
	}

	sqlDB, err := conn.DB()
	requireResource(ctx, logg, "sql database", err)

	if err := migrate.Run(ctx, sqlDB, *cmd, flag.Args()...); err != nil {
		fmt.Fprintf(os.Stderr, "goose %s failed: %v\n", *cmd, err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate done")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
