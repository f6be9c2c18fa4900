package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/config"
	"workshop_tool_tracker/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = config.LoadEnv()

	force := flag.Bool("force", false, "seed even when tools already exist (adds duplicates)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = app.NewLogger(cfg.App, "seed")
	ctx := context.Background()

	a, err := app.New(ctx, *cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap app", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.DB.AutoMigrate {
		if err := a.Migrate(ctx); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
	}

	tools, err := app.SeedSampleTools(ctx, a, *force)
	if err != nil {
		logg.Error(ctx, "seeding failed", err)
		os.Exit(1)
	}
	if len(tools) == 0 {
		fmt.Println("Database already has tools. Skipping seeding; use -force to seed anyway.")
		return
	}
	fmt.Printf("Added %d sample tools:\n", len(tools))
	for i, t := range tools {
		fmt.Printf("  %d. %s (code: %s)\n", i+1, t.Name, t.ID)
	}
}
