// Command import loads a CSV or XLSX stock sheet straight into the database
// and writes a per-row outcome report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/refurbstock-backend/internal/imports"
	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	"github.com/angelmondragon/refurbstock-backend/pkg/db"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
	"github.com/angelmondragon/refurbstock-backend/pkg/migrate"
)

func main() {
	file := flag.String("file", "", "path to a .csv or .xlsx stock sheet")
	report := flag.String("report", "", "optional path for the per-row CSV report (default stdout)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "import"})
	_ = godotenv.Load()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"file": *file,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, nil, logg)
	requireResource(ctx, logg, "inventory service", err)

	importService, err := imports.NewService(inventoryService, cfg.Import, nil, logg)
	requireResource(ctx, logg, "import service", err)

	f, err := os.Open(*file)
	requireResource(ctx, logg, "input file", err)
	defer f.Close()

	result, err := importService.Import(ctx, filepath.Base(*file), f)
	requireResource(ctx, logg, "import", err)

	out := os.Stdout
	if *report != "" {
		out, err = os.Create(*report)
		requireResource(ctx, logg, "report file", err)
		defer out.Close()
	}
	err = imports.WriteReport(out, result)
	requireResource(ctx, logg, "report", err)

	logg.Info(logg.WithFields(ctx, map[string]any{
		"imported": result.Imported,
		"failed":   result.Failed,
	}), "import finished")
	if result.Failed > 0 {
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
