package main

import (
	"context"
	"fmt"
	"os"

	"github.com/civic-tools/civiceye/pkg/runtime/terminal"
	"github.com/civic-tools/civiceye/pkg/runtime/terminal/commands"
	"github.com/civic-tools/civiceye/pkg/services/analysis"
	reportsvc "github.com/civic-tools/civiceye/pkg/services/report"
	"github.com/civic-tools/civiceye/pkg/store/duckdb"
	duckdbreport "github.com/civic-tools/civiceye/pkg/store/duckdb/report"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	dbPath := os.Getenv("CIVICEYE_DB")
	if dbPath == "" {
		dbPath = "civiceye.db"
	}
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open report database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := duckdbreport.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	newService := func(analyzer reportsvc.Analyzer) (*reportsvc.Service, error) {
		return reportsvc.NewService(analyzer, store, os.Getenv("CIVICEYE_UPLOAD_DIR"))
	}

	// The reports command reads the store directly; it classifies nothing,
	// so it gets a fallback-only analyzer.
	lister, err := newService(analysis.NewClient(analysis.Config{}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Lister: lister,
		Factory: func(_ context.Context, profilePath string) (commands.Submitter, error) {
			cfg, err := analysis.LoadConfig(profilePath)
			if err != nil {
				return nil, err
			}
			return newService(analysis.NewClient(analysis.Config{
				Endpoint: cfg.Endpoint,
				APIKey:   cfg.APIKey,
				Model:    cfg.Model,
			}))
		},
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
