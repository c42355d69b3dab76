package main

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"time"

	"github.com/civic-tools/civiceye/pkg/server"
	"github.com/civic-tools/civiceye/pkg/services/analysis"
	"github.com/civic-tools/civiceye/pkg/services/config"
	reportsvc "github.com/civic-tools/civiceye/pkg/services/report"
	"github.com/civic-tools/civiceye/pkg/store/duckdb"
	duckdbreport "github.com/civic-tools/civiceye/pkg/store/duckdb/report"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	credPath string
	profile  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the CivicEye reporting server",
		RunE:  runServer,
	}

	usr, _ := user.Current()
	defaultPath := fmt.Sprintf("%s/.civiceye/credentials", usr.HomeDir)

	rootCmd.Flags().StringVarP(&credPath, "credentials", "c", defaultPath,
		"Path to the inference credentials file (default is $HOME/.civiceye/credentials)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "default",
		"Credentials profile to use")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	registry, err := config.NewRegistry(credPath)
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := registry.GetCredentials(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to load credentials profile %q: %w", profile, err)
	}

	dbPath := os.Getenv("CIVICEYE_DB")
	if dbPath == "" {
		dbPath = "civiceye.db"
	}
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
	if err != nil {
		return fmt.Errorf("failed to open report database: %w", err)
	}

	reportStore, err := duckdbreport.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	analyzer := analysis.NewClient(analysis.Config{
		Endpoint: creds.Endpoint,
		APIKey:   creds.APIKey,
		Model:    creds.Model,
	})

	service, err := reportsvc.NewService(analyzer, reportStore, os.Getenv("CIVICEYE_UPLOAD_DIR"))
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}

	logger.Info().Msgf("Credentials found at `%s` successfully loaded.", credPath)

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(host, port),
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Reports: service,
			Logger:  logger,
		},
	})

	return webAPI.Start()
}
