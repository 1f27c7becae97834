package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"isdialogmelding/internal/platform/config"
	"isdialogmelding/internal/platform/logger"
	"isdialogmelding/internal/platform/postgres"
)

// main exposes the service commands. Wiring of the running service lives in
// serve.go; business logic lives in the internal feature packages.
func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "isdialogmelding",
		Short:         "Behandler identity and relation reconciliation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (env vars take precedence)")

	rootCmd.AddCommand(serveCmd(&configFile))
	rootCmd.AddCommand(migrateCmd(&configFile))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the Kafka consumers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func migrateCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	run := func(command string) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres.url (POSTGRES_URL) is required")
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			return postgres.RunMigrate(log, cfg.Postgres.URL, command, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply pending migrations", Args: cobra.NoArgs, RunE: run("up")},
		&cobra.Command{Use: "down", Short: "Roll back all migrations", Args: cobra.NoArgs, RunE: run("down")},
		&cobra.Command{Use: "version", Short: "Print the current migration version", Args: cobra.NoArgs, RunE: run("version")},
		&cobra.Command{Use: "force N", Short: "Force the migration version after a failed run", Args: cobra.ExactArgs(1), RunE: run("force")},
	)
	return cmd
}

func loadConfig(configFile string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
