package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/campusvoice/portal/backend/internal/infrastructure/clients/postgres"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	"github.com/campusvoice/portal/backend/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Maintenance tasks for the campus voice portal",
	Long: `portalctl runs one-off operations against the portal's storage:
applying the schema, seeding demo data, recomputing rating aggregates
and rebuilding the complaint search index.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(envFile)
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		observability.InitLogger("portalctl", cfg.App.Env)
		return nil
	},
}

var (
	envFile string
	cfg     *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connectPostgres opens the configured database; maintenance tasks have no
// in-memory mode.
func connectPostgres() (*postgres.Client, error) {
	if cfg.App.StorageBackend == config.StorageBackendMemory {
		return nil, fmt.Errorf("STORAGE_BACKEND=memory has nothing to maintain")
	}
	client, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return client, nil
}
