package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/campusvoice/portal/backend/internal/adapters/database"
	"github.com/campusvoice/portal/backend/internal/adapters/search"
	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/infrastructure/clients/typesense"
)

type ReindexFlags struct {
	BatchSize int
}

func NewReindexFlags() *ReindexFlags {
	return &ReindexFlags{BatchSize: 200}
}

func (f *ReindexFlags) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&f.BatchSize, "batch-size", f.BatchSize, "Complaints read per page")
}

func init() {
	f := NewReindexFlags()

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the complaint search index from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pgClient, err := connectPostgres()
			if err != nil {
				return err
			}
			defer pgClient.Close()

			tsClient, err := typesense.NewClient(&cfg.Typesense)
			if err != nil {
				return fmt.Errorf("failed to create typesense client: %w", err)
			}
			if err := tsClient.InitSchema(ctx); err != nil {
				return err
			}

			svc := services.NewComplaintService(database.NewComplaintAdapter(pgClient), search.NewTypesenseAdapter(tsClient), nil)

			start := time.Now()
			indexed, err := svc.Reindex(ctx, f.BatchSize)
			log.Info().Int("indexed", indexed).Dur("elapsed", time.Since(start)).Msg("Reindex finished")
			return err
		},
	}

	f.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
