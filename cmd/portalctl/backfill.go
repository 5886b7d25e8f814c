package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/campusvoice/portal/backend/internal/adapters/database"
	"github.com/campusvoice/portal/backend/internal/application/services"
)

type BackfillFlags struct {
	Workers int
	PostID  string
}

func NewBackfillFlags() *BackfillFlags {
	return &BackfillFlags{Workers: 3}
}

func (f *BackfillFlags) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&f.Workers, "workers", f.Workers, "Number of concurrent workers")
	fs.StringVar(&f.PostID, "post", f.PostID, "Single feedback post ID to backfill")
}

func init() {
	f := NewBackfillFlags()

	cmd := &cobra.Command{
		Use:   "backfill-aggregates",
		Short: "Recompute every feedback post's rating aggregate from its ratings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pgClient, err := connectPostgres()
			if err != nil {
				return err
			}
			defer pgClient.Close()

			posts := database.NewFeedbackPostAdapter(pgClient)
			svc := services.NewAggregateBackfillService(posts, f.Workers)

			if f.PostID != "" {
				post, err := posts.GetByID(ctx, f.PostID)
				if err != nil {
					return err
				}
				updated, err := svc.BackfillSingle(ctx, post)
				if err != nil {
					return err
				}
				log.Info().Str("post_id", f.PostID).Bool("updated", updated).Msg("Backfilled post")
				return nil
			}

			start := time.Now()
			log.Info().Int("workers", f.Workers).Msg("Starting aggregate backfill")
			summary, err := svc.BackfillAll(ctx)
			if summary != nil {
				log.Info().
					Dur("elapsed", time.Since(start)).
					Int("processed", summary.TotalProcessed).
					Int("updated", summary.UpdatedCount).
					Int("unchanged", summary.UnchangedCount).
					Int("failed", summary.FailureCount).
					Msg("Backfill complete")
			}
			return err
		},
	}

	f.BindFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
