package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			pgClient, err := connectPostgres()
			if err != nil {
				return err
			}
			defer pgClient.Close()

			if err := pgClient.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info().Msg("Schema applied")
			return nil
		},
	}

	rootCmd.AddCommand(cmd)
}
