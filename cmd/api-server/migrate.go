package main

import (
	"tendercrm/db/migrations"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|redo|version]",
		Short:     "Управление миграциями БД",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status", "redo", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}

			conn, err := connectDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			return migrations.Run(cmd.Context(), conn.DB, command)
		},
	}
}
