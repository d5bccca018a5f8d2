package main

import (
	"database/sql"
	"fmt"

	"microwave/internal/config"
	"microwave/internal/repository"
	"microwave/internal/repository/db"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "microwave",
		Short:         "microwave - oven controller with HTTP API and event log",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default configs/config.yml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newStatusCmd(&configPath),
		newLogsCmd(&configPath),
	)
	return root
}

// openStore loads the config and opens the database. Callers close the DB.
func openStore(configPath string) (*config.Config, *sql.DB, *repository.Repository, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.DB.Path, err)
	}
	return cfg, conn, repository.NewRepository(conn), nil
}
