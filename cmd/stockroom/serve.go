package main

import (
	"github.com/spf13/cobra"

	"stockroom/internal/config"
	"stockroom/internal/db"
	"stockroom/internal/filestore/local"
	"stockroom/internal/logging"
	"stockroom/internal/service"
	"stockroom/internal/store"
	"stockroom/internal/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stockroom API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Info("opening database", "path", cfg.DBPath)
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					logger.Error("failed to close database", "error", err)
				}
			}()

			files, err := local.New(cfg.AttachmentPath)
			if err != nil {
				return err
			}

			svc := service.NewItemService(store.NewItemStore(database), files, logger)
			server := web.NewServer(svc, logger, cfg.MaxUploadBytes)

			return server.ListenAndServe(cfg.ListenAddr)
		},
	}
}
