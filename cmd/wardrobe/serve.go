package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardrobeassistant/wardrobe/internal/web"
)

func newServeCmd(rt *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cat, closeDB, err := rt.openCatalog()
			if err != nil {
				rt.logger.Error("failed to open database", zap.Error(err))
				return err
			}
			defer closeDB()

			if rt.cfg.SeedCategories {
				if _, err := cat.service.SeedDefaultCategories(ctx); err != nil {
					rt.logger.Error("failed to seed default categories", zap.Error(err))
					return err
				}
			}

			if rt.cfg.AppEnv == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			server := web.NewServer(cat.service, cat.broker, rt.logger, web.Options{
				MaxPictureBytes: rt.cfg.MaxPictureBytes,
				CORSOrigins:     rt.cfg.CORSOrigins,
			})
			if err := server.ListenAndServe(ctx, rt.cfg.ListenAddr); err != nil {
				rt.logger.Error("server error", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
