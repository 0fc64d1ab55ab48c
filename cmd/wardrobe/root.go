package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardrobeassistant/wardrobe/internal/config"
	"github.com/wardrobeassistant/wardrobe/internal/db"
	"github.com/wardrobeassistant/wardrobe/internal/events"
	"github.com/wardrobeassistant/wardrobe/internal/logging"
	"github.com/wardrobeassistant/wardrobe/internal/service"
	"github.com/wardrobeassistant/wardrobe/internal/store"
)

// app holds what every subcommand shares once the root pre-run has
// loaded configuration and built the logger.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	closeLog func()
	dbPath   string
	logLevel string
}

// catalog is an open database with the service stack wired on top of it.
type catalog struct {
	broker  *events.Broker
	service *service.CatalogService
}

func newRootCmd() (*cobra.Command, *app) {
	rt := &app{}

	root := &cobra.Command{
		Use:          "wardrobe",
		Short:        "Catalog clothing items by category",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt.cfg = config.Load()
			if cmd.Flags().Changed("db") {
				rt.cfg.DBPath = rt.dbPath
			}
			if cmd.Flags().Changed("log-level") {
				rt.cfg.LogLevel = rt.logLevel
			}

			logger, cleanup, err := logging.New(rt.cfg.LogLevel, rt.cfg.LogFile, rt.cfg.LogEncoding)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			rt.logger = logger
			rt.closeLog = cleanup
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.dbPath, "db", "", "catalog database file (overrides DB_PATH)")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(rt),
		newMigrateCmd(rt),
		newSeedCmd(rt),
		newCategoriesCmd(rt),
		newItemsCmd(rt),
	)
	return root, rt
}

// execute runs root and always releases the logger afterwards. cobra skips
// post-run hooks when RunE fails, so the cleanup cannot live there.
func execute(root *cobra.Command, rt *app) error {
	cmd, err := root.ExecuteC()
	if err != nil && rt.logger != nil && cmd != nil {
		rt.logger.Error("command failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
	}
	rt.close()
	return err
}

func (rt *app) close() {
	if rt.closeLog != nil {
		rt.closeLog()
		rt.closeLog = nil
	}
}

// openCatalog opens the database, applying pending migrations, and wires
// the stores, broker and service. The returned func closes the database.
func (rt *app) openCatalog() (*catalog, func(), error) {
	database, err := db.Open(rt.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	broker := events.NewBroker(rt.logger)
	svc := service.NewCatalogService(store.NewCategoryStore(database), store.NewItemStore(database), broker, rt.logger)

	closeDB := func() {
		if err := database.Close(); err != nil {
			rt.logger.Error("failed to close database", zap.Error(err))
		}
	}
	return &catalog{broker: broker, service: svc}, closeDB, nil
}
