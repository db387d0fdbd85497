package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/loyalty-bot-backend/internal/app"
	"github.com/tbourn/loyalty-bot-backend/internal/config"
	"github.com/tbourn/loyalty-bot-backend/internal/repo"
	"github.com/tbourn/loyalty-bot-backend/internal/sysutil"
)

// rootState is shared by every subcommand once PersistentPreRunE ran.
type rootState struct {
	envFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	st := &rootState{}
	root := &cobra.Command{
		Use:           "loyaltyd",
		Short:         "Loyalty stamp bot backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), st.cfg)
		},
	}
	root.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(st),
		newMigrateCmd(st),
		newDedupeCmd(st),
		newSeedCmd(st),
	)
	return root
}

// load reads the optional dotenv file, then the configuration, and sets up
// the global logger. Variables already in the environment win over the file.
func (st *rootState) load() error {
	if st.envFile != "" {
		if err := godotenv.Load(st.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	st.cfg = cfg
	sysutil.ConfigureLogger(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	return nil
}

// openStore opens the database and applies migrations.
func openStore(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func closeStore(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}

// withApp runs fn against services wired over a freshly opened store, with
// log-only delivery and no metrics. Used by the maintenance commands.
func withApp(ctx context.Context, cfg config.Config, fn func(context.Context, *app.App) error) error {
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(db)
	return fn(ctx, app.New(db, cfg, nil, nil))
}

func appVersion() string {
	return sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
}

func newMigrateCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStore(st.cfg)
			if err != nil {
				return err
			}
			defer closeStore(db)
			log.Info().Str("db_path", st.cfg.DBPath).Msg("schema up to date")
			return nil
		},
	}
}

func newDedupeCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe-vendors",
		Short: "Delete duplicate active vendor rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), st.cfg, func(ctx context.Context, a *app.App) error {
				n, err := a.Vendors.CleanupDuplicates(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("removed %d duplicate vendor rows\n", n)
				return nil
			})
		},
	}
}
