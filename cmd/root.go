// Package cmd implements the runway CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
)

var (
	flagOwner   string
	flagDB      string
	flagDataDir string
	flagToday   string
	flagQuiet   bool
	flagVerbose bool
)

var (
	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "runway",
	Short: "Know how low your spending money will go",
	Long: "runway keeps your spending and savings balances current against a schedule of\n" +
		"recurring transactions and tells you the lowest point spending will reach.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runStatus,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOwner, "owner", "o", "", "Owner to act on (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database DSN: a SQLite path or a postgres:// URL")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding runway.db")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Treat this date (YYYY-MM-DD) as today")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output")
}

// setup loads .env files and the config, and builds the logger.
func setup(_ *cobra.Command, _ []string) error {
	log = logger.New(logger.Level(flagQuiet, flagVerbose))

	if err := config.LoadDotEnv(".env", filepath.Join(config.ConfigDir(), ".env")); err != nil {
		log.Warn().Err(err).Msg("ignoring .env")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	log.Debug().Str("path", config.ConfigPath()).Bool("exists", config.Exists()).Msg("config loaded")
	return nil
}

func ownerName() string {
	if flagOwner != "" {
		return flagOwner
	}
	return cfg.General.Owner
}

func today() (civil.Date, error) {
	if flagToday == "" {
		return civil.DateOf(time.Now()), nil
	}
	d, err := civil.ParseDate(flagToday)
	if err != nil {
		return civil.Date{}, fmt.Errorf("--today: %w", err)
	}
	return d, nil
}

// dsn picks the database: --db, then the config's database_url, then
// runway.db under the data directory.
func dsn() (string, error) {
	switch {
	case flagDB != "":
		return flagDB, nil
	case cfg.General.DatabaseURL != "":
		return cfg.General.DatabaseURL, nil
	}

	dir := flagDataDir
	if dir == "" {
		dir = cfg.General.DataDir
	}
	if dir == "" {
		dir = pipeline.DataDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	return pipeline.DBPath(dir), nil
}

func openStore() (*store.Store, error) {
	d, err := dsn()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(d)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", st.Backend()).Msg("store opened")
	return st, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	return logger.WithContext(ctx, log), cancel
}
