// Package commands implements storectl, the operator CLI for the SeaFresh backend.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	_ "github.com/lib/pq"
	"github.com/seafresh/backend/internal/infrastructure/config"
	"github.com/seafresh/backend/internal/infrastructure/logger"
	"github.com/seafresh/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string

	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Operator tool for the SeaFresh backend",
	Long: `storectl manages the SeaFresh database: schema migrations,
the first administrator account and demo catalog data.

Configuration is read the same way as the server: config.toml and
SEAFRESH_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = red.Fprintf(rootCmd.ErrOrStderr(), "✗ %v\n", err)
		return err
	}
	return nil
}

// SetVersionInfo sets the version reported by --version
func SetVersionInfo(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(newMigrateCmd(), newAdminCmd(), newSeedCmd())
}

// env is what every database command needs
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stderr"}, "storectl", cfg.App.Env)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

// openSQL opens a plain database/sql connection, used by golang-migrate
func (e *env) openSQL(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", e.cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// openRepos opens the GORM connection and the repositories over it
func (e *env) openRepos(ctx context.Context) (*persistence.Database, *persistence.Repositories, error) {
	db, err := persistence.NewDatabase(ctx, e.cfg.Database, nil)
	if err != nil {
		return nil, nil, err
	}
	return db, persistence.NewRepositories(db.DB), nil
}

func success(cmd *cobra.Command, format string, a ...any) {
	_, _ = green.Fprintf(cmd.OutOrStdout(), "✓ "+format+"\n", a...)
}

func warning(cmd *cobra.Command, format string, a ...any) {
	_, _ = yellow.Fprintf(cmd.OutOrStdout(), "! "+format+"\n", a...)
}

func info(cmd *cobra.Command, format string, a ...any) {
	_, _ = cyan.Fprintf(cmd.OutOrStdout(), format+"\n", a...)
}
