package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tasktrack/cmd/internal/dbschema"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/spf13/cobra"
)

// Run is the CLI entrypoint used by cmd/tasktrack.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the tasktrack command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "tasktrack",
		Short:        "Personal task tracking HTTP service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				path = os.Getenv("TASKTRACK_CONFIG")
			}
			_, err := ApplyConfigFile(path)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env: TASKTRACK_CONFIG)")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newKeygenCommand(),
		newVersionCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	a, err := New(ctx, cfg, log)
	if err != nil {
		log.Error("server.init.fail", "err", err)
		return err
	}
	return a.Run(ctx)
}

func newMigrateCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL schema, tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			if printOnly {
				ddl, err := dbschema.SQL(cfg.DBSchema)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), ddl)
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("migrate: TASKTRACK_DATABASE_URL is required")
			}

			log := NewLogger(cfg.LogLevel, cfg.LogFormat)
			cfg.AutoMigrate = false
			pool, err := NewDBPool(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := dbschema.Apply(cmd.Context(), pool, cfg.DBSchema); err != nil {
				return err
			}
			log.Info("migrate.ok", "schema", cfg.DBSchema)
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the DDL instead of applying it")
	return cmd
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new PASETO v4 secret key (hex) for TASKTRACK_PASETO_V4_SECRET_KEY_HEX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := paseto.NewV4AsymmetricSecretKey()
			_, err := fmt.Fprintln(cmd.OutOrStdout(), key.ExportHex())
			return err
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tasktrack %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
