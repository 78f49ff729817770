package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/groupbuy/backend/internal/infrastructure/config"
	"github.com/groupbuy/backend/internal/infrastructure/logger"
	"github.com/groupbuy/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

type cli struct {
	migrationsPath string
	logLevel       string
	log            *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the group buy database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(&logger.Config{
				Level:      c.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log = log
			c.migrationsPath, err = resolveMigrationsPath(c.migrationsPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.migrationsPath, "path", "", "migrations directory (default ./migrations)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: c.withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Up()
			}),
		},
		c.downCmd(),
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations, negative n rolls back",
			Args:  cobra.ExactArgs(1),
			RunE: c.withMigrator(func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a version",
			Args:  cobra.ExactArgs(1),
			RunE: c.withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Mark a version as applied without running it, to clear a dirty state",
			Args:  cobra.ExactArgs(1),
			RunE: c.withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		},
		&cobra.Command{
			Use:     "status",
			Aliases: []string{"version"},
			Short:   "Show the applied version and pending migrations",
			Args:    cobra.NoArgs,
			RunE: c.withMigrator(func(m *migration.Migrator, _ []string) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				c.log.Info("Migration status",
					zap.Uint("version", st.Version),
					zap.Bool("dirty", st.Dirty),
					zap.Int("pending", len(st.Pending)),
				)
				for _, f := range st.Pending {
					fmt.Printf("  pending %06d %s\n", f.Version, f.Name)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "create <name> [description]",
			Short: "Create the next numbered migration pair",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				description := ""
				if len(args) > 1 {
					description = args[1]
				}
				f, err := migration.Create(c.migrationsPath, args[0], description, time.Now())
				if err != nil {
					return err
				}
				c.log.Info("Migration created",
					zap.Uint("version", f.Version),
					zap.String("up_file", f.UpPath),
					zap.String("down_file", f.DownPath),
				)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List migration files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				files, err := migration.ListMigrations(c.migrationsPath)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Printf("  %06d %s\n", f.Version, f.Name)
				}
				return nil
			},
		},
	)
	return root
}

func (c *cli) downCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (destroys all data)",
		Args:  cobra.NoArgs,
		RunE: c.withMigrator(func(m *migration.Migrator, _ []string) error {
			if !confirm {
				return errors.New("refusing to roll back everything without --confirm")
			}
			return m.Down()
		}),
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm the full rollback")
	return cmd
}

// withMigrator opens the configured database for commands that touch the schema
func (c *cli) withMigrator(fn func(*migration.Migrator, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		m, err := migration.New(db, c.migrationsPath, c.log)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				c.log.Warn("Failed to close migrator", zap.Error(err))
			}
		}()
		return fn(m, args)
	}
}

// resolveMigrationsPath falls back to ./migrations, then to the directory two levels above the binary
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}
