package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/seafresh/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
)

const defaultMigrationsDir = "migrations"

func newMigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
		Long: `Apply or inspect schema migrations.

Migrations are embedded in the binary; --dir reads them from disk instead.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Read migrations from this directory instead of the embedded set")

	withMigrator := func(run func(cmd *cobra.Command, m *migration.Migrator, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			db, err := e.openSQL(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			m, err := migration.New(db, dir, e.log)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			return run(cmd, m, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				if err := m.Up(); err != nil {
					return err
				}
				success(cmd, "schema is up to date")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				if err := m.Down(); err != nil {
					return err
				}
				warning(cmd, "all migrations rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "steps N",
			Short: "Apply N migrations; a negative N rolls back",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				if err := m.Steps(n); err != nil {
					return err
				}
				success(cmd, "applied %d step(s)", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if v == 0 {
					info(cmd, "no migrations applied")
					return nil
				}
				if dirty {
					warning(cmd, "version %d (dirty, fix the schema then run migrate force %d)", v, v)
					return nil
				}
				info(cmd, "version %d", v)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force V",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				if err := m.Force(v); err != nil {
					return err
				}
				warning(cmd, "schema version forced to %d", v)
				return nil
			}),
		},
		newMigrateCreateCmd(&dir),
		newMigrateListCmd(&dir),
	)
	return cmd
}

func migrationsDir(dir string) (string, error) {
	if dir == "" {
		dir = defaultMigrationsDir
	}
	return filepath.Abs(dir)
}

func newMigrateCreateCmd(dir *string) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty up/down migration pair on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := migrationsDir(*dir)
			if err != nil {
				return err
			}
			mf, err := migration.CreateMigration(path, args[0], description)
			if err != nil {
				return err
			}
			success(cmd, "created %s", mf.UpPath)
			success(cmd, "created %s", mf.DownPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Comment written at the top of both files")
	return cmd
}

func newMigrateListCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the migrations on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := migrationsDir(*dir)
			if err != nil {
				return err
			}
			listed, err := migration.ListMigrations(path)
			if err != nil {
				return err
			}
			if len(listed) == 0 {
				info(cmd, "no migrations in %s", path)
				return nil
			}
			for _, l := range listed {
				line := fmt.Sprintf("%06d  %s", l.Version, l.Name)
				if !l.HasDown {
					warning(cmd, "%s (no down file)", line)
					continue
				}
				info(cmd, "%s", line)
			}
			return nil
		},
	}
}
