package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raychrisgdp/taskgenie/internal/config"
	"github.com/raychrisgdp/taskgenie/internal/database"
)

// newDBCommand creates the db command group for schema maintenance.
func newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance commands",
	}

	cmd.AddCommand(newDBUpgradeCommand())
	cmd.AddCommand(newDBDowngradeCommand())
	cmd.AddCommand(newDBRevisionCommand())
	cmd.AddCommand(newDBDumpCommand())
	cmd.AddCommand(newDBRestoreCommand())
	cmd.AddCommand(newDBResetCommand())

	return cmd
}

// openStore loads configuration and opens the database for a maintenance
// command. The caller owns the returned store.
func openStore() (*config.Config, *database.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}
	store, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, store, nil
}

func newDBUpgradeCommand() *cobra.Command {
	var rev string

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			migrator := database.NewMigrator(store)
			if err := migrator.Upgrade(rev); err != nil {
				return fmt.Errorf("upgrade failed: %w", err)
			}
			current, err := migrator.CurrentVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Database upgraded to %s\n", current)
			return nil
		},
	}

	cmd.Flags().StringVar(&rev, "rev", "head", "target revision")

	return cmd
}

func newDBDowngradeCommand() *cobra.Command {
	var rev string

	cmd := &cobra.Command{
		Use:   "downgrade",
		Short: "Revert schema migrations",
		Long: `Revert schema migrations.

By default one step is reverted. Use --rev to name a target version,
or --rev base to revert everything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			migrator := database.NewMigrator(store)
			if err := migrator.Downgrade(rev); err != nil {
				return fmt.Errorf("downgrade failed: %w", err)
			}
			current, err := migrator.CurrentVersion()
			if err != nil {
				return err
			}
			if current == "" {
				current = "base"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Database downgraded to %s\n", current)
			return nil
		},
	}

	cmd.Flags().StringVar(&rev, "rev", "-1", "target revision")

	return cmd
}

func newDBRevisionCommand() *cobra.Command {
	var message string
	var dir string
	var autogenerate bool

	cmd := &cobra.Command{
		Use:   "revision",
		Short: "Create a new migration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if autogenerate {
				fmt.Fprintln(cmd.OutOrStdout(), "Note: schema diffing is not supported, writing an empty migration.")
			}
			path, err := writeMigrationStub(dir, message)
			if err != nil {
				return fmt.Errorf("revision failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created migration %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "  Register it in Registered() to activate it.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "migration description")
	cmd.Flags().StringVar(&dir, "dir", "internal/database", "directory for the migration file")
	cmd.Flags().BoolVar(&autogenerate, "autogenerate", false, "accepted for compatibility, has no effect")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

var slugNonWord = regexp.MustCompile(`[^a-z0-9]+`)

// writeMigrationStub writes a skeleton migration source file named after
// the next version in the registry.
func writeMigrationStub(dir, message string) (string, error) {
	slug := strings.Trim(slugNonWord.ReplaceAllString(strings.ToLower(message), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("message %q yields an empty name", message)
	}

	next := len(database.Registered()) + 1
	version := fmt.Sprintf("%03d_%s", next, slug)
	path := filepath.Join(dir, version+".go")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration file %s already exists", path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "package database\n\n")
	fmt.Fprintf(&b, "import \"gorm.io/gorm\"\n\n")
	fmt.Fprintf(&b, "// %s\n", message)
	fmt.Fprintf(&b, "var migration%03d = Migration{\n", next)
	fmt.Fprintf(&b, "\tVersion: %q,\n", version)
	fmt.Fprintf(&b, "\tName:    %q,\n", message)
	fmt.Fprintf(&b, "\tApply: func(tx *gorm.DB) error {\n")
	fmt.Fprintf(&b, "\t\treturn nil\n")
	fmt.Fprintf(&b, "\t},\n")
	fmt.Fprintf(&b, "\tRevert: func(tx *gorm.DB) error {\n")
	fmt.Fprintf(&b, "\t\treturn nil\n")
	fmt.Fprintf(&b, "\t},\n")
	fmt.Fprintf(&b, "}\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// sqliteFilePath returns the database file path, or an error when the
// configured database is not a file-backed sqlite database.
func sqliteFilePath(cfg *config.Config, op string) (string, error) {
	path := cfg.DatabasePath()
	if path == "" {
		return "", fmt.Errorf("%s requires a file-backed sqlite database (got %s)", op, cfg.DatabaseURLResolved())
	}
	return path, nil
}

func newDBDumpCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the database as a SQL script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path, err := sqliteFilePath(cfg, "dump")
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("database file not found: %s", path)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			if err := database.DumpSQLite(path, f); err != nil {
				return fmt.Errorf("dump failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Database dumped to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newDBRestoreCommand() *cobra.Command {
	var in string
	var force bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Rebuild the database from a SQL script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path, err := sqliteFilePath(cfg, "restore")
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}

			script, err := os.ReadFile(in)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", in, err)
			}

			if _, err := os.Stat(path); err == nil && !force {
				ok, err := confirm(cmd, fmt.Sprintf("This will overwrite %s. Continue?", path))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			if err := database.RestoreSQLite(path, string(script)); err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Database restored from %s\n", in)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input SQL script")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite without confirmation")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func newDBResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the database file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path, err := sqliteFilePath(cfg, "reset")
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Database file does not exist, nothing to do.")
				return nil
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("This will delete %s. Continue?", path))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			if err := os.Remove(path); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Database deleted (%s)\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "  Run 'taskgenie db upgrade' or start the server to recreate it.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without confirmation")

	return cmd
}

// confirm asks a yes/no question on the command's input stream.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
