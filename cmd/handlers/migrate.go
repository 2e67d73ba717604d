package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"startiq/internal/config"
	"startiq/internal/logger"
	"startiq/internal/render"
	"startiq/internal/store"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command for database migrations
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage Postgres store migrations",
		Long: `Manage the schema of the Postgres document store.

Subcommands:
  up       Apply all pending migrations
  status   Show migration status

The Postgres store applies pending migrations when it opens. These
commands run them ahead of a deploy or inspect what has been applied.
Other backends need no schema.

Examples:
  startiq migrate up
  startiq migrate status`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateStatusCmd())

	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(commandContext(cmd), cmd)
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(commandContext(cmd), cmd)
		},
	}
}

func runMigrateUp(ctx context.Context, cmd *cobra.Command) error {
	log := logger.Get()
	log.Info("Starting database migration")

	db, err := openPostgres(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.NewSchema(db).Apply(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅ All migrations applied successfully")
	return nil
}

func runMigrateStatus(ctx context.Context, cmd *cobra.Command) error {
	db, err := openPostgres(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := store.NewSchema(db).Versions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return render.JSON(out, status)
	}

	if len(status) == 0 {
		fmt.Fprintln(out, "No migrations found")
		return nil
	}

	fmt.Fprintf(out, "%-10s %-10s %s\n", "Version", "Status", "Description")

	pending := 0
	for _, m := range status {
		state := "applied"
		if !m.Applied {
			state = "pending"
			pending++
		}
		fmt.Fprintf(out, "%-10d %-10s %s\n", m.Version, state, m.Description)
	}

	fmt.Fprintf(out, "\nApplied: %d | Pending: %d | Total: %d\n", len(status)-pending, pending, len(status))
	if pending > 0 {
		fmt.Fprintln(out, "Run 'startiq migrate up' to apply pending migrations")
	}
	return nil
}

func openPostgres(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Backend != config.BackendPostgres {
		return nil, fmt.Errorf("migrations only apply to the postgres backend (configured: %s)", cfg.Store.Backend)
	}
	return store.OpenPostgres(ctx, cfg.Store.Postgres)
}
