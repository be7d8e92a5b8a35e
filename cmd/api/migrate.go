package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/tie-inventory/internal/config"
	"github.com/pkordes/tie-inventory/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the embedded database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(cmd, func(p *goose.Provider) error {
					results, err := p.Up(cmd.Context())
					for _, r := range results {
						fmt.Fprintf(cmd.OutOrStdout(), "applied %s (%s)\n", r.Source.Path, r.Duration)
					}
					if len(results) == 0 && err == nil {
						fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
					}
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(cmd, func(p *goose.Provider) error {
					r, err := p.Down(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "rolled back %s\n", r.Source.Path)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations are applied",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withProvider(cmd, func(p *goose.Provider) error {
					statuses, err := p.Status(cmd.Context())
					if err != nil {
						return err
					}
					for _, s := range statuses {
						applied := "-"
						if !s.AppliedAt.IsZero() {
							applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-20s %s\n", s.State, applied, s.Source.Path)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

// withProvider opens the database named by DATABASE_URL and runs fn with a
// goose provider over the embedded migrations.
func withProvider(cmd *cobra.Command, fn func(*goose.Provider) error) error {
	dsn, err := config.DatabaseURL()
	if err != nil {
		return err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	if err := fn(provider); err != nil {
		return fmt.Errorf("migrate %s: %w", cmd.Name(), err)
	}
	return nil
}
