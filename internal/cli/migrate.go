package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/NordCoder/Classbell/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
	}
	cmd.PersistentFlags().String("db.dsn", "", "postgres DSN (env CLASSBELL_DB_DSN)")

	for _, sub := range []struct {
		use, short string
		run        func(dsn string) error
	}{
		{"up", "Apply all pending migrations", func(dsn string) error { return withGoose(dsn, goose.Up) }},
		{"down", "Roll back the latest migration", func(dsn string) error { return withGoose(dsn, goose.Down) }},
		{"status", "Print migration status", func(dsn string) error { return withGoose(dsn, goose.Status) }},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn := settings(cmd).GetString("db.dsn")
				if dsn == "" {
					return errors.New("db.dsn is required")
				}
				if err := sub.run(dsn); err != nil {
					return fmt.Errorf("migrate %s: %w", sub.use, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrations: %s OK\n", sub.use)
				return nil
			},
		})
	}
	return cmd
}

func withGoose(dsn string, op func(db *sql.DB, dir string, opts ...goose.OptionsFunc) error) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	return op(db, ".")
}
