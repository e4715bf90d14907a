package cli

import (
	"errors"
	"fmt"

	"github.com/NordCoder/Classbell/internal/domain/user"
	pg "github.com/NordCoder/Classbell/internal/repository/postgres"
	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Seed user rows for local environments",
	}

	add := &cobra.Command{
		Use:   "add <username> <email>",
		Short: "Insert a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := settings(cmd)
			dsn := v.GetString("db.dsn")
			if dsn == "" {
				return errors.New("db.dsn is required")
			}
			db, err := pg.NewDB(cmd.Context(), pg.Config{DSN: dsn})
			if err != nil {
				return err
			}
			defer db.Close()

			u := &user.User{Username: args[0], Email: args[1], IsActive: !v.GetBool("inactive")}
			if err := pg.NewUserRepo(db).Create(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d created\n", u.ID)
			return nil
		},
	}
	add.Flags().String("db.dsn", "", "postgres DSN (env CLASSBELL_DB_DSN)")
	add.Flags().Bool("inactive", false, "create the account disabled")

	cmd.AddCommand(add)
	return cmd
}
