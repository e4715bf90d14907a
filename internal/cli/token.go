package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/Classbell/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with access tokens",
	}

	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := settings(cmd)
			secret := v.GetString("auth.jwt_secret")
			if secret == "" {
				return errors.New("auth.jwt_secret is required")
			}
			uid := v.GetInt64("user")
			if uid <= 0 {
				return errors.New("--user must be a positive id")
			}
			tok, err := auth.Sign([]byte(secret), uid, time.Now().UTC(), v.GetDuration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	issue.Flags().String("auth.jwt_secret", "", "signing secret (env CLASSBELL_AUTH_JWT_SECRET)")
	issue.Flags().Int64("user", 0, "user id")
	issue.Flags().Duration("ttl", time.Hour, "token lifetime")

	cmd.AddCommand(issue)
	return cmd
}
