// Package cli implements classbellctl, the operator tool for the
// notification service.
package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// settings resolves flags first, then CLASSBELL_* environment variables.
func settings(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CLASSBELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "classbellctl",
		Short:         "Operate the classbell notification service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTopicsCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newEventsCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}
