package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telekom/idctl/pkg/auth"
)

func NewLogoutCommand() *cobra.Command {
	var (
		all     bool
		baseURL string
	)

	cmd := &cobra.Command{
		Use:   "logout [ACCOUNT...]",
		Short: "Revoke cached accounts",
		Long: `Remove cached accounts by name or glob pattern (for example 'svc-*'), or
all of them with --all, optionally restricted to one provider with --provider. A best-effort logout request is
sent to the provider for every removed account; a failed remote logout does
not keep the account cached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if !all && len(args) == 0 {
				return errors.New("name at least one account or pass --all")
			}
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			removed, err := client.Revoke(cmd.Context(), auth.RevokeOptions{
				Accounts: args,
				All:      all,
				BaseURL:  baseURL,
			})
			if err != nil {
				return err
			}
			for _, entry := range removed {
				_, _ = fmt.Fprintf(rt.Writer(), "Revoked %s\n", entry.Name)
			}
			if len(removed) == 0 {
				_, _ = fmt.Fprintln(rt.Writer(), "Nothing to revoke")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Revoke every cached account")
	cmd.Flags().StringVar(&baseURL, "provider", "", "Restrict to accounts of this provider base URL")

	return cmd
}
