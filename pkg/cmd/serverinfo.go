package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telekom/idctl/pkg/auth"
	"github.com/telekom/idctl/pkg/output"
)

func NewServerInfoCommand() *cobra.Command {
	var (
		realm     string
		wellKnown string
	)

	cmd := &cobra.Command{
		Use:   "server-info",
		Short: "Show the provider's OpenID configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			doc, err := client.ServerInfo(cmd.Context(), auth.Options{
				Realm:     realm,
				WellKnown: wellKnown,
			})
			if err != nil {
				return err
			}
			switch rt.OutputFormat() {
			case output.FormatTable, output.FormatWide:
				output.WriteServerInfoTable(rt.Writer(), doc)
				return nil
			default:
				return output.WriteObject(rt.Writer(), rt.OutputFormat(), doc)
			}
		},
	}

	cmd.Flags().StringVar(&realm, "realm", "", "Realm name")
	cmd.Flags().StringVar(&wellKnown, "well-known", "", "Explicit discovery document URL")

	return cmd
}
