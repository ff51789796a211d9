package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/idctl/pkg/auth"
)

func NewLoginCommand() *cobra.Command {
	var (
		realm           string
		clientID        string
		clientSecret    string
		clientSecretEnv string
		keyFile         string
		username        string
		password        string
		scopes          []string
		manual          bool
		timeout         time.Duration
		caFile          string
		insecure        bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the identity provider",
		Long: `Authenticate against the identity provider and cache the resulting tokens.

The grant is chosen from the supplied credentials: a username or password
selects the resource-owner-password grant, a client secret the
client-credentials grant, a key file the signed-JWT grant. Without any of
these an interactive browser login is started.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			if clientSecret == "" && clientSecretEnv != "" {
				clientSecret = os.Getenv(clientSecretEnv)
			}
			account, err := client.Login(cmd.Context(), auth.Options{
				Realm:           realm,
				ClientID:        clientID,
				ClientSecret:    clientSecret,
				Username:        username,
				Password:        password,
				SecretFile:      keyFile,
				Scopes:          scopes,
				Manual:          manual,
				LoginTimeout:    timeout,
				CAFile:          caFile,
				InsecureSkipTLS: insecure,
				OnAuthURL: func(url string) {
					_, _ = fmt.Fprintf(rt.Writer(), "Open the following URL to continue:\n\n  %s\n\n", url)
				},
			})
			if err != nil {
				return err
			}
			expires := "unknown"
			if !account.Entry.Tokens.ExpiresAt.IsZero() {
				expires = account.Entry.Tokens.ExpiresAt.UTC().Format(time.RFC3339)
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Logged in as %s. Token expires at %s\n", account.Entry.Name, expires)
			return nil
		},
	}

	cmd.Flags().StringVar(&realm, "realm", "", "Realm name")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Client secret (client-credentials grant)")
	cmd.Flags().StringVar(&clientSecretEnv, "client-secret-env", "", "Environment variable holding the client secret")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "PEM private key for the signed-JWT grant")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (resource-owner-password grant)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (resource-owner-password grant)")
	cmd.Flags().StringSliceVar(&scopes, "scopes", nil, "OAuth scopes to request")
	cmd.Flags().BoolVar(&manual, "manual", false, "Print the login URL instead of opening a browser")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Interactive login timeout")
	cmd.Flags().StringVar(&caFile, "ca-file", "", "CA bundle for the identity provider")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-tls-verify", false, "Skip TLS verification")

	return cmd
}
