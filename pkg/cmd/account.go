package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telekom/idctl/pkg/auth"
	"github.com/telekom/idctl/pkg/output"
	"github.com/telekom/idctl/pkg/store"
)

func NewAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage cached accounts",
	}
	cmd.AddCommand(
		newAccountListCommand(),
		newAccountGetCommand(),
	)
	return cmd
}

func newAccountListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cached accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			client, err := rt.newClient()
			if err != nil {
				return err
			}
			entries, err := client.List()
			if err != nil {
				return err
			}
			switch rt.OutputFormat() {
			case output.FormatTable:
				output.WriteAccountTable(rt.Writer(), entries)
				return nil
			case output.FormatWide:
				output.WriteAccountTableWide(rt.Writer(), entries)
				return nil
			default:
				return output.WriteObject(rt.Writer(), rt.OutputFormat(), redactEntries(entries))
			}
		},
	}
}

func newAccountGetCommand() *cobra.Command {
	var (
		realm           string
		clientID        string
		clientSecret    string
		clientSecretEnv string
		keyFile         string
		username        string
		tokenOnly       bool
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up the cached account for a set of credentials",
		Long: `Look up the cached account a matching login would have produced.

A token close to expiry is refreshed transparently when the provider issued
a refresh token. With --token only the access token is printed, for use in
scripts and credential helpers.`,
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
			entry, err := client.GetAccount(cmd.Context(), auth.Options{
				Realm:        realm,
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Username:     username,
				SecretFile:   keyFile,
			})
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("no cached account; run 'idctl login' first")
			}
			if tokenOnly {
				_, _ = fmt.Fprintln(rt.Writer(), entry.Tokens.AccessToken)
				return nil
			}
			switch rt.OutputFormat() {
			case output.FormatTable:
				output.WriteAccountTable(rt.Writer(), []store.Entry{*entry})
				return nil
			case output.FormatWide:
				output.WriteAccountTableWide(rt.Writer(), []store.Entry{*entry})
				return nil
			default:
				return output.WriteObject(rt.Writer(), rt.OutputFormat(), redactEntries([]store.Entry{*entry})[0])
			}
		},
	}

	cmd.Flags().StringVar(&realm, "realm", "", "Realm name")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Client secret (client-credentials grant)")
	cmd.Flags().StringVar(&clientSecretEnv, "client-secret-env", "", "Environment variable holding the client secret")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "PEM private key for the signed-JWT grant")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (resource-owner-password grant)")
	cmd.Flags().BoolVar(&tokenOnly, "token", false, "Print only the access token")

	return cmd
}

// redactedEntry is the structured-output shape of a cached account. Raw
// token material is left out.
type redactedEntry struct {
	Hash        string          `json:"hash" yaml:"hash"`
	Name        string          `json:"name" yaml:"name"`
	BaseURL     string          `json:"baseURL" yaml:"baseURL"`
	Realm       string          `json:"realm" yaml:"realm"`
	ExpiresAt   string          `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Refreshable bool            `json:"refreshable" yaml:"refreshable"`
	AuthInfo    *store.AuthInfo `json:"authInfo,omitempty" yaml:"authInfo,omitempty"`
}

func redactEntries(entries []store.Entry) []redactedEntry {
	out := make([]redactedEntry, 0, len(entries))
	for _, e := range entries {
		r := redactedEntry{
			Hash:        e.Hash,
			Name:        e.Name,
			BaseURL:     e.BaseURL,
			Realm:       e.Realm,
			Refreshable: e.Tokens.RefreshToken != "",
			AuthInfo:    e.AuthInfo,
		}
		if !e.Tokens.ExpiresAt.IsZero() {
			r.ExpiresAt = e.Tokens.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, r)
	}
	return out
}
