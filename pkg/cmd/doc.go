// Package cmd implements the cobra command tree for the idctl CLI, including
// subcommands for login, account management, revocation, provider discovery,
// configuration, and shell completion.
package cmd
