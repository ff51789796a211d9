package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/telekom/idctl/pkg/config"
	"github.com/telekom/idctl/pkg/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage idctl configuration",
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
		newConfigSetValueCommand(),
		newConfigUseEnvCommand(),
		newConfigGetEnvironmentsCommand(),
		newConfigAddEnvironmentCommand(),
		newConfigDeleteEnvironmentCommand(),
	)

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		env         string
		realm       string
		clientID    string
		storageKind string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an idctl config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists: %s", path)
				}
			}
			cfg := config.DefaultConfig()
			if env != "" {
				cfg.CurrentEnvironment = env
			}
			cfg.Defaults.Realm = realm
			cfg.Defaults.ClientID = clientID
			if storageKind != "" {
				cfg.Storage.Kind = storageKind
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Initialized config at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&env, "env", "", "Default environment name")
	cmd.Flags().StringVar(&realm, "realm", "", "Default realm")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Default client ID")
	cmd.Flags().StringVar(&storageKind, "storage-kind", "", "Credential store backend: auto, keyring, file, memory")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")

	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			return output.WriteObject(rt.Writer(), output.FormatYAML, rt.cfg)
		},
	}
}

func newConfigSetValueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			key, value := args[0], args[1]
			switch key {
			case "current-environment":
				rt.cfg.CurrentEnvironment = value
			case "defaults.realm":
				rt.cfg.Defaults.Realm = value
			case "defaults.client-id":
				rt.cfg.Defaults.ClientID = value
			case "defaults.ca-file":
				rt.cfg.Defaults.CAFile = value
			case "storage.kind":
				rt.cfg.Storage.Kind = value
			case "storage.dir":
				rt.cfg.Storage.Dir = value
			case "storage.passphrase-env":
				rt.cfg.Storage.PassphraseEnv = value
			case "storage.service":
				rt.cfg.Storage.Service = value
			case "settings.output-format":
				rt.cfg.Settings.OutputFormat = value
			case "settings.color":
				rt.cfg.Settings.Color = value
			default:
				return fmt.Errorf("unsupported key: %s", key)
			}
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			return config.Save(rt.configPathValue(), rt.cfg)
		},
	}
}

func newConfigUseEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use-env NAME",
		Short: "Set the default environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok := rt.cfg.MergedEnvironments()[name]; !ok {
				return fmt.Errorf("unknown environment: %s", name)
			}
			rt.cfg.CurrentEnvironment = name
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), name)
			return nil
		},
	}
}

func newConfigGetEnvironmentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-environments",
		Short: "List known environments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			merged := rt.cfg.MergedEnvironments()
			names := make([]string, 0, len(merged))
			for name := range merged {
				names = append(names, name)
			}
			sort.Strings(names)
			current := rt.cfg.CurrentEnvironmentOrDefault()
			for _, name := range names {
				marker := " "
				if name == current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(rt.Writer(), "%s %s\t%s\n", marker, name, merged[name])
			}
			return nil
		},
	}
}

func newConfigAddEnvironmentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-environment NAME URL",
		Short: "Add or repoint an environment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if rt.cfg.Environments == nil {
				rt.cfg.Environments = map[string]string{}
			}
			rt.cfg.Environments[args[0]] = args[1]
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Added environment %s\n", args[0])
			return nil
		},
	}
}

func newConfigDeleteEnvironmentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-environment NAME",
		Short: "Delete a configured environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok := rt.cfg.Environments[name]; !ok {
				return fmt.Errorf("environment not found in config: %s", name)
			}
			delete(rt.cfg.Environments, name)
			if rt.cfg.CurrentEnvironment == name {
				rt.cfg.CurrentEnvironment = ""
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Deleted environment %s\n", name)
			return nil
		},
	}
}
