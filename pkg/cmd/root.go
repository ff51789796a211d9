package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telekom/idctl/pkg/auth"
	"github.com/telekom/idctl/pkg/config"
	"github.com/telekom/idctl/pkg/output"
	"github.com/telekom/idctl/pkg/store"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
}

type runtimeState struct {
	configPath    string
	cfg           *config.Config
	envOverride   string
	baseURL       string
	outputFormat  string
	storeOverride string
	verbose       bool
	writer        io.Writer
	log           *zap.SugaredLogger
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter}

	root := &cobra.Command{
		Use:   "idctl",
		Short: "Identity provider CLI",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.envOverride == "" {
				rt.envOverride = os.Getenv("IDCTL_ENV")
			}
			if rt.baseURL == "" {
				rt.baseURL = os.Getenv("IDCTL_BASE_URL")
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("IDCTL_OUTPUT")
			}
			if rt.storeOverride == "" {
				rt.storeOverride = os.Getenv("IDCTL_STORE")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("IDCTL_VERBOSE"), "true")
			}
			if err := rt.setupLogger(); err != nil {
				return err
			}

			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}

			loaded, err := config.LoadOrDefault(rt.configPath)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			rt.cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.envOverride, "env", "e", "", "Environment name override (dev, preprod, prod)")
	root.PersistentFlags().StringVar(&rt.baseURL, "base-url", "", "Identity provider base URL, overrides --env")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, wide, json, yaml")
	root.PersistentFlags().StringVar(&rt.storeOverride, "store", "", "Credential store backend: auto, keyring, file, memory, none")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable verbose logging")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewLoginCommand(),
		NewAccountCommand(),
		NewLogoutCommand(),
		NewServerInfoCommand(),
		NewConfigCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) setupLogger() error {
	if rt.log != nil {
		return nil
	}
	if !rt.verbose {
		rt.log = zap.NewNop().Sugar()
		return nil
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{"stderr"}
	logger, err := logCfg.Build()
	if err != nil {
		return err
	}
	rt.log = logger.Sugar()
	return nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) OutputFormat() output.Format {
	if rt.outputFormat != "" {
		return output.Format(rt.outputFormat)
	}
	if rt.cfg != nil && rt.cfg.Settings.OutputFormat != "" {
		return output.Format(rt.cfg.Settings.OutputFormat)
	}
	return output.FormatTable
}

func (rt *runtimeState) Environment() string {
	if rt.envOverride != "" {
		return rt.envOverride
	}
	if rt.cfg != nil {
		return rt.cfg.CurrentEnvironmentOrDefault()
	}
	return ""
}

func (rt *runtimeState) storeKind() string {
	if rt.storeOverride != "" {
		return rt.storeOverride
	}
	if rt.cfg != nil && rt.cfg.Storage.Kind != "" {
		return rt.cfg.Storage.Kind
	}
	return store.KindAuto
}

// newClient assembles the auth facade from the loaded config and the
// runtime overrides.
func (rt *runtimeState) newClient() (*auth.Client, error) {
	if rt.cfg == nil {
		return nil, errors.New("config not loaded")
	}
	storeDir := rt.cfg.Storage.Dir
	if storeDir == "" {
		storeDir = config.DefaultStoreDir()
	}
	defaults := auth.Options{
		Env:             rt.Environment(),
		BaseURL:         rt.baseURL,
		Realm:           rt.cfg.Defaults.Realm,
		ClientID:        rt.cfg.Defaults.ClientID,
		Scopes:          rt.cfg.Defaults.Scopes,
		CAFile:          rt.cfg.Defaults.CAFile,
		InsecureSkipTLS: rt.cfg.Defaults.InsecureSkipTLS,
	}
	return auth.New(defaults, auth.StoreOptions{
		Kind:       rt.storeKind(),
		Dir:        storeDir,
		Passphrase: rt.cfg.Passphrase(),
		Service:    rt.cfg.Storage.Service,
	}, rt.cfg.MergedEnvironments(), rt.log)
}

func (rt *runtimeState) configPathValue() string {
	if rt.configPath == "" {
		return config.DefaultConfigPath()
	}
	return rt.configPath
}
