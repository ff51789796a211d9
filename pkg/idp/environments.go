package idp

import (
	"sort"
	"strings"

	"github.com/telekom/idctl/pkg/apperrors"
)

const (
	EnvDev     = "dev"
	EnvPreprod = "preprod"
	EnvProd    = "prod"
)

// DefaultEnvironments maps the well-known environment names to their
// identity-provider base URLs. Config may override or extend this set.
var DefaultEnvironments = map[string]string{
	EnvDev:     "https://identity.dev.caas.telekom.de",
	EnvPreprod: "https://identity.preprod.caas.telekom.de",
	EnvProd:    "https://identity.caas.telekom.de",
}

// Environments resolves environment names to base URLs.
type Environments map[string]string

// ResolveBaseURL returns the base URL for env, preferring an explicit
// override when given. An unknown environment name is rejected.
func (e Environments) ResolveBaseURL(env, override string) (string, error) {
	if override != "" {
		return strings.TrimRight(override, "/"), nil
	}
	envs := e
	if envs == nil {
		envs = DefaultEnvironments
	}
	base, ok := envs[env]
	if !ok {
		return "", apperrors.New(apperrors.InvalidValue, "unknown environment %q (known: %s)", env, strings.Join(envNames(envs), ", "))
	}
	return strings.TrimRight(base, "/"), nil
}

func envNames(envs map[string]string) []string {
	names := make([]string, 0, len(envs))
	for name := range envs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
