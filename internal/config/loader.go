package config

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crucible-sec/crucible/internal/types"
)

// Load reads, interpolates, and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "failed to read config file", err)
	}

	// Defaults first, so omitted fields keep their documented values.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(interpolateEnvVars(string(data))), cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults loads a config file, or returns the defaults when the
// file does not exist.
func LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values,
// so secrets like API keys stay out of config files. Unset variables
// interpolate to the empty string.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}
