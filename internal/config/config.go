package config

import (
	"fmt"
	"time"

	"github.com/crucible-sec/crucible/internal/types"
)

// Config is the root configuration for the Crucible scanner.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Target  TargetConfig  `yaml:"target"`
	Scan    ScanConfig    `yaml:"scan"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig selects the providers behind the attacker and judge capabilities.
type LLMConfig struct {
	Attacker ProviderConfig `yaml:"attacker"`
	Judge    ProviderConfig `yaml:"judge"`
}

// ProviderConfig configures one langchaingo-backed provider. APIKey supports
// ${VAR} interpolation so keys stay out of config files.
type ProviderConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`

	// ServerURL is the ollama server address; ignored by other providers.
	ServerURL string `yaml:"server_url,omitempty"`
}

// TargetConfig describes the system under test.
type TargetConfig struct {
	// Kind is "http" for a JSON endpoint or "model" for a raw chat model.
	Kind string `yaml:"kind"`

	// URL is the endpoint for http targets.
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`

	// Model configures the provider for model targets.
	Model ProviderConfig `yaml:"model,omitempty"`

	// SystemPrompt is prepended when probing a model target.
	SystemPrompt string `yaml:"system_prompt,omitempty"`
}

// ScanConfig carries the scan parameters.
type ScanConfig struct {
	AttacksPerVulnerability int                `yaml:"attacks_per_vulnerability"`
	Vulnerabilities         []string           `yaml:"vulnerabilities,omitempty"`
	Enhancements            map[string]float64 `yaml:"enhancements,omitempty"`
	Purpose                 string             `yaml:"purpose,omitempty"`
	SystemPrompt            string             `yaml:"system_prompt,omitempty"`
	AllowedEntities         []string           `yaml:"allowed_entities,omitempty"`
	MaxTurns                int                `yaml:"max_turns,omitempty"`
	MaxConcurrency          int                `yaml:"max_concurrency,omitempty"`
	RequestsPerSecond       float64            `yaml:"requests_per_second,omitempty"`
	Sync                    bool               `yaml:"sync,omitempty"`
	Seed                    int64              `yaml:"seed,omitempty"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Attacker: ProviderConfig{Provider: "openai", Model: "gpt-4o"},
			Judge:    ProviderConfig{Provider: "openai", Model: "gpt-4o"},
		},
		Target: TargetConfig{
			Kind:    "http",
			Timeout: 30 * time.Second,
		},
		Scan: ScanConfig{
			AttacksPerVulnerability: 1,
			MaxTurns:                4,
			MaxConcurrency:          8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for structural errors. Scan-level
// validation, such as distribution sums, happens in the scan package.
func (c *Config) Validate() error {
	if err := c.LLM.Attacker.validate("llm.attacker"); err != nil {
		return err
	}
	if err := c.LLM.Judge.validate("llm.judge"); err != nil {
		return err
	}

	switch c.Target.Kind {
	case "http":
		if c.Target.URL == "" {
			return types.NewError(types.CONFIG_VALIDATION_FAILED, "target.url is required for http targets")
		}
	case "model":
		if err := c.Target.Model.validate("target.model"); err != nil {
			return err
		}
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("target.kind must be http or model, got %q", c.Target.Kind))
	}

	if c.Scan.AttacksPerVulnerability <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"scan.attacks_per_vulnerability must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}

	return nil
}

func (p ProviderConfig) validate(field string) error {
	switch p.Provider {
	case "openai", "anthropic", "ollama":
	case "":
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("%s.provider is required", field))
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("%s.provider must be openai, anthropic, or ollama, got %q", field, p.Provider))
	}

	if p.Model == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("%s.model is required", field))
	}
	return nil
}
