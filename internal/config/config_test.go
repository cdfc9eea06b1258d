package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucible-sec/crucible/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crucible.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
llm:
  attacker:
    provider: anthropic
    model: claude-sonnet-4-20250514
  judge:
    provider: openai
    model: gpt-4o
target:
  kind: http
  url: https://chat.example.com/api/respond
  headers:
    Authorization: Bearer abc
  timeout: 45s
scan:
  attacks_per_vulnerability: 3
  vulnerabilities: [bias, sql_injection]
  enhancements:
    rot13: 0.5
    base64: 0.5
  purpose: an insurance claims assistant
  max_turns: 6
  sync: true
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Attacker.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Judge.Model)
	assert.Equal(t, "https://chat.example.com/api/respond", cfg.Target.URL)
	assert.Equal(t, "Bearer abc", cfg.Target.Headers["Authorization"])
	assert.Equal(t, 45*time.Second, cfg.Target.Timeout)
	assert.Equal(t, 3, cfg.Scan.AttacksPerVulnerability)
	assert.Equal(t, []string{"bias", "sql_injection"}, cfg.Scan.Vulnerabilities)
	assert.Equal(t, 0.5, cfg.Scan.Enhancements["rot13"])
	assert.Equal(t, 6, cfg.Scan.MaxTurns)
	assert.True(t, cfg.Scan.Sync)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, `
target:
  url: https://chat.example.com/api/respond
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Attacker.Provider)
	assert.Equal(t, "http", cfg.Target.Kind)
	assert.Equal(t, 30*time.Second, cfg.Target.Timeout)
	assert.Equal(t, 1, cfg.Scan.AttacksPerVulnerability)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadInterpolatesEnvVars(t *testing.T) {
	t.Setenv("CRUCIBLE_TEST_KEY", "sk-secret")

	path := writeConfig(t, `
llm:
  attacker:
    provider: openai
    model: gpt-4o
    api_key: ${CRUCIBLE_TEST_KEY}
target:
  url: https://chat.example.com/api/respond
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.LLM.Attacker.APIKey)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "http target without url",
			content: `
target:
  kind: http
`,
		},
		{
			name: "unknown target kind",
			content: `
target:
  kind: grpc
  url: https://example.com
`,
		},
		{
			name: "unknown provider",
			content: `
llm:
  attacker:
    provider: acme
    model: m1
target:
  url: https://example.com
`,
		},
		{
			name: "zero attacks per vulnerability",
			content: `
target:
  url: https://example.com
scan:
  attacks_per_vulnerability: -1
`,
		},
		{
			name: "bad log level",
			content: `
target:
  url: https://example.com
logging:
  level: verbose
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
		})
	}
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "target: [unclosed"))
	require.Error(t, err)
	assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
}
