package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ACTIVO_PATH", "BAJAS_PATH", "MATRIZ_PATH", "CLIENT_NAME",
		"LLM_PROVIDER", "LLM_MODEL", "LLM_EXAMPLE_COUNT", "LLM_EXAMPLE_MAX_CHARS",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "DB_PATH", "REPORT_OUTPUT_DIR",
		"CORRECTIONS_PATH",
		"REPORT_SCHEDULE", "TIMEZONE", "SLACK_BOT_TOKEN", "REPORT_CHANNEL_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
activo_path: ./activo_acme.csv
bajas_path: ./bajas_acme.csv
matriz_path: ./matrizrotacion_acme_marzo.csv
anthropic_api_key: sk-test
`)
	t.Setenv("CONFIG_PATH", path)

	cfg := LoadConfig()
	if cfg.ActivoPath != "./activo_acme.csv" {
		t.Errorf("ActivoPath = %q", cfg.ActivoPath)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Errorf("default provider = %q", cfg.LLMProvider)
	}
	if cfg.LLMExampleCount != 20 || cfg.LLMExampleMaxLen != 140 {
		t.Errorf("example limits = %d/%d", cfg.LLMExampleCount, cfg.LLMExampleMaxLen)
	}
	if cfg.DBPath != "./rotabot.db" || cfg.ReportOutputDir != "./reports" {
		t.Errorf("storage defaults = %q / %q", cfg.DBPath, cfg.ReportOutputDir)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Errorf("timezone = %v", cfg.Location)
	}
	if !cfg.LLMEnabled() {
		t.Error("expected LLM enabled with anthropic key")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
activo_path: ./a.csv
bajas_path: ./b.csv
matriz_path: ./m.csv
llm_provider: anthropic
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("LLM_EXAMPLE_COUNT", "5")
	t.Setenv("CORRECTIONS_PATH", "./correcciones.yaml")

	cfg := LoadConfig()
	if cfg.LLMProvider != "openai" {
		t.Errorf("provider = %q, want env override", cfg.LLMProvider)
	}
	if cfg.LLMExampleCount != 5 {
		t.Errorf("example count = %d, want 5", cfg.LLMExampleCount)
	}
	if cfg.CorrectionsPath != "./correcciones.yaml" {
		t.Errorf("corrections path = %q, want env override", cfg.CorrectionsPath)
	}
	if !cfg.LLMEnabled() {
		t.Error("expected LLM enabled with openai key")
	}
}

func TestLLMEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"anthropic with key", Config{LLMProvider: "anthropic", AnthropicAPIKey: "k"}, true},
		{"anthropic without key", Config{LLMProvider: "anthropic"}, false},
		{"openai with key", Config{LLMProvider: "openai", OpenAIAPIKey: "k"}, true},
		{"openai with only anthropic key", Config{LLMProvider: "openai", AnthropicAPIKey: "k"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.cfg.LLMEnabled(); got != c.want {
				t.Fatalf("LLMEnabled() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestSlackEnabled(t *testing.T) {
	if (Config{SlackBotToken: "xoxb"}).SlackEnabled() {
		t.Error("token without channel should not enable Slack")
	}
	if !(Config{SlackBotToken: "xoxb", ReportChannelID: "C123"}).SlackEnabled() {
		t.Error("token plus channel should enable Slack")
	}
}
