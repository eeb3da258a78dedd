package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Input spreadsheet exports (CSV). All three are required to run.
	ActivoPath string `yaml:"activo_path"`
	BajasPath  string `yaml:"bajas_path"`
	MatrizPath string `yaml:"matriz_path"`

	// Overrides the client name parsed from the input file names.
	ClientName string `yaml:"client_name"`

	LLMProvider      string `yaml:"llm_provider"`
	LLMModel         string `yaml:"llm_model"`
	LLMExampleCount  int    `yaml:"llm_example_count"`
	LLMExampleMaxLen int    `yaml:"llm_example_max_chars"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`
	OpenAIAPIKey     string `yaml:"openai_api_key"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`

	// Optional YAML file of human reclassifications (comment -> category),
	// merged into the corrections store before each run.
	CorrectionsPath string `yaml:"corrections_path"`

	// Optional 5-field cron expression; empty means a single run.
	ReportSchedule string `yaml:"report_schedule"`
	Timezone       string `yaml:"timezone"`

	// Optional Slack delivery of the report digest.
	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.ActivoPath, "ACTIVO_PATH")
	envOverride(&cfg.BajasPath, "BAJAS_PATH")
	envOverride(&cfg.MatrizPath, "MATRIZ_PATH")
	envOverride(&cfg.ClientName, "CLIENT_NAME")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMExampleCount, "LLM_EXAMPLE_COUNT")
	envOverrideInt(&cfg.LLMExampleMaxLen, "LLM_EXAMPLE_MAX_CHARS")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.CorrectionsPath, "CORRECTIONS_PATH")
	envOverride(&cfg.ReportSchedule, "REPORT_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.LLMExampleCount == 0 {
		cfg.LLMExampleCount = 20
	}
	if cfg.LLMExampleMaxLen == 0 {
		cfg.LLMExampleMaxLen = 140
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./rotabot.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	required := map[string]string{
		"activo_path": cfg.ActivoPath,
		"bajas_path":  cfg.BajasPath,
		"matriz_path": cfg.MatrizPath,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	switch cfg.LLMProvider {
	case "anthropic", "openai":
		// A missing API key is not fatal: the run degrades to the keyword
		// classifier and skips the narrative summary.
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}
	if !cfg.LLMEnabled() {
		log.Printf("No API key for llm_provider=%s: comment classification will use keywords, narrative summary disabled", cfg.LLMProvider)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg
}

// LLMEnabled reports whether the configured provider has a credential; this
// is the capability check deciding between the remote and keyword
// classifiers.
func (c Config) LLMEnabled() bool {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIAPIKey != ""
	default:
		return c.AnthropicAPIKey != ""
	}
}

// SlackEnabled reports whether the report digest gets posted anywhere.
func (c Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
