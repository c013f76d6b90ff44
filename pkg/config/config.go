package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultScannerBaseURL    = "https://service.api.aisecurity.paloaltonetworks.com"
	defaultScannerTimeout    = 30 * time.Second
	defaultCompletionModel   = "gpt-4o"
	defaultCompletionTimeout = 120 * time.Second
	defaultSystemPrompt      = "You are a helpful, knowledgeable, and professional assistant."
)

type Config struct {
	Scanner    ScannerConfig    `mapstructure:"scanner"`
	Completion CompletionConfig `mapstructure:"completion"`
}

// ScannerConfig configures the threat-classification service client.
type ScannerConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	ProfileName string        `mapstructure:"profile_name"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CompletionConfig configures the text-generation provider.
type CompletionConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Load reads config.yaml (optional) and the environment into a Config.
// Credentials are expected to come from the environment; the yaml file
// only exists to override defaults like timeouts or the base URL.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Deployment keeps the credential variable names of the security and
	// completion vendors, so bind them explicitly.
	bindings := map[string]string{
		"scanner.api_key":      "PANW_AI_SEC_API_KEY",
		"scanner.profile_name": "PANW_AI_SEC_PROFILE_NAME",
		"scanner.base_url":     "PANW_AI_SEC_BASE_URL",
		"completion.api_key":   "OPENAI_API_KEY",
		"completion.model":     "OPENAI_MODEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetDefault("scanner.base_url", defaultScannerBaseURL)
	v.SetDefault("scanner.timeout", defaultScannerTimeout)
	v.SetDefault("completion.model", defaultCompletionModel)
	v.SetDefault("completion.system_prompt", defaultSystemPrompt)
	v.SetDefault("completion.timeout", defaultCompletionTimeout)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fails fast when any required value is missing; the pipeline must
// not start in a partially configured state.
func (c *Config) Validate() error {
	var missing []string

	if c.Scanner.APIKey == "" {
		missing = append(missing, "PANW_AI_SEC_API_KEY")
	}
	if c.Scanner.ProfileName == "" {
		missing = append(missing, "PANW_AI_SEC_PROFILE_NAME")
	}
	if c.Completion.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("scanner timeout must be positive")
	}
	if c.Completion.Timeout <= 0 {
		return fmt.Errorf("completion timeout must be positive")
	}

	return nil
}
