// Package config loads application configuration from an optional YAML file
// and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Validator ValidatorConfig `mapstructure:"validator"`
	Export    ExportConfig    `mapstructure:"export"`
	Draft     DraftConfig     `mapstructure:"draft"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ValidatorConfig holds external validation tool configuration.
type ValidatorConfig struct {
	JavaPath     string        `mapstructure:"java_path"`
	JarPath      string        `mapstructure:"jar_path"`
	ScenarioPath string        `mapstructure:"scenario_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ExportConfig holds ledger export configuration.
type ExportConfig struct {
	// Chart is "SKR03" or "SKR04".
	Chart            string `mapstructure:"chart"`
	ConsultantNumber int    `mapstructure:"consultant_number"`
	ClientNumber     int    `mapstructure:"client_number"`
	// FiscalYearStart in YYYY-MM-DD.
	FiscalYearStart string `mapstructure:"fiscal_year_start"`
	DebtorAccount   string `mapstructure:"debtor_account"`
}

// DraftConfig holds the LLM draft-extraction configuration.
type DraftConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (optional) and the
// environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("validator.java_path", "java")
	v.SetDefault("validator.timeout", 30*time.Second)

	v.SetDefault("export.chart", "SKR03")
	v.SetDefault("export.debtor_account", "10000")

	v.SetDefault("draft.model", "gpt-4o-mini")
	v.SetDefault("draft.timeout", 120*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("draft.api_key", "OPENAI_API_KEY")
	v.BindEnv("draft.base_url", "OPENAI_BASE_URL")
	v.BindEnv("validator.jar_path", "KOSIT_VALIDATOR_JAR")
	v.BindEnv("validator.scenario_path", "KOSIT_SCENARIO")
}

// Validate checks cross-field constraints. Credentials stay optional, the
// affected features degrade at call time instead.
func (c *Config) Validate() error {
	switch c.Export.Chart {
	case "SKR03", "SKR04":
	default:
		return fmt.Errorf("export.chart must be SKR03 or SKR04, got %q", c.Export.Chart)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Validator.Timeout <= 0 {
		return fmt.Errorf("validator.timeout must be positive")
	}
	return nil
}
