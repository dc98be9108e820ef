// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// CustomTimeoutEnv overrides the default wait timeout for every helper.
// The value is interpreted as whole seconds.
const CustomTimeoutEnv = "HANDRAIL_CUSTOM_TIMEOUT"

// Config holds the entire library configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Interaction InteractionConfig `mapstructure:"interaction" yaml:"interaction"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the browser session the helpers drive.
type BrowserConfig struct {
	Headless        bool     `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors bool     `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string `mapstructure:"args" yaml:"args"`
	// DevToolsURL points at an already running browser. When set, the
	// session attaches instead of launching its own process.
	DevToolsURL string `mapstructure:"devtools_url" yaml:"devtools_url"`
	// CommandsPerSecond throttles DevTools traffic. Zero disables pacing.
	CommandsPerSecond float64 `mapstructure:"commands_per_second" yaml:"commands_per_second"`
}

// InteractionConfig tunes the wait and retry behavior of the helper layer.
type InteractionConfig struct {
	// DefaultTimeout bounds every resolve-and-wait sequence.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	// PollInterval is the predicate polling cadence inside a wait.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// RetryAttempts and RetryInterval form the default retry policy for
	// the *AndRetry helper variants.
	RetryAttempts int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval" yaml:"retry_interval"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "handrail")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.commands_per_second", 50.0)

	// -- Interaction --
	v.SetDefault("interaction.default_timeout", "30s")
	v.SetDefault("interaction.poll_interval", "400ms")
	v.SetDefault("interaction.retry_attempts", 3)
	v.SetDefault("interaction.retry_interval", "5s")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	applyTimeoutOverride(&cfg)
	return &cfg
}

// Load reads the configuration from an explicit file, or falls back to
// ./handrail.yaml and ~/.handrail.yaml, layered over defaults and
// HANDRAIL_* environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".handrail"))
			v.AddConfigPath(home)
		}
		v.SetConfigName("handrail")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HANDRAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	applyTimeoutOverride(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyTimeoutOverride consults the custom timeout environment variable and,
// when set to a positive integer, replaces the default wait timeout.
func applyTimeoutOverride(cfg *Config) {
	raw, ok := os.LookupEnv(CustomTimeoutEnv)
	if !ok || raw == "" {
		return
	}
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || secs <= 0 {
		// A malformed override is ignored rather than failing startup.
		return
	}
	cfg.Interaction.DefaultTimeout = time.Duration(secs) * time.Second
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Interaction.DefaultTimeout <= 0 {
		return fmt.Errorf("interaction.default_timeout must be a positive duration")
	}
	if c.Interaction.PollInterval <= 0 {
		return fmt.Errorf("interaction.poll_interval must be a positive duration")
	}
	if c.Interaction.PollInterval > c.Interaction.DefaultTimeout {
		return fmt.Errorf("interaction.poll_interval must not exceed interaction.default_timeout")
	}
	if c.Interaction.RetryAttempts < 1 {
		return fmt.Errorf("interaction.retry_attempts must be at least 1")
	}
	if c.Interaction.RetryInterval < 0 {
		return fmt.Errorf("interaction.retry_interval must not be negative")
	}
	if c.Browser.CommandsPerSecond < 0 {
		return fmt.Errorf("browser.commands_per_second must not be negative")
	}
	return nil
}
