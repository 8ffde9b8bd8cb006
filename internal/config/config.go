// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "MLITDPF"

// LegacyAPIKeyEnv is also read for the upstream API key.
const LegacyAPIKeyEnv = "MLIT_API_KEY"

// MinOutputBytes is the smallest accepted output cap.
const MinOutputBytes = 64

// Config holds all application configuration.
type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Output   OutputConfig   `mapstructure:"output"`
	Query    QueryConfig    `mapstructure:"query"`
	Server   ServerConfig   `mapstructure:"server"`
	TLS      TLSConfig      `mapstructure:"tls"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// UpstreamConfig holds the data platform endpoint configuration.
type UpstreamConfig struct {
	Endpoint         string        `mapstructure:"endpoint"`
	APIKey           string        `mapstructure:"api_key"`
	APIKeyHeader     string        `mapstructure:"api_key_header"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureMode      string        `mapstructure:"failure_mode"` // strict, compat
	CompressRequests bool          `mapstructure:"compress_requests"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
}

// OutputConfig holds output size limiting configuration.
type OutputConfig struct {
	MaxBytes   int    `mapstructure:"max_bytes"`
	Truncation string `mapstructure:"truncation"` // records, text
}

// QueryConfig holds query construction configuration.
type QueryConfig struct {
	FieldSets map[string][]string `mapstructure:"field_sets"` // overrides of preset field lists
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // e.g., ["https://example.com", "*.sub.domain.tld"]
}

// Enabled returns true if CORS is configured with at least one allowed origin.
func (c *CORSConfig) Enabled() bool {
	return len(c.AllowedOrigins) > 0
}

// TLSConfig holds TLS/CertMagic configuration.
type TLSConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Domains  []string     `mapstructure:"domains"`
	Email    string       `mapstructure:"email"`
	CacheDir string       `mapstructure:"cache_dir"`
	Staging  bool         `mapstructure:"staging"` // Use Let's Encrypt staging
	DNS      TLSDNSConfig `mapstructure:"dns"`
}

// TLSDNSConfig holds the Azure DNS settings for DNS-01 challenges.
type TLSDNSConfig struct {
	SubscriptionID    string `mapstructure:"subscription_id"`
	ResourceGroupName string `mapstructure:"resource_group_name"`
	ClientID          string `mapstructure:"client_id"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text, console
}

// Defaults sets the default configuration values on v.
func Defaults(v *viper.Viper) {
	// Upstream defaults
	v.SetDefault("upstream.endpoint", "https://www.mlit-data.jp/api/v1/")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.api_key_header", "apikey")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.failure_mode", "strict")
	v.SetDefault("upstream.compress_requests", false)
	v.SetDefault("upstream.max_body_bytes", 32<<20)

	// Output defaults
	v.SetDefault("output.max_bytes", 1<<20)
	v.SetDefault("output.truncation", "records")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors.allowed_origins", []string{})

	// TLS defaults
	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cache_dir", "./.certmagic")
	v.SetDefault("tls.staging", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	Defaults(v)

	// Environment variable binding
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("upstream.api_key", EnvPrefix+"_UPSTREAM_API_KEY", LegacyAPIKeyEnv)

	return v
}

// Load loads configuration from environment and config file. Flags bound
// to v beforehand take precedence over both.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = New()
	}

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mlitdpf")
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Upstream.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid upstream endpoint: %q", c.Upstream.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported upstream endpoint scheme: %s", u.Scheme)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive: %s", c.Upstream.Timeout)
	}
	if c.Upstream.MaxBodyBytes <= 0 {
		return fmt.Errorf("upstream max body bytes must be positive: %d", c.Upstream.MaxBodyBytes)
	}
	if strings.TrimSpace(c.Upstream.APIKeyHeader) == "" {
		return fmt.Errorf("upstream API key header is required")
	}

	switch c.Upstream.FailureMode {
	case "strict", "compat":
	default:
		return fmt.Errorf("unknown upstream failure mode: %s", c.Upstream.FailureMode)
	}

	if c.Output.MaxBytes < MinOutputBytes {
		return fmt.Errorf("output max bytes must be at least %d: %d", MinOutputBytes, c.Output.MaxBytes)
	}
	switch c.Output.Truncation {
	case "records", "text":
	default:
		return fmt.Errorf("unknown output truncation strategy: %s", c.Output.Truncation)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.TLS.Enabled {
		if len(c.TLS.Domains) == 0 {
			return fmt.Errorf("TLS enabled but no domains specified")
		}
		if c.TLS.Email == "" {
			return fmt.Errorf("TLS enabled but no email specified")
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("unknown logging format: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /: %q", c.Metrics.Path)
	}

	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
