// Package config provides configuration management for stegtext using Viper
// for loading from files, environment variables, and command-line flags.
//
// The configuration system supports a .stegtext.yml file, environment
// variable overrides with the STEGTEXT_ prefix, defaults, and validation. It
// covers logging, the morse word lists, detection thresholds, key derivation
// and the HTTP server.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conneroisu/stegtext/internal/analyzer"
	"github.com/conneroisu/stegtext/internal/crypto"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/logging"
	"github.com/spf13/viper"
)

// Default values used when a key is not set.
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultHost         = "localhost"
	DefaultPort         = 8088
	DefaultMaxBodyBytes = 1 << 20
	DefaultRateLimit    = 600
)

type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
	WordLists WordListsConfig `mapstructure:"wordlists" yaml:"wordlists" json:"wordlists"`
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection" json:"detection"`
	Crypto    CryptoConfig    `mapstructure:"crypto" yaml:"crypto" json:"crypto"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// WordListsConfig points at optional replacement vocabularies for the morse
// channel. Empty paths keep the built-in lists.
type WordListsConfig struct {
	ShortFile string `mapstructure:"short_file" yaml:"short_file" json:"short_file"`
	LongFile  string `mapstructure:"long_file" yaml:"long_file" json:"long_file"`
	Watch     bool   `mapstructure:"watch" yaml:"watch" json:"watch"`
}

type DetectionConfig struct {
	EntropyThreshold    float64 `mapstructure:"entropy_threshold" yaml:"entropy_threshold" json:"entropy_threshold"`
	ShortRatioBaseline  float64 `mapstructure:"short_ratio_baseline" yaml:"short_ratio_baseline" json:"short_ratio_baseline"`
	ShortRatioTolerance float64 `mapstructure:"short_ratio_tolerance" yaml:"short_ratio_tolerance" json:"short_ratio_tolerance"`
}

type CryptoConfig struct {
	Iterations int    `mapstructure:"iterations" yaml:"iterations" json:"iterations"`
	Salt       string `mapstructure:"salt" yaml:"salt" json:"salt"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host" json:"host"`
	Port           int      `mapstructure:"port" yaml:"port" json:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"`

	// RateLimit is the number of requests per minute allowed per client.
	// Zero disables limiting.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	t := analyzer.DefaultThresholds()
	return &Config{
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Detection: DetectionConfig{
			EntropyThreshold:    t.EntropyThreshold,
			ShortRatioBaseline:  t.ShortRatioBaseline,
			ShortRatioTolerance: t.ShortRatioTolerance,
		},
		Crypto: CryptoConfig{Iterations: crypto.DefaultIterations, Salt: crypto.DefaultSalt},
		Server: ServerConfig{
			Host:           DefaultHost,
			Port:           DefaultPort,
			AllowedOrigins: []string{},
			MaxBodyBytes:   DefaultMaxBodyBytes,
			RateLimit:      DefaultRateLimit,
		},
	}
}

// SetDefaults registers every key with viper so that environment overrides
// reach Unmarshal even when no config file mentions the key.
func SetDefaults() {
	d := Default()
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("wordlists.short_file", d.WordLists.ShortFile)
	viper.SetDefault("wordlists.long_file", d.WordLists.LongFile)
	viper.SetDefault("wordlists.watch", d.WordLists.Watch)
	viper.SetDefault("detection.entropy_threshold", d.Detection.EntropyThreshold)
	viper.SetDefault("detection.short_ratio_baseline", d.Detection.ShortRatioBaseline)
	viper.SetDefault("detection.short_ratio_tolerance", d.Detection.ShortRatioTolerance)
	viper.SetDefault("crypto.iterations", d.Crypto.Iterations)
	viper.SetDefault("crypto.salt", d.Crypto.Salt)
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	viper.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	viper.SetDefault("server.rate_limit", d.Server.RateLimit)
}

func Load() (*Config, error) {
	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to read configuration")
	}

	// Origins may arrive as one comma separated env var
	config.Server.AllowedOrigins = splitList(strings.Join(config.Server.AllowedOrigins, ","))
	if config.Server.AllowedOrigins == nil {
		config.Server.AllowedOrigins = []string{}
	}

	if err := validateConfig(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "invalid configuration")
	}

	return &config, nil
}

// Thresholds converts the detection section for the analyzer.
func (c *Config) Thresholds() analyzer.Thresholds {
	return analyzer.Thresholds{
		EntropyThreshold:    c.Detection.EntropyThreshold,
		ShortRatioBaseline:  c.Detection.ShortRatioBaseline,
		ShortRatioTolerance: c.Detection.ShortRatioTolerance,
	}
}

// CryptoOptions converts the crypto section for the encryptor.
func (c *Config) CryptoOptions() crypto.Options {
	return crypto.Options{Iterations: c.Crypto.Iterations, Salt: c.Crypto.Salt}
}

// LoggerConfig converts the log section. The level has already been validated.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultConfig()
	cfg.Level, _ = logging.ParseLevel(c.Log.Level)
	cfg.Format = c.Log.Format
	return cfg
}

// Addr is the server listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if err := validateWordListsConfig(&config.WordLists); err != nil {
		return fmt.Errorf("wordlists config: %w", err)
	}

	if err := validateDetectionConfig(&config.Detection); err != nil {
		return fmt.Errorf("detection config: %w", err)
	}

	if err := validateCryptoConfig(&config.Crypto); err != nil {
		return fmt.Errorf("crypto config: %w", err)
	}

	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	switch config.Format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown log format %q (text, json)", config.Format)
}

func validateWordListsConfig(config *WordListsConfig) error {
	files := []struct{ name, path string }{
		{"short_file", config.ShortFile},
		{"long_file", config.LongFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := validatePath(f.path); err != nil {
			return fmt.Errorf("invalid %s '%s': %w", f.name, f.path, err)
		}
	}
	return nil
}

// validateDetectionConfig also rejects NaN, which fails every comparison.
func validateDetectionConfig(config *DetectionConfig) error {
	if !(config.EntropyThreshold > 0) {
		return fmt.Errorf("entropy_threshold must be positive, got %g", config.EntropyThreshold)
	}
	if !(config.ShortRatioBaseline >= 0 && config.ShortRatioBaseline <= 1) {
		return fmt.Errorf("short_ratio_baseline %g is not in range 0-1", config.ShortRatioBaseline)
	}
	if !(config.ShortRatioTolerance > 0) {
		return fmt.Errorf("short_ratio_tolerance must be positive, got %g", config.ShortRatioTolerance)
	}
	return nil
}

func validateCryptoConfig(config *CryptoConfig) error {
	if config.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", config.Iterations)
	}
	if config.Salt == "" {
		return fmt.Errorf("salt cannot be empty")
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		if err := checkDangerousChars(config.Host, hostDangerousChars); err != nil {
			return fmt.Errorf("host %w", err)
		}
	}

	if config.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative, got %d", config.MaxBodyBytes)
	}

	if config.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %d", config.RateLimit)
	}

	for _, origin := range config.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("allowed_origins contains an empty entry")
		}
	}

	return nil
}

var (
	pathDangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	hostDangerousChars = append(append([]string{}, pathDangerousChars...), "\\")
)

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	return checkDangerousChars(cleanPath, pathDangerousChars)
}

func checkDangerousChars(s string, chars []string) error {
	for _, char := range chars {
		if strings.Contains(s, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
