package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"

	"github.com/conneroisu/stegtext/internal/crypto"
	"github.com/conneroisu/stegtext/internal/logging"
)

// MinRecommendedIterations is the PBKDF2 work factor below which validation warns.
const MinRecommendedIterations = 10_000

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string      `json:"field" yaml:"field"`
	Value       interface{} `json:"value" yaml:"value"`
	Message     string      `json:"message" yaml:"message"`
	Suggestions []string    `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool              `json:"valid" yaml:"valid"`
	Errors   []ValidationError `json:"errors" yaml:"errors"`
	Warnings []ValidationError `json:"warnings" yaml:"warnings"`
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback.
// Unlike Load it keeps going after the first problem and also reports
// settings that are legal but probably unintended.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateLogConfigDetails(&config.Log, result)
	validateWordListsConfigDetails(&config.WordLists, result)
	validateDetectionConfigDetails(&config.Detection, result)
	validateCryptoConfigDetails(&config.Crypto, result)
	validateServerConfigDetails(&config.Server, result)

	result.Valid = !result.HasErrors()

	return result
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.addError("log.level", config.Level, err.Error(), "Use one of debug, info, warn, error")
	}
	if config.Format != "text" && config.Format != "json" {
		result.addError("log.format", config.Format, fmt.Sprintf("unknown log format %q", config.Format),
			"Use 'text' for terminals", "Use 'json' when logs are collected")
	}
}

func validateWordListsConfigDetails(config *WordListsConfig, result *ValidationResult) {
	files := []struct{ field, path string }{
		{"wordlists.short_file", config.ShortFile},
		{"wordlists.long_file", config.LongFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := validatePath(f.path); err != nil {
			result.addError(f.field, f.path, err.Error(),
				"Use a path inside the working directory",
				"Avoid parent directory references (..)")
			continue
		}
		if !pathExists(f.path) {
			result.addWarning(f.field, f.path, "file does not exist yet",
				"The built-in list is used until the file is created")
		}
	}

	if config.Watch && config.ShortFile == "" && config.LongFile == "" {
		result.addWarning("wordlists.watch", config.Watch, "watch is enabled but no word list files are configured",
			"Set wordlists.short_file or wordlists.long_file")
	}
}

func validateDetectionConfigDetails(config *DetectionConfig, result *ValidationResult) {
	if err := validateDetectionConfig(config); err != nil {
		result.addError("detection", config, err.Error(),
			"Default thresholds are entropy 4.5, baseline 0.55, tolerance 0.2")
		return
	}

	if config.ShortRatioTolerance >= 1 {
		result.addWarning("detection.short_ratio_tolerance", config.ShortRatioTolerance,
			"tolerance of 1 or more never flags a word distribution")
	}
	if config.EntropyThreshold < 3 {
		result.addWarning("detection.entropy_threshold", config.EntropyThreshold,
			"most English prose exceeds this entropy and will be flagged",
			"Ordinary prose scores around 4.0 to 4.3")
	}
}

func validateCryptoConfigDetails(config *CryptoConfig, result *ValidationResult) {
	if config.Iterations < 1 {
		result.addError("crypto.iterations", config.Iterations, "iterations must be at least 1")
	} else if config.Iterations < MinRecommendedIterations {
		result.addWarning("crypto.iterations", config.Iterations,
			fmt.Sprintf("fewer than %d iterations makes password guessing cheap", MinRecommendedIterations))
	}

	if config.Salt == "" {
		result.addError("crypto.salt", config.Salt, "salt cannot be empty")
	} else if config.Salt == crypto.DefaultSalt {
		result.addWarning("crypto.salt", config.Salt, "the built-in salt is shared by every installation",
			"Ciphertexts stay readable only with the same salt, so change it before hiding anything")
	}
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port, fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Port 0 allows system to assign an available port")
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port, "port below 1024 requires elevated privileges",
			"Consider using a port above 1024")
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.addError("server.host", config.Host, err.Error(),
				"Use 'localhost' for local use",
				"Use a valid IP address or hostname")
		} else if config.Host == "0.0.0.0" || config.Host == "::" {
			result.addWarning("server.host", config.Host, "server listens on every interface",
				"Secrets and passwords travel in request bodies, so keep the server local or behind TLS")
		}
	}

	if config.MaxBodyBytes < 0 {
		result.addError("server.max_body_bytes", config.MaxBodyBytes, "max_body_bytes must not be negative")
	}

	if config.RateLimit < 0 {
		result.addError("server.rate_limit", config.RateLimit, "rate_limit must not be negative",
			"Use 0 to disable rate limiting")
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			result.addWarning("server.allowed_origins", origin, "any site may open the analysis WebSocket")
		}
	}
}

// Helper validation functions

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(host string) error {
	if err := checkDangerousChars(host, hostDangerousChars); err != nil {
		return err
	}

	if net.ParseIP(host) != nil {
		return nil
	}

	if !hostnameRegex.MatchString(host) {
		return fmt.Errorf("invalid hostname format")
	}

	return nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
