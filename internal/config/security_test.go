package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidateServerConfig_Security tests server configuration security validation
func TestValidateServerConfig_Security(t *testing.T) {
	tests := []struct {
		name        string
		config      ServerConfig
		expectError bool
		errorType   string
	}{
		{
			name:   "valid server config",
			config: ServerConfig{Port: 8088, Host: "localhost"},
		},
		{
			name:   "valid port range maximum",
			config: ServerConfig{Port: 65535, Host: "0.0.0.0"},
		},
		{
			name:   "system assigned port",
			config: ServerConfig{Port: 0, Host: "localhost"},
		},
		{
			name:        "invalid negative port",
			config:      ServerConfig{Port: -1, Host: "localhost"},
			expectError: true,
			errorType:   "not in valid range",
		},
		{
			name:        "invalid port too high",
			config:      ServerConfig{Port: 65536, Host: "localhost"},
			expectError: true,
			errorType:   "not in valid range",
		},
		{
			name:        "command injection in host",
			config:      ServerConfig{Port: 8088, Host: "localhost; rm -rf /"},
			expectError: true,
			errorType:   "dangerous character",
		},
		{
			name:        "backtick in host",
			config:      ServerConfig{Port: 8088, Host: "`whoami`"},
			expectError: true,
			errorType:   "dangerous character",
		},
		{
			name:        "backslash in host",
			config:      ServerConfig{Port: 8088, Host: `local\host`},
			expectError: true,
			errorType:   "dangerous character",
		},
		{
			name:        "negative body limit",
			config:      ServerConfig{Port: 8088, Host: "localhost", MaxBodyBytes: -1},
			expectError: true,
			errorType:   "max_body_bytes",
		},
		{
			name:        "blank origin",
			config:      ServerConfig{Port: 8088, Host: "localhost", AllowedOrigins: []string{"example.com", " "}},
			expectError: true,
			errorType:   "empty entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServerConfig(&tt.config)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidatePath_Security tests path validation against traversal and shell metacharacters
func TestValidatePath_Security(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectError bool
		errorType   string
	}{
		{name: "relative file", path: "words/short.txt"},
		{name: "dot prefixed", path: "./short.txt"},
		{name: "absolute file", path: "/usr/share/stegtext/long.txt"},
		{name: "empty", path: "", expectError: true, errorType: "empty path"},
		{name: "parent traversal", path: "../secret.txt", expectError: true, errorType: "traversal"},
		{name: "nested traversal", path: "words/../../etc/passwd", expectError: true, errorType: "traversal"},
		{name: "semicolon", path: "short.txt; cat /etc/passwd", expectError: true, errorType: "dangerous character"},
		{name: "pipe", path: "short.txt|nc", expectError: true, errorType: "dangerous character"},
		{name: "dollar", path: "$HOME/short.txt", expectError: true, errorType: "dangerous character"},
		{name: "quote", path: `short".txt`, expectError: true, errorType: "dangerous character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.path)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestSecurityRegression_ConfigSecurity checks that no dangerous value survives full validation
func TestSecurityRegression_ConfigSecurity(t *testing.T) {
	attacks := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}

	for _, attack := range attacks {
		t.Run("wordlist "+attack, func(t *testing.T) {
			cfg := Default()
			cfg.WordLists.ShortFile = "short" + attack + ".txt"
			err := validateConfig(cfg)
			assert.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "wordlists config:"))
		})

		t.Run("host "+attack, func(t *testing.T) {
			cfg := Default()
			cfg.Server.Host = "local" + attack + "host"
			err := validateConfig(cfg)
			assert.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "server config:"))
		})
	}
}
