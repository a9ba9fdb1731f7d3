package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigWizardDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, err := NewConfigWizard(strings.NewReader(""), &out).Run()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Contains(t, out.String(), "Log level [info]")
}

func TestConfigWizardAnswers(t *testing.T) {
	answers := strings.Join([]string{
		"DEBUG",        // log level
		"yaml",         // invalid format, asked again
		"json",         // log format
		"short.txt",    // short word file
		"",             // long word file
		"y",            // watch
		"abc",          // invalid port, asked again
		"9000",         // port
		"127.0.0.1",    // host
		"a.com, b.com", // origins
		"20000",        // iterations
		"pepper",       // salt
	}, "\n") + "\n"

	var out bytes.Buffer
	cfg, err := NewConfigWizard(strings.NewReader(answers), &out).Run()
	require.NoError(t, err)

	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, WordListsConfig{ShortFile: "short.txt", Watch: true}, cfg.WordLists)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"a.com", "b.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, CryptoConfig{Iterations: 20000, Salt: "pepper"}, cfg.Crypto)

	assert.Contains(t, out.String(), "Invalid choice")
	assert.Contains(t, out.String(), "Invalid number")
}

func TestConfigWizardRejectsInvalidResult(t *testing.T) {
	answers := "\n\n../short.txt\n\n\n"
	_, err := NewConfigWizard(strings.NewReader(answers), &bytes.Buffer{}).Run()
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestWriteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".stegtext.yml")
	cfg := Default()
	cfg.Server.Port = 9100
	cfg.Crypto.Salt = "pepper"

	require.NoError(t, WriteConfigFile(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# stegtext configuration file"))

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, &decoded)

	err = WriteConfigFile(path, cfg, false)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	require.NoError(t, WriteConfigFile(path, Default(), true))
}

func TestWrittenFileLoadsBack(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), ".stegtext.yml")
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Detection.ShortRatioTolerance = 0.3
	require.NoError(t, WriteConfigFile(path, cfg, false))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
