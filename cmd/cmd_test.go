package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/conneroisu/stegtext/internal/analyzer"
	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/services"
	"github.com/conneroisu/stegtext/internal/testutils"
	"github.com/conneroisu/stegtext/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const prose = testutils.Prose

// execute runs the root command in a fresh temp directory with the given
// stdin and returns what it wrote.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	viper.Reset()
	resetFlags(rootCmd)
	t.Cleanup(viper.Reset)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// resetFlags puts every flag of cmd and its children back to its default,
// undoing the previous test's command line.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		value := f.Value
		if v, ok := value.(*validatingValue); ok {
			value = v.Value
		}
		if slice, ok := value.(pflag.SliceValue); ok {
			def := strings.Trim(f.DefValue, "[]")
			var items []string
			if def != "" {
				items = strings.Split(def, ",")
			}
			_ = slice.Replace(items)
		} else {
			_ = value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STEGTEXT_CRYPTO_ITERATIONS", strconv.Itoa(testutils.TestIterations))
	return dir
}

func hide(t *testing.T, args ...string) string {
	t.Helper()
	out, _, err := execute(t, "", append([]string{"hide"}, args...)...)
	require.NoError(t, err)
	return strings.TrimSuffix(out, "\n")
}

func TestHideExtractRoundTrip(t *testing.T) {
	setup(t)

	tests := []struct {
		name     string
		method   string
		secret   string
		password string
		want     string
	}{
		{"zerowidth", "zerowidth", "meet at dawn", "", "meet at dawn"},
		{"zerowidth encrypted", "zw", "meet at dawn", "hunter2", "meet at dawn"},
		{"homoglyph", "homoglyph", "HI", "", "HI"},
		{"morse", "morse", "sos", "", "SOS"},
		{"morse encrypted", "lexical", "sos", "hunter2", "sos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"-m", tt.method, "--cover", prose, "--secret", tt.secret}
			if tt.password != "" {
				args = append(args, "--password", tt.password)
			}
			stego := hide(t, args...)
			assert.NotEqual(t, prose, stego)

			args = []string{"extract", "-m", tt.method, "--text", stego}
			if tt.password != "" {
				args = append(args, "--password", tt.password)
			}
			out, _, err := execute(t, "", args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestHideNFC(t *testing.T) {
	setup(t)
	cover := strings.Repeat("e\u0301a ", 20)

	stego := hide(t, "-m", "homoglyph", "--cover", cover, "--secret", "x")
	assert.Contains(t, stego, "\u0301")

	stego = hide(t, "-m", "homoglyph", "--cover", cover, "--secret", "x", "--nfc")
	assert.NotContains(t, stego, "\u0301")

	out, _, err := execute(t, "", "extract", "-m", "homoglyph", "--text", stego)
	require.NoError(t, err)
	assert.Equal(t, "x\n", out)
}

func TestHideExtractStdin(t *testing.T) {
	dir := setup(t)

	out, stderr, err := execute(t, "hunter2\nmeet at dawn\n", "hide", "--cover", prose, "--prompt-password")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Password: ")

	file := filepath.Join(dir, "message.txt")
	require.NoError(t, os.WriteFile(file, []byte(out), 0o644))

	out, _, err = execute(t, "hunter2\n", "extract", "--prompt-password", "-f", file)
	require.NoError(t, err)
	assert.Equal(t, "meet at dawn\n", out)

	_, _, err = execute(t, "wrong\n", "extract", "--prompt-password", "-f", file)
	assert.True(t, errors.IsAuthentication(err), "got %v", err)
}

func TestHideErrors(t *testing.T) {
	setup(t)

	tests := []struct {
		name    string
		args    []string
		stdin   string
		check   func(error) bool
		message string
	}{
		{
			name:    "cover twice",
			args:    []string{"hide", "--cover", "a", "--cover-file", "b.txt", "--secret", "x"},
			message: "cannot specify both --cover and --cover-file",
		},
		{
			name:    "both password flags",
			args:    []string{"hide", "--cover", prose, "--secret", "x", "--password", "p", "--prompt-password"},
			message: "cannot specify both --password and --prompt-password",
		},
		{
			name:  "unknown method",
			args:  []string{"hide", "-m", "lsb", "--cover", prose, "--secret", "x"},
			check: errors.IsInvalidInput,
		},
		{
			name:  "missing cover",
			args:  []string{"hide", "--secret", "x"},
			check: errors.IsInvalidInput,
		},
		{
			name:  "empty prompted password",
			args:  []string{"hide", "--cover", prose, "--prompt-password"},
			stdin: "\nsecret",
			check: errors.IsInvalidInput,
		},
		{
			name:  "missing cover file",
			args:  []string{"hide", "--cover-file", "nope.txt", "--secret", "x"},
			check: func(err error) bool { return errors.HasErrorCode(err, errors.ErrCodeFileNotFound) },
		},
		{
			name:  "cover too small",
			args:  []string{"hide", "-m", "homoglyph", "--cover", "123 456", "--secret", "x"},
			check: errors.IsInsufficientCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			if tt.check != nil {
				assert.True(t, tt.check(err), "got %v", err)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestExecuteContextFormatsErrors(t *testing.T) {
	setup(t)
	t.Setenv("STEGTEXT_LOG_LEVEL", "error")

	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{
			name: "missing cover file",
			args: []string{"hide", "--cover-file", "nope.txt", "--secret", "x"},
			want: "Error: no such file: nope.txt\n",
		},
		{
			name: "missing word list",
			env:  map[string]string{"STEGTEXT_WORDLISTS_SHORT_FILE": "short.txt"},
			args: []string{"hide", "-m", "morse", "--secret", "sos"},
			want: "Error: failed to load word lists: no such file: short.txt\n",
		},
		{
			name: "nothing hidden",
			args: []string{"extract", "--text", "plain"},
			want: "Error: no hidden message found: fewer than two delimiters in text\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			viper.Reset()
			resetFlags(rootCmd)
			t.Cleanup(viper.Reset)

			var stdout, stderr bytes.Buffer
			rootCmd.SetIn(strings.NewReader(""))
			rootCmd.SetOut(&stdout)
			rootCmd.SetErr(&stderr)
			rootCmd.SetArgs(tt.args)

			require.Error(t, ExecuteContext(context.Background()))
			assert.Equal(t, tt.want, stderr.String())
			assert.Empty(t, stdout.String())
		})
	}
}

func TestExtractNothingHidden(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "", "extract", "--text", prose)
	assert.True(t, errors.IsNoHiddenMessage(err), "got %v", err)
}

func TestAnalyze(t *testing.T) {
	setup(t)
	stego := hide(t, "--cover", prose, "--secret", "HI")

	tests := []struct {
		name     string
		args     []string
		detected bool
	}{
		{"clean", []string{"--text", prose}, false},
		{"zero width", []string{"--text", stego}, true},
		{"html hides script", []string{"--html", "--text",
			"<p>" + prose + "</p><script>var m = '\u200b\u200c';</script>"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"analyze", "-o", "json"}, tt.args...)...)
			require.NoError(t, err)

			var det analyzer.Detection
			require.NoError(t, json.Unmarshal([]byte(out), &det), out)
			assert.Equal(t, tt.detected, det.Detected)
		})
	}

	t.Run("table", func(t *testing.T) {
		out, _, err := execute(t, "", "analyze", "--text", stego)
		require.NoError(t, err)
		assert.Contains(t, out, "steganography detected")
		assert.Contains(t, out, "Zero width characters")
	})

	t.Run("quiet", func(t *testing.T) {
		out, _, err := execute(t, "", "analyze", "-q", "--text", stego)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("bad output format", func(t *testing.T) {
		_, _, err := execute(t, "", "analyze", "-o", "xml", "--text", prose)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output format xml")
	})
}

func TestAnalyzeCompare(t *testing.T) {
	dir := setup(t)
	stego := hide(t, "-m", "homoglyph", "--cover", prose, "--secret", "HI")

	cover := filepath.Join(dir, "cover.txt")
	require.NoError(t, os.WriteFile(cover, []byte(prose), 0o644))

	out, _, err := execute(t, "", "analyze", "--text", stego, "--compare-with", cover, "-o", "yaml")
	require.NoError(t, err)

	var cmp analyzer.Comparison
	require.NoError(t, yaml.Unmarshal([]byte(out), &cmp), out)
	assert.Equal(t, 5, cmp.Unicode.HomoglyphCount)
	assert.True(t, cmp.Detection.SuspiciousHomoglyphs)
	assert.NotEmpty(t, cmp.Distribution)

	out, _, err = execute(t, "", "analyze", "--text", stego, "--compare-with", cover, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "CHARACTER")
	assert.Contains(t, out, "Homoglyphs")
}

func TestCapacity(t *testing.T) {
	setup(t)

	out, _, err := execute(t, "", "capacity", "--cover", "aaaa aaaa aaaa aaaa", "-o", "json")
	require.NoError(t, err)
	var got services.Capacity
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, services.Capacity{Method: services.MethodHomoglyph, Bits: 16, Bytes: 2}, got)

	out, _, err = execute(t, "", "capacity", "-m", "zerowidth", "--cover", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "unbounded")
}

func TestWordLists(t *testing.T) {
	setup(t)

	out, _, err := execute(t, "", "wordlists", "-o", "json")
	require.NoError(t, err)

	var report WordListsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Empty(t, report.ShortFile)
	assert.NotEmpty(t, report.Short)
	assert.NotEmpty(t, report.Long)

	out, _, err = execute(t, "", "wordlists")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in")
}

func TestVersion(t *testing.T) {
	setup(t)

	out, _, err := execute(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Short()+"\n", out)

	out, _, err = execute(t, "", "version", "--format", "json")
	require.NoError(t, err)
	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Get().Platform, info.Platform)

	out, _, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "stegtext "))

	_, _, err = execute(t, "", "version", "--format", "xml")
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	dir := setup(t)
	stego := hide(t, "--cover", prose, "--secret", "HI")

	inbox := filepath.Join(dir, "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "clean.txt"), []byte(prose), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "stego.txt"), []byte(stego), 0o644))

	out, _, err := execute(t, "", "scan", inbox, "-o", "json")
	require.NoError(t, err)

	var result services.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Files, 2)
	assert.Equal(t, 1, result.Flagged)

	out, _, err = execute(t, "", "scan", inbox, "--fail-on-detect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files flagged")
	assert.Contains(t, out, "stego.txt")
	assert.NotContains(t, out, "clean.txt")

	_, _, err = execute(t, "", "scan", inbox, "--ext", ".md", "--fail-on-detect")
	assert.NoError(t, err)

	_, _, err = execute(t, "", "scan")
	assert.Error(t, err)
}

func TestInitAndValidate(t *testing.T) {
	dir := setup(t)
	project := filepath.Join(dir, "project")

	out, _, err := execute(t, "", "init", project, "--wordlists")
	require.NoError(t, err)
	assert.Contains(t, out, services.ConfigFileName)
	testutils.AssertFilePermissions(t, filepath.Join(project, services.ConfigFileName), 0o644)
	assert.FileExists(t, filepath.Join(project, services.WordListDir, services.ShortWordsFile))

	_, _, err = execute(t, "", "init", project)
	assert.Error(t, err, "existing config is kept without --force")

	_, _, err = execute(t, "", "init", project, "--force")
	assert.NoError(t, err)

	file := filepath.Join(project, services.ConfigFileName)

	// The default salt is legal but warned about.
	out, _, err = execute(t, "", "config", "validate", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "crypto.salt")

	_, _, err = execute(t, "", "config", "validate", "--file", file, "--strict")
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("server:\n  port: 70000\n"), 0o644))
	out, _, err = execute(t, "", "config", "validate", "--file", bad)
	require.Error(t, err)
	assert.Contains(t, out, "server.port")

	_, _, err = execute(t, "", "config", "validate")
	assert.Error(t, err, "no .stegtext.yml in the working directory")
}

func TestConfigWizard(t *testing.T) {
	dir := setup(t)
	target := filepath.Join(dir, "wizard.yml")

	_, _, err := execute(t, "debug\n\n\n\n9000\n", "config", "wizard", "--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9000, cfg.Server.Port)

	_, _, err = execute(t, "", "config", "wizard", "--output", target)
	assert.Error(t, err)
}

func TestConfigShow(t *testing.T) {
	dir := setup(t)
	t.Setenv("STEGTEXT_SERVER_PORT", "9123")

	out, _, err := execute(t, "", "config", "show", "--format", "json")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 9123, cfg.Server.Port)
	assert.Equal(t, testutils.TestIterations, cfg.Crypto.Iterations)

	file := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: warn\n"), 0o644))
	out, _, err = execute(t, "", "--config", file, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "level: warn")

	out, _, err = execute(t, "", "--log-level", "error", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "level: error")
}

func TestConfigFileErrors(t *testing.T) {
	dir := setup(t)

	_, _, err := execute(t, "", "--config", filepath.Join(dir, "missing.yml"), "capacity", "--cover", "a")
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err), "got %v", err)

	// A missing default file is not an error.
	_, _, err = execute(t, "", "capacity", "--cover", "a")
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, services.ConfigFileName), []byte("server:\n  port: -1\n"), 0o644))
	_, _, err = execute(t, "", "capacity", "--cover", "a")
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err), "got %v", err)
}

func TestServeRejectsBadPort(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "", "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be between 1 and 65535")
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   StandardFlags
		wantErr string
	}{
		{"defaults", StandardFlags{OutputFormat: "table"}, ""},
		{"port from config", StandardFlags{Port: 0}, ""},
		{"bad port", StandardFlags{Port: 70000}, "port must be between"},
		{"bad format", StandardFlags{OutputFormat: "csv"}, "invalid output format csv"},
		{"quiet and verbose", StandardFlags{Quiet: true, Verbose: true}, "--quiet and --verbose"},
		{"two passwords", StandardFlags{Password: "a", PromptPassword: true}, "--password and --prompt-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.ValidateFlags()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort("8088"))
	assert.Error(t, ValidatePort("0"))
	assert.Error(t, ValidatePort("65536"))
	assert.Error(t, ValidatePort("http"))
}
