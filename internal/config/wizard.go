package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/conneroisu/stegtext/internal/errors"
	"gopkg.in/yaml.v3"
)

// ConfigWizard walks the user through creating a .stegtext.yml
type ConfigWizard struct {
	reader *bufio.Reader
	out    io.Writer
	config *Config
}

// NewConfigWizard creates a wizard reading answers from in and writing
// prompts to out. Every question starts from the default configuration.
func NewConfigWizard(in io.Reader, out io.Writer) *ConfigWizard {
	return &ConfigWizard{
		reader: bufio.NewReader(in),
		out:    out,
		config: Default(),
	}
}

// Run executes the interactive configuration wizard
func (w *ConfigWizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "stegtext configuration wizard")
	fmt.Fprintln(w.out, "Press enter to keep the value in brackets.")
	fmt.Fprintln(w.out)

	w.configureLogging()
	w.configureWordLists()

	if err := w.configureServer(); err != nil {
		return nil, fmt.Errorf("server configuration failed: %w", err)
	}

	if err := w.configureCrypto(); err != nil {
		return nil, fmt.Errorf("crypto configuration failed: %w", err)
	}

	if err := validateConfig(w.config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "configuration validation failed")
	}

	return w.config, nil
}

func (w *ConfigWizard) configureLogging() {
	fmt.Fprintln(w.out, "Logging")
	w.config.Log.Level = w.askChoice("Log level", []string{"debug", "info", "warn", "error"}, w.config.Log.Level)
	w.config.Log.Format = w.askChoice("Log format", []string{"text", "json"}, w.config.Log.Format)
	fmt.Fprintln(w.out)
}

func (w *ConfigWizard) configureWordLists() {
	fmt.Fprintln(w.out, "Morse word lists (leave empty for the built-in lists)")
	w.config.WordLists.ShortFile = w.askString("Short word file", w.config.WordLists.ShortFile)
	w.config.WordLists.LongFile = w.askString("Long word file", w.config.WordLists.LongFile)
	if w.config.WordLists.ShortFile != "" || w.config.WordLists.LongFile != "" {
		w.config.WordLists.Watch = w.askBool("Reload word lists when the files change", w.config.WordLists.Watch)
	}
	fmt.Fprintln(w.out)
}

func (w *ConfigWizard) configureServer() error {
	fmt.Fprintln(w.out, "HTTP server")

	port, err := w.askInt("Server port", w.config.Server.Port, 1, 65535)
	if err != nil {
		return err
	}
	w.config.Server.Port = port
	w.config.Server.Host = w.askString("Server host", w.config.Server.Host)

	origins := w.askString("Allowed WebSocket origins, comma separated", strings.Join(w.config.Server.AllowedOrigins, ","))
	w.config.Server.AllowedOrigins = splitList(origins)
	if w.config.Server.AllowedOrigins == nil {
		w.config.Server.AllowedOrigins = []string{}
	}

	fmt.Fprintln(w.out)
	return nil
}

func (w *ConfigWizard) configureCrypto() error {
	fmt.Fprintln(w.out, "Key derivation")

	iterations, err := w.askInt("PBKDF2 iterations", w.config.Crypto.Iterations, 1, 10_000_000)
	if err != nil {
		return err
	}
	w.config.Crypto.Iterations = iterations
	w.config.Crypto.Salt = w.askString("Salt", w.config.Crypto.Salt)

	fmt.Fprintln(w.out)
	return nil
}

// Helper methods for user interaction

func (w *ConfigWizard) askString(prompt, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(w.out, "%s: ", prompt)
	}

	input, err := w.reader.ReadString('\n')
	if err != nil && input == "" {
		return defaultValue
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}

	return input
}

func (w *ConfigWizard) askInt(prompt string, defaultValue, min, max int) (int, error) {
	for {
		fmt.Fprintf(w.out, "%s [%d]: ", prompt, defaultValue)

		input, err := w.reader.ReadString('\n')
		if err != nil && input == "" {
			return defaultValue, nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			return defaultValue, nil
		}

		value, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(w.out, "Invalid number. Please enter a number between %d and %d.\n", min, max)
			continue
		}

		if value < min || value > max {
			fmt.Fprintf(w.out, "Number out of range. Please enter a number between %d and %d.\n", min, max)
			continue
		}

		return value, nil
	}
}

func (w *ConfigWizard) askBool(prompt string, defaultValue bool) bool {
	defaultStr := "n"
	if defaultValue {
		defaultStr = "y"
	}

	fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultStr)

	input, err := w.reader.ReadString('\n')
	if err != nil && input == "" {
		return defaultValue
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue
	}

	return input == "y" || input == "yes" || input == "true"
}

func (w *ConfigWizard) askChoice(prompt string, choices []string, defaultValue string) string {
	for {
		fmt.Fprintf(w.out, "%s [%s] (options: %s): ", prompt, defaultValue, strings.Join(choices, ", "))

		input, err := w.reader.ReadString('\n')
		if err != nil && input == "" {
			return defaultValue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			return defaultValue
		}

		for _, choice := range choices {
			if strings.EqualFold(input, choice) {
				return choice
			}
		}

		fmt.Fprintf(w.out, "Invalid choice. Please select from: %s\n", strings.Join(choices, ", "))
	}
}

// Marshal renders the configuration as a commented YAML document.
func Marshal(config *Config) ([]byte, error) {
	body, err := yaml.Marshal(config)
	if err != nil {
		return nil, errors.WrapInternal(err, errors.ErrCodeInternalError, "failed to encode configuration")
	}
	header := "# stegtext configuration file\n" +
		"# Every key can be overridden with STEGTEXT_<SECTION>_<KEY>.\n\n"
	return append([]byte(header), body...), nil
}

// WriteConfigFile writes the configuration to a YAML file. It refuses to
// replace an existing file unless overwrite is set.
func WriteConfigFile(filename string, config *Config, overwrite bool) error {
	if _, err := os.Stat(filename); err == nil && !overwrite {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("configuration file %s already exists", filename))
	}

	content, err := Marshal(config)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return errors.WrapIO(err, errors.ErrCodeInternalError, "failed to write configuration file")
	}
	return nil
}
