// Package cmd provides the stegtext command-line interface.
//
// Configuration is resolved from, highest priority first:
//
//  1. Command-line flags (--log-level, --port, ...)
//  2. STEGTEXT_<SECTION>_<KEY> environment variables, e.g. STEGTEXT_SERVER_PORT
//  3. The file named by --config or STEGTEXT_CONFIG_FILE
//  4. .stegtext.yml in the working directory
//  5. Built-in defaults
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/conneroisu/stegtext/internal/logging"
	"github.com/conneroisu/stegtext/internal/services"
	"github.com/conneroisu/stegtext/internal/wordlist"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "STEGTEXT"

var (
	cfgFile string

	// configReadErr holds a failure to read an explicitly named config file.
	// A missing default .stegtext.yml is not an error.
	configReadErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stegtext",
	Short: "Hide, extract and detect messages concealed in plain text",
	Long: `stegtext hides short secrets inside ordinary text and finds them again.

Methods:
  zerowidth   invisible characters appended to a cover text
  morse       generated prose whose word lengths spell the secret in Morse code
  homoglyph   Latin letters swapped for identical looking Cyrillic ones

Quick Start:
  stegtext hide --method zerowidth --cover "Hello there" --secret "meet at 10"
  stegtext extract --method zerowidth --file message.txt
  stegtext analyze --file suspect.txt
  stegtext scan ./inbox --fail-on-detect
  stegtext serve                        Start the HTTP and WebSocket API`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and prints any error in a
// single line on stderr.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", errors.FormatError(err))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .stegtext.yml, can also use STEGTEXT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (text, json)")
}

// initConfig points viper at the config file and environment.
func initConfig() {
	configReadErr = nil
	explicit := true

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(envPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stegtext")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !stderrors.As(err, &notFound) {
			configReadErr = err
		}
	}
}

// loadConfig resolves the configuration and builds the logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	if configReadErr != nil {
		return nil, nil, configFileError(configReadErr)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logger := logging.NewLogger(logCfg).WithComponent(cmd.Name())

	logger.Debug(cmd.Context(), "Configuration loaded", "file", viper.ConfigFileUsed())
	return cfg, logger, nil
}

func configFileError(err error) error {
	file := viper.ConfigFileUsed()
	if file == "" {
		file = cfgFile
	}
	return errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to read config file").
		WithContext("file", file)
}

// newStego builds the pipeline from the resolved configuration.
func newStego(cmd *cobra.Command) (*services.StegoService, *config.Config, logging.Logger, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := wordlist.NewStore(cfg.WordLists.ShortFile, cfg.WordLists.LongFile, logger)
	if err != nil {
		return nil, nil, nil, errors.WrapConfig(err, errors.ErrCodeWordListInvalid, "failed to load word lists")
	}
	return services.NewStegoServiceFromConfig(cfg, store, logger), cfg, logger, nil
}
