package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/conneroisu/stegtext/internal/config"
	"github.com/conneroisu/stegtext/internal/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stegtext configuration",
	Long: `Manage stegtext configuration files and settings.

Examples:
  stegtext config wizard                          # Create .stegtext.yml interactively
  stegtext config validate                        # Validate .stegtext.yml
  stegtext config validate --file other.yml --strict
  stegtext config show --format json              # Show the resolved configuration`,
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run interactive configuration wizard",
	Long: `Ask for every setting in turn and write the answers to a
configuration file. Press enter to keep a default.`,
	Args: cobra.NoArgs,
	RunE: runConfigWizard,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a stegtext configuration file for correctness and best practices.

Errors make the configuration unusable. Warnings point at weak settings such
as a low key derivation iteration count or an origin pattern that admits
every site.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the configuration after the config file, STEGTEXT_* environment
variables and defaults have been merged.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var (
	configOutput string
	configForce  bool
	configFile   string
	configStrict bool
	configFormat string
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configWizardCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configWizardCmd.Flags().
		StringVarP(&configOutput, "output", "o", services.ConfigFileName, "Output configuration file")
	configWizardCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .stegtext.yml)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
}

func runConfigWizard(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configOutput); err == nil && !configForce {
		return fmt.Errorf("configuration file %s already exists, use --force to overwrite it", configOutput)
	}

	wizard := config.NewConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout())
	cfg, err := wizard.Run()
	if err != nil {
		return fmt.Errorf("configuration wizard failed: %w", err)
	}

	validation := config.ValidateConfigWithDetails(cfg)
	if validation.HasWarnings() {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), validation.String())
	}

	if err := config.WriteConfigFile(configOutput, cfg, configForce); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nConfiguration saved to: %s\n", configOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	targetFile := configFile
	if targetFile == "" {
		targetFile = services.ConfigFileName
		if _, err := os.Stat(targetFile); err != nil {
			return errors.New("no configuration file found. Use --file to specify a config file " +
				"or run 'stegtext config wizard' to create one")
		}
	}
	if _, err := os.Stat(targetFile); os.IsNotExist(err) {
		return fmt.Errorf("configuration file %s does not exist", targetFile)
	}

	fmt.Fprintf(out, "Validating configuration file: %s\n", targetFile)

	v := viper.New()
	v.SetConfigFile(targetFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	// Keys the file leaves out keep their defaults.
	cfg := config.Default()
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	validation := config.ValidateConfigWithDetails(cfg)
	if validation.Valid && !validation.HasWarnings() {
		fmt.Fprintln(out, "Configuration is valid.")
		return nil
	}

	fmt.Fprint(out, validation.String())

	if validation.HasErrors() {
		return fmt.Errorf("configuration validation failed with %d errors", len(validation.Errors))
	}
	if configStrict {
		return fmt.Errorf("configuration validation failed in strict mode with %d warnings",
			len(validation.Warnings))
	}

	fmt.Fprintf(out, "Configuration is valid with %d warnings. Use --strict to treat warnings as errors.\n",
		len(validation.Warnings))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	switch configFormat {
	case "yaml", "yml":
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	case "json":
		return writeOutput(cmd.OutOrStdout(), "json", cfg, nil)
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", configFormat)
	}
}
