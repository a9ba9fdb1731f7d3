package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conneroisu/stegtext/internal/services"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Output formats accepted by -o.
var outputFormats = []string{"table", "json", "yaml"}

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Server flags. Zero values mean "use the configuration".
	Port int
	Host string

	// Password flags
	Password       string
	PromptPassword bool

	// Output flags
	OutputFormat string
	Verbose      bool
	Quiet        bool
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "server":
			addServerFlags(cmd, flags)
		case "password":
			addPasswordFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addServerFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().IntVarP(&flags.Port, "port", "p", 0, "Port to serve on (default from config, 8088)")
	cmd.Flags().StringVar(&flags.Host, "host", "", "Host to bind to (default from config, localhost)")
	AddFlagValidation(cmd, "port", ValidatePort)
}

func addPasswordFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVar(&flags.Password, "password", "", "Encrypt the secret with this password")
	cmd.Flags().BoolVar(&flags.PromptPassword, "prompt-password", false, "Ask for the password without echoing it")
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")
}

// addMethodFlag registers --method/-m with a command specific default.
func addMethodFlag(cmd *cobra.Command, target *string, defaultMethod services.Method) {
	names := make([]string, 0, len(services.Methods()))
	for _, m := range services.Methods() {
		names = append(names, m.String())
	}
	cmd.Flags().StringVarP(target, "method", "m", defaultMethod.String(),
		fmt.Sprintf("Hiding method (%s)", strings.Join(names, "|")))
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Port != 0 {
		if err := ValidatePort(strconv.Itoa(f.Port)); err != nil {
			return err
		}
	}

	if f.Password != "" && f.PromptPassword {
		return fmt.Errorf("cannot specify both --password and --prompt-password")
	}

	if f.OutputFormat != "" {
		valid := false
		for _, format := range outputFormats {
			if f.OutputFormat == format {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid output format %s, must be one of: %s",
				f.OutputFormat, strings.Join(outputFormats, ", "))
		}
	}

	// Quiet and verbose are mutually exclusive
	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}

	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort checks a port given on the command line.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}

	return nil
}

// exclusive fails when more than one of the named flags was set.
func exclusive(cmd *cobra.Command, names ...string) error {
	var set []string
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("cannot specify both %s", strings.Join(set, " and "))
	}
	return nil
}
