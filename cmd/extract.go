package cmd

import (
	"bufio"
	"fmt"

	"github.com/conneroisu/stegtext/internal/services"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Recover a secret from a stego text",
	Long: `Recover the secret hidden in a stego text and print it.

The text is taken from --text, --file or stdin. Morse extraction returns the
secret upper-cased, since the code has no letter case.

Examples:
  stegtext extract --file message.txt
  stegtext extract -m morse --prompt-password < message.txt`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

var (
	extractMethod string
	extractFlags  *StandardFlags
)

func init() {
	rootCmd.AddCommand(extractCmd)

	addMethodFlag(extractCmd, &extractMethod, services.MethodZeroWidth)
	extractCmd.Flags().String("text", "", "Stego text")
	extractCmd.Flags().StringP("file", "f", "", "Read the stego text from a file")
	extractFlags = AddStandardFlags(extractCmd, "password")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := extractFlags.ValidateFlags(); err != nil {
		return err
	}
	if err := exclusive(cmd, "text", "file"); err != nil {
		return err
	}
	method, err := services.ParseMethod(extractMethod)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	password, err := readPassword(cmd, extractFlags, in)
	if err != nil {
		return err
	}
	text, err := readText(cmd, "text", "file", in)
	if err != nil {
		return err
	}

	stego, _, _, err := newStego(cmd)
	if err != nil {
		return err
	}

	secret, err := stego.Extract(cmd.Context(), services.ExtractRequest{
		Method:   method,
		Text:     text,
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), secret)
	return nil
}
