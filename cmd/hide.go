package cmd

import (
	"bufio"
	"fmt"

	"github.com/conneroisu/stegtext/internal/services"
	"github.com/spf13/cobra"
)

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide a secret inside a cover text",
	Long: `Hide a secret message and print the resulting stego text.

The secret is taken from --secret, --secret-file or stdin. zerowidth and
homoglyph embed into the cover text; morse writes its own prose and ignores
any cover.

Examples:
  stegtext hide --cover "See you tomorrow." --secret "meet at 10"
  stegtext hide -m homoglyph --cover-file letter.txt --secret-file note.txt
  echo "sos" | stegtext hide -m morse --prompt-password > message.txt`,
	Args: cobra.NoArgs,
	RunE: runHide,
}

var (
	hideMethod string
	hideFlags  *StandardFlags
)

func init() {
	rootCmd.AddCommand(hideCmd)

	addMethodFlag(hideCmd, &hideMethod, services.MethodZeroWidth)
	hideCmd.Flags().String("cover", "", "Cover text")
	hideCmd.Flags().String("cover-file", "", "Read the cover text from a file")
	hideCmd.Flags().String("secret", "", "Secret message")
	hideCmd.Flags().String("secret-file", "", "Read the secret from a file")
	hideCmd.Flags().Bool("nfc", false, "Compose the cover to NFC before a homoglyph embed")
	hideFlags = AddStandardFlags(hideCmd, "password")
}

func runHide(cmd *cobra.Command, args []string) error {
	if err := validateHideFlags(cmd); err != nil {
		return err
	}
	method, err := services.ParseMethod(hideMethod)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	password, err := readPassword(cmd, hideFlags, in)
	if err != nil {
		return err
	}

	var cover string
	if method.NeedsCover() {
		if cover, err = readCover(cmd); err != nil {
			return err
		}
	}
	secret, err := readText(cmd, "secret", "secret-file", in)
	if err != nil {
		return err
	}

	stego, _, _, err := newStego(cmd)
	if err != nil {
		return err
	}

	nfc, _ := cmd.Flags().GetBool("nfc")
	text, err := stego.Hide(cmd.Context(), services.HideRequest{
		Method:         method,
		Cover:          cover,
		Secret:         secret,
		Password:       password,
		NormalizeCover: nfc,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func validateHideFlags(cmd *cobra.Command) error {
	if err := hideFlags.ValidateFlags(); err != nil {
		return err
	}
	if err := exclusive(cmd, "cover", "cover-file"); err != nil {
		return err
	}
	return exclusive(cmd, "secret", "secret-file")
}

// readCover reads --cover or --cover-file. An absent cover is passed on as
// empty so the codec reports it.
func readCover(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("cover-file"); path != "" {
		return readFile(path)
	}
	return cmd.Flags().GetString("cover")
}
