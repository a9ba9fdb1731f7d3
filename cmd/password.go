package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword returns --password, or with --prompt-password asks for one.
// A terminal is read without echo; anything else gives up its first line.
func readPassword(cmd *cobra.Command, flags *StandardFlags, in *bufio.Reader) (string, error) {
	if !flags.PromptPassword {
		return flags.Password, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	var password string
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", errors.WrapIO(err, errors.ErrCodeEmptyPassword, "failed to read password")
		}
		password = string(raw)
	} else {
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", errors.WrapIO(err, errors.ErrCodeEmptyPassword, "failed to read password")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return "", errors.NewInvalidInputError(errors.ErrCodeEmptyPassword, "password must not be empty")
	}
	return password, nil
}
