package cmd

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conneroisu/stegtext/internal/errors"
	"github.com/spf13/cobra"
)

// readText resolves one text argument: the inline flag, then the file flag,
// then whatever remains on stdin. One trailing newline is dropped from stdin
// so that `echo secret | stegtext hide` hides exactly "secret".
func readText(cmd *cobra.Command, inline, file string, in *bufio.Reader) (string, error) {
	if cmd.Flags().Changed(inline) {
		return cmd.Flags().GetString(inline)
	}
	if path, _ := cmd.Flags().GetString(file); path != "" {
		return readFile(path)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", errors.WrapIO(err, errors.ErrCodeEmptyText, "failed to read stdin")
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.FileError("read", path, err)
	}
	return string(data), nil
}
