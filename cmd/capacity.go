package cmd

import (
	"fmt"
	"io"

	"github.com/conneroisu/stegtext/internal/services"
	"github.com/spf13/cobra"
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Show how much a cover text can carry",
	Long: `Report how many bits and whole bytes a cover text can hide.

Only homoglyph capacity depends on the cover: one bit per substitutable
letter. zerowidth and morse have no upper bound.

Examples:
  stegtext capacity --cover-file letter.txt
  stegtext capacity -m zerowidth --cover "hello" -o json`,
	Args: cobra.NoArgs,
	RunE: runCapacity,
}

var (
	capacityMethod string
	capacityFlags  *StandardFlags
)

func init() {
	rootCmd.AddCommand(capacityCmd)

	addMethodFlag(capacityCmd, &capacityMethod, services.MethodHomoglyph)
	capacityCmd.Flags().String("cover", "", "Cover text")
	capacityCmd.Flags().String("cover-file", "", "Read the cover text from a file")
	capacityFlags = AddStandardFlags(capacityCmd, "output")
}

func runCapacity(cmd *cobra.Command, args []string) error {
	if err := capacityFlags.ValidateFlags(); err != nil {
		return err
	}
	if err := exclusive(cmd, "cover", "cover-file"); err != nil {
		return err
	}
	method, err := services.ParseMethod(capacityMethod)
	if err != nil {
		return err
	}
	cover, err := readCover(cmd)
	if err != nil {
		return err
	}

	stego, _, _, err := newStego(cmd)
	if err != nil {
		return err
	}
	capacity, err := stego.Capacity(method, cover)
	if err != nil {
		return err
	}

	if capacityFlags.Quiet {
		return nil
	}
	return writeOutput(cmd.OutOrStdout(), capacityFlags.OutputFormat, capacity, func(w io.Writer) {
		fmt.Fprintf(w, "Method\t%s\n", capacity.Method)
		if capacity.Unbounded {
			fmt.Fprintln(w, "Capacity\tunbounded")
			return
		}
		fmt.Fprintf(w, "Bits\t%d\n", capacity.Bits)
		fmt.Fprintf(w, "Bytes\t%d\n", capacity.Bytes)
	})
}
