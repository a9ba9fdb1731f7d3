package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/conneroisu/stegtext/internal/services"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan PATH...",
	Short: "Analyze many files at once",
	Long: `Run the detector over files and directories in parallel.

Directories are walked recursively and contribute files with one of the
--ext extensions. Files named directly are always scanned.

Examples:
  stegtext scan ./inbox
  stegtext scan ./site --ext .html --workers 16 -o json
  stegtext scan notes/ --fail-on-detect`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

var (
	scanWorkers      int
	scanExtensions   []string
	scanMaxBytes     int64
	scanFailOnDetect bool
	scanFlags        *StandardFlags
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Files analyzed in parallel (default: number of CPUs)")
	scanCmd.Flags().StringSliceVar(&scanExtensions, "ext", services.DefaultScanExtensions, "File extensions to scan in directories")
	scanCmd.Flags().Int64Var(&scanMaxBytes, "max-bytes", services.DefaultMaxFileBytes, "Skip files larger than this")
	scanCmd.Flags().BoolVar(&scanFailOnDetect, "fail-on-detect", false, "Exit with an error when any file is flagged")
	scanFlags = AddStandardFlags(scanCmd, "output")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := scanFlags.ValidateFlags(); err != nil {
		return err
	}
	if scanWorkers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", scanWorkers)
	}

	stego, _, logger, err := newStego(cmd)
	if err != nil {
		return err
	}

	result, scanErr := services.NewScanService(stego, logger).Scan(cmd.Context(), services.ScanOptions{
		Paths:        args,
		Extensions:   scanExtensions,
		Workers:      scanWorkers,
		MaxFileBytes: scanMaxBytes,
	})
	if result == nil {
		return scanErr
	}

	if !scanFlags.Quiet {
		err := writeOutput(cmd.OutOrStdout(), scanFlags.OutputFormat, result, func(w io.Writer) {
			printScan(w, result, scanFlags.Verbose)
		})
		if err != nil {
			return err
		}
	}

	if scanErr != nil {
		return scanErr
	}
	if scanFailOnDetect && result.Flagged > 0 {
		return fmt.Errorf("%d of %d files flagged", result.Flagged, len(result.Files))
	}
	return nil
}

func printScan(w io.Writer, result *services.ScanResult, verbose bool) {
	fmt.Fprintln(w, "PATH\tVERDICT\tREASONS")
	for _, f := range result.Files {
		switch {
		case f.Error != "":
			fmt.Fprintf(w, "%s\terror\t%s\n", f.Path, f.Error)
		case f.Detection.Detected:
			fmt.Fprintf(w, "%s\tflagged\t%s\n", f.Path, strings.Join(f.Detection.Reasons, "; "))
		case verbose:
			fmt.Fprintf(w, "%s\tclean\t\n", f.Path)
		}
	}
	fmt.Fprintf(w, "\n%d files, %d flagged, %d failed in %s\n",
		len(result.Files), result.Flagged, result.Failed, result.Duration.Round(time.Millisecond))
}
