package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var wordlistsCmd = &cobra.Command{
	Use:   "wordlists",
	Short: "Show the active morse word lists",
	Long: `Show the short and long word lists the morse method draws from,
where they were loaded from, and whether every entry fits its class
(short words have at most three letters, long words more).

Examples:
  stegtext wordlists
  stegtext wordlists -o yaml`,
	Args: cobra.NoArgs,
	RunE: runWordLists,
}

var wordlistsFlags *StandardFlags

// WordListsReport is the output of the wordlists command.
type WordListsReport struct {
	ShortFile string   `json:"short_file" yaml:"short_file"`
	LongFile  string   `json:"long_file" yaml:"long_file"`
	Short     []string `json:"short" yaml:"short"`
	Long      []string `json:"long" yaml:"long"`
	Valid     bool     `json:"valid" yaml:"valid"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func init() {
	rootCmd.AddCommand(wordlistsCmd)
	wordlistsFlags = AddStandardFlags(wordlistsCmd, "output")
}

func runWordLists(cmd *cobra.Command, args []string) error {
	if err := wordlistsFlags.ValidateFlags(); err != nil {
		return err
	}
	stego, cfg, _, err := newStego(cmd)
	if err != nil {
		return err
	}

	words := stego.WordLists()
	report := WordListsReport{
		ShortFile: cfg.WordLists.ShortFile,
		LongFile:  cfg.WordLists.LongFile,
		Short:     words.Short(),
		Long:      words.Long(),
		Valid:     true,
	}
	if err := words.Validate(); err != nil {
		report.Valid = false
		report.Error = err.Error()
	}

	if wordlistsFlags.Quiet {
		return nil
	}
	return writeOutput(cmd.OutOrStdout(), wordlistsFlags.OutputFormat, report, func(w io.Writer) {
		fmt.Fprintf(w, "Short\t%s\t%d words\n", source(report.ShortFile), len(report.Short))
		fmt.Fprintf(w, "Long\t%s\t%d words\n", source(report.LongFile), len(report.Long))
		if report.Valid {
			fmt.Fprintln(w, "Valid\tyes\t")
		} else {
			fmt.Fprintf(w, "Valid\tno\t%s\n", report.Error)
		}
		if wordlistsFlags.Verbose {
			fmt.Fprintf(w, "\nShort words\t%s\t\n", strings.Join(report.Short, " "))
			fmt.Fprintf(w, "Long words\t%s\t\n", strings.Join(report.Long, " "))
		}
	})
}

func source(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
