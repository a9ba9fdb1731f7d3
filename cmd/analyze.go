package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/conneroisu/stegtext/internal/analyzer"
	"github.com/conneroisu/stegtext/internal/htmltext"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Check a text for hidden content",
	Long: `Score a suspect text for signs of steganography.

Four signals are reported: zero width characters, Cyrillic or Greek look-alike
letters, an unusual share of short words, and high character entropy.

With --compare-with the suspect is compared against its original cover,
including the shift in character frequencies.

Examples:
  stegtext analyze --file suspect.txt
  stegtext analyze --html --file page.html -o json
  stegtext analyze --file stego.txt --compare-with cover.txt -v`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var (
	analyzeHTML        bool
	analyzeCompareWith string
	analyzeFlags       *StandardFlags
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("text", "", "Text to analyze")
	analyzeCmd.Flags().StringP("file", "f", "", "Read the text from a file")
	analyzeCmd.Flags().BoolVar(&analyzeHTML, "html", false, "Treat the input as HTML and analyze only its visible text")
	analyzeCmd.Flags().StringVar(&analyzeCompareWith, "compare-with", "", "Original cover text to compare against")
	analyzeFlags = AddStandardFlags(analyzeCmd, "output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := analyzeFlags.ValidateFlags(); err != nil {
		return err
	}
	if err := exclusive(cmd, "text", "file"); err != nil {
		return err
	}

	text, err := readText(cmd, "text", "file", bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return err
	}
	if text, err = visible(text); err != nil {
		return err
	}

	stego, _, _, err := newStego(cmd)
	if err != nil {
		return err
	}

	if analyzeCompareWith == "" {
		detection := stego.Detect(text)
		if analyzeFlags.Quiet {
			return nil
		}
		return writeOutput(cmd.OutOrStdout(), analyzeFlags.OutputFormat, detection, func(w io.Writer) {
			printDetection(w, detection)
		})
	}

	original, err := readFile(analyzeCompareWith)
	if err != nil {
		return err
	}
	if original, err = visible(original); err != nil {
		return err
	}

	comparison := stego.Compare(original, text)
	if analyzeFlags.Quiet {
		return nil
	}
	return writeOutput(cmd.OutOrStdout(), analyzeFlags.OutputFormat, comparison, func(w io.Writer) {
		printComparison(w, comparison, analyzeFlags.Verbose)
	})
}

func visible(text string) (string, error) {
	if !analyzeHTML {
		return text, nil
	}
	return htmltext.VisibleString(text)
}

func printDetection(w io.Writer, d analyzer.Detection) {
	fmt.Fprintf(w, "Zero width characters\t%s\t%d\n", yesNo(d.HasZeroWidth), d.ZeroWidthCount)
	fmt.Fprintf(w, "Suspicious homoglyphs\t%s\t%d\n", yesNo(d.SuspiciousHomoglyphs), d.HomoglyphCount)
	fmt.Fprintf(w, "Unusual word lengths\t%s\t%.2f short\n", yesNo(d.UnusualWordDistribution), d.ShortWordRatio)
	fmt.Fprintf(w, "Unusual entropy\t%s\t%.2f bits\n", yesNo(d.UnusualEntropy), d.Entropy)

	verdict := "clean"
	if d.Detected {
		verdict = "steganography detected"
	}
	fmt.Fprintf(w, "Verdict\t%s\t\n", verdict)
	for _, reason := range d.Reasons {
		fmt.Fprintf(w, "\t- %s\t\n", reason)
	}
}

func printComparison(w io.Writer, c analyzer.Comparison, verbose bool) {
	fmt.Fprintf(w, "Length\t%d -> %d\t(%+d)\n", c.Changes.OriginalLength, c.Changes.StegoLength, c.Changes.LengthDifference)
	fmt.Fprintf(w, "Changed characters\t%d\t%.1f%%\n", c.Changes.DifferentChars, c.Changes.ChangeRatio*100)
	fmt.Fprintf(w, "Zero width ZWSP/ZWNJ/ZWJ\t%d/%d/%d\t%.1f%%\n",
		c.ZeroWidth.ZWSPCount, c.ZeroWidth.ZWNJCount, c.ZeroWidth.ZWJCount, c.ZeroWidth.Ratio*100)
	fmt.Fprintf(w, "Homoglyphs\t%d\t%.1f%%\n", c.Unicode.HomoglyphCount, c.Unicode.HomoglyphRatio*100)
	fmt.Fprintf(w, "Short/long words\t%d/%d\t%.2f short\n", c.Words.ShortWords, c.Words.LongWords, c.Words.ShortWordsRatio)
	fmt.Fprintf(w, "Entropy\t%.2f -> %.2f\tbits\n", c.OriginalEntropy, c.StegoEntropy)
	printDetection(w, c.Detection)

	if !verbose || len(c.Distribution) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CHARACTER\tORIGINAL\tSTEGO\tDELTA")
	for _, row := range c.Distribution {
		fmt.Fprintf(w, "%s\t%d\t%d\t%+d\n", strings.TrimSpace(row.Label), row.Original, row.Stego, row.Delta)
	}
}
