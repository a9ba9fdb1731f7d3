package analyzer

import (
	"fmt"
	"sort"
	"unicode"

	"golang.org/x/text/unicode/runenames"
)

// DefaultTopN is how many of each text's most frequent runes CharDistribution
// keeps when the caller does not say.
const DefaultTopN = 10

// CharCount is one row of a side by side character distribution.
type CharCount struct {
	Rune     rune   `json:"rune" yaml:"rune"`
	Label    string `json:"label" yaml:"label"`
	Original int    `json:"original" yaml:"original"`
	Stego    int    `json:"stego" yaml:"stego"`
	Delta    int    `json:"delta" yaml:"delta"`
}

// CharDistribution returns counts for the union of the topN most frequent
// runes of original and of stego, most frequent in original first. It returns
// nil when either text is empty.
func CharDistribution(original, stego string, topN int) []CharCount {
	if original == "" || stego == "" {
		return nil
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	origCounts, origOrder := count(original)
	stegoCounts, stegoOrder := count(stego)

	seen := make(map[rune]bool)
	var rows []CharCount
	for _, top := range [][]rune{mostCommon(origCounts, origOrder, topN), mostCommon(stegoCounts, stegoOrder, topN)} {
		for _, r := range top {
			if seen[r] {
				continue
			}
			seen[r] = true
			rows = append(rows, CharCount{
				Rune:     r,
				Label:    Label(r),
				Original: origCounts[r],
				Stego:    stegoCounts[r],
				Delta:    stegoCounts[r] - origCounts[r],
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Original != rows[j].Original {
			return rows[i].Original > rows[j].Original
		}
		if rows[i].Stego != rows[j].Stego {
			return rows[i].Stego > rows[j].Stego
		}
		return rows[i].Rune < rows[j].Rune
	})
	return rows
}

// Label renders r for display. Printable runes are shown as themselves;
// anything else as its code point and Unicode name.
func Label(r rune) string {
	if unicode.IsPrint(r) {
		return string(r)
	}
	if name := runenames.Name(r); name != "" && name[0] != '<' {
		return fmt.Sprintf("U+%04X %s", r, name)
	}
	return fmt.Sprintf("U+%04X", r)
}

// count returns rune frequencies and the order runes first appeared in.
func count(text string) (map[rune]int, []rune) {
	counts := make(map[rune]int)
	var order []rune
	for _, r := range text {
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}
	return counts, order
}

// mostCommon returns the n most frequent runes, ties broken by first
// appearance.
func mostCommon(counts map[rune]int, order []rune, n int) []rune {
	ranked := append([]rune(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
