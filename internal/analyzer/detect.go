package analyzer

import (
	"fmt"
	"math"
	"strings"
)

// Range is an inclusive block of code points treated as suspicious.
type Range struct {
	Lo, Hi rune
	Name   string
}

// DefaultSuspiciousRanges are the blocks homoglyph and zero width channels
// draw from.
var DefaultSuspiciousRanges = []Range{
	{0x0370, 0x03FF, "Greek and Coptic"},
	{0x0400, 0x04FF, "Cyrillic"},
	{0x2000, 0x206F, "General Punctuation"},
}

// Thresholds tune the detection signals.
type Thresholds struct {
	// Entropy above this many bits per rune is unusual.
	EntropyThreshold float64 `json:"entropy_threshold" yaml:"entropy_threshold"`
	// Expected share of short words in natural prose.
	ShortRatioBaseline float64 `json:"short_ratio_baseline" yaml:"short_ratio_baseline"`
	// Allowed distance from the baseline before the mix is unusual.
	ShortRatioTolerance float64 `json:"short_ratio_tolerance" yaml:"short_ratio_tolerance"`
}

// DefaultThresholds returns the thresholds tuned for English prose.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EntropyThreshold:    4.5,
		ShortRatioBaseline:  0.55,
		ShortRatioTolerance: 0.2,
	}
}

// Detection is the verdict of Detect together with every signal behind it.
type Detection struct {
	HasZeroWidth            bool     `json:"has_zero_width" yaml:"has_zero_width"`
	ZeroWidthCount          int      `json:"zero_width_count" yaml:"zero_width_count"`
	SuspiciousHomoglyphs    bool     `json:"suspicious_homoglyphs" yaml:"suspicious_homoglyphs"`
	HomoglyphCount          int      `json:"homoglyph_count" yaml:"homoglyph_count"`
	UnusualWordDistribution bool     `json:"unusual_word_distribution" yaml:"unusual_word_distribution"`
	ShortWordRatio          float64  `json:"short_word_ratio" yaml:"short_word_ratio"`
	Entropy                 float64  `json:"entropy" yaml:"entropy"`
	UnusualEntropy          bool     `json:"unusual_entropy" yaml:"unusual_entropy"`
	Detected                bool     `json:"steganography_detected" yaml:"steganography_detected"`
	Reasons                 []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// Comparison is the full report for a cover and the stego text made from it.
type Comparison struct {
	Changes         TextChanges    `json:"changes" yaml:"changes"`
	ZeroWidth       ZeroWidthStats `json:"zero_width" yaml:"zero_width"`
	Unicode         UnicodeStats   `json:"unicode" yaml:"unicode"`
	Words           WordStats      `json:"words" yaml:"words"`
	OriginalEntropy float64        `json:"original_entropy" yaml:"original_entropy"`
	StegoEntropy    float64        `json:"stego_entropy" yaml:"stego_entropy"`
	Detection       Detection      `json:"detection" yaml:"detection"`
	Distribution    []CharCount    `json:"distribution,omitempty" yaml:"distribution,omitempty"`
}

// Detector scores texts against a fixed set of thresholds. It holds no
// mutable state and is safe for concurrent use.
type Detector struct {
	thresholds Thresholds
	ranges     []Range
}

// NewDetector returns a Detector using t and DefaultSuspiciousRanges.
func NewDetector(t Thresholds) *Detector {
	return &Detector{thresholds: t, ranges: DefaultSuspiciousRanges}
}

// Thresholds returns the detector's thresholds.
func (d *Detector) Thresholds() Thresholds {
	return d.thresholds
}

var defaultDetector = NewDetector(DefaultThresholds())

// Detect runs the default detector over text.
func Detect(text string) Detection {
	return defaultDetector.Detect(text)
}

// Compare runs the default detector in comparison mode.
func Compare(original, stego string, glyphs GlyphSet) Comparison {
	return defaultDetector.Compare(original, stego, glyphs)
}

// Detect combines four independent signals; the verdict is true when any
// of them fires.
func (d *Detector) Detect(text string) Detection {
	var det Detection

	det.ZeroWidthCount = AnalyzeZeroWidth(text).Total
	det.HasZeroWidth = det.ZeroWidthCount > 0
	if det.HasZeroWidth {
		det.Reasons = append(det.Reasons, fmt.Sprintf("%d zero width characters", det.ZeroWidthCount))
	}

	blocks := make(map[string]int)
	for _, r := range text {
		if name, ok := d.suspicious(r); ok {
			det.HomoglyphCount++
			blocks[name]++
		}
	}
	det.SuspiciousHomoglyphs = det.HomoglyphCount > 0
	if det.SuspiciousHomoglyphs {
		det.Reasons = append(det.Reasons, fmt.Sprintf("%d characters from %s", det.HomoglyphCount, blockList(blocks, d.ranges)))
	}

	if words := AnalyzeMorse(text); words.TotalWords > 0 {
		det.ShortWordRatio = words.ShortWordsRatio
		det.UnusualWordDistribution = math.Abs(det.ShortWordRatio-d.thresholds.ShortRatioBaseline) > d.thresholds.ShortRatioTolerance
		if det.UnusualWordDistribution {
			det.Reasons = append(det.Reasons, fmt.Sprintf("short word ratio %.2f is outside %.2f±%.2f",
				det.ShortWordRatio, d.thresholds.ShortRatioBaseline, d.thresholds.ShortRatioTolerance))
		}
	}

	det.Entropy = Entropy(text)
	det.UnusualEntropy = det.Entropy > d.thresholds.EntropyThreshold
	if det.UnusualEntropy {
		det.Reasons = append(det.Reasons, fmt.Sprintf("entropy %.2f exceeds %.2f bits", det.Entropy, d.thresholds.EntropyThreshold))
	}

	det.Detected = det.HasZeroWidth || det.SuspiciousHomoglyphs || det.UnusualWordDistribution || det.UnusualEntropy
	return det
}

// Compare reports how stego differs from original. glyphs may be nil, in
// which case no homoglyphs are counted.
func (d *Detector) Compare(original, stego string, glyphs GlyphSet) Comparison {
	return Comparison{
		Changes:         AnalyzeTextChanges(original, stego),
		ZeroWidth:       AnalyzeZeroWidth(stego),
		Unicode:         AnalyzeUnicode(stego, glyphs),
		Words:           AnalyzeMorse(stego),
		OriginalEntropy: Entropy(original),
		StegoEntropy:    Entropy(stego),
		Detection:       d.Detect(stego),
		Distribution:    CharDistribution(original, stego, DefaultTopN),
	}
}

func (d *Detector) suspicious(r rune) (string, bool) {
	for _, rg := range d.ranges {
		if r >= rg.Lo && r <= rg.Hi {
			return rg.Name, true
		}
	}
	return "", false
}

// blockList names the hit blocks in range order.
func blockList(hits map[string]int, ranges []Range) string {
	names := make([]string, 0, len(hits))
	for _, rg := range ranges {
		if hits[rg.Name] > 0 {
			names = append(names, rg.Name)
		}
	}
	return strings.Join(names, ", ")
}
