package morse

import "strings"

// WordSeparator is the Morse symbol for a space between words.
const WordSeparator = "/"

var codes = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",
	'1': ".----", '2': "..---", '3': "...--", '4': "....-", '5': ".....",
	'6': "-....", '7': "--...", '8': "---..", '9': "----.", '0': "-----",
	' ': WordSeparator,
}

var letters = invert(codes)

func invert(m map[rune]string) map[string]rune {
	out := make(map[string]rune, len(m))
	for r, code := range m {
		out[code] = r
	}
	return out
}

// Code returns the Morse code of an upper-case letter, digit or space.
func Code(r rune) (string, bool) {
	c, ok := codes[r]
	return c, ok
}

// Letter returns the character a Morse code stands for.
func Letter(code string) (rune, bool) {
	r, ok := letters[code]
	return r, ok
}

// Encode upper-cases text and renders it as space separated Morse codes.
// Characters without a code are dropped.
func Encode(text string) string {
	upper := Normalize(text)
	out := make([]string, 0, len(upper))
	for _, r := range upper {
		if c, ok := codes[r]; ok {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

// Decode turns space separated Morse codes back into text, skipping codes
// that have no table entry.
func Decode(morse string) string {
	var b strings.Builder
	for _, code := range strings.Split(morse, " ") {
		if r, ok := letters[code]; ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}
