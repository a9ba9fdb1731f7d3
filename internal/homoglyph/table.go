package homoglyph

// Pair maps a Latin letter to a visually identical Greek or Cyrillic letter.
type Pair struct {
	Latin      rune
	Substitute rune
}

var defaultPairs = []Pair{
	{'A', '\u0391'}, {'B', '\u0392'}, {'C', '\u03f9'}, {'E', '\u0395'},
	{'H', '\u0397'}, {'I', '\u0399'}, {'J', '\u0408'}, {'K', '\u039a'},
	{'M', '\u039c'}, {'N', '\u039d'}, {'O', '\u039f'}, {'P', '\u03a1'},
	{'S', '\u0405'}, {'T', '\u03a4'}, {'X', '\u03a7'}, {'Y', '\u03a5'},
	{'Z', '\u0396'},
	{'a', '\u0430'}, {'c', '\u0441'}, {'e', '\u0435'}, {'i', '\u0456'},
	{'j', '\u0458'}, {'o', '\u043e'}, {'p', '\u0440'}, {'s', '\u0455'},
	{'x', '\u0445'}, {'y', '\u0443'},
}

// Table holds a forward and inverse lookup built together once. It is
// immutable after construction and safe for concurrent use.
type Table struct {
	forward map[rune]rune
	inverse map[rune]rune
	pairs   []Pair
}

// NewTable builds a Table from pairs. Both the Latin letters and the
// substitutes must be distinct; a later duplicate replaces an earlier one.
func NewTable(pairs []Pair) *Table {
	t := &Table{
		forward: make(map[rune]rune, len(pairs)),
		inverse: make(map[rune]rune, len(pairs)),
		pairs:   make([]Pair, len(pairs)),
	}
	copy(t.pairs, pairs)
	for _, p := range pairs {
		t.forward[p.Latin] = p.Substitute
		t.inverse[p.Substitute] = p.Latin
	}
	return t
}

var defaultTable = NewTable(defaultPairs)

// DefaultTable returns the shared built-in table.
func DefaultTable() *Table {
	return defaultTable
}

// Substitute returns the look-alike for a Latin letter.
func (t *Table) Substitute(r rune) (rune, bool) {
	s, ok := t.forward[r]
	return s, ok
}

// Original returns the Latin letter a look-alike stands for.
func (t *Table) Original(r rune) (rune, bool) {
	o, ok := t.inverse[r]
	return o, ok
}

// IsCarrier reports whether r is a Latin letter that can carry a bit.
func (t *Table) IsCarrier(r rune) bool {
	_, ok := t.forward[r]
	return ok
}

// IsSubstitute reports whether r is one of the look-alike letters.
func (t *Table) IsSubstitute(r rune) bool {
	_, ok := t.inverse[r]
	return ok
}

// Pairs returns a copy of the table entries in their defined order.
func (t *Table) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

// Len returns the number of pairs.
func (t *Table) Len() int {
	return len(t.forward)
}
