// Package bitstream converts payload bytes to and from the bit sequence that
// every hiding method embeds.
//
// A payload unit is one byte. Text secrets travel as their UTF-8 encoding, so
// characters outside Latin-1 take several units and still round-trip exactly.
package bitstream

// BitsPerUnit is the fixed width of one payload unit.
const BitsPerUnit = 8

// Pack expands every byte to eight bits, most significant bit first.
func Pack(payload []byte) []bool {
	bits := make([]bool, 0, len(payload)*BitsPerUnit)
	for _, b := range payload {
		for shift := BitsPerUnit - 1; shift >= 0; shift-- {
			bits = append(bits, b&(1<<uint(shift)) != 0)
		}
	}
	return bits
}

// Unpack groups bits back into bytes. A trailing group shorter than eight
// bits is discarded.
func Unpack(bits []bool) []byte {
	n := len(bits) / BitsPerUnit
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var b byte
		for _, bit := range bits[i*BitsPerUnit : (i+1)*BitsPerUnit] {
			b <<= 1
			if bit {
				b |= 1
			}
		}
		out[i] = b
	}
	return out
}

// Len returns the number of bits Pack produces for a payload of n bytes.
func Len(n int) int {
	return n * BitsPerUnit
}
