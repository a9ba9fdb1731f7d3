//go:build property

package bitstream

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBitStreamProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("unpack inverts pack", prop.ForAll(
		func(payload []byte) bool {
			return bytes.Equal(Unpack(Pack(payload)), payload)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("pack yields eight bits per byte", prop.ForAll(
		func(payload []byte) bool {
			return len(Pack(payload)) == 8*len(payload)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.Property("extra tail bits never change the result", prop.ForAll(
		func(payload []byte, tail int) bool {
			bits := Pack(payload)
			for i := 0; i < tail; i++ {
				bits = append(bits, i%2 == 0)
			}
			return bytes.Equal(Unpack(bits), payload)
		},
		gen.SliceOf(gen.UInt8()),
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}
