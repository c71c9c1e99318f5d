package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLineBase checks the data-object-to-line-base mapping that every other
// address computation in this package builds on.
func TestLineBase(t *testing.T) {
	tests := []struct {
		name       string
		dataObject uint64
		dataWidth  int
		want       uint64
	}{
		{"first object of line", 0, 2, 0},
		{"second object of first line", 1, 2, 0},
		{"first object of second line", 2, 2, 2},
		{"middle of a wide line", 7, 4, 4},
		{"dataWidth of 1, every object its own line", 5, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lineBase(tt.dataObject, tt.dataWidth))
		})
	}
}

// TestOSDIndex checks the logical-to-OSD mapping: data objects are numbered
// contiguously, skipping the parity slot(s) interleaved every dataWidth
// objects, and the resulting physical number is reduced mod the width.
func TestOSDIndex(t *testing.T) {
	policy := NewPolicy(4096, 3, 1) // dataWidth 2, width 3

	tests := []struct {
		name       string
		dataObject uint64
		want       uint32
	}{
		{"first object of first line", 0, 0},
		{"second object of first line", 1, 1},
		{"first object of second line", 2, 0},
		{"second object of second line", 3, 1},
		{"first object of third line", 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, osdIndex(tt.dataObject, policy))
		})
	}
}

func TestXorInto(t *testing.T) {
	dst := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	xorInto(dst, []byte{0x0F, 0x0F})
	assert.Equal(t, []byte{0xF0, 0xF0, 0xFF, 0xFF}, dst, "remainder of dst beyond len(src) is left untouched")
}

func TestSynthesizeParity_SingleBuffer(t *testing.T) {
	parity, size := synthesizeParity([][]byte{[]byte("AB")}, 4)
	assert.Equal(t, 2, size, "a single-operand line needs no folding, so parity covers only that operand's own extent")
	assert.Equal(t, []byte("AB\x00\x00"), parity)
}

func TestSynthesizeParity_MultipleBuffers(t *testing.T) {
	parity, size := synthesizeParity([][]byte{[]byte("AB"), []byte("CD")}, 4)
	assert.Equal(t, 4, size)
	want := make([]byte, 4)
	copy(want, "AB")
	xorInto(want, []byte("CD"))
	assert.Equal(t, want, parity)
}

func TestSynthesizeParity_ShortFinalBuffer(t *testing.T) {
	// Two data buffers, the second shorter than stripeSize: parity still
	// covers the full stripe since the line has more than one operand.
	parity, size := synthesizeParity([][]byte{[]byte("ABCD"), []byte("EF")}, 4)
	assert.Equal(t, 4, size)
	want := []byte("ABCD")
	want = append([]byte(nil), want...)
	xorInto(want, []byte("EF"))
	assert.Equal(t, want, parity)
}

// TestXorContribute_Aligned covers the common case: the contributing op's
// ReqOffset matches the failed op's offset, so no shift is needed.
func TestXorContribute_Aligned(t *testing.T) {
	dst := make([]byte, 4)
	xorContribute(dst, 4, []byte("ABCD"), 0, 4, 0)
	assert.Equal(t, []byte("ABCD"), dst)
}

// TestXorContribute_OffsetShift covers a contributor whose own intra-object
// offset differs from the failed op's, which happens when reconstructing a
// mid-object read against a precursor that always reads from offset 0.
func TestXorContribute_OffsetShift(t *testing.T) {
	dst := make([]byte, 2)
	// Failed op wanted bytes [2:4) of the object; contributor has the whole
	// object starting at offset 0.
	xorContribute(dst, 2, []byte("ABCD"), 0, 4, 2)
	assert.Equal(t, []byte("CD"), dst)
}

// TestXorContribute_ShortContributor covers a contributor whose reqSize is
// smaller than the failed op's own extent, e.g. a partial-line parity or
// precursor buffer — only the bytes the contributor actually carries are
// XORed in, the rest of dst is left untouched.
func TestXorContribute_ShortContributor(t *testing.T) {
	dst := make([]byte, 4)
	xorContribute(dst, 4, []byte("ABCD"), 0, 2, 0)
	assert.Equal(t, []byte{'A', 'B', 0, 0}, dst, "bytes beyond the trimmed reqSize are never touched")
}
