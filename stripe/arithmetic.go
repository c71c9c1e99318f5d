package stripe

// This file holds the address arithmetic shared by the write translator,
// read translator, and reconciler: mapping a logical (data-only) object
// number to the physical slot it occupies once parity is interleaved in,
// and the line bookkeeping built on top of that mapping.

// lineBase returns the first (logical) data object number of the line
// that contains dataObject.
func lineBase(dataObject uint64, dataWidth int) uint64 {
	dw := uint64(dataWidth)
	return dataObject - dataObject%dw
}

// LineBaseOf is the exported form of lineBase, for callers outside this
// package that need to locate a line from one of its members without
// duplicating the address arithmetic.
func LineBaseOf(dataObject uint64, policy Policy) uint64 {
	return lineBase(dataObject, policy.DataWidth())
}

// OSDIndexOf is the exported form of osdIndex, for the same reason as
// LineBaseOf; the heal worker uses it to find each line member's OSD.
func OSDIndexOf(dataObject uint64, policy Policy) uint32 {
	return osdIndex(dataObject, policy)
}

// osdIndex returns the physical OSD slot a logical data object lands on.
// Data objects are numbered contiguously, skipping parity positions; to
// find their real position we add one parity slot for every complete line
// already passed, then reduce mod the line width.
func osdIndex(dataObject uint64, policy Policy) uint32 {
	dw := uint64(policy.DataWidth())
	physical := dataObject + (dataObject/dw)*uint64(policy.ParityWidth)
	return uint32(physical % uint64(policy.Width))
}

// xorInto XORs src into the prefix of dst. dst must be at least as long as
// src; any remainder of dst beyond len(src) is left untouched, which is
// exactly the zero-padding behavior I2 requires for a short final object.
func xorInto(dst, src []byte) {
	for i := range src {
		dst[i] ^= src[i]
	}
}

// synthesizeParity computes the XOR parity buffer for one stripe line from
// its data buffers, and the byte extent that parity actually covers.
//
// A line with a single data buffer (dataWidth == 1, or a partial write/read
// that only ever touches the first object of its line) needs no folding:
// the XOR of one operand is that operand, so parity is simply a zero-padded
// copy, sized to that buffer's own extent. Any other line is built by
// copying the first buffer in (zero-padded to stripeSize) and XOR-folding
// every subsequent buffer into it, producing a full stripeSize parity
// buffer. This is the corrected form of the source's inline XOR loop: each
// buffer accumulates into the running parity rather than overwriting it.
func synthesizeParity(dataBufs [][]byte, stripeSize int) ([]byte, int) {
	parity := make([]byte, stripeSize)
	copy(parity, dataBufs[0])
	if len(dataBufs) == 1 {
		return parity, len(dataBufs[0])
	}
	for _, buf := range dataBufs[1:] {
		xorInto(parity, buf)
	}
	return parity, stripeSize
}
