package stripe_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leon1227/xtreemfs/stripe"
)

// testPolicy mirrors the worked examples in the design doc: 4-byte
// stripes, width 3 (2 data + 1 parity).
func testPolicy() stripe.Policy {
	return stripe.NewPolicy(4, 3, 1)
}

func TestTranslateWrite_FullLine(t *testing.T) {
	ops, err := stripe.TranslateWrite([]byte("ABCDEFGH"), 0, testPolicy())
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, uint64(0), ops[0].ObjectNumber)
	assert.Equal(t, []uint32{0}, ops[0].OSDOffsets)
	assert.Equal(t, "ABCD", string(ops[0].Data.Bytes()))

	assert.Equal(t, uint64(1), ops[1].ObjectNumber)
	assert.Equal(t, []uint32{1}, ops[1].OSDOffsets)
	assert.Equal(t, "EFGH", string(ops[1].Data.Bytes()))

	assert.Equal(t, uint64(0), ops[2].ObjectNumber, "parity carries the line's base object number")
	assert.Equal(t, []uint32{2}, ops[2].OSDOffsets)
	assert.True(t, ops[2].Data.IsOwned())
	assert.Equal(t, xorBytes("ABCD", "EFGH"), ops[2].Data.Bytes())
}

func TestTranslateWrite_TwoLines(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte('A' + i)
	}

	ops, err := stripe.TranslateWrite(buf, 0, testPolicy())
	require.NoError(t, err)
	require.Len(t, ops, 6)

	// Per-line (data, data, parity) groups.
	for _, line := range []int{0, 1} {
		base := line * 3
		assert.Equal(t, uint64(line*2), ops[base].ObjectNumber)
		assert.Equal(t, uint64(line*2+1), ops[base+1].ObjectNumber)
		assert.Equal(t, uint64(line*2), ops[base+2].ObjectNumber)
		assert.Equal(t, xorBytes(string(ops[base].Data.Bytes()), string(ops[base+1].Data.Bytes())), ops[base+2].Data.Bytes())
	}
}

func TestTranslateWrite_PartialFinalObject(t *testing.T) {
	ops, err := stripe.TranslateWrite([]byte("ABCDEF"), 0, testPolicy())
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, "ABCD", string(ops[0].Data.Bytes()))
	assert.Equal(t, "EF", string(ops[1].Data.Bytes()))
	assert.Equal(t, uint32(2), ops[1].ReqSize)

	assert.Equal(t, uint32(4), ops[2].ReqSize)
	assert.Equal(t, xorBytes("ABCD", "EF\x00\x00"), ops[2].Data.Bytes())
}

func TestTranslateWrite_EmptyBuffer(t *testing.T) {
	ops, err := stripe.TranslateWrite(nil, 0, testPolicy())
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestTranslateWrite_UnalignedOffsetFails(t *testing.T) {
	_, err := stripe.TranslateWrite([]byte("AB"), 1, testPolicy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, stripe.ErrInvalidOffset))
}

func TestTranslateWrite_Purity(t *testing.T) {
	buf := []byte("ABCDEFGHIJ")
	a, errA := stripe.TranslateWrite(buf, 0, testPolicy())
	b, errB := stripe.TranslateWrite(buf, 0, testPolicy())
	require.NoError(t, errA)
	require.NoError(t, errB)
	require.Len(t, a, len(b))
	for i := range a {
		assert.Equal(t, a[i].ObjectNumber, b[i].ObjectNumber)
		assert.Equal(t, a[i].OSDOffsets, b[i].OSDOffsets)
		assert.Equal(t, a[i].ReqSize, b[i].ReqSize)
		assert.Equal(t, a[i].Data.Bytes(), b[i].Data.Bytes())
	}
}

// fakeOSDGroup is a minimal in-memory stand-in for a stripe's OSDs, used
// only to exercise a full write -> read -> reconcile round trip without
// pulling in the dispatch/osd packages.
type fakeOSDGroup struct {
	objects map[uint64]map[uint32][]byte // object number -> osd index -> bytes
	down    map[uint32]bool
}

func newFakeOSDGroup() *fakeOSDGroup {
	return &fakeOSDGroup{objects: make(map[uint64]map[uint32][]byte), down: make(map[uint32]bool)}
}

func (g *fakeOSDGroup) write(ops []stripe.WriteOperation) {
	for _, op := range ops {
		osd := op.OSDOffsets[0]
		if g.objects[op.ObjectNumber] == nil {
			g.objects[op.ObjectNumber] = make(map[uint32][]byte)
		}
		data := make([]byte, op.ReqSize)
		copy(data, op.Data.Bytes()[:op.ReqSize])
		g.objects[op.ObjectNumber][osd] = data
	}
}

// read fills every op's destination buffer from the stored objects and
// returns the completion bitmap plus the total bytes actually delivered by
// the successful *data* ops (the contract ProcessReads expects: parity
// bytes are never counted in receivedBytes).
func (g *fakeOSDGroup) read(ops []stripe.ReadOperation, width int) ([]bool, int) {
	successful := make([]bool, len(ops))
	received := 0
	lines := 1 + (len(ops)-1)/width
	dataCount := len(ops) - lines
	for i, op := range ops {
		osd := op.OSDOffsets[0]
		if g.down[osd] {
			continue
		}
		stored, ok := g.objects[op.ObjectNumber][osd]
		if !ok {
			continue
		}
		n := copy(op.Data.Bytes(), stored[op.ReqOffset:])
		successful[i] = true
		if i < dataCount {
			received += n
		}
	}
	return successful, received
}

func xorBytes(a, b string) []byte {
	out := make([]byte, len(a))
	copy(out, a)
	for i := 0; i < len(b); i++ {
		out[i] ^= b[i]
	}
	return out
}

func TestRoundTrip_FullFileNoFailures(t *testing.T) {
	policy := testPolicy()
	group := newFakeOSDGroup()

	writeOps, err := stripe.TranslateWrite([]byte("ABCDEFGH"), 0, policy)
	require.NoError(t, err)
	group.write(writeOps)

	buf := make([]byte, 8)
	readOps, visible := stripe.TranslateRead(buf, 0, 8, policy)
	assert.Equal(t, len(readOps)-1, visible, "one line, one parity op excluded from the visible count")

	successful, received := group.read(readOps, policy.Width)
	n, err := stripe.ProcessReads(readOps, successful, policy, received, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "ABCDEFGH", string(buf))
}

func TestRoundTrip_OneDataOSDDown(t *testing.T) {
	policy := testPolicy()
	group := newFakeOSDGroup()

	writeOps, err := stripe.TranslateWrite([]byte("ABCDEFGH"), 0, policy)
	require.NoError(t, err)
	group.write(writeOps)
	group.down[1] = true // OSD 1 carries data object 1 ("EFGH")

	buf := make([]byte, 8)
	readOps, _ := stripe.TranslateRead(buf, 0, 8, policy)
	successful, received := group.read(readOps, policy.Width)

	n, err := stripe.ProcessReads(readOps, successful, policy, received, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "ABCDEFGH", string(buf))
}

func TestRoundTrip_EachSingleFailureInLineReconstructs(t *testing.T) {
	policy := testPolicy()
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte('A' + i)
	}

	for failOSD := uint32(0); failOSD < 3; failOSD++ {
		group := newFakeOSDGroup()
		writeOps, err := stripe.TranslateWrite(buf, 0, policy)
		require.NoError(t, err)
		group.write(writeOps)
		group.down[failOSD] = true

		got := make([]byte, 16)
		readOps, _ := stripe.TranslateRead(got, 0, 16, policy)
		successful, received := group.read(readOps, policy.Width)

		n, err := stripe.ProcessReads(readOps, successful, policy, received, 0)
		require.NoError(t, err, "osd %d down", failOSD)
		assert.Equal(t, 16, n)
		assert.Equal(t, buf, got, "osd %d down", failOSD)
	}
}

func TestRoundTrip_MidLineRead(t *testing.T) {
	policy := testPolicy()
	group := newFakeOSDGroup()

	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte('A' + i)
	}
	writeOps, err := stripe.TranslateWrite(buf, 0, policy)
	require.NoError(t, err)
	group.write(writeOps)

	got := make([]byte, 4)
	readOps, visible := stripe.TranslateRead(got, 4, 4, policy)
	// One precursor (object 0 of line 0) plus one data op (object 1) plus
	// one parity op: visible excludes only the parity op.
	assert.Equal(t, 2, visible)
	require.Len(t, readOps, 3)

	successful, received := group.read(readOps, policy.Width)
	n, err := stripe.ProcessReads(readOps, successful, policy, received, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, buf[4:8], got)
}

func TestRoundTrip_MidLineReadWithPrecursorFailure(t *testing.T) {
	policy := testPolicy()
	group := newFakeOSDGroup()

	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte('A' + i)
	}
	writeOps, err := stripe.TranslateWrite(buf, 0, policy)
	require.NoError(t, err)
	group.write(writeOps)
	group.down[0] = true // object 0 of line 0, the precursor this read needs

	got := make([]byte, 4)
	readOps, _ := stripe.TranslateRead(got, 4, 4, policy)
	successful, received := group.read(readOps, policy.Width)

	n, err := stripe.ProcessReads(readOps, successful, policy, received, 4)
	require.NoError(t, err, "the failed op is a precursor, not a requested byte, so this must not fail")
	assert.Equal(t, 4, n, "the precursor's own failure must not zero out the unrelated, successfully read payload")
	assert.Equal(t, buf[4:8], got)
}

func TestRoundTrip_TwoFailuresInLineFails(t *testing.T) {
	policy := testPolicy()
	group := newFakeOSDGroup()

	writeOps, err := stripe.TranslateWrite([]byte("ABCDEFGH"), 0, policy)
	require.NoError(t, err)
	group.write(writeOps)
	group.down[0] = true
	group.down[2] = true // data object 0 and parity both gone

	buf := make([]byte, 8)
	readOps, _ := stripe.TranslateRead(buf, 0, 8, policy)
	successful, received := group.read(readOps, policy.Width)

	_, err = stripe.ProcessReads(readOps, successful, policy, received, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, stripe.ErrTooManyFailures))
}

func TestRoundTrip_PartialFinalObjectReconstructs(t *testing.T) {
	policy := testPolicy()
	group := newFakeOSDGroup()

	writeOps, err := stripe.TranslateWrite([]byte("ABCDEF"), 0, policy) // trailing object is 2 bytes
	require.NoError(t, err)
	group.write(writeOps)
	group.down[1] = true // the partial data object itself goes missing

	buf := make([]byte, 6)
	readOps, _ := stripe.TranslateRead(buf, 0, 6, policy)
	successful, received := group.read(readOps, policy.Width)

	n, err := stripe.ProcessReads(readOps, successful, policy, received, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "ABCDEF", string(buf))
}
