package stripe

import "fmt"

// ProcessReads reconciles the completion bitmap of an op list produced by
// TranslateRead against what was actually received, returning the number
// of bytes placed at the user-visible prefix of the caller's buffer.
//
// received, as dispatch.ReceivedBytes computes it, only ever counts bytes
// from data operations that actually succeeded — front-pad precursors
// included, reconstructed objects excluded. So the user-visible count is
// received, minus whatever of it came from precursor ops that happened to
// succeed (the caller never asked for those bytes), plus the ReqSize of
// every real (non-precursor) data op that failed and was reconstructed
// below (received could never have counted those, since the op itself
// never succeeded, but XOR-ing the line's survivors makes them just as
// valid as a direct read). A line that lost two or more operations is
// unrecoverable and fails the whole call with ErrTooManyFailures before
// anything is reconstructed.
//
// In both paths every parity scratch buffer and every precursor buffer is
// released before returning. Data-operation buffers that are not owned
// (i.e. windows into the caller's own buffer) are never touched here.
func ProcessReads(ops []ReadOperation, successful []bool, policy Policy, received int, offset int64) (int, error) {
	policy.Validate()

	if len(ops) == 0 {
		return received, nil
	}

	width := policy.Width
	dataWidth := policy.DataWidth()
	stripeSize := int64(policy.StripeSize)

	// Parity operations occupy the tail of the list, one per line:
	// TranslateRead appends precursors, then every line's data ops, then
	// every line's parity op, so the line count recovers directly from
	// the total op count and the line width.
	lines := 1 + (len(ops)-1)/width
	dataCount := len(ops) - lines
	dataOps := ops[:dataCount]
	parityOps := ops[dataCount:]
	dataOK := successful[:dataCount]
	parityOK := successful[dataCount:]

	// The first numPrecursors entries of dataOps are front-pad precursors
	// (see TranslateRead): never user-visible, whether or not they
	// succeeded. Only the ones that actually succeeded drew bytes into
	// received in the first place, so only those are subtracted back out
	// — a precursor that itself failed already contributed nothing.
	numPrecursors := int((offset / stripeSize) % int64(dataWidth))
	precursorBytes := 0
	for i := 0; i < numPrecursors; i++ {
		if dataOK[i] {
			precursorBytes += int(dataOps[i].ReqSize)
		}
	}

	release := func() {
		for i := range dataOps {
			if dataOps[i].Data.IsOwned() {
				dataOps[i].Data.Release()
			}
		}
		for i := range parityOps {
			parityOps[i].Data.Release()
		}
	}

	allDataOK := true
	for _, ok := range dataOK {
		if !ok {
			allDataOK = false
			break
		}
	}
	if allDataOK {
		release()
		return received - precursorBytes, nil
	}

	// recovered accumulates the ReqSize of every real (non-precursor)
	// data op that failed and was reconstructed: received never counted
	// these bytes, since the operation itself never succeeded, but once
	// XORed back in below they are exactly as valid as a direct read.
	recovered := 0

	for line := 0; line < lines; line++ {
		start := line * dataWidth
		end := start + dataWidth
		if end > dataCount {
			end = dataCount
		}
		lineData := dataOps[start:end]
		lineDataOK := dataOK[start:end]
		lineParityOK := parityOK[line]

		missing := -1
		missingCount := 0
		for j, ok := range lineDataOK {
			if !ok {
				missingCount++
				missing = j
			}
		}
		if !lineParityOK {
			missingCount++
		}
		if missingCount > 1 {
			release()
			return 0, fmt.Errorf("stripe: line %d lost %d operations: %w", line, missingCount, ErrTooManyFailures)
		}

		if missing == -1 {
			// At most the parity bit is clear; the data already delivered
			// everything, so there is nothing to rebuild.
			continue
		}

		failed := &lineData[missing]
		m := int(failed.ReqSize)
		o := int(failed.ReqOffset)
		dst := failed.Data.Bytes()
		for i := 0; i < m; i++ {
			dst[i] = 0
		}

		for j := range lineData {
			if j == missing {
				continue
			}
			op := lineData[j]
			xorContribute(dst, m, op.Data.Bytes(), int(op.ReqOffset), int(op.ReqSize), o)
		}

		// Parity is always applied at its nominal size: it is the last
		// contributor applied.
		pOp := parityOps[line]
		xorContribute(dst, m, pOp.Data.Bytes(), int(pOp.ReqOffset), int(pOp.ReqSize), o)

		if start+missing >= numPrecursors {
			recovered += m
		}
	}

	release()
	return received - precursorBytes + recovered, nil
}

// xorContribute XORs up to reqSize bytes of a contributing op's buffer
// into dst[0:m], aligning the contributor's own intra-object offset
// reqOffset against the failed op's offset o.
func xorContribute(dst []byte, m int, buf []byte, reqOffset, reqSize, o int) {
	start := o - reqOffset
	length := reqSize
	if length > m {
		length = m
	}
	if start < 0 {
		length += start
		start = 0
	}
	if length <= 0 {
		return
	}
	if start+length > len(buf) {
		length = len(buf) - start
	}
	if length <= 0 {
		return
	}
	for i := 0; i < length; i++ {
		dst[i] ^= buf[start+i]
	}
}
