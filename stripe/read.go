package stripe

// TranslateRead converts a request for size bytes of buf starting at file
// offset offset into an ordered list of ReadOperations, plus the number of
// those operations that are user-visible data (as opposed to parity).
//
// offset need not be stripe-line aligned, nor even object aligned: unlike
// TranslateWrite, a read may start mid-object. If it does, the data object
// containing offset is not itself the first object of its line, so the
// translator also emits "precursor" reads for every data object of that
// line that precedes it — not because the caller asked for those bytes,
// but because reconstructing the requested object, if its OSD turns out to
// be unavailable, needs every other data object (and parity) of the same
// line. Precursors are inserted at the front of the returned list, each
// carrying an Owned scratch buffer the reconciler must release.
//
// After any precursors, the list is grouped by line: that line's data
// operations (each carrying a Borrowed window of buf), with every line's
// parity operation appended, in order, after all the data operations — not
// interleaved per line. The reconciler relies on this exact shape: parity
// operations occupy the tail of the list, one per line, and are located by
// arithmetic rather than a per-op role tag.
func TranslateRead(buf []byte, offset int64, size int, policy Policy) ([]ReadOperation, int) {
	policy.Validate()

	if size <= 0 {
		return nil, 0
	}

	stripeSize := int64(policy.StripeSize)
	dataWidth := policy.DataWidth()

	startObject := uint64(offset / stripeSize)
	within := int(startObject % uint64(dataWidth))
	startLineBase := startObject - uint64(within)

	precursors := make([]ReadOperation, 0, within)
	for i := 0; i < within; i++ {
		obj := startLineBase + uint64(i)
		precursors = append(precursors, ReadOperation{
			ObjectNumber: obj,
			OSDOffsets:   []uint32{osdIndex(obj, policy)},
			ReqSize:      uint32(stripeSize),
			Data:         Owned(make([]byte, stripeSize)),
		})
	}

	var dataOps []ReadOperation
	var parityOps []ReadOperation

	obj := startObject
	dst := 0
	first := true

	for dst < size {
		base := lineBase(obj, dataWidth)
		lineSizes := make([]int, 0, dataWidth)

		for int(obj-base) < dataWidth && dst < size {
			var reqOffset uint32
			if first {
				reqOffset = uint32(offset % stripeSize)
				first = false
			}

			avail := policy.StripeSize - int(reqOffset)
			reqSize := size - dst
			if reqSize > avail {
				reqSize = avail
			}

			dataOps = append(dataOps, ReadOperation{
				ObjectNumber: obj,
				OSDOffsets:   []uint32{osdIndex(obj, policy)},
				ReqSize:      uint32(reqSize),
				ReqOffset:    reqOffset,
				Data:         Borrowed(buf[dst : dst+reqSize]),
			})

			lineSizes = append(lineSizes, reqSize)
			dst += reqSize
			obj++
		}

		// The final line of the overall read mirrors TranslateWrite's
		// partial-line cases: a single partial data op needs only as much
		// parity as it itself spans (XOR of one operand is that operand),
		// while a full line or a multi-object partial needs the full
		// stripe so every line but the last always requests a full stripe.
		parityReqSize := policy.StripeSize
		if dst >= size && len(lineSizes) == 1 && lineSizes[0] < policy.StripeSize {
			parityReqSize = lineSizes[0]
		}

		parityOps = append(parityOps, ReadOperation{
			ObjectNumber: base,
			OSDOffsets:   []uint32{uint32(dataWidth)},
			ReqSize:      uint32(parityReqSize),
			Data:         Owned(make([]byte, parityReqSize)),
		})
	}

	total := len(precursors) + len(dataOps) + len(parityOps)
	ops := make([]ReadOperation, 0, total)
	ops = append(ops, precursors...)
	ops = append(ops, dataOps...)
	ops = append(ops, parityOps...)

	return ops, total - len(parityOps)
}
