package stripe

import "fmt"

// TranslateWrite converts a contiguous write of buf at file offset offset
// into an ordered list of WriteOperations covering both the data objects
// and the parity object of every stripe line the write touches.
//
// offset must be stripe-line aligned, i.e. a multiple of
// StripeSize*DataWidth: TranslateWrite has no read-modify-write path, so an
// unaligned offset would require reading back the rest of the line before
// parity could be recomputed. Callers are expected to quantize writes
// themselves; an unaligned offset fails with ErrInvalidOffset rather than
// silently producing wrong parity.
//
// Per line, data operations are emitted first in increasing object order,
// each carrying a Borrowed slice of buf, followed by exactly one parity
// operation carrying an Owned, synthesized buffer. A zero-length buf
// produces no operations at all.
func TranslateWrite(buf []byte, offset int64, policy Policy) ([]WriteOperation, error) {
	policy.Validate()

	stripeSize := int64(policy.StripeSize)
	dataWidth := policy.DataWidth()
	lineBytes := stripeSize * int64(dataWidth)

	if offset%lineBytes != 0 {
		return nil, fmt.Errorf("stripe: offset %d is not a multiple of the line size %d: %w", offset, lineBytes, ErrInvalidOffset)
	}

	size := len(buf)
	if size == 0 {
		return nil, nil
	}

	estimatedLines := size/int(lineBytes) + 1
	ops := make([]WriteOperation, 0, estimatedLines*(dataWidth+1))

	obj := uint64(offset / stripeSize)
	cursor := 0

	for cursor < size {
		base := obj
		lineBufs := make([][]byte, 0, dataWidth)

		for i := 0; i < dataWidth && cursor < size; i++ {
			reqSize := size - cursor
			if reqSize > policy.StripeSize {
				reqSize = policy.StripeSize
			}
			data := buf[cursor : cursor+reqSize]

			ops = append(ops, WriteOperation{
				ObjectNumber: obj,
				OSDOffsets:   []uint32{osdIndex(obj, policy)},
				ReqSize:      uint32(reqSize),
				Data:         Borrowed(data),
			})

			lineBufs = append(lineBufs, data)
			cursor += reqSize
			obj++
		}

		parity, parityReqSize := synthesizeParity(lineBufs, policy.StripeSize)
		ops = append(ops, WriteOperation{
			ObjectNumber: base,
			OSDOffsets:   []uint32{uint32(dataWidth)},
			ReqSize:      uint32(parityReqSize),
			Data:         Owned(parity),
		})
	}

	return ops, nil
}
