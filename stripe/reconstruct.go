package stripe

// Reconstruct XORs together a stripe line's surviving members to recover
// the one that is missing: for single XOR parity, every member of a line
// (all data objects plus parity) XORs to zero, so the missing member is
// exactly the XOR of whichever members are present.
//
// This is the same fold ProcessReads performs inline while walking a read's
// lines; Reconstruct exposes it standalone for callers that already hold
// whole objects and just need to rebuild one of them, such as the heal
// worker re-deriving a particle for re-upload.
func Reconstruct(size int, contributors ...[]byte) []byte {
	dst := make([]byte, size)
	for _, buf := range contributors {
		n := len(buf)
		if n > size {
			n = size
		}
		xorInto(dst[:n], buf[:n])
	}
	return dst
}
