package stripe

// DataRef is a tagged reference to the bytes behind an operation. It
// replaces the owns_data boolean of the original design with a variant
// that makes release explicit and centrally called instead of scattered
// through the reconciler: a Borrowed ref points into memory the caller
// still owns (the user buffer), an Owned ref points at a buffer the
// translator synthesized (parity, or read-side scratch) and that the
// reconciler must release once it is done with it.
type DataRef struct {
	bytes []byte
	owned bool
}

// Borrowed wraps a slice the translator does not own, typically a window
// into the caller's buffer.
func Borrowed(b []byte) DataRef {
	return DataRef{bytes: b}
}

// Owned wraps a buffer the translator allocated itself.
func Owned(b []byte) DataRef {
	return DataRef{bytes: b, owned: true}
}

// Bytes returns the referenced slice.
func (d DataRef) Bytes() []byte {
	return d.bytes
}

// IsOwned reports whether the reference owns its buffer and must be
// released by the reconciler.
func (d DataRef) IsOwned() bool {
	return d.owned
}

// Release drops an owned buffer so it can be collected. It is a no-op for
// borrowed references, which belong to the caller.
func (d *DataRef) Release() {
	if d.owned {
		d.bytes = nil
	}
}
