package stripe

// WriteOperation addresses one byte range of one physical object to write.
// Data ops carry the caller's logical object number; parity ops carry the
// base (first data) object number of their line — see lineBase — so that
// an OSD's filesize bookkeeping, driven by ObjectNumber, never overshoots
// into the next line.
type WriteOperation struct {
	ObjectNumber uint64
	// OSDOffsets is a singleton slice holding the OSD index this op
	// targets. It stays a slice, rather than a bare field, to mirror the
	// wire-level operation record the dispatcher actually consumes.
	OSDOffsets []uint32
	ReqSize    uint32
	ReqOffset  uint32
	Data       DataRef
}

// ReadOperation addresses one byte range of one physical object to read.
// Data is always a destination: for data ops it is a window into the
// caller's buffer, for precursor and parity ops it is scratch the
// reconciler owns and must release.
type ReadOperation struct {
	ObjectNumber uint64
	OSDOffsets   []uint32
	ReqSize      uint32
	ReqOffset    uint32
	Data         DataRef
}
