package stripe

import "errors"

// ErrInvalidOffset is returned by TranslateWrite when the offset is not
// stripe-line aligned. The caller is expected to quantize writes; there is
// no read-modify-write path here (see the package doc on TranslateWrite).
var ErrInvalidOffset = errors.New("stripe: offset is not stripe-line aligned")

// ErrTooManyFailures is returned by ProcessReads when some stripe line lost
// more than one operation — more than XOR parity can recover.
var ErrTooManyFailures = errors.New("stripe: more than one object failed in a stripe line")
