// Package stripe implements the erasure-coded stripe translator: it maps a
// file's byte-range reads and writes onto per-object operations spread
// across a group of OSDs, maintains XOR parity, and reconstructs a single
// missing object per stripe line from its surviving siblings.
//
// The package is pure and stateless. Every exported function takes its
// inputs as arguments and returns a fresh result; nothing here blocks,
// retries, or touches any transport. Dispatching the emitted operations to
// real OSDs, and deciding which ones succeeded, is the caller's job.
package stripe

import "fmt"

// Policy describes the fixed geometry of a stripe line: how many bytes
// live in one object, how many objects make up a line, and how many of
// those are parity. A Policy is an immutable value; translator calls never
// mutate it and may share one across goroutines freely.
type Policy struct {
	// StripeSize is the per-object chunk size in bytes, a positive
	// multiple of 1024.
	StripeSize int
	// Width is the total number of objects per stripe line (data +
	// parity), at least 2.
	Width int
	// ParityWidth is the number of parity objects per line. Only XOR
	// (ParityWidth == 1) is implemented.
	ParityWidth int
}

// DataWidth returns the number of data objects per line.
func (p Policy) DataWidth() int {
	return p.Width - p.ParityWidth
}

// Validate panics if the policy violates one of its structural invariants.
// These are programmer-contract violations (a misconfigured Policy value),
// not runtime input errors, so they panic rather than return an error —
// the same distinction the translator draws between ErrInvalidOffset (a
// caller mistake surfaced as an error) and a broken Policy (a bug).
func (p Policy) Validate() {
	if p.StripeSize <= 0 || p.StripeSize%1024 != 0 {
		panic(fmt.Sprintf("stripe: stripe size %d must be a positive multiple of 1024", p.StripeSize))
	}
	if p.Width < 2 {
		panic(fmt.Sprintf("stripe: width %d must be at least 2", p.Width))
	}
	if p.ParityWidth != 1 {
		panic(fmt.Sprintf("stripe: parity width %d unsupported, only single XOR parity is implemented", p.ParityWidth))
	}
	if p.ParityWidth >= p.Width {
		panic(fmt.Sprintf("stripe: parity width %d must be less than width %d", p.ParityWidth, p.Width))
	}
}

// NewPolicy builds and validates a Policy in one step.
func NewPolicy(stripeSize, width, parityWidth int) Policy {
	p := Policy{StripeSize: stripeSize, Width: width, ParityWidth: parityWidth}
	p.Validate()
	return p
}
