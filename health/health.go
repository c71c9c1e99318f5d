// Package health reports which OSDs in a group are currently reachable,
// the way backend/raid3's checkAllBackendsAvailable reports backend
// availability: a quick parallel probe of every member, collected through a
// result channel rather than a waitgroup-guarded slice.
package health

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leon1227/xtreemfs/osd"
)

// ErrDegraded is wrapped into the error FormatDegradedModeError produces,
// so callers can detect a degraded group with errors.Is without parsing
// the human-readable message.
var ErrDegraded = errors.New("health: group is degraded")

// Report is the per-OSD outcome of a Probe call.
type Report struct {
	Available []bool
}

// AllAvailable reports whether every OSD in the group answered.
func (r Report) AllAvailable() bool {
	for _, ok := range r.Available {
		if !ok {
			return false
		}
	}
	return true
}

type probeResult struct {
	index     uint32
	available bool
}

// Probe checks every OSD in store concurrently and returns a Report.
// Availability here mirrors the Store's own down-flag exactly — there is
// no real network round trip to attempt in this module's OSD stand-in —
// but the probe is still driven through a result channel, not a direct
// slice read under the store's lock, so a future transport-backed Store
// can plug in a real connectivity check per OSD without changing this
// function's shape.
func Probe(ctx context.Context, store *osd.Store) Report {
	width := store.Width()
	results := make(chan probeResult, width)

	for i := 0; i < width; i++ {
		i := uint32(i)
		go func() {
			select {
			case <-ctx.Done():
				results <- probeResult{index: i, available: false}
			default:
				results <- probeResult{index: i, available: store.Available(i)}
			}
		}()
	}

	available := make([]bool, width)
	for i := 0; i < width; i++ {
		r := <-results
		available[r.index] = r.available
	}
	return Report{Available: available}
}

// FormatDegradedModeError builds a user-facing error describing which OSDs
// in the group are down, in the same status-icon style as
// backend/raid3's formatDegradedModeError. It returns nil if report shows
// every OSD available.
func FormatDegradedModeError(report Report) error {
	if report.AllAvailable() {
		return nil
	}

	var b strings.Builder
	b.WriteString("stripe group is DEGRADED\n\nOSD status:\n")
	for i, ok := range report.Available {
		icon, status := "✅", "available"
		if !ok {
			icon, status = "❌", "UNAVAILABLE"
		}
		fmt.Fprintf(&b, "  %s osd %d: %s\n", icon, i, status)
	}
	b.WriteString("\nReads still work if at most one OSD per stripe line is down (parity reconstruction). ")
	b.WriteString("Writes to any line touching a down OSD will fail until it is restored or rebuilt.\n")

	return fmt.Errorf("%s: %w", b.String(), ErrDegraded)
}
