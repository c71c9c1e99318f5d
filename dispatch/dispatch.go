// Package dispatch issues the operation lists produced by the stripe
// translator against an OSD store, fanning every operation in a list out
// to its own goroutine so one slow or unavailable OSD never blocks the
// others.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/leon1227/xtreemfs/osd"
	"github.com/leon1227/xtreemfs/stripe"
)

// ErrOSDUnavailable is a dispatcher-level sentinel for an op whose OSD is
// down. Write and Read do not wrap or log it themselves: their failures
// carry the store's own osd.ErrUnavailable. It never reaches the stripe
// package: ProcessReads only ever sees a false bit.
var ErrOSDUnavailable = errors.New("dispatch: osd unavailable")

// Dispatcher drives a Store on behalf of the stripe translator.
type Dispatcher struct {
	store *osd.Store
	log   *logrus.Entry
}

// New builds a Dispatcher over store, logging at the given logger (or
// logrus.StandardLogger() if nil).
func New(store *osd.Store, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{store: store, log: log.WithField("component", "dispatch")}
}

// Write issues every WriteOperation concurrently and returns the first
// error encountered. After that error, writes that have not started yet
// are skipped; writes already in progress run to completion. Unlike
// Read, a write that cannot reach every targeted OSD is not partially
// recoverable — there is no parity path for an op that never happened —
// so Write fails the whole call rather than returning a bitmap.
func (d *Dispatcher) Write(ctx context.Context, ops []stripe.WriteOperation) error {
	g, gCtx := errgroup.WithContext(ctx)
	for i := range ops {
		op := ops[i]
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}
			osdIndex := op.OSDOffsets[0]
			data := op.Data.Bytes()[:op.ReqSize]
			if err := d.store.WriteParticle(osdIndex, op.ObjectNumber, data); err != nil {
				d.log.WithFields(logrus.Fields{
					"osd":    osdIndex,
					"object": op.ObjectNumber,
				}).WithError(err).Error("write failed")
				return fmt.Errorf("dispatch: write osd=%d object=%d: %w", osdIndex, op.ObjectNumber, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Read issues every ReadOperation concurrently, filling each op's
// destination buffer in place, and returns the per-op completion bitmap
// ProcessReads expects. A read never fails the whole call: an op whose OSD
// is unavailable, or whose context is canceled, simply clears its bit.
func (d *Dispatcher) Read(ctx context.Context, ops []stripe.ReadOperation) []bool {
	successful := make([]bool, len(ops))
	g, gCtx := errgroup.WithContext(ctx)
	for i := range ops {
		i, op := i, ops[i]
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
			}
			osdIndex := op.OSDOffsets[0]
			data, err := d.store.ReadParticle(osdIndex, op.ObjectNumber, int(op.ReqOffset), int(op.ReqSize))
			if err != nil {
				d.log.WithFields(logrus.Fields{
					"osd":    osdIndex,
					"object": op.ObjectNumber,
				}).WithError(err).Warn("read failed")
				return nil
			}
			copy(op.Data.Bytes(), data)
			successful[i] = true
			return nil
		})
	}
	_ = g.Wait() // Read's goroutines never return a non-nil error; the group only provides gCtx.
	return successful
}

// ReceivedBytes sums the ReqSize of the successful data operations in ops
// (not the byte count a store actually returned for them), in the exact
// accounting ProcessReads expects: parity operations,
// which occupy the tail of the list (one per line), never contribute.
func ReceivedBytes(ops []stripe.ReadOperation, successful []bool, width int) int {
	if len(ops) == 0 {
		return 0
	}
	lines := 1 + (len(ops)-1)/width
	dataCount := len(ops) - lines
	received := 0
	for i := 0; i < dataCount; i++ {
		if successful[i] {
			received += int(ops[i].ReqSize)
		}
	}
	return received
}
