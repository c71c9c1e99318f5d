// Package heal implements a background repair worker pool that re-derives
// a missing object from its surviving stripe-line siblings and re-uploads
// it once the object's own OSD becomes available again. It is adapted from
// backend/raid3's upload-queue-and-background-uploader pattern, retargeted
// at this package's own reconstruction math (stripe.Reconstruct) instead of
// raid3's even/odd/parity particle rebuild.
package heal

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/leon1227/xtreemfs/osd"
	"github.com/leon1227/xtreemfs/stripe"
)

// Job names one object that needs to be rebuilt and re-uploaded: the OSD
// slot it belongs to, and the base data object number of its stripe line
// (every other member of the line is derived from these two values).
type Job struct {
	OSDIndex uint32
	LineBase uint64
}

func (j Job) key() string {
	return fmt.Sprintf("%d:%d", j.OSDIndex, j.LineBase)
}

// Queue is a deduplicated, buffered job queue backed by a fixed pool of
// background workers, mirroring backend/raid3's uploadQueue/uploadWg pair.
type Queue struct {
	store  *osd.Store
	policy stripe.Policy
	log    *logrus.Entry

	mu      sync.Mutex
	pending map[string]bool
	jobs    chan Job
	wg      sync.WaitGroup
}

// NewQueue starts a Queue with the given number of background workers. The
// workers run until ctx is canceled; callers should arrange for that
// cancellation, and Wait, before the store they heal into is torn down.
func NewQueue(ctx context.Context, store *osd.Store, policy stripe.Policy, workers int, log *logrus.Logger) *Queue {
	if log == nil {
		log = logrus.StandardLogger()
	}
	q := &Queue{
		store:   store,
		policy:  policy,
		log:     log.WithField("component", "heal"),
		pending: make(map[string]bool),
		jobs:    make(chan Job, 100),
	}
	for i := 0; i < workers; i++ {
		go q.worker(ctx, i)
	}
	return q
}

// Enqueue queues a rebuild for job, deduplicating against any rebuild of
// the same (osd, line) already pending. Returns false if it was already
// queued.
func (q *Queue) Enqueue(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := job.key()
	if q.pending[key] {
		return false
	}
	q.pending[key] = true
	q.wg.Add(1)
	q.jobs <- job
	q.log.WithFields(logrus.Fields{"osd": job.OSDIndex, "line_base": job.LineBase}).Info("queued heal job")
	return true
}

// Pending reports how many rebuilds are currently queued or in flight.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wait blocks until every currently queued job has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context, id int) {
	q.log.Debugf("heal worker %d started", id)
	defer q.log.Debugf("heal worker %d stopped", id)

	for {
		select {
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			if err := q.rebuild(job); err != nil {
				q.log.WithFields(logrus.Fields{"osd": job.OSDIndex, "line_base": job.LineBase}).WithError(err).Error("heal rebuild failed")
			} else {
				q.log.WithFields(logrus.Fields{"osd": job.OSDIndex, "line_base": job.LineBase}).Info("heal rebuild completed")
			}
			q.mu.Lock()
			delete(q.pending, job.key())
			q.mu.Unlock()
			q.wg.Done()
		case <-ctx.Done():
			return
		}
	}
}

// rebuild reads every surviving member of job's stripe line, XORs them
// back into the missing member, and writes it to job.OSDIndex.
func (q *Queue) rebuild(job Job) error {
	dataWidth := q.policy.DataWidth()
	size := q.policy.StripeSize
	parityOSD := uint32(dataWidth)

	var contributors [][]byte
	objectNumber := job.LineBase
	foundDataSlot := job.OSDIndex == parityOSD

	for i := 0; i < dataWidth; i++ {
		obj := job.LineBase + uint64(i)
		idx := stripe.OSDIndexOf(obj, q.policy)
		if idx == job.OSDIndex {
			objectNumber = obj
			foundDataSlot = true
			continue
		}
		data, err := q.store.ReadParticle(idx, obj, 0, size)
		if err != nil {
			return fmt.Errorf("heal: reading data sibling osd=%d object=%d: %w", idx, obj, err)
		}
		contributors = append(contributors, data)
	}

	if job.OSDIndex != parityOSD {
		data, err := q.store.ReadParticle(parityOSD, job.LineBase, 0, size)
		if err != nil {
			return fmt.Errorf("heal: reading parity sibling osd=%d object=%d: %w", parityOSD, job.LineBase, err)
		}
		contributors = append(contributors, data)
	}

	if !foundDataSlot {
		return fmt.Errorf("heal: osd %d does not belong to line %d", job.OSDIndex, job.LineBase)
	}

	rebuilt := stripe.Reconstruct(size, contributors...)
	if err := q.store.WriteParticle(job.OSDIndex, objectNumber, rebuilt); err != nil {
		return fmt.Errorf("heal: writing rebuilt particle osd=%d object=%d: %w", job.OSDIndex, objectNumber, err)
	}
	return nil
}
