package listing

import (
	"sync"

	"github.com/vmunix/phimgo/internal/metrics"
)

// Dispatcher stamps requests with increasing sequence numbers and keeps only
// the response to the latest one.
type Dispatcher struct {
	mu      sync.Mutex
	issued  uint64
	current *PageResult
	seq     uint64
}

// Issue returns the next sequence number. Responses to earlier numbers become stale.
func (d *Dispatcher) Issue() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.issued++
	return d.issued
}

// Deliver makes result current if seq is the latest issued number.
// A stale delivery is dropped and counted; it is not an error.
func (d *Dispatcher) Deliver(seq uint64, result *PageResult) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.issued {
		metrics.RecordStale()
		return false
	}
	d.current = result
	d.seq = seq
	return true
}

// Current returns the latest delivered result and its sequence number.
func (d *Dispatcher) Current() (*PageResult, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.seq
}
