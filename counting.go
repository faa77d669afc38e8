package sharedptr

import (
	"fmt"
	"io"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/VictoriaMetrics/metrics"
)

// CountingAllocator wraps an Allocator and counts what passes through it.
// Counters live in a private metrics.Set so several instances can coexist;
// WritePrometheus exposes them in the Prometheus text format.
type CountingAllocator struct {
	next Allocator
	set  *metrics.Set

	allocs   *metrics.Counter
	frees    *metrics.Counter
	failures *metrics.Counter
	bytes    *metrics.Counter
	live     atomic.Int64
}

// NewCountingAllocator wraps next (DefaultAllocator if nil). name labels the
// exported series.
func NewCountingAllocator(next Allocator, name string) *CountingAllocator {
	if next == nil {
		next = DefaultAllocator
	}
	c := &CountingAllocator{
		next: next,
		set:  metrics.NewSet(),
	}
	label := fmt.Sprintf(`{allocator=%q}`, name)
	c.allocs = c.set.NewCounter("sharedptr_block_allocations_total" + label)
	c.frees = c.set.NewCounter("sharedptr_block_deallocations_total" + label)
	c.failures = c.set.NewCounter("sharedptr_block_allocation_failures_total" + label)
	c.bytes = c.set.NewCounter("sharedptr_block_allocated_bytes_total" + label)
	c.set.NewGauge("sharedptr_blocks_live"+label, func() float64 {
		return float64(c.live.Load())
	})
	return c
}

// Allocate implements Allocator.
func (c *CountingAllocator) Allocate(t reflect.Type) (unsafe.Pointer, error) {
	p, err := c.next.Allocate(t)
	if err != nil || p == nil {
		c.failures.Inc()
		return nil, err
	}
	c.allocs.Inc()
	c.bytes.Add(int(t.Size()))
	c.live.Add(1)
	return p, nil
}

// Deallocate implements Allocator.
func (c *CountingAllocator) Deallocate(t reflect.Type, p unsafe.Pointer) {
	c.next.Deallocate(t, p)
	c.frees.Inc()
	c.live.Add(-1)
}

// Allocations returns the number of successful Allocate calls.
func (c *CountingAllocator) Allocations() uint64 { return c.allocs.Get() }

// Deallocations returns the number of Deallocate calls.
func (c *CountingAllocator) Deallocations() uint64 { return c.frees.Get() }

// Failures returns the number of failed Allocate calls.
func (c *CountingAllocator) Failures() uint64 { return c.failures.Get() }

// Live returns allocations minus deallocations.
func (c *CountingAllocator) Live() int64 { return c.live.Load() }

// WritePrometheus writes the counters in Prometheus text format.
func (c *CountingAllocator) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}
