package sharedptr

import "github.com/rs/zerolog"

// SyncMode selects how a control block updates its counters.
type SyncMode uint8

const (
	// SingleThreaded uses plain counters. Every handle sharing a block must
	// be used from one goroutine at a time; concurrent Clone, Reset or Lock
	// on handles of the same block is a data race.
	SingleThreaded SyncMode = iota
	// Atomic uses sync/atomic counters and a compare-and-increment Lock, so
	// handles of one block may be copied, locked and dropped concurrently.
	Atomic
)

func (m SyncMode) String() string {
	switch m {
	case SingleThreaded:
		return "single"
	case Atomic:
		return "atomic"
	default:
		return "unknown"
	}
}

var nopLogger = zerolog.Nop()

type options struct {
	alloc Allocator
	sync  SyncMode
	log   *zerolog.Logger
}

// Option configures a control block at construction.
type Option func(*options)

// WithAllocator sets the allocation strategy for the block.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithSync sets the counter mode. The default is SingleThreaded.
func WithSync(m SyncMode) Option {
	return func(o *options) {
		o.sync = m
	}
}

// WithLogger attaches a logger that receives block lifecycle events at
// debug level and failures at warn level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = &l
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		alloc: DefaultAllocator,
		log:   &nopLogger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
