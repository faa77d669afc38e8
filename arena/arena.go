// Package arena implements a typed chunked slab allocator.
// An Arena hands out zeroed slots of a requested reflect.Type from large
// chunks and recycles returned slots through a per-type free list. It
// satisfies the allocation strategy expected by sharedptr, so control blocks
// can be carved out of a few big allocations instead of one heap object each.
package arena

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// DefaultChunkSize is the default chunk size for new arenas (64 KiB).
const DefaultChunkSize = 1 << 16

var (
	// ErrReleased is returned by Allocate after Release.
	ErrReleased = errors.New("arena: use after Release()")
	// ErrOutOfMemory is returned when a new chunk would exceed Config.MaxBytes.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrZeroSize is returned for types that occupy no memory.
	ErrZeroSize = errors.New("arena: zero-size type")
)

// Config tunes an Arena.
type Config struct {
	// ChunkSize is the target size of one chunk in bytes. A chunk always
	// holds at least one slot. If <= 0, DefaultChunkSize is used.
	ChunkSize int
	// MaxBytes caps the total chunk capacity. Zero means unlimited.
	MaxBytes int
}

// chunk is a typed backing slice; slots [0, offset) have been handed out.
type chunk struct {
	buf    reflect.Value // []T for the slab's type
	offset int
}

func (c *chunk) slot(i int) unsafe.Pointer {
	return c.buf.Index(i).Addr().UnsafePointer()
}

// slab holds every chunk of one type.
type slab struct {
	typ          reflect.Type
	chunks       []chunk
	currentChunk int
	free         []unsafe.Pointer
}

// Arena is a typed slab allocator. Not goroutine-safe by default.
// Use SafeArena for concurrent access.
type Arena struct {
	slabs     map[reflect.Type]*slab
	chunkSize int
	maxBytes  int
	capacity  int
	live      int
}

// NewArena creates a new Arena with the specified chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewArena(chunkSize int) *Arena {
	return NewWithConfig(Config{ChunkSize: chunkSize})
}

// NewWithConfig creates a new Arena from cfg.
func NewWithConfig(cfg Config) *Arena {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MaxBytes < 0 {
		cfg.MaxBytes = 0
	}
	return &Arena{
		slabs:     make(map[reflect.Type]*slab),
		chunkSize: cfg.ChunkSize,
		maxBytes:  cfg.MaxBytes,
	}
}

// Allocate returns a pointer to a zeroed slot able to hold one value of t.
// The slot stays valid until it is passed to Deallocate.
func (a *Arena) Allocate(t reflect.Type) (unsafe.Pointer, error) {
	if a.slabs == nil {
		return nil, ErrReleased
	}
	if t.Size() == 0 {
		return nil, errors.Wrapf(ErrZeroSize, "allocate %s", t)
	}
	s := a.slabFor(t)

	// Recycled slots first
	if n := len(s.free); n > 0 {
		p := s.free[n-1]
		s.free = s.free[:n-1]
		a.live++
		return p, nil
	}

	// Fast path: current chunk has room
	if len(s.chunks) > 0 {
		c := &s.chunks[s.currentChunk]
		if c.offset < c.buf.Len() {
			p := c.slot(c.offset)
			c.offset++
			a.live++
			return p, nil
		}
	}

	return a.allocateSlow(s)
}

// allocateSlow handles allocation when the current chunk is full.
func (a *Arena) allocateSlow(s *slab) (unsafe.Pointer, error) {
	// A reset arena keeps its chunks; move on to the next one with room.
	for i := s.currentChunk + 1; i < len(s.chunks); i++ {
		if s.chunks[i].offset < s.chunks[i].buf.Len() {
			s.currentChunk = i
			c := &s.chunks[i]
			p := c.slot(c.offset)
			c.offset++
			a.live++
			return p, nil
		}
	}

	if err := a.grow(s, 1); err != nil {
		return nil, err
	}
	c := &s.chunks[s.currentChunk]
	p := c.slot(c.offset)
	c.offset++
	a.live++
	return p, nil
}

// Deallocate returns the slot at p to the free list of t. The slot is zeroed
// so that the garbage collector does not keep anything it referenced alive.
// Deallocating after Release is a no-op.
func (a *Arena) Deallocate(t reflect.Type, p unsafe.Pointer) {
	if a.slabs == nil || p == nil {
		return
	}
	s, ok := a.slabs[t]
	if !ok {
		panic("arena: deallocate of foreign type " + t.String())
	}
	reflect.NewAt(t, p).Elem().SetZero()
	s.free = append(s.free, p)
	a.live--
}

// EnsureCapacity ensures at least n slots of t can be allocated without
// growing the arena.
func (a *Arena) EnsureCapacity(t reflect.Type, n int) error {
	if a.slabs == nil {
		return ErrReleased
	}
	if t.Size() == 0 {
		return errors.Wrapf(ErrZeroSize, "ensure capacity for %s", t)
	}
	s := a.slabFor(t)
	avail := len(s.free)
	for i := s.currentChunk; i < len(s.chunks); i++ {
		avail += s.chunks[i].buf.Len() - s.chunks[i].offset
	}
	if avail >= n {
		return nil
	}
	if err := a.grow(s, n-avail); err != nil {
		return err
	}
	return nil
}

// Reset drops every allocation but keeps the chunks for reuse.
// Resetting with live slots is a caller bug and panics.
func (a *Arena) Reset() {
	a.panicIfReleased()
	if a.live != 0 {
		panic("arena: Reset() with live allocations")
	}
	for _, s := range a.slabs {
		for i := range s.chunks {
			c := &s.chunks[i]
			for j := 0; j < c.offset; j++ {
				c.buf.Index(j).SetZero()
			}
			c.offset = 0
		}
		s.free = s.free[:0]
		s.currentChunk = 0
	}
}

// Release drops all chunks. Later calls to Allocate fail with ErrReleased;
// slots handed out earlier stay valid memory until the GC finds them unused.
func (a *Arena) Release() {
	a.slabs = nil
	a.capacity = 0
	a.live = 0
}

func (a *Arena) slabFor(t reflect.Type) *slab {
	s, ok := a.slabs[t]
	if !ok {
		s = &slab{typ: t}
		a.slabs[t] = s
	}
	return s
}

// grow appends a new chunk holding at least min slots.
func (a *Arena) grow(s *slab, min int) error {
	size := int(s.typ.Size())
	slots := a.chunkSize / size
	if slots < 1 {
		slots = 1
	}
	if min > slots {
		slots = min
	}
	if a.maxBytes > 0 && a.capacity+slots*size > a.maxBytes {
		return errors.Wrapf(ErrOutOfMemory, "grow %s by %d bytes (capacity %d, limit %d)",
			s.typ, slots*size, a.capacity, a.maxBytes)
	}
	buf := reflect.MakeSlice(reflect.SliceOf(s.typ), slots, slots)
	s.chunks = append(s.chunks, chunk{buf: buf})
	// Keep filling the current chunk until it runs out
	if c := &s.chunks[s.currentChunk]; c.offset >= c.buf.Len() {
		s.currentChunk = len(s.chunks) - 1
	}
	a.capacity += slots * size
	return nil
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.slabs == nil {
		panic("arena: use after Release()")
	}
}
