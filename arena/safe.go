package arena

import (
	"reflect"
	"sync"
	"unsafe"
)

// SafeArena is a mutex-protected wrapper around Arena for concurrent access.
// All operations are thread-safe but come with the overhead of mutex locking.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a new thread-safe arena with the specified chunk size.
// If chunkSize <= 0, DefaultChunkSize is used.
func NewSafeArena(chunkSize int) *SafeArena {
	return &SafeArena{a: NewArena(chunkSize)}
}

// NewSafeWithConfig creates a new thread-safe arena from cfg.
func NewSafeWithConfig(cfg Config) *SafeArena {
	return &SafeArena{a: NewWithConfig(cfg)}
}

// Allocate thread-safely returns a zeroed slot for one value of t.
func (s *SafeArena) Allocate(t reflect.Type) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(t)
}

// Deallocate thread-safely returns the slot at p to the arena.
func (s *SafeArena) Deallocate(t reflect.Type, p unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Deallocate(t, p)
}

// EnsureCapacity thread-safely reserves room for n slots of t.
func (s *SafeArena) EnsureCapacity(t reflect.Type, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.EnsureCapacity(t, n)
}

// Reset thread-safely drops every allocation and keeps the chunks.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release thread-safely drops all chunks and makes the arena unusable.
func (s *SafeArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release()
}
