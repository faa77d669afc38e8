package sharedptr

import (
	"reflect"
	"unsafe"
)

// Allocator is the allocation strategy for control blocks.
//
// Allocate must return zeroed memory typed as exactly one value of t: the
// garbage collector scans control blocks for pointers, so raw byte buffers
// are not acceptable. Deallocate receives the same t and pointer and is
// called exactly once per successful Allocate.
//
// Blocks created with the Atomic sync mode may be freed from any goroutine;
// their allocator must be safe for concurrent use.
type Allocator interface {
	Allocate(t reflect.Type) (unsafe.Pointer, error)
	Deallocate(t reflect.Type, p unsafe.Pointer)
}

// HeapAllocator allocates every block as an ordinary Go heap object.
// Deallocate drops nothing itself: the runtime reclaims the memory once the
// last pointer is gone. It is safe for concurrent use.
type HeapAllocator struct{}

// Allocate implements Allocator.
func (HeapAllocator) Allocate(t reflect.Type) (unsafe.Pointer, error) {
	return reflect.New(t).UnsafePointer(), nil
}

// Deallocate implements Allocator.
func (HeapAllocator) Deallocate(reflect.Type, unsafe.Pointer) {}

// DefaultAllocator is used when no WithAllocator option is given.
var DefaultAllocator Allocator = HeapAllocator{}
