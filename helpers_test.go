package sharedptr

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// tracked counts how many times it was destroyed.
type tracked struct {
	id        int
	destroyed *int
}

func (t *tracked) Destroy() { *t.destroyed++ }

var errNoMemory = errors.New("no memory")

type failingAllocator struct{}

func (failingAllocator) Allocate(reflect.Type) (unsafe.Pointer, error) { return nil, errNoMemory }

// nilAllocator reports success but hands out no memory.
type nilAllocator struct{}

func (nilAllocator) Allocate(reflect.Type) (unsafe.Pointer, error) { return nil, nil }

func (nilAllocator) Deallocate(reflect.Type, unsafe.Pointer) {
	panic("deallocate on nil allocator")
}

func (failingAllocator) Deallocate(reflect.Type, unsafe.Pointer) {
	panic("deallocate on failing allocator")
}
