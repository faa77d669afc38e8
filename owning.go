package sharedptr

import (
	"reflect"
	"unsafe"
)

// newOwningBlock wraps a caller-allocated value. Only the block header comes
// from the allocator; reclaiming v is the deleter's job. If the header cannot
// be allocated, d runs on v before the error is returned, because ownership
// of v was handed over with the call.
func newOwningBlock[T any](v *T, d Deleter[T], o *options) (*controlBlock, error) {
	p, err := o.alloc.Allocate(controlBlockType)
	if err != nil || p == nil {
		err = allocError(controlBlockType, err)
		o.log.Warn().Err(err).Stringer("type", reflect.TypeFor[T]()).Msg("sharedptr: owning block allocation failed")
		d(v)
		return nil, err
	}
	b := (*controlBlock)(p)
	b.init(kindOwning, unsafe.Pointer(v), reflect.TypeFor[T](), func(p unsafe.Pointer) {
		d((*T)(p))
	}, o)
	return b, nil
}

// New takes ownership of v and returns the first strong handle to it.
// DefaultDelete destroys v when the last strong handle is released.
// A nil v yields an empty handle.
func New[T any](v *T, opts ...Option) (*SharedPtr[T], error) {
	return NewWithDeleter(v, DefaultDelete[T], opts...)
}

// NewWithDeleter is New with a custom destruction strategy. A nil d means
// DefaultDelete.
func NewWithDeleter[T any](v *T, d Deleter[T], opts ...Option) (*SharedPtr[T], error) {
	if v == nil {
		return &SharedPtr[T]{}, nil
	}
	if d == nil {
		d = DefaultDelete[T]
	}
	b, err := newOwningBlock(v, d, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return &SharedPtr[T]{blk: b, ptr: v}, nil
}
