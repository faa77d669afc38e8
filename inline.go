package sharedptr

import (
	"reflect"
	"unsafe"
)

// inlineBlock places the header and the value in one allocation.
// The header must stay the first field: the block is addressed through it.
type inlineBlock[T any] struct {
	controlBlock
	value T
}

func destroyInline[T any](p unsafe.Pointer) {
	v := (*T)(p)
	destruct(v)
	var zero T
	*v = zero
}

// newInlineBlock allocates the region, runs ctor on the embedded value and
// frees the region again if ctor fails or panics.
func newInlineBlock[T any](ctor func(*T) error, o *options) (blk *inlineBlock[T], err error) {
	typ := reflect.TypeFor[inlineBlock[T]]()
	p, err := o.alloc.Allocate(typ)
	if err != nil || p == nil {
		err = allocError(typ, err)
		o.log.Warn().Err(err).Msg("sharedptr: inline block allocation failed")
		return nil, err
	}
	ib := (*inlineBlock[T])(p)
	if ctor != nil {
		constructed := false
		defer func() {
			if constructed {
				return
			}
			o.alloc.Deallocate(typ, p)
			if r := recover(); r != nil {
				o.log.Warn().Interface("panic", r).Stringer("type", typ).Msg("sharedptr: constructor panicked, block freed")
				panic(r)
			}
			o.log.Warn().Err(err).Stringer("type", typ).Msg("sharedptr: construction failed, block freed")
		}()
		if cerr := ctor(&ib.value); cerr != nil {
			return nil, constructError(typ, cerr)
		}
		constructed = true
	}
	ib.controlBlock.init(kindInline, unsafe.Pointer(&ib.value), typ, destroyInline[T], o)
	return ib, nil
}

// AllocateShared constructs a T in place inside a single allocation obtained
// from a, which also holds the control block. ctor initialises the zeroed
// value; a nil ctor leaves it zero. If ctor returns an error or panics, the
// region is freed before the failure propagates.
func AllocateShared[T any](a Allocator, ctor func(*T) error, opts ...Option) (*SharedPtr[T], error) {
	o := buildOptions(opts)
	if a != nil {
		o.alloc = a
	}
	ib, err := newInlineBlock(ctor, o)
	if err != nil {
		return nil, err
	}
	return &SharedPtr[T]{blk: &ib.controlBlock, ptr: &ib.value}, nil
}

// MakeShared is AllocateShared with the allocator taken from the options
// (DefaultAllocator unless WithAllocator is given).
func MakeShared[T any](ctor func(*T) error, opts ...Option) (*SharedPtr[T], error) {
	return AllocateShared(nil, ctor, opts...)
}

// MakeSharedValue copies v into a new inline block.
func MakeSharedValue[T any](v T, opts ...Option) (*SharedPtr[T], error) {
	return AllocateShared(nil, func(p *T) error {
		*p = v
		return nil
	}, opts...)
}
