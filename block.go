package sharedptr

import (
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/rs/zerolog"
)

// blockKind tags how the managed value was produced.
type blockKind uint8

const (
	kindOwning blockKind = iota + 1 // value allocated by the caller
	kindInline                      // value embedded in the block's region
)

func (k blockKind) String() string {
	switch k {
	case kindOwning:
		return "owning"
	case kindInline:
		return "inline"
	default:
		return "invalid"
	}
}

// controlBlock tracks the lifetime of one managed value.
//
// weak counts WeakPtr handles plus one unit held collectively by the strong
// handles while strong > 0. Dropping strong to zero destroys the value and
// gives up that unit, so the block is freed exactly once, by whoever drops
// weak to zero, in both sync modes.
type controlBlock struct {
	strong int64
	weak   int64
	value  unsafe.Pointer

	kind blockKind
	mode SyncMode

	// destroy is the deleter for kindOwning and the in-place destructor for
	// kindInline. typ is the allocated type handed back to alloc.
	destroy func(unsafe.Pointer)
	alloc   Allocator
	typ     reflect.Type
	log     *zerolog.Logger
}

var controlBlockType = reflect.TypeFor[controlBlock]()

func (b *controlBlock) init(kind blockKind, value unsafe.Pointer, typ reflect.Type, destroy func(unsafe.Pointer), o *options) {
	b.strong = 1
	b.weak = 1
	b.value = value
	b.kind = kind
	b.mode = o.sync
	b.destroy = destroy
	b.alloc = o.alloc
	b.typ = typ
	b.log = o.log
}

func (b *controlBlock) load(p *int64) int64 {
	if b.mode == Atomic {
		return atomic.LoadInt64(p)
	}
	return *p
}

func (b *controlBlock) add(p *int64, delta int64) int64 {
	if b.mode == Atomic {
		return atomic.AddInt64(p, delta)
	}
	*p += delta
	return *p
}

// addStrong registers one more strong handle on a live block.
func (b *controlBlock) addStrong() {
	if b.add(&b.strong, 1) <= 1 {
		panic("sharedptr: invalid rc state: strong reference to destroyed value")
	}
}

// tryAddStrong increments strong only if it is still non-zero.
func (b *controlBlock) tryAddStrong() bool {
	if b.mode != Atomic {
		if b.strong == 0 {
			return false
		}
		b.strong++
		return true
	}
	for {
		n := atomic.LoadInt64(&b.strong)
		if n == 0 {
			return false
		}
		if atomic.CompareAndSwapInt64(&b.strong, n, n+1) {
			return true
		}
	}
}

func (b *controlBlock) addWeak() {
	if b.add(&b.weak, 1) <= 1 {
		panic("sharedptr: invalid rc state: weak reference to freed block")
	}
}

// releaseStrong drops one strong unit. The caller that takes strong to zero
// destroys the value and then gives up the strong handles' weak unit.
func (b *controlBlock) releaseStrong() {
	n := b.add(&b.strong, -1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic("sharedptr: invalid rc state")
	}
	b.destroyValue()
	b.releaseWeak()
}

// releaseWeak drops one weak unit and frees the block on the last one.
func (b *controlBlock) releaseWeak() {
	n := b.add(&b.weak, -1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic("sharedptr: invalid rc state")
	}
	b.freeBlock()
}

func (b *controlBlock) isAlive() bool { return b.load(&b.strong) > 0 }

func (b *controlBlock) useCount() int64 { return b.load(&b.strong) }

// weakCount reports WeakPtr handles only.
func (b *controlBlock) weakCount() int64 {
	w := b.load(&b.weak)
	if b.load(&b.strong) > 0 {
		w--
	}
	return w
}

// accessValue returns the opaque value reference of a live block.
func (b *controlBlock) accessValue() unsafe.Pointer {
	if !b.isAlive() {
		panic("sharedptr: access to destroyed value")
	}
	return b.value
}

func (b *controlBlock) destroyValue() {
	v := b.value
	b.value = nil
	switch b.kind {
	case kindOwning, kindInline:
		b.destroy(v)
	default:
		panic("sharedptr: destroy on invalid block")
	}
	b.log.Debug().
		Stringer("kind", b.kind).
		Stringer("type", b.typ).
		Int64("weak_handles", b.load(&b.weak)-1).
		Msg("sharedptr: value destroyed")
}

func (b *controlBlock) freeBlock() {
	alloc, typ, log, kind := b.alloc, b.typ, b.log, b.kind
	switch kind {
	case kindOwning:
		alloc.Deallocate(controlBlockType, unsafe.Pointer(b))
	case kindInline:
		// header and value share one region allocated as typ
		alloc.Deallocate(typ, unsafe.Pointer(b))
	default:
		panic("sharedptr: free of invalid block")
	}
	log.Debug().
		Stringer("kind", kind).
		Stringer("type", typ).
		Msg("sharedptr: block freed")
}
