package sharedptr

import "fmt"

// SharedPtr is a strong handle: it owns one strong unit of a control block
// and keeps the managed value alive while it is non-empty.
//
// The zero value is an empty handle. A SharedPtr must not be copied by value;
// use Clone to share ownership and Move to transfer it. Every non-empty
// handle must eventually be Reset (or moved from), exactly once.
type SharedPtr[T any] struct {
	noCopy noCopy

	blk *controlBlock
	ptr *T
}

// Clone returns a new handle sharing ownership with p.
func (p *SharedPtr[T]) Clone() *SharedPtr[T] {
	if p.blk == nil {
		return &SharedPtr[T]{}
	}
	p.blk.addStrong()
	return &SharedPtr[T]{blk: p.blk, ptr: p.ptr}
}

// Assign makes p share ownership with o, releasing whatever p held before.
// Assigning a handle to itself, or to another handle of the same block,
// never lets the strong count touch zero.
func (p *SharedPtr[T]) Assign(o *SharedPtr[T]) {
	if p == o {
		return
	}
	if o.blk != nil {
		o.blk.addStrong()
	}
	old := p.blk
	p.blk, p.ptr = o.blk, o.ptr
	if old != nil {
		old.releaseStrong()
	}
}

// Move transfers p's ownership to a new handle and leaves p empty.
// The strong count is unchanged.
func (p *SharedPtr[T]) Move() *SharedPtr[T] {
	q := &SharedPtr[T]{blk: p.blk, ptr: p.ptr}
	p.blk, p.ptr = nil, nil
	return q
}

// MoveFrom transfers o's ownership into p, releasing what p held before.
// o is left empty. Moving a handle into itself is a no-op.
func (p *SharedPtr[T]) MoveFrom(o *SharedPtr[T]) {
	if p == o {
		return
	}
	old := p.blk
	p.blk, p.ptr = o.blk, o.ptr
	o.blk, o.ptr = nil, nil
	if old != nil {
		old.releaseStrong()
	}
}

// Swap exchanges the contents of p and o without touching any counts.
func (p *SharedPtr[T]) Swap(o *SharedPtr[T]) {
	p.blk, o.blk = o.blk, p.blk
	p.ptr, o.ptr = o.ptr, p.ptr
}

// Reset releases p's strong unit, if any, and leaves p empty.
func (p *SharedPtr[T]) Reset() {
	b := p.blk
	p.blk, p.ptr = nil, nil
	if b != nil {
		b.releaseStrong()
	}
}

// UseCount returns the number of strong handles sharing p's block, or 0 for
// an empty handle.
func (p *SharedPtr[T]) UseCount() int64 {
	if p.blk == nil {
		return 0
	}
	return p.blk.useCount()
}

// WeakCount returns the number of weak handles observing p's block.
func (p *SharedPtr[T]) WeakCount() int64 {
	if p.blk == nil {
		return 0
	}
	return p.blk.weakCount()
}

// Get returns the managed value, or nil for an empty handle.
func (p *SharedPtr[T]) Get() *T {
	if p.blk == nil {
		return nil
	}
	return p.ptr
}

// Deref returns the managed value. Dereferencing an empty handle is a
// programming error and panics.
func (p *SharedPtr[T]) Deref() *T {
	if p.blk == nil {
		panic("sharedptr: dereference of empty SharedPtr")
	}
	p.blk.accessValue()
	return p.ptr
}

// Empty reports whether p holds no block.
func (p *SharedPtr[T]) Empty() bool {
	return p.blk == nil
}

// SharesOwnership reports whether p and o hold the same control block.
// Two empty handles share nothing.
func (p *SharedPtr[T]) SharesOwnership(o *SharedPtr[T]) bool {
	return p.blk != nil && p.blk == o.blk
}

// Weak returns a weak handle observing p.
func (p *SharedPtr[T]) Weak() *WeakPtr[T] {
	return NewWeak(p)
}

func (p *SharedPtr[T]) String() string {
	if p.blk == nil {
		return "SharedPtr(empty)"
	}
	return fmt.Sprintf("SharedPtr(%p, use_count=%d)", p.ptr, p.blk.useCount())
}

// lockBlock builds a strong handle from a block reference if the block is
// still alive. It is the only place where a strong unit is created from a
// possibly expired block.
func lockBlock[T any](b *controlBlock, ptr *T) *SharedPtr[T] {
	if b == nil || !b.tryAddStrong() {
		return &SharedPtr[T]{}
	}
	return &SharedPtr[T]{blk: b, ptr: ptr}
}
