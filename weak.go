package sharedptr

// WeakPtr observes a value owned by SharedPtr handles without keeping it
// alive. It keeps only the control block, so Expired and Lock stay valid
// after the value has been destroyed.
//
// Like SharedPtr, the zero value is empty and a WeakPtr must not be copied by
// value. Weak handles are the way to break reference cycles: a value must not
// hold a strong handle to its own block.
type WeakPtr[T any] struct {
	noCopy noCopy

	blk *controlBlock
	ptr *T
}

// NewWeak returns a weak handle observing p's block. An empty p gives an
// empty weak handle.
func NewWeak[T any](p *SharedPtr[T]) *WeakPtr[T] {
	if p == nil || p.blk == nil {
		return &WeakPtr[T]{}
	}
	p.blk.addWeak()
	return &WeakPtr[T]{blk: p.blk, ptr: p.ptr}
}

// Clone returns another weak handle to the same block.
func (w *WeakPtr[T]) Clone() *WeakPtr[T] {
	if w.blk == nil {
		return &WeakPtr[T]{}
	}
	w.blk.addWeak()
	return &WeakPtr[T]{blk: w.blk, ptr: w.ptr}
}

// Assign makes w observe o's block, releasing w's previous weak unit.
func (w *WeakPtr[T]) Assign(o *WeakPtr[T]) {
	if w == o {
		return
	}
	if o.blk != nil {
		o.blk.addWeak()
	}
	old := w.blk
	w.blk, w.ptr = o.blk, o.ptr
	if old != nil {
		old.releaseWeak()
	}
}

// AssignShared makes w observe p's block. A nil or empty p empties w.
func (w *WeakPtr[T]) AssignShared(p *SharedPtr[T]) {
	var blk *controlBlock
	var ptr *T
	if p != nil && p.blk != nil {
		blk, ptr = p.blk, p.ptr
		blk.addWeak()
	}
	old := w.blk
	w.blk, w.ptr = blk, ptr
	if old != nil {
		old.releaseWeak()
	}
}

// Move transfers w's weak unit to a new handle and leaves w empty.
func (w *WeakPtr[T]) Move() *WeakPtr[T] {
	q := &WeakPtr[T]{blk: w.blk, ptr: w.ptr}
	w.blk, w.ptr = nil, nil
	return q
}

// MoveFrom transfers o's weak unit into w. o is left empty.
func (w *WeakPtr[T]) MoveFrom(o *WeakPtr[T]) {
	if w == o {
		return
	}
	old := w.blk
	w.blk, w.ptr = o.blk, o.ptr
	o.blk, o.ptr = nil, nil
	if old != nil {
		old.releaseWeak()
	}
}

// Swap exchanges the contents of w and o.
func (w *WeakPtr[T]) Swap(o *WeakPtr[T]) {
	w.blk, o.blk = o.blk, w.blk
	w.ptr, o.ptr = o.ptr, w.ptr
}

// Reset releases w's weak unit, if any. The last unit frees the block.
func (w *WeakPtr[T]) Reset() {
	b := w.blk
	w.blk, w.ptr = nil, nil
	if b != nil {
		b.releaseWeak()
	}
}

// Expired reports whether w is empty or its value has been destroyed.
func (w *WeakPtr[T]) Expired() bool {
	return w.blk == nil || !w.blk.isAlive()
}

// UseCount returns the strong count of the observed block.
func (w *WeakPtr[T]) UseCount() int64 {
	if w.blk == nil {
		return 0
	}
	return w.blk.useCount()
}

// Lock returns a strong handle to the value, or an empty handle if w is
// empty or expired. With the Atomic sync mode the liveness check and the
// increment are one compare-and-swap, so a concurrent final Reset cannot
// slip in between.
func (w *WeakPtr[T]) Lock() *SharedPtr[T] {
	return lockBlock(w.blk, w.ptr)
}
