// Package sharedptr implements reference-counted shared ownership with
// strong (SharedPtr) and weak (WeakPtr) handles.
//
// # Overview
//
// Every managed value has a control block that counts strong and weak
// handles. The value is destroyed when the last strong handle is released;
// the block itself is freed when the last handle of either kind is gone.
// This is useful for:
//
//   - Values with an explicit teardown (Destroy) shared by several owners
//   - Caches and registries that observe values without pinning them
//   - Placing many small blocks in a custom allocator such as an arena
//
// # Basic Usage
//
//	p, err := sharedptr.New(&Conn{})  // wrap a value you allocated
//	if err != nil {
//		return err
//	}
//	defer p.Reset()
//
//	q := p.Clone()          // use_count == 2
//	w := sharedptr.NewWeak(q)
//	q.Reset()               // use_count == 1
//
//	if s := w.Lock(); !s.Empty() {
//		s.Deref().Ping()
//		s.Reset()
//	}
//	w.Reset()
//
// MakeShared and AllocateShared construct the value in place, in the same
// allocation as the control block:
//
//	p, err := sharedptr.MakeShared(func(c *Conn) error { return c.Open(addr) })
//
// # Handles Are Not Values
//
// Go has no copy constructors or destructors, so handle copies and drops are
// explicit: Clone and Assign share ownership, Move and MoveFrom transfer it,
// Reset gives it up. Copying a handle struct by value duplicates a unit
// without counting it; go vet reports such copies.
//
// # Thread Safety
//
// Counters are plain integers by default (SingleThreaded): all handles of one
// block must be used from one goroutine at a time. Pass WithSync(Atomic) to
// get atomic counters and a compare-and-swap Lock:
//
//	p, _ := sharedptr.New(v, sharedptr.WithSync(sharedptr.Atomic))
//
// The allocator of an atomic block must itself be safe for concurrent use.
//
// # Cycles
//
// There is no cycle collection. A value must never hold a strong handle to
// its own block; use a WeakPtr for back references.
//
// # Precondition Violations
//
// Dereferencing an empty handle, or a count going negative, panics with a
// "sharedptr:" message. These are programming errors, not recoverable
// conditions. Allocation and construction failures are returned as errors
// matching ErrAllocation and ErrConstruction.
package sharedptr
