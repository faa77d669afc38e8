package sharedptr

// Upcast returns a handle of the base type B sharing ownership with p.
// Go models "derived" as a struct embedding its base, so project maps the
// derived value to the embedded base, typically func(d *D) *B { return &d.B }.
// The result points into the same value and shares p's counts.
// To assign to an existing base handle, use base.MoveFrom(Upcast(p, project));
// base.Assign(Upcast(p, project)) leaks the temporary's strong unit.
func Upcast[B, D any](p *SharedPtr[D], project func(*D) *B) *SharedPtr[B] {
	if p.blk == nil {
		return &SharedPtr[B]{}
	}
	p.blk.addStrong()
	return &SharedPtr[B]{blk: p.blk, ptr: project(p.ptr)}
}

// UpcastMove is Upcast that transfers p's strong unit instead of adding one.
// p is left empty.
func UpcastMove[B, D any](p *SharedPtr[D], project func(*D) *B) *SharedPtr[B] {
	if p.blk == nil {
		return &SharedPtr[B]{}
	}
	q := &SharedPtr[B]{blk: p.blk, ptr: project(p.ptr)}
	p.blk, p.ptr = nil, nil
	return q
}

// UpcastWeak is Upcast for weak handles. project is only applied to the
// address and never reads the value, so it is safe on an expired handle as
// long as it does no more than take a field address.
func UpcastWeak[B, D any](w *WeakPtr[D], project func(*D) *B) *WeakPtr[B] {
	if w.blk == nil {
		return &WeakPtr[B]{}
	}
	w.blk.addWeak()
	return &WeakPtr[B]{blk: w.blk, ptr: project(w.ptr)}
}
