package arena

import "reflect"

// New returns a pointer to a zeroed T stored inside the arena.
// The pointer is valid until it is passed to Free or the arena is Reset.
func New[T any](a *Arena) (*T, error) {
	p, err := a.Allocate(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// Free returns p to the arena for reuse.
func Free[T any](a *Arena, p *T) {
	a.Deallocate(reflect.TypeFor[T](), reflect.ValueOf(p).UnsafePointer())
}

// SafeNew is New for a SafeArena.
func SafeNew[T any](s *SafeArena) (*T, error) {
	p, err := s.Allocate(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// SafeFree is Free for a SafeArena.
func SafeFree[T any](s *SafeArena, p *T) {
	s.Deallocate(reflect.TypeFor[T](), reflect.ValueOf(p).UnsafePointer())
}
