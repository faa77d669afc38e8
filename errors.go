package sharedptr

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrAllocation reports that an allocation strategy could not supply
	// memory for a control block.
	ErrAllocation = errors.New("sharedptr: allocation failed")
	// ErrConstruction reports that a value constructor failed during
	// in-place construction.
	ErrConstruction = errors.New("sharedptr: construction failed")
)

// AllocError is returned when a control block cannot be allocated.
// Nothing was created when it is returned.
type AllocError struct {
	Type reflect.Type
	Err  error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("sharedptr: allocate %s: %v", e.Type, e.Err)
}

func (e *AllocError) Unwrap() error { return e.Err }

func (e *AllocError) Is(target error) bool { return target == ErrAllocation }

// ConstructError is returned when a constructor passed to MakeShared or
// AllocateShared fails. The block memory has already been freed.
type ConstructError struct {
	Type reflect.Type
	Err  error
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("sharedptr: construct %s: %v", e.Type, e.Err)
}

func (e *ConstructError) Unwrap() error { return e.Err }

func (e *ConstructError) Is(target error) bool { return target == ErrConstruction }

func allocError(t reflect.Type, err error) error {
	if err == nil {
		err = errors.New("allocator returned nil")
	}
	return errors.WithStack(&AllocError{Type: t, Err: err})
}

func constructError(t reflect.Type, err error) error {
	return errors.WithStack(&ConstructError{Type: t, Err: err})
}
