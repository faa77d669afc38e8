package sharedptr

// Destructor is implemented by values that need cleanup when the last
// strong handle lets go of them.
type Destructor interface {
	Destroy()
}

// Deleter is the destruction strategy for an externally allocated value.
// It runs exactly once, when the strong count drops to zero.
type Deleter[T any] func(v *T)

// DefaultDelete calls Destroy when *T implements Destructor. The memory
// itself is left to the garbage collector.
func DefaultDelete[T any](v *T) {
	destruct(v)
}

func destruct[T any](v *T) {
	if d, ok := any(v).(Destructor); ok {
		d.Destroy()
	}
}
