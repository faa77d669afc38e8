package sharedptr_test

import (
	"fmt"

	"github.com/pavanmanishd/sharedptr"
	"github.com/pavanmanishd/sharedptr/arena"
)

// Example mirrors the classic copy-and-assign sequence
func Example() {
	v := 1
	p, err := sharedptr.New(&v)
	if err != nil {
		panic(err)
	}
	defer p.Reset()

	*p.Deref() = 3
	copy1 := p.Clone()
	defer copy1.Reset()
	var copy2 sharedptr.SharedPtr[int]
	copy1.Assign(p)

	fmt.Println(*p.Deref(), p.UseCount(), copy2.UseCount())

	// Output:
	// 3 2 0
}

// ExampleWeakPtr shows a weak handle outliving its owner
func ExampleWeakPtr() {
	p, _ := sharedptr.MakeSharedValue("config")
	w := sharedptr.NewWeak(p)
	defer w.Reset()

	if s := w.Lock(); !s.Empty() {
		fmt.Println("locked:", *s.Deref(), "use_count:", s.UseCount())
		s.Reset()
	}

	p.Reset()
	fmt.Println("expired:", w.Expired())
	fmt.Println("lock empty:", w.Lock().Empty())

	// Output:
	// locked: config use_count: 2
	// expired: true
	// lock empty: true
}

type conn struct{ addr string }

func (c *conn) Destroy() { fmt.Println("closing", c.addr) }

// ExampleAllocateShared places control blocks in an arena and counts allocations
func ExampleAllocateShared() {
	a := arena.NewArena(0)
	defer a.Release()
	alloc := sharedptr.NewCountingAllocator(a, "example")

	p, _ := sharedptr.AllocateShared(alloc, func(c *conn) error {
		c.addr = "10.0.0.1:5432"
		return nil
	})
	w := p.Weak()
	p.Reset()
	fmt.Println("allocations:", alloc.Allocations(), "deallocations:", alloc.Deallocations())
	w.Reset()
	fmt.Println("allocations:", alloc.Allocations(), "deallocations:", alloc.Deallocations())

	// Output:
	// closing 10.0.0.1:5432
	// allocations: 1 deallocations: 0
	// allocations: 1 deallocations: 1
}

type base struct{ id int }

type derived struct {
	base
	extra string
}

// ExampleUpcast converts a derived handle to its embedded base
func ExampleUpcast() {
	d, _ := sharedptr.MakeSharedValue(derived{base: base{id: 42}, extra: "x"})
	b := sharedptr.Upcast(d, func(d *derived) *base { return &d.base })
	d.Reset()

	fmt.Println(b.Deref().id, b.UseCount())
	b.Reset()

	// Output:
	// 42 1
}
