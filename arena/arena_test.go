package arena

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"unsafe"
)

type testStruct struct {
	a int64
	b int32
	c int16
	d int8
}

type withPointer struct {
	p *int
	n int
}

var (
	testStructType  = reflect.TypeFor[testStruct]()
	withPointerType = reflect.TypeFor[withPointer]()
)

func TestNewArena(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		expected  int
	}{
		{"default chunk size", 0, DefaultChunkSize},
		{"negative chunk size", -1, DefaultChunkSize},
		{"custom chunk size", 8192, 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArena(tt.chunkSize)
			if a.chunkSize != tt.expected {
				t.Errorf("NewArena(%d) chunk size = %d, want %d", tt.chunkSize, a.chunkSize, tt.expected)
			}
			if a.NumChunks() != 0 {
				t.Errorf("NewArena(%d) chunks = %d, want 0", tt.chunkSize, a.NumChunks())
			}
		})
	}
}

func TestArenaAllocate(t *testing.T) {
	a := NewArena(1024)
	size := int(testStructType.Size())
	perChunk := 1024 / size

	seen := make(map[unsafe.Pointer]bool)
	for i := 0; i < perChunk; i++ {
		p, err := a.Allocate(testStructType)
		if err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
		if seen[p] {
			t.Fatalf("Allocate #%d returned a slot twice", i)
		}
		seen[p] = true
	}
	if a.NumChunks() != 1 {
		t.Errorf("NumChunks after %d allocations = %d, want 1", perChunk, a.NumChunks())
	}

	// Next allocation forces chunk growth
	if _, err := a.Allocate(testStructType); err != nil {
		t.Fatalf("Allocate after full chunk: %v", err)
	}
	if a.NumChunks() != 2 {
		t.Errorf("NumChunks after growth = %d, want 2", a.NumChunks())
	}
	if a.Live() != perChunk+1 {
		t.Errorf("Live = %d, want %d", a.Live(), perChunk+1)
	}
}

func TestArenaAllocateZeroed(t *testing.T) {
	a := NewArena(1024)
	p, err := New[testStruct](a)
	if err != nil {
		t.Fatal(err)
	}
	if *p != (testStruct{}) {
		t.Errorf("New[testStruct] not zeroed: %+v", *p)
	}

	p.a = 100
	Free(a, p)

	q, err := New[testStruct](a)
	if err != nil {
		t.Fatal(err)
	}
	if q != p {
		t.Errorf("New after Free = %p, want recycled slot %p", q, p)
	}
	if q.a != 0 {
		t.Errorf("recycled slot a = %d, want 0", q.a)
	}
}

func TestArenaPointerTypes(t *testing.T) {
	a := NewArena(256)
	v := 42
	p, err := New[withPointer](a)
	if err != nil {
		t.Fatal(err)
	}
	p.p = &v
	p.n = 1
	if *p.p != 42 {
		t.Errorf("*p.p = %d, want 42", *p.p)
	}

	Free(a, p)
	if p.p != nil {
		t.Error("Deallocate should clear pointers held by the slot")
	}
}

func TestArenaSeparateSlabsPerType(t *testing.T) {
	a := NewArena(1024)
	if _, err := a.Allocate(testStructType); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Allocate(withPointerType); err != nil {
		t.Fatal(err)
	}
	if a.NumChunks() != 2 {
		t.Errorf("NumChunks = %d, want one per type (2)", a.NumChunks())
	}
}

func TestArenaZeroSizeType(t *testing.T) {
	a := NewArena(1024)
	_, err := a.Allocate(reflect.TypeFor[struct{}]())
	if !errors.Is(err, ErrZeroSize) {
		t.Errorf("Allocate(struct{}) error = %v, want ErrZeroSize", err)
	}
}

func TestArenaEnsureCapacity(t *testing.T) {
	a := NewArena(1024)
	if err := a.EnsureCapacity(testStructType, 1); err != nil {
		t.Fatal(err)
	}
	initialChunks := a.NumChunks()

	// Ensure capacity within current chunk
	if err := a.EnsureCapacity(testStructType, 10); err != nil {
		t.Fatal(err)
	}
	if a.NumChunks() != initialChunks {
		t.Errorf("EnsureCapacity(10) changed chunk count")
	}

	// Ensure capacity that requires new chunk
	perChunk := 1024 / int(testStructType.Size())
	if err := a.EnsureCapacity(testStructType, perChunk*3); err != nil {
		t.Fatal(err)
	}
	if a.NumChunks() != initialChunks+1 {
		t.Errorf("EnsureCapacity(%d) chunks = %d, want %d", perChunk*3, a.NumChunks(), initialChunks+1)
	}
	for i := 0; i < perChunk*3; i++ {
		if _, err := a.Allocate(testStructType); err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
	}
	if a.NumChunks() != initialChunks+1 {
		t.Errorf("allocating reserved slots grew the arena to %d chunks", a.NumChunks())
	}
}

func TestArenaReset(t *testing.T) {
	a := NewArena(1024)

	p, _ := New[testStruct](a)
	q, _ := New[testStruct](a)
	p.a, q.a = 1, 2

	if a.SizeInUse() == 0 {
		t.Error("Expected non-zero size in use after allocations")
	}

	// Reset with live slots is a bug
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic on Reset() with live allocations")
			}
		}()
		a.Reset()
	}()

	Free(a, p)
	Free(a, q)
	a.Reset()
	if a.SizeInUse() != 0 {
		t.Errorf("SizeInUse after Reset() = %d, want 0", a.SizeInUse())
	}

	// Verify chunks are still there and reused
	if a.NumChunks() != 1 {
		t.Errorf("NumChunks after Reset() = %d, want 1", a.NumChunks())
	}
	r, _ := New[testStruct](a)
	if r.a != 0 {
		t.Errorf("slot after Reset() a = %d, want 0", r.a)
	}
	if a.NumChunks() != 1 {
		t.Error("Expected allocation after Reset() to reuse the chunk")
	}
}

func TestArenaRelease(t *testing.T) {
	a := NewArena(1024)
	p, _ := New[testStruct](a)

	a.Release()

	if a.slabs != nil {
		t.Error("Expected slabs to be nil after Release()")
	}

	// Deallocate after Release is ignored
	Free(a, p)

	if _, err := a.Allocate(testStructType); !errors.Is(err, ErrReleased) {
		t.Errorf("Allocate after Release() error = %v, want ErrReleased", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic on Reset() after Release()")
		}
	}()
	a.Reset()
}

func TestArenaMaxBytes(t *testing.T) {
	size := int(testStructType.Size())
	a := NewWithConfig(Config{ChunkSize: size * 2, MaxBytes: size * 3})

	for i := 0; i < 2; i++ {
		if _, err := a.Allocate(testStructType); err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
	}
	_, err := a.Allocate(testStructType)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Allocate over limit error = %v, want ErrOutOfMemory", err)
	}
	if a.Capacity() != size*2 {
		t.Errorf("Capacity = %d, want %d", a.Capacity(), size*2)
	}
}

func TestArenaDeallocateForeignType(t *testing.T) {
	a := NewArena(1024)
	var x testStruct
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic on Deallocate of a type never allocated")
		}
	}()
	a.Deallocate(testStructType, unsafe.Pointer(&x))
}

func BenchmarkArenaAllocate(b *testing.B) {
	a := NewArena(1024 * 1024) // 1MB chunks
	types := []reflect.Type{testStructType, withPointerType, reflect.TypeFor[[32]byte]()}

	for _, typ := range types {
		b.Run(fmt.Sprintf("size-%d", typ.Size()), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p, _ := a.Allocate(typ)
				a.Deallocate(typ, p)
			}
		})
	}
}

func BenchmarkArenaVsBuiltin(b *testing.B) {
	b.Run("arena", func(b *testing.B) {
		a := NewArena(1024 * 1024)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			p, _ := New[testStruct](a)
			Free(a, p)
		}
	})

	b.Run("builtin", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = reflect.New(testStructType)
		}
	})
}
