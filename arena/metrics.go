package arena

// SizeInUse returns the number of bytes held by live slots.
func (a *Arena) SizeInUse() int {
	sum := 0
	for _, s := range a.slabs {
		used := -len(s.free)
		for _, c := range s.chunks {
			used += c.offset
		}
		sum += used * int(s.typ.Size())
	}
	return sum
}

// NumChunks returns the number of chunks currently allocated by the arena.
func (a *Arena) NumChunks() int {
	n := 0
	for _, s := range a.slabs {
		n += len(s.chunks)
	}
	return n
}

// Capacity returns the total capacity (in bytes) of all chunks in the arena.
func (a *Arena) Capacity() int {
	return a.capacity
}

// Live returns the number of slots handed out and not yet deallocated.
func (a *Arena) Live() int {
	return a.live
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// ChunkSize returns the target chunk size used by this arena.
func (a *Arena) ChunkSize() int {
	return a.chunkSize
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumChunks:   a.NumChunks(),
		ChunkSize:   a.ChunkSize(),
		Live:        a.Live(),
		Utilization: a.Utilization(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     // Bytes held by live slots
	Capacity    int     // Total capacity in bytes
	NumChunks   int     // Number of chunks
	ChunkSize   int     // Target chunk size
	Live        int     // Live slots
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
}

// Thread-safe metrics for SafeArena

// SizeInUse thread-safely returns the number of bytes held by live slots.
func (s *SafeArena) SizeInUse() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.SizeInUse()
}

// NumChunks thread-safely returns the number of chunks currently allocated.
func (s *SafeArena) NumChunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.NumChunks()
}

// Capacity thread-safely returns the total capacity of all chunks.
func (s *SafeArena) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Capacity()
}

// Live thread-safely returns the number of live slots.
func (s *SafeArena) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Live()
}

// Utilization thread-safely returns the ratio of bytes in use to total capacity.
func (s *SafeArena) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Utilization()
}

// ChunkSize thread-safely returns the target chunk size.
func (s *SafeArena) ChunkSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.ChunkSize()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
