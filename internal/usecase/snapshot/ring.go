package snapshot

// ring is a bounded circular buffer with O(1) append-and-evict.
// Index 0 is always the oldest retained entry.
type ring[T any] struct {
	buf   []T
	start int
	size  int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) len() int { return r.size }

// push appends v, evicting the oldest entry when full
func (r *ring[T]) push(v T) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// at returns the entry at chronological index i (0 = oldest)
func (r *ring[T]) at(i int) T {
	return r.buf[(r.start+i)%len(r.buf)]
}

// set overwrites the entry at chronological index i
func (r *ring[T]) set(i int, v T) {
	r.buf[(r.start+i)%len(r.buf)] = v
}

// values returns the retained entries in chronological order
func (r *ring[T]) values() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.at(i)
	}
	return out
}

func (r *ring[T]) clear() {
	r.start, r.size = 0, 0
}
