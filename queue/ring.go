// Package queue provides a FIFO queue over a power-of-2 sized ring
// buffer. The ring doubles its capacity when a Push finds it full, so
// Push never fails. Ring is *NOT* thread safe.
package queue

// Ring is a FIFO queue of T made with a slice.
type Ring[T any] struct {
	m uint32 /* queue mask (cap - 1) */
	s uint32 /* start index */
	e uint32 /* end index */
	b []T    /* buffer */
}

// NewRing allocates and returns a new queue with space for at least
// sz elements before it has to grow. sz is rounded up to a power of
// 2.
func NewRing[T any](sz int) *Ring[T] {
	n := uint32(1)
	for int(n) < sz {
		n <<= 1
	}
	return &Ring[T]{m: n - 1, b: make([]T, n)}
}

// Empty tests if the queue is empty.
func (q *Ring[T]) Empty() bool {
	return q.s == q.e
}

// Len returns the number of elements waiting in the queue.
func (q *Ring[T]) Len() int {
	return int(q.e - q.s)
}

// Cap returns the current capacity of the queue (# of element slots).
func (q *Ring[T]) Cap() int {
	return len(q.b)
}

// Peek returns the first element in the queue, without removing
// it. Panics if the queue is empty.
func (q *Ring[T]) Peek() T {
	if q.Empty() {
		panic("Ring: peek at empty Q")
	}
	return q.b[q.s&q.m]
}

// Pop removes the first element from the queue and returns
// it. Panics if the queue is empty.
func (q *Ring[T]) Pop() T {
	if q.Empty() {
		panic("Ring: pop from empty Q")
	}
	var zero T
	i := q.s & q.m
	v := q.b[i]
	q.b[i] = zero
	q.s++
	return v
}

// Push adds element "v" to the tail of the queue, growing the buffer
// if it is full.
func (q *Ring[T]) Push(v T) {
	if q.Len() == len(q.b) {
		q.grow()
	}
	q.b[q.e&q.m] = v
	q.e++
}

// Reset empties the queue, keeping its buffer.
func (q *Ring[T]) Reset() {
	clear(q.b)
	q.s, q.e = 0, 0
}

// grow doubles the buffer, unrolling the ring so that the first
// element lands at index 0.
func (q *Ring[T]) grow() {
	n := len(q.b)
	nb := make([]T, 2*n)
	for i := 0; i < n; i++ {
		nb[i] = q.b[(q.s+uint32(i))&q.m]
	}
	q.b = nb
	q.m = uint32(2*n) - 1
	q.s, q.e = 0, uint32(n)
}
