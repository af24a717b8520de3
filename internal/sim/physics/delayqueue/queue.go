// Package delayqueue is a growable FIFO ring of items that each wait a number
// of checks before they are reported ready.
package delayqueue

const minCapacity = 32

type Entry[T any] struct {
	Item  T
	Delay int
}

type Queue[T any] struct {
	entries []Entry[T]
	head    int
	tail    int
	count   int

	ceiling int
	onClear func(dropped int)
}

// New returns an empty queue. When the backing array has reached ceiling and
// needs to grow again, every queued entry is discarded and onClear is called
// with the number of entries lost.
func New[T any](ceiling int, onClear func(dropped int)) *Queue[T] {
	return &Queue[T]{ceiling: ceiling, onClear: onClear}
}

func (q *Queue[T]) Len() int { return q.count }
func (q *Queue[T]) Cap() int { return len(q.entries) }

func (q *Queue[T]) Enqueue(item T, delay int) {
	if q.count == len(q.entries) {
		q.grow()
	}
	q.entries[q.tail] = Entry[T]{Item: item, Delay: delay}
	q.tail = (q.tail + 1) & (len(q.entries) - 1)
	q.count++
}

func (q *Queue[T]) Dequeue() (Entry[T], bool) {
	if q.count == 0 {
		return Entry[T]{}, false
	}
	e := q.entries[q.head]
	q.entries[q.head] = Entry[T]{}
	q.head = (q.head + 1) & (len(q.entries) - 1)
	q.count--
	return e, true
}

// Check takes the front entry. An entry with time left goes back on the tail
// with its delay reduced by one and ready is false.
func (q *Queue[T]) Check() (item T, ready bool) {
	e, ok := q.Dequeue()
	if !ok {
		return item, false
	}
	if e.Delay >= 1 {
		q.Enqueue(e.Item, e.Delay-1)
		return e.Item, false
	}
	return e.Item, true
}

func (q *Queue[T]) Clear() {
	q.entries = nil
	q.head, q.tail, q.count = 0, 0, 0
}

func (q *Queue[T]) grow() {
	if q.ceiling > 0 && len(q.entries) >= q.ceiling {
		dropped := q.count
		q.Clear()
		if q.onClear != nil {
			q.onClear(dropped)
		}
	}

	capacity := len(q.entries) * 2
	if capacity < minCapacity {
		capacity = minCapacity
	}
	entries := make([]Entry[T], capacity)
	// Re-linearize so the ring starts at index 0.
	if q.count > 0 {
		mask := len(q.entries) - 1
		for i := 0; i < q.count; i++ {
			entries[i] = q.entries[(q.head+i)&mask]
		}
	}
	q.entries = entries
	q.head = 0
	q.tail = q.count
}
