// Package registry holds capacity-bounded tables keyed by grid position with
// deterministic (insertion, then swap-remove) iteration order.
package registry

type Table[K comparable, V any] struct {
	max   int
	index map[K]int
	keys  []K
	vals  []V
}

func New[K comparable, V any](max int) *Table[K, V] {
	return &Table[K, V]{
		max:   max,
		index: make(map[K]int),
	}
}

func (t *Table[K, V]) Len() int   { return len(t.keys) }
func (t *Table[K, V]) Max() int   { return t.max }
func (t *Table[K, V]) Full() bool { return len(t.keys) >= t.max }

func (t *Table[K, V]) Has(k K) bool {
	_, ok := t.index[k]
	return ok
}

func (t *Table[K, V]) Get(k K) (V, bool) {
	i, ok := t.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return t.vals[i], true
}

// Put stores v under k. It returns false when k is new and the table is full.
func (t *Table[K, V]) Put(k K, v V) bool {
	if i, ok := t.index[k]; ok {
		t.vals[i] = v
		return true
	}
	if len(t.keys) >= t.max {
		return false
	}
	t.index[k] = len(t.keys)
	t.keys = append(t.keys, k)
	t.vals = append(t.vals, v)
	return true
}

func (t *Table[K, V]) Delete(k K) bool {
	i, ok := t.index[k]
	if !ok {
		return false
	}
	t.RemoveAt(i)
	return true
}

func (t *Table[K, V]) At(i int) (K, V) { return t.keys[i], t.vals[i] }

func (t *Table[K, V]) SetAt(i int, v V) { t.vals[i] = v }

// RemoveAt moves the last entry into slot i.
func (t *Table[K, V]) RemoveAt(i int) {
	last := len(t.keys) - 1
	delete(t.index, t.keys[i])
	if i != last {
		t.keys[i] = t.keys[last]
		t.vals[i] = t.vals[last]
		t.index[t.keys[i]] = i
	}
	var zeroK K
	var zeroV V
	t.keys[last] = zeroK
	t.vals[last] = zeroV
	t.keys = t.keys[:last]
	t.vals = t.vals[:last]
}

func (t *Table[K, V]) Clear() {
	clear(t.index)
	t.keys = t.keys[:0]
	t.vals = t.vals[:0]
}

func (t *Table[K, V]) Keys() []K {
	out := make([]K, len(t.keys))
	copy(out, t.keys)
	return out
}
