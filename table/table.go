// Package table provides a fixed-capacity ordered container used for the
// motor weight and servo rule tables. All storage is allocated up front, so
// nothing in the control loop allocates.
package table

type Table[T any] struct {
	items []T
}

// New returns an empty table that can hold capacity items
func New[T any](capacity int) *Table[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Table[T]{items: make([]T, 0, capacity)}
}

// TerminatedLength returns the index of the first terminator entry, or
// len(items) if there is none. This is how the old zero-terminated arrays
// worked out how many entries were live.
func TerminatedLength[T any](items []T, isTerminator func(T) bool) int {
	for i, item := range items {
		if isTerminator(item) {
			return i
		}
	}
	return len(items)
}

// FromTerminated copies items up to (not including) the first terminator.
// Anything past capacity is dropped.
func FromTerminated[T any](items []T, capacity int, isTerminator func(T) bool) *Table[T] {
	t := New[T](capacity)
	count := TerminatedLength(items, isTerminator)
	for i := 0; i < count; i++ {
		if !t.Insert(items[i]) {
			break
		}
	}
	return t
}

func (t *Table[T]) Len() int {
	return len(t.items)
}

func (t *Table[T]) Cap() int {
	return cap(t.items)
}

func (t *Table[T]) Full() bool {
	return len(t.items) == cap(t.items)
}

// Insert appends item, returning false if the table is full
func (t *Table[T]) Insert(item T) bool {
	if t.Full() {
		return false
	}
	t.items = append(t.items, item)
	return true
}

func (t *Table[T]) At(index int) T {
	return t.items[index]
}

// Ptr returns a pointer into the table's storage. It stays valid until the
// entry is removed.
func (t *Table[T]) Ptr(index int) *T {
	return &t.items[index]
}

func (t *Table[T]) Set(index int, item T) bool {
	if index < 0 || index >= len(t.items) {
		return false
	}
	t.items[index] = item
	return true
}

// Find returns the index of the first item that matches
func (t *Table[T]) Find(match func(T) bool) (int, bool) {
	for i := range t.items {
		if match(t.items[i]) {
			return i, true
		}
	}
	return -1, false
}

// Remove deletes the item at index, keeping the order of the rest
func (t *Table[T]) Remove(index int) bool {
	if index < 0 || index >= len(t.items) {
		return false
	}
	copy(t.items[index:], t.items[index+1:])
	var zero T
	t.items[len(t.items)-1] = zero
	t.items = t.items[:len(t.items)-1]
	return true
}

// RemoveFunc deletes every matching item and returns how many went
func (t *Table[T]) RemoveFunc(match func(T) bool) int {
	kept := 0
	for i := range t.items {
		if !match(t.items[i]) {
			t.items[kept] = t.items[i]
			kept++
		}
	}
	removed := len(t.items) - kept
	var zero T
	for i := kept; i < len(t.items); i++ {
		t.items[i] = zero
	}
	t.items = t.items[:kept]
	return removed
}

// Each calls fn for every item in order until fn returns false
func (t *Table[T]) Each(fn func(int, T) bool) {
	for i := range t.items {
		if !fn(i, t.items[i]) {
			return
		}
	}
}

// Items returns the live entries. Callers must not append to it.
func (t *Table[T]) Items() []T {
	return t.items
}

func (t *Table[T]) Clear() {
	var zero T
	for i := range t.items {
		t.items[i] = zero
	}
	t.items = t.items[:0]
}
