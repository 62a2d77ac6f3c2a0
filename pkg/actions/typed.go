package actions

// Toggle holds named actions for a boolean store.
type Toggle struct {
	s Mutable[bool]
}

// NewToggle binds toggle actions to s.
func NewToggle(s Mutable[bool]) *Toggle {
	return &Toggle{s: s}
}

// Toggle flips the value.
func (t *Toggle) Toggle() {
	t.s.Publish(!t.s.Unwrap())
}

// On publishes true.
func (t *Toggle) On() {
	t.s.Publish(true)
}

// Off publishes false.
func (t *Toggle) Off() {
	t.s.Publish(false)
}

// Value returns the current value.
func (t *Toggle) Value() bool {
	return t.s.Unwrap()
}

// Number is the set of types a Counter can hold.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Counter holds named actions for a numeric store.
type Counter[N Number] struct {
	s       Mutable[N]
	initial N
}

// NewCounter binds counter actions to s. Reset restores the value s holds now.
func NewCounter[N Number](s Mutable[N]) *Counter[N] {
	return &Counter[N]{s: s, initial: s.Unwrap()}
}

// Increment adds one.
func (c *Counter[N]) Increment() {
	c.Add(1)
}

// Decrement subtracts one.
func (c *Counter[N]) Decrement() {
	c.s.Publish(c.s.Unwrap() - 1)
}

// Add adds n.
func (c *Counter[N]) Add(n N) {
	c.s.Publish(c.s.Unwrap() + n)
}

// Reset publishes the value held when the counter was bound.
func (c *Counter[N]) Reset() {
	c.s.Publish(c.initial)
}

// Value returns the current value.
func (c *Counter[N]) Value() N {
	return c.s.Unwrap()
}

// List holds named actions for a slice store. Every action publishes a new
// slice; the published slice is never modified afterwards.
type List[E any] struct {
	s Mutable[[]E]
}

// NewList binds list actions to s.
func NewList[E any](s Mutable[[]E]) *List[E] {
	return &List[E]{s: s}
}

// Append publishes the list with items added at the end.
func (l *List[E]) Append(items ...E) {
	cur := l.s.Unwrap()
	next := make([]E, 0, len(cur)+len(items))
	next = append(next, cur...)
	next = append(next, items...)
	l.s.Publish(next)
}

// RemoveAt publishes the list without the item at index i. It reports false,
// and publishes nothing, when i is out of range.
func (l *List[E]) RemoveAt(i int) bool {
	cur := l.s.Unwrap()
	if i < 0 || i >= len(cur) {
		return false
	}
	next := make([]E, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	l.s.Publish(next)
	return true
}

// Clear publishes an empty list.
func (l *List[E]) Clear() {
	l.s.Publish([]E{})
}

// Len returns the current length.
func (l *List[E]) Len() int {
	return len(l.s.Unwrap())
}

// Items returns the current slice. Callers must not modify it.
func (l *List[E]) Items() []E {
	return l.s.Unwrap()
}
