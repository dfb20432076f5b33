package viewport

// memo holds the last published copy of one half of the state. The copy is
// replaced only when the input differs field by field, so its pointer is
// stable across unchanged frames.
type memo[T comparable] struct {
	last *T
}

func newMemo[T comparable](v T) memo[T] {
	return memo[T]{last: &v}
}

// update publishes v if it differs from the last copy and reports whether it did.
func (m *memo[T]) update(v T) bool {
	if m.last != nil && *m.last == v {
		return false
	}
	m.last = &v
	return true
}

func (m *memo[T]) value() *T {
	return m.last
}
