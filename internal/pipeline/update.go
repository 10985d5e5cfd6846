package pipeline

// Update is a snapshot field that is either set to a value or left unchanged.
// A set empty value clears the display; a kept one must not overwrite it.
type Update[T any] struct {
	value T
	set   bool
}

// Set returns an update carrying v.
func Set[T any](v T) Update[T] {
	return Update[T]{value: v, set: true}
}

// Keep returns an update that leaves the current value in place.
func Keep[T any]() Update[T] {
	return Update[T]{}
}

// Get returns the carried value and whether the update is set.
func (u Update[T]) Get() (T, bool) {
	return u.value, u.set
}

// IsSet reports whether the update carries a value.
func (u Update[T]) IsSet() bool { return u.set }

// Apply returns the carried value, or cur when the update is kept.
func (u Update[T]) Apply(cur T) T {
	if u.set {
		return u.value
	}
	return cur
}
