package reactive

// Signal is a reactive value container. Reading it inside an autorun
// subscribes that computation to subsequent writes.
type Signal[T any] struct {
	dep   *Dep
	value T
}

// NewSignal creates a signal holding an initial value.
func NewSignal[T any](rt *Runtime, value T) *Signal[T] {
	return &Signal[T]{dep: rt.NewDep(), value: value}
}

// Get returns the current value, registering a dependency when called
// from inside an autorun.
func (s *Signal[T]) Get() T {
	s.dep.Depend()
	return s.value
}

// Peek returns the current value without registering a dependency.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores a new value and reruns subscribed computations before
// returning. The first rerun error propagates to the caller - the
// trigger owns the failure, not the signal.
func (s *Signal[T]) Set(value T) error {
	s.value = value
	return s.dep.Changed()
}
