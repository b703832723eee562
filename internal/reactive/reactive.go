package reactive

import "log/slog"

// Context is the capability surface a session depends on: run a
// function now, rerun it when its tracked inputs change, and read
// values without registering a dependency.
//
// Passing the context explicitly (rather than relying on an ambient
// global) keeps the recomputation machinery injectable and testable.
type Context interface {
	// Autorun runs f immediately, tracking the dependencies it reads,
	// and reruns it whenever one of them changes. The returned
	// Computation stops the rerun loop. The first run's error is
	// returned alongside the handle.
	Autorun(f func() error) (Computation, error)

	// NonReactive runs fn without registering dependencies on the
	// values it reads.
	NonReactive(fn func())
}

// Computation is a handle to an active autorun.
type Computation interface {
	// Stop terminates the rerun loop. Idempotent; safe to call from
	// inside the computation's own function.
	Stop()
}

// Runtime is the cooperative single-threaded implementation of
// Context.
//
// NOT goroutine-safe: all signal writes and autoruns must happen on
// one goroutine.
type Runtime struct {
	active   *computation
	queue    []*computation
	flushing bool
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

type computation struct {
	rt      *Runtime
	f       func() error
	deps    []*Dep
	stopped bool
	queued  bool
}

// Autorun implements Context.
func (r *Runtime) Autorun(f func() error) (Computation, error) {
	c := &computation{rt: r, f: f}
	err := r.rerun(c)
	return c, err
}

// NonReactive implements Context.
func (r *Runtime) NonReactive(fn func()) {
	prev := r.active
	r.active = nil
	defer func() { r.active = prev }()
	fn()
}

// rerun clears a computation's old dependency edges and runs its
// function with tracking active.
func (r *Runtime) rerun(c *computation) error {
	for _, d := range c.deps {
		delete(d.subs, c)
	}
	c.deps = c.deps[:0]

	prev := r.active
	r.active = c
	defer func() { r.active = prev }()
	return c.f()
}

// schedule marks a computation invalidated. The actual rerun happens
// in flush.
func (r *Runtime) schedule(c *computation) {
	if c.stopped || c.queued {
		return
	}
	c.queued = true
	r.queue = append(r.queue, c)
}

// flush reruns invalidated computations in schedule order. Nested
// flushes (a rerun writing another signal) coalesce into the
// outermost one, preserving trigger order. Returns the first rerun
// error; remaining queued computations still run, mirroring the
// log-and-continue loop discipline.
func (r *Runtime) flush() error {
	if r.flushing {
		return nil
	}
	r.flushing = true
	defer func() { r.flushing = false }()

	var firstErr error
	for len(r.queue) > 0 {
		c := r.queue[0]
		r.queue[0] = nil
		r.queue = r.queue[1:]
		c.queued = false

		if c.stopped {
			continue
		}
		if err := r.rerun(c); err != nil {
			if firstErr == nil {
				firstErr = err
			} else {
				slog.Error("recomputation failed", "error", err)
			}
		}
	}
	return firstErr
}

// Stop implements Computation.
func (c *computation) Stop() {
	if c.stopped {
		return
	}
	c.stopped = true
	for _, d := range c.deps {
		delete(d.subs, c)
	}
	c.deps = nil
}

// Dep is a raw dependency: a set of computations to rerun when the
// tracked value changes. Signals are built on Dep; collection
// implementations that want reactive fetches can use Dep directly.
type Dep struct {
	rt   *Runtime
	subs map[*computation]struct{}
}

// NewDep creates a dependency bound to the runtime.
func (r *Runtime) NewDep() *Dep {
	return &Dep{rt: r, subs: make(map[*computation]struct{})}
}

// Depend registers the currently running computation (if any) as a
// subscriber. No-op outside a tracked run or inside NonReactive.
func (d *Dep) Depend() {
	c := d.rt.active
	if c == nil {
		return
	}
	if _, ok := d.subs[c]; ok {
		return
	}
	d.subs[c] = struct{}{}
	c.deps = append(c.deps, d)
}

// Changed invalidates all subscribers and reruns them before
// returning. Returns the first rerun error.
func (d *Dep) Changed() error {
	for c := range d.subs {
		d.rt.schedule(c)
	}
	return d.rt.flush()
}
