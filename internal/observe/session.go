package observe

import (
	"fmt"
	"log/slog"

	"github.com/roach88/sleight/internal/reactive"
	"github.com/roach88/sleight/internal/seq"
)

// Session is the per-observation state machine. It owns the reactive
// recomputation loop, the baseline snapshot, and the currently active
// live subscription (if any).
//
// Sessions run on the cooperative reactive runtime and are not safe
// for concurrent use from multiple goroutines.
type Session struct {
	rx   reactive.Context
	expr func() any
	mat  *seq.Materializer
	cb   Callbacks

	comp reactive.Computation

	// last is the baseline snapshot for the next run. For a live
	// source it evolves entry-by-entry from native events rather than
	// being rebuilt wholesale.
	last seq.Snapshot

	// source is the attached live collection handle, nil when the
	// current source is Empty/List. Compared with == to detect "same
	// handle, skip resubscription".
	source seq.LiveCollection
	sub    seq.Subscription

	// attaching marks the window during which the native feed
	// re-announces the collection's current contents; adds for
	// entries already delivered by the initial diff are suppressed.
	attaching bool

	stopped bool
}

// Observe starts observing a sequence expression.
//
// Each time the expression's reactive dependencies change, it is
// re-evaluated and the structural difference against the previous
// evaluation is delivered through cb.
//
// keys generates fresh keys for list items that carry no identity of
// their own. The first run happens before Observe returns; if it
// fails (unsupported sequence shape, duplicate keys, collection fetch
// failure) the error is returned and no session is left running.
func Observe(rx reactive.Context, keys seq.KeyGenerator, expr func() any, cb Callbacks) (*Session, error) {
	s := &Session{
		rx:   rx,
		expr: expr,
		cb:   cb,
		mat:  seq.NewMaterializer(keys, rx.NonReactive),
	}

	comp, err := rx.Autorun(s.run)
	if err != nil {
		comp.Stop()
		s.detach()
		s.stopped = true
		return nil, fmt.Errorf("observe: %w", err)
	}
	if s.stopped {
		// Stop was called from inside a first-run callback.
		comp.Stop()
		return s, nil
	}
	s.comp = comp
	return s, nil
}

// Stop terminates the recomputation loop and detaches any active live
// subscription. Idempotent - calling it more than once, or from
// within a callback, has no additional effect. After Stop no further
// callback of any kind fires.
func (s *Session) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	if s.comp != nil {
		s.comp.Stop()
	}
	s.detach()
}

// run is one reactive recomputation: evaluate, classify, dispatch.
func (s *Session) run() error {
	if s.stopped {
		return nil
	}

	value := s.expr()

	// Same live handle as last run: the native feed keeps delivering
	// incremental events directly - no re-diff, no resubscribe.
	if lc, ok := value.(seq.LiveCollection); ok && s.source != nil && lc == s.source {
		return nil
	}

	kind, snap, err := s.mat.Materialize(value)
	if err != nil {
		// Stop-before-replace even on the error path so a failed run
		// cannot leave a subscription delivering into stale state.
		s.detach()
		return err
	}

	slog.Debug("sequence recomputed",
		"kind", kind.String(),
		"entries", len(snap),
	)

	// The previously attached subscription (if any) is stopped before
	// any events are emitted or a new one is established.
	s.detach()

	s.emitTransition(snap)

	if kind == seq.KindLive && !s.stopped {
		s.attach(value.(seq.LiveCollection))
	}
	return nil
}

// detach stops the active native subscription, if any. Safe to call
// when nothing is attached.
func (s *Session) detach() {
	if s.sub != nil {
		s.sub.Stop()
		s.sub = nil
	}
	s.source = nil
}

// attach subscribes to a live collection's native feed. The initial
// batch the feed announces duplicates what emitTransition already
// delivered, so adds for keys present in the baseline are suppressed
// until the subscription call returns.
func (s *Session) attach(lc seq.LiveCollection) {
	s.attaching = true
	s.sub = lc.Observe(seq.NativeCallbacks{
		AddedAt: s.nativeAdded,
		Changed: s.nativeChanged,
		Removed: s.nativeRemoved,
		MovedTo: s.nativeMoved,
	})
	s.attaching = false
	if s.stopped {
		// Stop landed inside an initial-batch callback.
		s.sub.Stop()
		s.sub = nil
		return
	}
	s.source = lc

	slog.Debug("live collection attached", "entries", len(s.last))
}
