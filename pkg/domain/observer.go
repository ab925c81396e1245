package domain

import "weak"

// Observer receives change notifications from a Subject. Implementations
// must be comparable (typically pointer types) so they can be detached.
type Observer interface {
	Update(s Subject)
}

// Subject is the notification side of the observer contract.
type Subject interface {
	Attach(o Observer)
	Detach(o Observer)
	Notify()
	DetachAllObservers()
}

// weakObserver forwards to an observer without keeping it alive.
type weakObserver[T any, P interface {
	*T
	Observer
}] struct {
	ptr weak.Pointer[T]
}

// WeakObserver wraps o so that attaching it to a subject does not keep it
// alive. Once o is collected the subject skips and drops it on Notify.
func WeakObserver[T any, P interface {
	*T
	Observer
}](o P) Observer {
	return &weakObserver[T, P]{ptr: weak.Make((*T)(o))}
}

func (w *weakObserver[T, P]) Update(s Subject) {
	if v := w.ptr.Value(); v != nil {
		P(v).Update(s)
	}
}

func (w *weakObserver[T, P]) live() bool {
	return w.ptr.Value() != nil
}

func (w *weakObserver[T, P]) target() Observer {
	if v := w.ptr.Value(); v != nil {
		return P(v)
	}
	return nil
}

// WeakReferent is implemented by observers that subjects hold weakly by
// default. Attach stores the handle WeakRef returns in place of the
// observer itself.
type WeakReferent interface {
	Observer
	WeakRef() Observer
}

type liveObserver interface {
	live() bool
	target() Observer
}

// observerList keeps observers in attachment order.
type observerList struct {
	items []Observer
}

func (l *observerList) attach(o Observer) {
	if o == nil {
		return
	}
	if r, ok := o.(WeakReferent); ok {
		o = r.WeakRef()
	}
	for _, existing := range l.items {
		if sameObserver(existing, o) {
			return
		}
	}
	l.items = append(l.items, o)
}

func (l *observerList) detach(o Observer) {
	if o == nil {
		return
	}
	kept := l.items[:0]
	for _, existing := range l.items {
		if !sameObserver(existing, o) {
			kept = append(kept, existing)
		}
	}
	clear(l.items[len(kept):])
	l.items = kept
}

// live returns the observers still reachable, dropping expired weak entries.
func (l *observerList) live() []Observer {
	kept := l.items[:0]
	for _, o := range l.items {
		if w, ok := o.(liveObserver); ok && !w.live() {
			continue
		}
		kept = append(kept, o)
	}
	clear(l.items[len(kept):])
	l.items = kept
	out := make([]Observer, len(kept))
	copy(out, kept)
	return out
}

func (l *observerList) clear() {
	l.items = nil
}

func (l *observerList) len() int {
	return len(l.items)
}

func sameObserver(existing, o Observer) bool {
	if existing == o {
		return true
	}
	target := unwrapObserver(o)
	return target != nil && unwrapObserver(existing) == target
}

// unwrapObserver resolves a weak entry to its live observer, or nil.
func unwrapObserver(o Observer) Observer {
	if w, ok := o.(liveObserver); ok {
		return w.target()
	}
	return o
}
