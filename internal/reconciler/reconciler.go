// Package reconciler owns the canonical current state of the coop. Every
// other component reads it through Read, Snapshot or a Subscription.
package reconciler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chickencoop_bridge/internal/models"
)

// Outcome is the result of applying one event.
type Outcome int

const (
	Unchanged Outcome = iota
	Changed
)

func (o Outcome) String() string {
	if o == Changed {
		return "changed"
	}
	return "unchanged"
}

var ErrUnknownKind = errors.New("unknown state kind")

type slot struct {
	mu    sync.Mutex
	state models.State
}

// Reconciler holds one slot per kind. Applies to the same kind are serialized;
// different kinds never contend.
type Reconciler struct {
	slots map[models.Kind]*slot

	subsMu sync.RWMutex
	subs   map[*Subscription]struct{}
}

// New returns a Reconciler with every slot unset.
func New() *Reconciler {
	r := &Reconciler{
		slots: make(map[models.Kind]*slot, len(models.AllKinds)),
		subs:  make(map[*Subscription]struct{}),
	}
	for _, k := range models.AllKinds {
		r.slots[k] = &slot{state: models.State{Kind: k}}
	}
	return r
}

// Apply compares ev with the current slot value. When they differ the slot is
// replaced and a Change is queued for every matching subscriber before the
// slot lock is released, so per-kind notification order equals apply order.
// An equal value leaves the slot and its version untouched.
func (r *Reconciler) Apply(ev models.Event, at time.Time) (Outcome, error) {
	s, ok := r.slots[ev.Kind]
	if !ok {
		return Unchanged, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	if prev.Set && prev.Value == ev.Value {
		return Unchanged, nil
	}

	s.state = models.State{
		Kind:      ev.Kind,
		Value:     ev.Value,
		Set:       true,
		Version:   prev.Version + 1,
		UpdatedAt: at.UTC(),
	}
	r.publish(models.Change{Kind: ev.Kind, Previous: prev, Current: s.state, At: at.UTC()})
	return Changed, nil
}

// Read returns the slot for kind. An unknown or never observed kind reports Unset.
func (r *Reconciler) Read(kind models.Kind) models.State {
	s, ok := r.slots[kind]
	if !ok {
		return models.State{Kind: kind}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot copies every slot. Slots are read one at a time, so the result is
// consistent per kind only.
func (r *Reconciler) Snapshot() models.Snapshot {
	out := make(models.Snapshot, len(r.slots))
	for _, k := range models.AllKinds {
		out[k] = r.Read(k)
	}
	return out
}

// Subscribe returns a stream of changes for the given kinds, or for every kind
// when none are given. The caller must Close it.
func (r *Reconciler) Subscribe(kinds ...models.Kind) *Subscription {
	sub := newSubscription(r, kinds)
	r.subsMu.Lock()
	r.subs[sub] = struct{}{}
	r.subsMu.Unlock()
	go sub.pump()
	return sub
}

func (r *Reconciler) unsubscribe(sub *Subscription) {
	r.subsMu.Lock()
	delete(r.subs, sub)
	r.subsMu.Unlock()
}

func (r *Reconciler) publish(ch models.Change) {
	r.subsMu.RLock()
	defer r.subsMu.RUnlock()
	for sub := range r.subs {
		if sub.wants(ch.Kind) {
			sub.enqueue(ch)
		}
	}
}
