package reconciler

import (
	"sync"

	"chickencoop_bridge/internal/models"
)

// Subscription delivers changes in per-kind apply order on C. Its queue is
// unbounded, so a slow reader delays only itself.
type Subscription struct {
	C <-chan models.Change

	out   chan models.Change
	kinds map[models.Kind]struct{}
	r     *Reconciler

	mu     sync.Mutex
	queue  []models.Change
	wake   chan struct{}
	done   chan struct{}
	closed sync.Once
}

func newSubscription(r *Reconciler, kinds []models.Kind) *Subscription {
	out := make(chan models.Change)
	sub := &Subscription{
		C:    out,
		out:  out,
		r:    r,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	if len(kinds) > 0 {
		sub.kinds = make(map[models.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = struct{}{}
		}
	}
	return sub
}

func (s *Subscription) wants(k models.Kind) bool {
	if s.kinds == nil {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

func (s *Subscription) enqueue(ch models.Change) {
	s.mu.Lock()
	s.queue = append(s.queue, ch)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many changes are queued but not yet received.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close stops delivery and closes C. Queued changes are discarded.
func (s *Subscription) Close() {
	s.closed.Do(func() {
		s.r.unsubscribe(s)
		close(s.done)
	})
}

func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		next := s.queue[0]
		s.queue[0] = models.Change{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- next:
		case <-s.done:
			return
		}
	}
}
