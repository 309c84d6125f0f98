package completion

import (
	"context"
	"sync"
	"time"
)

type waiter struct {
	ready chan error
}

// queue caps in-flight requests. Waiters are served FIFO, with the high
// priority lane always drained first.
type queue struct {
	mu     sync.Mutex
	limit  int
	active int
	high   []*waiter
	normal []*waiter
}

func newQueue(limit int) *queue {
	if limit <= 0 {
		limit = 1
	}
	return &queue{limit: limit}
}

func (q *queue) acquire(ctx context.Context, highPriority bool) error {
	q.mu.Lock()
	if q.active < q.limit && len(q.high) == 0 && len(q.normal) == 0 {
		q.active++
		q.mu.Unlock()
		return nil
	}
	w := &waiter{ready: make(chan error, 1)}
	if highPriority {
		q.high = append(q.high, w)
	} else {
		q.normal = append(q.normal, w)
	}
	q.mu.Unlock()

	select {
	case err := <-w.ready:
		return err
	case <-ctx.Done():
		q.mu.Lock()
		if q.remove(w) {
			q.mu.Unlock()
			return ctx.Err()
		}
		q.mu.Unlock()
		// Lost the race: a slot (or a clear) was already handed to us.
		if err := <-w.ready; err == nil {
			q.release()
		}
		return ctx.Err()
	}
}

// release hands the slot straight to the next waiter, if any.
func (q *queue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if next := q.pop(); next != nil {
		next.ready <- nil
		return
	}
	if q.active > 0 {
		q.active--
	}
}

func (q *queue) pop() *waiter {
	if len(q.high) > 0 {
		w := q.high[0]
		q.high = q.high[1:]
		return w
	}
	if len(q.normal) > 0 {
		w := q.normal[0]
		q.normal = q.normal[1:]
		return w
	}
	return nil
}

func (q *queue) remove(target *waiter) bool {
	for _, lane := range []*[]*waiter{&q.high, &q.normal} {
		for i, w := range *lane {
			if w == target {
				*lane = append((*lane)[:i], (*lane)[i+1:]...)
				return true
			}
		}
	}
	return false
}

// clear fails every waiter with err and returns how many were dropped.
func (q *queue) clear(err error) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for w := q.pop(); w != nil; w = q.pop() {
		w.ready <- err
		n++
	}
	return n
}

func (q *queue) stats() (waiting, active int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high) + len(q.normal), q.active
}

// rateWindow enforces a requests-per-minute ceiling over a sliding window.
type rateWindow struct {
	mu     sync.Mutex
	limit  int
	span   time.Duration
	margin time.Duration
	clock  Clock
	times  []time.Time
}

func newRateWindow(limit int, clock Clock) *rateWindow {
	return &rateWindow{
		limit:  limit,
		span:   time.Minute,
		margin: 200 * time.Millisecond,
		clock:  clock,
	}
}

// wait blocks until the window has room, then records the request.
func (w *rateWindow) wait(ctx context.Context) error {
	for {
		delay := w.reserve()
		if delay == 0 {
			return nil
		}
		select {
		case <-w.clock.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *rateWindow) reserve() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.clock.Now()
	w.prune(now)
	if w.limit <= 0 || len(w.times) < w.limit {
		w.times = append(w.times, now)
		return 0
	}
	return w.span - now.Sub(w.times[0]) + w.margin
}

func (w *rateWindow) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.times) && !w.times[i].After(cutoff) {
		i++
	}
	w.times = w.times[i:]
}

func (w *rateWindow) recent() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.clock.Now())
	return len(w.times)
}
