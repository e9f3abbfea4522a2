package gameaction

import "sync"

// taskQueue runs one task at a time in submission order. Each task waits on
// the settlement channel of the task enqueued before it; the mutex only
// guards the tail pointer.
type taskQueue struct {
	mu   sync.Mutex
	tail chan struct{}
}

// enqueue schedules fn after every previously enqueued task has returned and
// reports its settlement on the returned channel.
func (q *taskQueue) enqueue(fn func()) <-chan struct{} {
	done := make(chan struct{})
	q.mu.Lock()
	prev := q.tail
	q.tail = done
	q.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		fn()
	}()
	return done
}

// idle returns a channel that closes once everything enqueued so far has
// settled.
func (q *taskQueue) idle() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tail == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return q.tail
}
