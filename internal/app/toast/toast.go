// Package toast implements the transient message layer. Messages stack
// in arrival order and dismiss themselves after their duration unless
// removed first.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a toast for presentation.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// DefaultDuration applies when Show is called with a zero duration.
const DefaultDuration = 5 * time.Second

// Toast is a single transient message.
type Toast struct {
	ID       string
	Kind     Kind
	Message  string
	Duration time.Duration
}

// Queue holds the active toasts. The zero value is not usable; call
// NewQueue.
type Queue struct {
	mu       sync.Mutex
	active   []Toast
	timers   map[string]*time.Timer
	onChange func([]Toast)
	stopped  bool
}

// NewQueue creates an empty queue. onChange, if non-nil, is invoked
// with a snapshot after every add or remove.
func NewQueue(onChange func([]Toast)) *Queue {
	return &Queue{
		timers:   make(map[string]*time.Timer),
		onChange: onChange,
	}
}

// Show appends a toast and schedules its dismissal. It returns the
// generated id so callers can remove the toast early.
func (q *Queue) Show(kind Kind, message string, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
	}
	t := Toast{
		ID:       uuid.NewString(),
		Kind:     kind,
		Message:  message,
		Duration: duration,
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return ""
	}
	q.active = append(q.active, t)
	q.timers[t.ID] = time.AfterFunc(duration, func() { q.Remove(t.ID) })
	q.notifyLocked()
	q.mu.Unlock()
	return t.ID
}

// ShowSuccess is shorthand for Show with the success kind.
func (q *Queue) ShowSuccess(message string) string { return q.Show(Success, message, 0) }

// ShowError is shorthand for Show with the error kind.
func (q *Queue) ShowError(message string) string { return q.Show(Error, message, 0) }

// ShowWarning is shorthand for Show with the warning kind.
func (q *Queue) ShowWarning(message string) string { return q.Show(Warning, message, 0) }

// ShowInfo is shorthand for Show with the info kind.
func (q *Queue) ShowInfo(message string) string { return q.Show(Info, message, 0) }

// Remove dismisses a toast by id. Unknown ids are ignored, so the
// auto-dismiss timer and a manual dismissal can race safely.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	for i, t := range q.active {
		if t.ID == id {
			q.active = append(q.active[:i], q.active[i+1:]...)
			q.notifyLocked()
			return
		}
	}
}

// Active returns a snapshot of the visible toasts in arrival order.
func (q *Queue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.active))
	copy(out, q.active)
	return out
}

// Stop cancels all pending timers and clears the queue. The queue
// accepts no further toasts afterwards.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.active = nil
}

func (q *Queue) notifyLocked() {
	if q.onChange == nil {
		return
	}
	out := make([]Toast, len(q.active))
	copy(out, q.active)
	q.onChange(out)
}
