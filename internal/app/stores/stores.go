// Package stores implements the client-side domain caches over the
// PearlData API. Every cache is a lagging mirror of the last successful
// server response: fetches replace it wholesale, mutations touch it only
// after the server confirms, and a stale fetch response never overwrites
// a newer one.
package stores

import "github.com/pearldata/pearlctl/internal/app/models"

// Authenticator is the read-only view of the session a domain store
// needs. Stores never mutate session state.
type Authenticator interface {
	IsAuthenticated() bool
}

const errNotAuthenticated = "Not authenticated"

// collection is the cache for one entity slice. Its method set is the
// complete list of legal cache transitions; nothing else mutates items.
type collection[T any] struct {
	items []T
	id    func(T) int64
}

func newCollection[T any](id func(T) int64) collection[T] {
	return collection[T]{id: id}
}

// replace swaps the whole cache for the server's result set.
func (c *collection[T]) replace(items []T) {
	c.items = items
}

// prepend inserts a freshly created entity at the front. Position is a
// display choice, not a correctness one.
func (c *collection[T]) prepend(item T) {
	c.items = append([]T{item}, c.items...)
}

// add appends entities at the back.
func (c *collection[T]) add(items ...T) {
	c.items = append(c.items, items...)
}

// update replaces the entity with a matching id, if present.
func (c *collection[T]) update(item T) {
	target := c.id(item)
	for i := range c.items {
		if c.id(c.items[i]) == target {
			c.items[i] = item
			return
		}
	}
}

// remove drops the entity with the given id, if present.
func (c *collection[T]) remove(id int64) {
	for i := range c.items {
		if c.id(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// snapshot returns a copy safe to hand to callers.
func (c *collection[T]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// fetchToken makes concurrent fetches deterministic: the fetch issued
// last owns the cache, and responses carrying an older token are
// discarded when they resolve.
type fetchToken struct {
	n uint64
}

func (t *fetchToken) next() uint64 {
	t.n++
	return t.n
}

func (t *fetchToken) stale(seq uint64) bool {
	return seq != t.n
}

func userID(u models.User) int64 { return u.ID }

func eventID(e models.Event) int64 { return e.ID }

func attendanceID(a models.Attendance) int64 { return a.ID }

func notificationID(n models.Notification) int64 { return n.ID }
