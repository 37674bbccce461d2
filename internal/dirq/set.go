package dirq

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Queue is the capability set shared by every flavor: add is intentionally
// excluded, since a set's caller must choose a member queue to add to.
type Queue interface {
	Count() (int, error)
	First() error
	Next() (string, bool, error)
	Lock(id string, permissive bool) (bool, error)
	Unlock(id string, permissive bool) (bool, error)
	Touch(id string) error
	Remove(id string) error
	Purge(maxTemp, maxLock time.Duration) error
	GetAny(id string) (any, error)
}

// ElementRef identifies an element within a Set by which member queue it
// belongs to and its identifier within that queue.
type ElementRef struct {
	QueueIndex int
	ID         string
}

// Set is a round-robin federation over several queue instances, exposing
// unified iteration. Elements are addressed as (queue index, element id);
// lock/get/remove/touch dispatch to the right member queue.
type Set struct {
	mu      sync.Mutex
	members []Queue
	cursor  *setCursor
}

// setCursor holds one pre-fetched candidate element id per member queue,
// fetched lazily, so Next can compare across members without repeatedly
// re-listing any of them.
type setCursor struct {
	next      []string
	fetched   []bool
	exhausted []bool
}

// NewSet constructs a Set federating the given queues, in order.
func NewSet(queues ...Queue) *Set {
	return &Set{members: append([]Queue(nil), queues...)}
}

// AddQueue appends a queue to the set's membership.
func (s *Set) AddQueue(q Queue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, q)
	s.cursor = nil
}

// RemoveQueue removes the member queue at index idx. Removing a queue
// invalidates any in-progress iteration, matching First()'s re-snapshot
// contract.
func (s *Set) RemoveQueue(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.members) {
		return fmt.Errorf("dirq: queue index %d out of range", idx)
	}
	s.members = append(s.members[:idx], s.members[idx+1:]...)
	s.cursor = nil
	return nil
}

// Members returns the set's current member queues, in order.
func (s *Set) Members() []Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Queue(nil), s.members...)
}

// Count sums Count() across every member queue, fanned out concurrently:
// independent queue roots share no state, so concurrent counting is safe.
func (s *Set) Count() (int, error) {
	members := s.Members()
	counts := make([]int, len(members))

	var g errgroup.Group
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			c, err := m.Count()
			if err != nil {
				return err
			}
			counts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// First resets the set's unified iteration: every member queue re-snapshots
// its own bucket listing and the cross-member merge cursor starts fresh.
func (s *Set) First() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if err := m.First(); err != nil {
			return err
		}
	}
	n := len(s.members)
	s.cursor = &setCursor{
		next:      make([]string, n),
		fetched:   make([]bool, n),
		exhausted: make([]bool, n),
	}
	return nil
}

// fill ensures the cursor holds a pre-fetched candidate for member idx,
// unless that member is already exhausted.
func (s *Set) fill(idx int) error {
	c := s.cursor
	if c.fetched[idx] || c.exhausted[idx] {
		return nil
	}
	id, ok, err := s.members[idx].Next()
	if err != nil {
		return err
	}
	if !ok {
		c.exhausted[idx] = true
		return nil
	}
	c.next[idx] = id
	c.fetched[idx] = true
	return nil
}

// Next performs a k-way merge across member queues' element streams: it
// compares each member's next pending id and returns the smallest,
// advancing only that one member. Elements interleave across members in
// id order rather than draining one member before moving to the next.
func (s *Set) Next() (ElementRef, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == nil {
		return ElementRef{}, false, fmt.Errorf("dirq: Next called before First")
	}
	for idx := range s.members {
		if err := s.fill(idx); err != nil {
			return ElementRef{}, false, err
		}
	}

	best := -1
	for idx, exhausted := range s.cursor.exhausted {
		if exhausted {
			continue
		}
		if best == -1 || s.cursor.next[idx] < s.cursor.next[best] {
			best = idx
		}
	}
	if best == -1 {
		return ElementRef{}, false, nil
	}
	id := s.cursor.next[best]
	s.cursor.fetched[best] = false
	return ElementRef{QueueIndex: best, ID: id}, true, nil
}

func (s *Set) member(idx int) (Queue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.members) {
		return nil, fmt.Errorf("dirq: queue index %d out of range", idx)
	}
	return s.members[idx], nil
}

// Lock dispatches to ref's member queue.
func (s *Set) Lock(ref ElementRef, permissive bool) (bool, error) {
	m, err := s.member(ref.QueueIndex)
	if err != nil {
		return false, err
	}
	return m.Lock(ref.ID, permissive)
}

// Unlock dispatches to ref's member queue.
func (s *Set) Unlock(ref ElementRef, permissive bool) (bool, error) {
	m, err := s.member(ref.QueueIndex)
	if err != nil {
		return false, err
	}
	return m.Unlock(ref.ID, permissive)
}

// Get dispatches to ref's member queue.
func (s *Set) Get(ref ElementRef) (any, error) {
	m, err := s.member(ref.QueueIndex)
	if err != nil {
		return nil, err
	}
	return m.GetAny(ref.ID)
}

// Remove dispatches to ref's member queue.
func (s *Set) Remove(ref ElementRef) error {
	m, err := s.member(ref.QueueIndex)
	if err != nil {
		return err
	}
	return m.Remove(ref.ID)
}

// Touch dispatches to ref's member queue.
func (s *Set) Touch(ref ElementRef) error {
	m, err := s.member(ref.QueueIndex)
	if err != nil {
		return err
	}
	return m.Touch(ref.ID)
}

// Purge fans out Purge across every member queue concurrently.
func (s *Set) Purge(maxTemp, maxLock time.Duration) error {
	members := s.Members()
	var g errgroup.Group
	for _, m := range members {
		m := m
		g.Go(func() error {
			return m.Purge(maxTemp, maxLock)
		})
	}
	return g.Wait()
}
