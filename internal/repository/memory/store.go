package memory

import (
	"sync"

	"github.com/jwalitptl/clinic-crm/internal/repository"
)

// Store is an ordered in-memory collection keyed by a numeric identifier.
// Identifiers come from a counter that only grows, so an id is never handed
// out twice even after deletes. All methods return copies.
type Store[T any] struct {
	mu     sync.RWMutex
	items  []T
	lastID int64
	id     func(*T) *int64
}

// NewStore creates a store. id returns a pointer to the identifier field of a
// record.
func NewStore[T any](id func(*T) *int64) *Store[T] {
	return &Store[T]{id: id}
}

func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) Get(id int64) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	var zero T
	return zero, repository.ErrNotFound
}

// Insert stores v under a fresh identifier. guard, when set, sees the current
// records under the write lock and may veto the insert.
func (s *Store[T]) Insert(v T, guard func(existing []T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guard != nil {
		if err := guard(s.items); err != nil {
			var zero T
			return zero, err
		}
	}
	s.lastID++
	*s.id(&v) = s.lastID
	s.items = append(s.items, v)
	return v, nil
}

// Update applies mutate to a copy of the record and stores it. others holds
// every record except the one being updated. A mutate error leaves the store
// untouched.
func (s *Store[T]) Update(id int64, mutate func(cur *T, others []T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i := s.indexOf(id)
	if i < 0 {
		return zero, repository.ErrNotFound
	}

	cur := s.items[i]
	others := make([]T, 0, len(s.items)-1)
	others = append(others, s.items[:i]...)
	others = append(others, s.items[i+1:]...)
	if err := mutate(&cur, others); err != nil {
		return zero, err
	}
	*s.id(&cur) = id
	s.items[i] = cur
	return cur, nil
}

func (s *Store[T]) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Filter returns the records matching pred in insertion order.
func (s *Store[T]) Filter(pred func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0)
	for _, v := range s.items {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T]) indexOf(id int64) int {
	for i := range s.items {
		if *s.id(&s.items[i]) == id {
			return i
		}
	}
	return -1
}
