// Package store provides the in-memory key/value store backing the local
// registry of published artifacts.
package store

import (
	"sync"
)

// Store is the minimal contract the registry needs.
type Store[K comparable, T any] interface {
	Put(k K, v T)
	Get(k K) (T, bool)
	Keys() []K
	Len() int
	Delete(k K)
}

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore[K comparable, T any] struct {
	lock   sync.RWMutex
	values map[K]T
}

func NewMemoryStore[K comparable, T any]() *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		values: make(map[K]T),
	}
}

// Put stores v under k, overwriting any previous value.
func (s *MemoryStore[K, T]) Put(k K, v T) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.values[k] = v
}

// Get returns the value stored under k.
func (s *MemoryStore[K, T]) Get(k K) (T, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.values[k]

	return v, ok
}

// Keys returns all stored keys in unspecified order.
func (s *MemoryStore[K, T]) Keys() []K {
	s.lock.RLock()
	defer s.lock.RUnlock()

	keys := make([]K, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}

	return keys
}

// Len returns the number of stored values.
func (s *MemoryStore[K, T]) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.values)
}

// Delete removes the value stored under k, if any.
func (s *MemoryStore[K, T]) Delete(k K) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.values, k)
}

var _ Store[string, any] = (*MemoryStore[string, any])(nil)
