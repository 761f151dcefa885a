// Package memstore is an in-process objectstore.Store bounded by a
// least-recently-used eviction policy. It backs local runs and tests.
package memstore

import (
	"container/list"
	"context"
	"sync"

	"pathsummarizer/internal/objectstore"
)

type Store struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type entry struct {
	key   string
	value []byte
}

// New creates a store holding at most maxEntries objects. maxEntries <= 0
// means unbounded.
func New(maxEntries int) *Store {
	return &Store{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}

	e, ok := elem.Value.(*entry)
	if !ok {
		return nil, objectstore.ErrNotFound
	}

	s.order.MoveToFront(elem)

	return clone(e.value), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		if e, castOk := elem.Value.(*entry); castOk {
			e.value = clone(value)
			s.order.MoveToFront(elem)

			return nil
		}
	}

	s.entries[key] = s.order.PushFront(&entry{key: key, value: clone(value)})
	s.enforceSizeLimitLocked()

	return nil
}

// Len reports the number of stored objects.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Keys returns the stored keys, most recently used first.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if e, ok := elem.Value.(*entry); ok {
			keys = append(keys, e.key)
		}
	}

	return keys
}

func (s *Store) enforceSizeLimitLocked() {
	if s.maxEntries <= 0 {
		return
	}

	for len(s.entries) > s.maxEntries {
		elem := s.order.Back()
		if elem == nil {
			return
		}
		s.removeElement(elem)
	}
}

func (s *Store) removeElement(elem *list.Element) {
	e, ok := elem.Value.(*entry)
	if !ok {
		return
	}

	delete(s.entries, e.key)
	s.order.Remove(elem)
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return append([]byte(nil), b...)
}

var _ objectstore.Store = (*Store)(nil)
