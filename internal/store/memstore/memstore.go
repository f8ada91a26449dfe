// Package memstore is an in-process book store. It keeps insertion order so
// Find behaves like a fresh document collection.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/5w1tchy/book-records/internal/models"
	"github.com/5w1tchy/book-records/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	docs  map[string]models.Book
	order []string
}

func New() *Store {
	return &Store{docs: make(map[string]models.Book)}
}

func (s *Store) InsertOne(_ context.Context, b models.Book) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[b.ID]; ok {
		return "", store.ErrDuplicateKey
	}
	s.docs[b.ID] = b
	s.order = append(s.order, b.ID)
	return b.ID, nil
}

func (s *Store) FindOne(_ context.Context, id string) (models.Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[id]
	return b, ok, nil
}

func (s *Store) Find(_ context.Context, limit int) ([]models.Book, error) {
	if limit <= 0 {
		return []models.Book{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := min(len(s.order), limit)
	out := make([]models.Book, 0, n)
	for _, id := range s.order[:n] {
		out = append(out, s.docs[id])
	}
	return out, nil
}

func (s *Store) UpdateOne(_ context.Context, id string, f models.Fields) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[id]
	if !ok {
		return 0, nil
	}
	s.docs[id] = b.Merge(f)
	return 1, nil
}

func (s *Store) DeleteOne(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return 0, nil
	}
	delete(s.docs, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return 1, nil
}
