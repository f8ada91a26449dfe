package booksrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/5w1tchy/book-records/internal/models"
)

// Create inserts b, assigning an id when it has none, and returns the stored record.
func (s *Service) Create(ctx context.Context, b models.Book) (models.Book, error) {
	b.Normalize()
	if b.ID == "" {
		b.ID = s.newID()
	}
	if err := b.Validate(); err != nil {
		return models.Book{}, invalid(err)
	}

	id, err := s.store.InsertOne(ctx, b)
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return models.Book{}, fmt.Errorf("book with id: %s already exists: %w", b.ID, ErrDuplicateKey)
		}
		return models.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update merges the set fields of patch into the record at id and returns the
// record as stored afterwards. An empty patch skips the write. The final read
// decides the outcome, so a no-op update of an existing record succeeds.
func (s *Service) Update(ctx context.Context, id string, patch models.BookUpdate) (models.Book, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		// a missing record wins over a bad patch
		if _, ok, ferr := s.store.FindOne(ctx, id); ferr == nil && !ok {
			return models.Book{}, notFound(id)
		}
		return models.Book{}, invalid(err)
	}

	if fields := patch.Fields(); len(fields) > 0 {
		matched, err := s.store.UpdateOne(ctx, id, fields)
		if err != nil {
			return models.Book{}, fmt.Errorf("update book %s: %w", id, err)
		}
		if matched == 0 {
			return models.Book{}, notFound(id)
		}
	}

	return s.FindByID(ctx, id)
}

// Delete removes the record at id. A second delete of the same id is ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.DeleteOne(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if n != 1 {
		return notFound(id)
	}
	return nil
}
