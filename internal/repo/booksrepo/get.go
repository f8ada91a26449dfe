package booksrepo

import (
	"context"
	"fmt"

	"github.com/5w1tchy/book-records/internal/models"
)

// List returns up to ListLimit books in store order.
func (s *Service) List(ctx context.Context) ([]models.Book, error) {
	books, err := s.store.Find(ctx, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (models.Book, error) {
	b, ok, err := s.store.FindOne(ctx, id)
	if err != nil {
		return models.Book{}, fmt.Errorf("find book %s: %w", id, err)
	}
	if !ok {
		return models.Book{}, notFound(id)
	}
	return b, nil
}
