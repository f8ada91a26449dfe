// Package booksrepo is the book record service. Every operation is a single
// store call, or for Update a conditional write followed by a read.
package booksrepo

import (
	"context"

	"github.com/5w1tchy/book-records/internal/models"
)

// ListLimit caps List results.
const ListLimit = 100

// Store is the document store the service runs against. Each method must be
// atomic for a single document.
type Store interface {
	InsertOne(ctx context.Context, b models.Book) (string, error)
	FindOne(ctx context.Context, id string) (models.Book, bool, error)
	// Find returns at most limit records in store order; limit <= 0 yields none.
	Find(ctx context.Context, limit int) ([]models.Book, error)
	UpdateOne(ctx context.Context, id string, f models.Fields) (matched int64, err error)
	DeleteOne(ctx context.Context, id string) (deleted int64, err error)
}

type Service struct {
	store Store
	newID func() string
}

type Option func(*Service)

// WithIDGenerator replaces the UUID generator used for records created without an id.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(st Store, opts ...Option) *Service {
	s := &Service{store: st, newID: newID}
	for _, o := range opts {
		o(s)
	}
	return s
}
