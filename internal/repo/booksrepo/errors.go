package booksrepo

import (
	"errors"

	"github.com/5w1tchy/book-records/internal/store"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid")
	ErrDuplicateKey = store.ErrDuplicateKey
)
