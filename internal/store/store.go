// Package store holds what every book store backend shares: the duplicate key
// sentinel, the backend names and the default collection name.
package store

import "errors"

// ErrDuplicateKey is returned by InsertOne when a record with the same id exists.
var ErrDuplicateKey = errors.New("duplicate key")

const DefaultCollection = "books"

type Backend string

const (
	BackendMongo    Backend = "mongo"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMemory   Backend = "memory"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendMongo, BackendPostgres, BackendRedis, BackendMemory:
		return true
	}
	return false
}
