// Package redisstore keeps each book in a hash and the insertion order in a
// sorted set. Writes run as Lua scripts so each stays atomic per document.
package redisstore

import (
	"context"
	"errors"

	"github.com/5w1tchy/book-records/internal/models"
	"github.com/5w1tchy/book-records/internal/store"
	"github.com/redis/go-redis/v9"
)

var updatable = []string{models.FieldTitle, models.FieldAuthor, models.FieldSynopsis}

// KEYS[1] = doc hash, KEYS[2] = order zset, KEYS[3] = seq counter
// ARGV = id, title, author, synopsis
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
local seq = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], 'title', ARGV[2], 'author', ARGV[3], 'synopsis', ARGV[4])
redis.call('ZADD', KEYS[2], seq, ARGV[1])
return 1
`)

// KEYS[1] = doc hash, ARGV = field, value, ...
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// KEYS[1] = doc hash, KEYS[2] = order zset, ARGV[1] = id
var deleteScript = redis.NewScript(`
local n = redis.call('DEL', KEYS[1])
if n == 1 then
  redis.call('ZREM', KEYS[2], ARGV[1])
end
return n
`)

type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// New stores books under keys prefixed with {collection} so a cluster keeps
// them in one slot.
func New(rdb redis.UniversalClient, collection string) *Store {
	return &Store{rdb: rdb, prefix: "{" + collection + "}"}
}

func (s *Store) docKey(id string) string { return s.prefix + ":doc:" + id }
func (s *Store) orderKey() string        { return s.prefix + ":order" }
func (s *Store) seqKey() string          { return s.prefix + ":seq" }

func (s *Store) InsertOne(ctx context.Context, b models.Book) (string, error) {
	ok, err := insertScript.Run(ctx, s.rdb,
		[]string{s.docKey(b.ID), s.orderKey(), s.seqKey()},
		b.ID, b.Title, b.Author, b.Synopsis,
	).Int64()
	if err != nil {
		return "", err
	}
	if ok == 0 {
		return "", store.ErrDuplicateKey
	}
	return b.ID, nil
}

func (s *Store) FindOne(ctx context.Context, id string) (models.Book, bool, error) {
	h, err := s.rdb.HGetAll(ctx, s.docKey(id)).Result()
	if err != nil {
		return models.Book{}, false, err
	}
	if len(h) == 0 {
		return models.Book{}, false, nil
	}
	return fromHash(id, h), true, nil
}

func (s *Store) Find(ctx context.Context, limit int) ([]models.Book, error) {
	// ZRANGE 0 -1 would return everything
	if limit <= 0 {
		return []models.Book{}, nil
	}
	ids, err := s.rdb.ZRange(ctx, s.orderKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := []models.Book{}
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.docKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	for i, cmd := range cmds {
		// deleted between ZRANGE and HGETALL
		if h := cmd.Val(); len(h) > 0 {
			out = append(out, fromHash(ids[i], h))
		}
	}
	return out, nil
}

func (s *Store) UpdateOne(ctx context.Context, id string, f models.Fields) (int64, error) {
	args := []any{}
	for _, k := range updatable {
		if v, ok := f[k]; ok {
			args = append(args, k, v)
		}
	}
	if len(args) == 0 {
		return 0, errors.New("no fields to update")
	}
	return updateScript.Run(ctx, s.rdb, []string{s.docKey(id)}, args...).Int64()
}

func (s *Store) DeleteOne(ctx context.Context, id string) (int64, error) {
	return deleteScript.Run(ctx, s.rdb, []string{s.docKey(id), s.orderKey()}, id).Int64()
}

func fromHash(id string, h map[string]string) models.Book {
	return models.Book{
		ID:       id,
		Title:    h[models.FieldTitle],
		Author:   h[models.FieldAuthor],
		Synopsis: h[models.FieldSynopsis],
	}
}
