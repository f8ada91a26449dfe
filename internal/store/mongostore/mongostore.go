// Package mongostore keeps books as documents in a MongoDB collection, keyed by _id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/5w1tchy/book-records/internal/models"
	"github.com/5w1tchy/book-records/internal/repository/connect"
	"github.com/5w1tchy/book-records/internal/store"
	"github.com/hashicorp/go-hclog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var updatable = []string{models.FieldTitle, models.FieldAuthor, models.FieldSynopsis}

// Connect dials uri and waits for the primary to answer.
func Connect(ctx context.Context, uri string, wait time.Duration, log hclog.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("ATLAS_URI not set")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	if err := connect.Wait(ctx, log, "mongo", wait, ping); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

type Store struct {
	coll *mongo.Collection
}

func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

func byID(id string) bson.D { return bson.D{{Key: "_id", Value: id}} }

func (s *Store) InsertOne(ctx context.Context, b models.Book) (string, error) {
	res, err := s.coll.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicateKey
		}
		return "", err
	}
	id, ok := res.InsertedID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *Store) FindOne(ctx context.Context, id string) (models.Book, bool, error) {
	var b models.Book
	err := s.coll.FindOne(ctx, byID(id)).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Book{}, false, nil
	}
	if err != nil {
		return models.Book{}, false, err
	}
	return b, true, nil
}

func (s *Store) Find(ctx context.Context, limit int) ([]models.Book, error) {
	if limit <= 0 {
		return []models.Book{}, nil
	}
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	out := []models.Book{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOne runs a $set of the given fields and reports the matched count,
// which stays 1 when the values did not change.
func (s *Store) UpdateOne(ctx context.Context, id string, f models.Fields) (int64, error) {
	set := bson.D{}
	for _, k := range updatable {
		if v, ok := f[k]; ok {
			set = append(set, bson.E{Key: k, Value: v})
		}
	}
	if len(set) == 0 {
		return 0, errors.New("no fields to update")
	}
	res, err := s.coll.UpdateOne(ctx, byID(id), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *Store) DeleteOne(ctx context.Context, id string) (int64, error) {
	res, err := s.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
