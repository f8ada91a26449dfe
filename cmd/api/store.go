package main

import (
	"context"
	"fmt"

	"github.com/5w1tchy/book-records/internal/config"
	"github.com/5w1tchy/book-records/internal/repo/booksrepo"
	"github.com/5w1tchy/book-records/internal/repository/connect"
	"github.com/5w1tchy/book-records/internal/repository/sqlconnect"
	"github.com/5w1tchy/book-records/internal/store"
	"github.com/5w1tchy/book-records/internal/store/memstore"
	"github.com/5w1tchy/book-records/internal/store/mongostore"
	"github.com/5w1tchy/book-records/internal/store/pgstore"
	"github.com/5w1tchy/book-records/internal/store/redisstore"
	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// backend is an opened store plus its lifecycle hooks.
type backend struct {
	store booksrepo.Store
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openRedis(ctx context.Context, cfg config.Config, log hclog.Logger) (*redis.Client, error) {
	opt, err := cfg.RedisOptions()
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	err = connect.Wait(ctx, log, "redis", cfg.ConnectTimeout, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// openBackend connects the configured store. rdb is reused for the redis
// backend when already open.
func openBackend(ctx context.Context, cfg config.Config, rdb *redis.Client, log hclog.Logger) (backend, error) {
	switch cfg.Backend {
	case store.BackendMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.ConnectTimeout, log)
		if err != nil {
			return backend{}, err
		}
		coll := client.Database(cfg.DBName).Collection(cfg.Collection)
		return backend{
			store: mongostore.New(coll),
			ping:  func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close: client.Disconnect,
		}, nil

	case store.BackendPostgres:
		db, err := sqlconnect.ConnectDB(ctx, cfg.DatabaseURL, cfg.ConnectTimeout, log)
		if err != nil {
			return backend{}, err
		}
		st, err := pgstore.New(db, cfg.Collection)
		if err == nil {
			err = st.EnsureSchema(ctx)
		}
		if err != nil {
			_ = db.Close()
			return backend{}, err
		}
		return backend{
			store: st,
			ping:  db.PingContext,
			close: func(context.Context) error { return db.Close() },
		}, nil

	case store.BackendRedis:
		owned := rdb == nil
		if owned {
			var err error
			if rdb, err = openRedis(ctx, cfg, log); err != nil {
				return backend{}, err
			}
		}
		closeFn := func(context.Context) error { return nil }
		if owned {
			closeFn = func(context.Context) error { return rdb.Close() }
		}
		return backend{
			store: redisstore.New(rdb, cfg.Collection),
			ping:  func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			close: closeFn,
		}, nil

	case store.BackendMemory:
		return backend{
			store: memstore.New(),
			ping:  func(context.Context) error { return nil },
			close: func(context.Context) error { return nil },
		}, nil
	}
	return backend{}, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
