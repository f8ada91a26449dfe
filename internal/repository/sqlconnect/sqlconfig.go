package sqlconnect

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/5w1tchy/book-records/internal/repository/connect"
	"github.com/hashicorp/go-hclog"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ConnectDB opens a pgx-backed pool for dsn and waits up to wait for it to answer.
func ConnectDB(ctx context.Context, dsn string, wait time.Duration, log hclog.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := connect.Wait(ctx, log, "postgres", wait, db.PingContext); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
