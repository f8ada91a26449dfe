package dbx

import (
	"context"
	"database/sql"
)

// Queryer/Execer/Getter let these helpers work with *sql.DB and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
type Getter interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is everything a store needs from a pool or a transaction.
type DB interface {
	Queryer
	Execer
	Getter
}

func Query(ctx context.Context, q Queryer, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, query, args...)
}
func Exec(ctx context.Context, e Execer, query string, args ...any) (sql.Result, error) {
	return e.ExecContext(ctx, query, args...)
}
func Get(ctx context.Context, g Getter, query string, args ...any) *sql.Row {
	return g.QueryRowContext(ctx, query, args...)
}

// Affected returns the row count of res, treating a driver that cannot report
// it as an error.
func Affected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
