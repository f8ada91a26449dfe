// Package pgstore keeps books in a PostgreSQL table, one row per record.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/5w1tchy/book-records/internal/models"
	"github.com/5w1tchy/book-records/internal/store"
	"github.com/5w1tchy/book-records/internal/store/dbx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Columns a partial update may set, in the order they are written.
var updatable = []string{models.FieldTitle, models.FieldAuthor, models.FieldSynopsis}

type Store struct {
	db    dbx.DB
	table string
}

func New(db dbx.DB, table string) (*Store, error) {
	if !tableRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{db: db, table: pgx.Identifier{table}.Sanitize()}, nil
}

// EnsureSchema creates the table when it does not exist. seq keeps insertion
// order for Find.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := dbx.Exec(ctx, s.db, `CREATE TABLE IF NOT EXISTS `+s.table+` (
	seq      bigserial,
	id       text PRIMARY KEY,
	title    text NOT NULL,
	author   text NOT NULL,
	synopsis text NOT NULL
)`)
	return err
}

func (s *Store) InsertOne(ctx context.Context, b models.Book) (string, error) {
	_, err := dbx.Exec(ctx, s.db,
		`INSERT INTO `+s.table+` (id, title, author, synopsis) VALUES ($1, $2, $3, $4)`,
		b.ID, b.Title, b.Author, b.Synopsis)
	if err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrDuplicateKey
		}
		return "", err
	}
	return b.ID, nil
}

func (s *Store) FindOne(ctx context.Context, id string) (models.Book, bool, error) {
	var b models.Book
	err := dbx.Get(ctx, s.db,
		`SELECT id, title, author, synopsis FROM `+s.table+` WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Synopsis)
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := dbx.Query(ctx, s.db,
		`SELECT id, title, author, synopsis FROM `+s.table+` ORDER BY seq LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Synopsis); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateOne reports matched rows; PostgreSQL counts a row even when the new
// values equal the old ones.
func (s *Store) UpdateOne(ctx context.Context, id string, f models.Fields) (int64, error) {
	set := []string{}
	args := []any{}
	for _, col := range updatable {
		if v, ok := f[col]; ok {
			args = append(args, v)
			set = append(set, col+" = $"+strconv.Itoa(len(args)))
		}
	}
	if len(set) == 0 {
		return 0, errors.New("no fields to update")
	}
	args = append(args, id)
	q := "UPDATE " + s.table + " SET " + strings.Join(set, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	return dbx.Affected(dbx.Exec(ctx, s.db, q, args...))
}

func (s *Store) DeleteOne(ctx context.Context, id string) (int64, error) {
	return dbx.Affected(dbx.Exec(ctx, s.db, `DELETE FROM `+s.table+` WHERE id = $1`, id))
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
