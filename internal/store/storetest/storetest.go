// Package storetest is a behaviour suite every booksrepo.Store backend must pass.
package storetest

import (
	"fmt"
	"testing"

	"github.com/5w1tchy/book-records/internal/models"
	"github.com/5w1tchy/book-records/internal/repo/booksrepo"
	"github.com/5w1tchy/book-records/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Options struct {
	// InsertionOrder asserts Find returns records in the order they were inserted.
	InsertionOrder bool
}

func book(id string) models.Book {
	return models.Book{ID: id, Title: "Title " + id, Author: "Author " + id, Synopsis: "Synopsis " + id}
}

// Run exercises the Store returned by newStore, which must be empty on every call.
func Run(t *testing.T, newStore func(t *testing.T) booksrepo.Store, opts Options) {
	t.Run("insert then find", func(t *testing.T) {
		st := newStore(t)
		ctx := t.Context()

		id, err := st.InsertOne(ctx, book("a"))
		require.NoError(t, err)
		assert.Equal(t, "a", id)

		got, ok, err := st.FindOne(ctx, "a")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, book("a"), got)

		_, ok, err = st.FindOne(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate key", func(t *testing.T) {
		st := newStore(t)
		ctx := t.Context()

		_, err := st.InsertOne(ctx, book("a"))
		require.NoError(t, err)

		other := book("a")
		other.Title = "changed"
		_, err = st.InsertOne(ctx, other)
		require.ErrorIs(t, err, store.ErrDuplicateKey)

		got, _, err := st.FindOne(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, book("a").Title, got.Title)
	})

	t.Run("find honours limit", func(t *testing.T) {
		st := newStore(t)
		ctx := t.Context()

		all, err := st.Find(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, all)

		for i := range 5 {
			_, err := st.InsertOne(ctx, book(fmt.Sprintf("b%d", i)))
			require.NoError(t, err)
		}

		some, err := st.Find(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, some, 3)

		all, err = st.Find(ctx, 10)
		require.NoError(t, err)
		require.Len(t, all, 5)
		if opts.InsertionOrder {
			for i, b := range all {
				assert.Equal(t, fmt.Sprintf("b%d", i), b.ID)
			}
		}

		for _, limit := range []int{0, -1} {
			none, err := st.Find(ctx, limit)
			require.NoError(t, err)
			assert.NotNil(t, none)
			assert.Empty(t, none, "limit %d", limit)
		}
	})

	t.Run("update sets only given fields", func(t *testing.T) {
		st := newStore(t)
		ctx := t.Context()
		_, err := st.InsertOne(ctx, book("a"))
		require.NoError(t, err)

		n, err := st.UpdateOne(ctx, "a", models.Fields{models.FieldTitle: "New"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		got, _, err := st.FindOne(ctx, "a")
		require.NoError(t, err)
		want := book("a")
		want.Title = "New"
		assert.Equal(t, want, got)
	})

	t.Run("update with identical values still matches", func(t *testing.T) {
		st := newStore(t)
		ctx := t.Context()
		_, err := st.InsertOne(ctx, book("a"))
		require.NoError(t, err)

		n, err := st.UpdateOne(ctx, "a", models.Fields{models.FieldAuthor: book("a").Author})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("update missing matches nothing", func(t *testing.T) {
		st := newStore(t)

		n, err := st.UpdateOne(t.Context(), "missing", models.Fields{models.FieldTitle: "x"})
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)

		_, ok, err := st.FindOne(t.Context(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete once", func(t *testing.T) {
		st := newStore(t)
		ctx := t.Context()
		_, err := st.InsertOne(ctx, book("a"))
		require.NoError(t, err)

		n, err := st.DeleteOne(ctx, "a")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = st.DeleteOne(ctx, "a")
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)

		all, err := st.Find(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, all)

		// the id is free again
		_, err = st.InsertOne(ctx, book("a"))
		require.NoError(t, err)
	})
}
