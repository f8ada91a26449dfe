package booksrepo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/5w1tchy/book-records/internal/models"
	"github.com/5w1tchy/book-records/internal/repo/booksrepo"
	"github.com/5w1tchy/book-records/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dune() models.Book {
	return models.Book{Title: "Dune", Author: "Herbert", Synopsis: "Desert planet, spice, politics."}
}

func newService(t *testing.T) (*booksrepo.Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return booksrepo.New(st), st
}

func TestCreate_AssignsIDAndRoundTrips(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()

	created, err := svc.Create(ctx, dune())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Dune", got.Title)
}

func TestCreate_UsesIDGenerator(t *testing.T) {
	svc := booksrepo.New(memstore.New(), booksrepo.WithIDGenerator(func() string { return "fixed" }))

	created, err := svc.Create(t.Context(), dune())
	require.NoError(t, err)
	assert.Equal(t, "fixed", created.ID)
}

func TestCreate_DuplicateIDKeepsFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()

	first := dune()
	first.ID = "b-1"
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := models.Book{ID: "b-1", Title: "Other", Author: "Someone", Synopsis: ""}
	_, err = svc.Create(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, booksrepo.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "b-1")

	got, err := svc.FindByID(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestCreate_RejectsMissingTitle(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(t.Context(), models.Book{Author: "x", Synopsis: "y"})
	require.Error(t, err)
	assert.ErrorIs(t, err, booksrepo.ErrInvalid)

	var ve *booksrepo.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")
}

func TestList_CapsAtLimit(t *testing.T) {
	for _, n := range []int{0, 3, 100, 150} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			svc, _ := newService(t)
			ctx := t.Context()
			for i := range n {
				b := dune()
				b.ID = fmt.Sprintf("b-%03d", i)
				_, err := svc.Create(ctx, b)
				require.NoError(t, err)
			}

			books, err := svc.List(ctx)
			require.NoError(t, err)
			require.NotNil(t, books)
			assert.Len(t, books, min(n, booksrepo.ListLimit))
		})
	}
}

func TestFindByID_NotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.FindByID(t.Context(), "missing")
	require.ErrorIs(t, err, booksrepo.ErrNotFound)
	assert.Equal(t, "book with id: missing not found", err.Error())
}

func TestUpdate_MissingIDWithPatchIsNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(t.Context(), "missing", models.BookUpdate{Title: models.Some("New")})
	assert.ErrorIs(t, err, booksrepo.ErrNotFound)
}

func TestUpdate_MissingIDWithEmptyPatchIsNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(t.Context(), "missing", models.BookUpdate{})
	assert.ErrorIs(t, err, booksrepo.ErrNotFound)
}

func TestUpdate_MissingIDWithBlankTitleIsNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(t.Context(), "missing", models.BookUpdate{Title: models.Some("")})
	assert.ErrorIs(t, err, booksrepo.ErrNotFound)
	assert.NotErrorIs(t, err, booksrepo.ErrInvalid)
}

func TestUpdate_OnlyChangesGivenFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()
	created, err := svc.Create(ctx, dune())
	require.NoError(t, err)

	got, err := svc.Update(ctx, created.ID, models.BookUpdate{Title: models.Some("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, created.Author, got.Author)
	assert.Equal(t, created.Synopsis, got.Synopsis)
}

func TestUpdate_EmptyPatchReturnsRecordUnchanged(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()
	created, err := svc.Create(ctx, dune())
	require.NoError(t, err)

	patch := models.BookUpdate{Title: models.Null[string](), Author: models.Null[string]()}
	got, err := svc.Update(ctx, created.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestUpdate_IdenticalValuesSucceed(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()
	created, err := svc.Create(ctx, dune())
	require.NoError(t, err)

	got, err := svc.Update(ctx, created.ID, models.BookUpdate{Title: models.Some(created.Title)})
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestUpdate_RejectsBlankAuthor(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()
	created, err := svc.Create(ctx, dune())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, models.BookUpdate{Author: models.Some(" ")})
	require.ErrorIs(t, err, booksrepo.ErrInvalid)

	got, err := svc.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Herbert", got.Author)
}

// vanishingStore matches the update and then loses the record, as a
// concurrent delete between the write and the read would.
type vanishingStore struct{ *memstore.Store }

func (v vanishingStore) UpdateOne(ctx context.Context, id string, f models.Fields) (int64, error) {
	n, err := v.Store.UpdateOne(ctx, id, f)
	_, _ = v.Store.DeleteOne(ctx, id)
	return n, err
}

func TestUpdate_ConcurrentDeleteSurfacesNotFound(t *testing.T) {
	st := vanishingStore{memstore.New()}
	svc := booksrepo.New(st)
	ctx := t.Context()
	created, err := svc.Create(ctx, dune())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, models.BookUpdate{Title: models.Some("New")})
	assert.ErrorIs(t, err, booksrepo.ErrNotFound)
}

func TestDelete_OnlyOnce(t *testing.T) {
	svc, _ := newService(t)
	ctx := t.Context()
	created, err := svc.Create(ctx, dune())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), booksrepo.ErrNotFound)
	_, err = svc.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, booksrepo.ErrNotFound)
}

var errBoom = errors.New("connection reset")

type brokenStore struct{}

func (brokenStore) InsertOne(context.Context, models.Book) (string, error) { return "", errBoom }
func (brokenStore) FindOne(context.Context, string) (models.Book, bool, error) {
	return models.Book{}, false, errBoom
}
func (brokenStore) Find(context.Context, int) ([]models.Book, error) { return nil, errBoom }
func (brokenStore) UpdateOne(context.Context, string, models.Fields) (int64, error) {
	return 0, errBoom
}
func (brokenStore) DeleteOne(context.Context, string) (int64, error) { return 0, errBoom }

func TestStoreFailuresPropagate(t *testing.T) {
	svc := booksrepo.New(brokenStore{})
	ctx := t.Context()

	_, err := svc.Create(ctx, dune())
	assert.ErrorIs(t, err, errBoom)
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, errBoom)
	_, err = svc.FindByID(ctx, "x")
	assert.ErrorIs(t, err, errBoom)
	_, err = svc.Update(ctx, "x", models.BookUpdate{Title: models.Some("t")})
	assert.ErrorIs(t, err, errBoom)
	err = svc.Delete(ctx, "x")
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, booksrepo.ErrNotFound)
}
