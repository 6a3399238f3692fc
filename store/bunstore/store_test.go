package bunstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedScholarships(t *testing.T, s *Store, n int) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cat, err := s.Insert(ctx, "categories", store.Row{"name": "Engineering", "slug": "engineering"})
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		row := store.Row{
			"title":           fmt.Sprintf("Scholarship %02d", i),
			"slug":            fmt.Sprintf("scholarship-%02d", i),
			"description":     "General studies",
			"is_fully_funded": i%2 == 0,
			"is_published":    true,
			"created_at":      base.Add(time.Duration(i) * time.Hour),
		}
		if i%3 == 0 {
			row["description"] = "Civil ENGINEERING track"
			row["category_id"] = cat["id"]
		}
		_, err := s.Insert(ctx, "scholarships", row)
		require.NoError(t, err)
	}
}

func TestStore_CountAndSelectShareFilters(t *testing.T) {
	s := newSQLiteStore(t)
	seedScholarships(t, s, 12)
	ctx := context.Background()

	preds := []query.Predicate{query.ILike("engineering", "title", "description")}

	total, err := s.Count(ctx, "scholarships", preds)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	rows, err := s.Select(ctx, "scholarships", preds, store.SelectOptions{
		Sort:  query.Sort{Field: "created_at", Desc: true},
		Limit: 3,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Scholarship 09", rows[0]["title"])

	page, n, err := s.SelectAndCount(ctx, "scholarships", preds, store.SelectOptions{
		Sort:   query.Sort{Field: "created_at", Desc: true},
		Limit:  3,
		Offset: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, total, n)
	require.Len(t, page, 1)
	assert.Equal(t, "Scholarship 00", page[0]["title"])
}

func TestStore_FlagAndEquality(t *testing.T) {
	s := newSQLiteStore(t)
	seedScholarships(t, s, 6)
	ctx := context.Background()

	funded, err := s.Count(ctx, "scholarships", []query.Predicate{query.Flag("is_fully_funded", true)})
	require.NoError(t, err)
	assert.Equal(t, 3, funded)

	cat, err := s.FindOne(ctx, "categories", "slug", "engineering")
	require.NoError(t, err)

	inCat, err := s.Count(ctx, "scholarships", []query.Predicate{
		query.Equals("category_id", cat["id"]),
		query.Flag("is_fully_funded", true),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inCat)
}

func TestStore_LikeEscapesWildcards(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	_, err := s.Insert(ctx, "scholarships", store.Row{"title": "100% funded", "slug": "a"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "scholarships", store.Row{"title": "1000 funded", "slug": "b"})
	require.NoError(t, err)

	n, err := s.Count(ctx, "scholarships", []query.Predicate{query.ILike("100%", "title")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_Writes(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, "levels", store.Row{"name": "Masters", "slug": "masters"})
	require.NoError(t, err)
	id := fmt.Sprint(created["id"])

	updated, err := s.Update(ctx, "levels", id, store.Row{"name": "Master's"})
	require.NoError(t, err)
	assert.Equal(t, "Master's", updated["name"])
	assert.Equal(t, "masters", updated["slug"])

	require.NoError(t, s.Delete(ctx, "levels", id))

	_, err = s.FindOne(ctx, "levels", "id", id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.Delete(ctx, "levels", id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Update(ctx, "levels", "999", store.Row{"name": "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Increment(t *testing.T) {
	s := newSQLiteStore(t)
	seedScholarships(t, s, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Increment(ctx, "scholarships", "slug", "scholarship-01", "views"))
	}
	row, err := s.FindOne(ctx, "scholarships", "slug", "scholarship-01")
	require.NoError(t, err)
	assert.EqualValues(t, 3, row["views"])

	row, err = s.FindOne(ctx, "scholarships", "slug", "scholarship-00")
	require.NoError(t, err)
	assert.EqualValues(t, 0, row["views"])

	err = s.Increment(ctx, "scholarships", "slug", "missing", "views")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_UnknownTable(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.Count(context.Background(), "users", nil)
	assert.ErrorIs(t, err, store.ErrUnknownTable)
}

func TestStore_PostgresSQL(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	boom := errors.New("connection refused")

	mock.ExpectQuery(`(?is)SELECT count\(\*\) FROM "scholarships".*"title" ILIKE '%eng%'.* OR .*"description" ILIKE '%eng%'.* AND .*"is_published" = TRUE`).
		WillReturnError(boom)

	_, err = s.Count(context.Background(), "scholarships", []query.Predicate{
		query.ILike("eng", "title", "description"),
		query.Flag("is_published", true),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SelectAndCountFailure(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT count\(\*\)`).WillReturnError(errors.New("timeout"))
	mock.ExpectQuery(`SELECT \*`).WillReturnError(errors.New("timeout"))

	_, _, err = New(db).SelectAndCount(context.Background(), "posts", nil, store.SelectOptions{Limit: 10})
	assert.Error(t, err)
}
