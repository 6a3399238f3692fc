package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store"
)

func TestStore_MixedKeyConventions(t *testing.T) {
	s := New()
	s.Seed("scholarships",
		store.Row{"id": int64(1), "title": "Data Science", "category_id": int64(3), "is_fully_funded": true},
		store.Row{"_id": "abc", "title": "Art History", "categoryId": "3", "isFullyFunded": false},
		store.Row{"title": "Civil Engineering", "description": "data heavy"},
	)
	ctx := context.Background()

	n, err := s.Count(ctx, "scholarships", []query.Predicate{query.Equals("category_id", int64(3))})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Count(ctx, "scholarships", []query.Predicate{query.ILike("DATA", "title", "description")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Count(ctx, "scholarships", []query.Predicate{query.Flag("is_fully_funded", false)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	row, err := s.FindOne(ctx, "scholarships", "id", "abc")
	require.NoError(t, err)
	assert.Equal(t, "Art History", row["title"])
}

func TestStore_SelectWindowAndSort(t *testing.T) {
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Seed("posts", store.Row{"title": string(rune('a' + i)), "created_at": base.Add(time.Duration(i) * time.Hour)})
	}
	ctx := context.Background()

	rows, total, err := s.SelectAndCount(ctx, "posts", nil, store.SelectOptions{
		Sort:   query.Sort{Field: "created_at", Desc: true},
		Limit:  2,
		Offset: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0]["title"])
	assert.Equal(t, "b", rows[1]["title"])

	rows, err = s.Select(ctx, "posts", nil, store.SelectOptions{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.Select(ctx, "posts", nil, store.SelectOptions{Limit: 10, Offset: -10})
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.Equal(t, int64(3), s.Stats().Select)
	assert.Equal(t, int64(1), s.Stats().Count)
}

func TestStore_Writes(t *testing.T) {
	s := New()
	ctx := context.Background()

	row, err := s.Insert(ctx, "categories", store.Row{"name": "STEM", "slug": "stem"})
	require.NoError(t, err)
	id := row["id"]
	require.NotNil(t, id)

	updated, err := s.Update(ctx, "categories", "1", store.Row{"name": "Science"})
	require.NoError(t, err)
	assert.Equal(t, "Science", updated["name"])
	assert.Equal(t, id, updated["id"])

	require.NoError(t, s.Delete(ctx, "categories", "1"))
	assert.ErrorIs(t, s.Delete(ctx, "categories", "1"), store.ErrNotFound)

	_, err = s.FindOne(ctx, "categories", "slug", "stem")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Insert(ctx, "users", store.Row{})
	assert.ErrorIs(t, err, store.ErrUnknownTable)
}

func TestStore_CancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Count(ctx, "posts", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Increment(t *testing.T) {
	s := New()
	s.Seed("posts",
		store.Row{"id": int64(1), "slug": "visa", "views": 4},
		store.Row{"id": int64(2), "slug": "letter"},
	)
	ctx := context.Background()

	require.NoError(t, s.Increment(ctx, "posts", "slug", "visa", "views"))
	require.NoError(t, s.Increment(ctx, "posts", "slug", "letter", "views"))
	require.NoError(t, s.Increment(ctx, "posts", "slug", "letter", "views"))

	row, err := s.FindOne(ctx, "posts", "slug", "visa")
	require.NoError(t, err)
	assert.Equal(t, int64(5), row["views"])

	row, err = s.FindOne(ctx, "posts", "slug", "letter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), row["views"])

	assert.ErrorIs(t, s.Increment(ctx, "posts", "slug", "nope", "views"), store.ErrNotFound)
	assert.ErrorIs(t, s.Increment(ctx, "users", "slug", "visa", "views"), store.ErrUnknownTable)
}
