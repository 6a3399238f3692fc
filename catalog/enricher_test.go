package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-scholarship-catalog/catalog"
	"github.com/goliatone/go-scholarship-catalog/store"
)

func TestEnricher_ResolvesAndTolerates(t *testing.T) {
	st := newPlainStore(seeded(t))
	e := catalog.NewEnricher(st, nil)
	spec, _ := catalog.Lookup("scholarships")

	rows := []store.Row{
		{"id": int64(2), "category_id": int64(1), "country_id": int64(1), "level_id": int64(1)},
		{"id": int64(3), "categoryId": "2", "countryId": int64(2)},
		{"id": int64(15), "category_id": int64(99), "country_id": int64(1)},
	}
	related := e.Enrich(context.Background(), spec.Relations, rows)
	require.Len(t, related, 3)

	require.NotNil(t, related[0]["category"])
	assert.Equal(t, catalog.RelationSummary{ID: "1", Name: "STEM", Slug: "stem"}, *related[0]["category"])
	require.NotNil(t, related[0]["level"])
	assert.Equal(t, "masters", related[0]["level"].Slug)

	require.NotNil(t, related[1]["category"])
	assert.Equal(t, "arts", related[1]["category"].Slug)
	assert.Equal(t, "canada", related[1]["country"].Slug)
	assert.Nil(t, related[1]["level"])
	assert.Contains(t, related[1], "level")

	assert.Nil(t, related[2]["category"], "missing category resolves to nil")
	require.NotNil(t, related[2]["country"], "other relations survive a miss")
	assert.Equal(t, "germany", related[2]["country"].Slug)
}

func TestEnricher_LooksUpEachIDOnce(t *testing.T) {
	st := newPlainStore(seeded(t))
	e := catalog.NewEnricher(st, nil)
	spec, _ := catalog.Lookup("scholarships")

	rows := make([]store.Row, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, store.Row{"category_id": int64(1 + i%2)})
	}
	e.Enrich(context.Background(), spec.Relations, rows)

	assert.Equal(t, 2, st.findCount("categories"))
	assert.Equal(t, 0, st.findCount("countries"))
}

func TestEnricher_NoRelations(t *testing.T) {
	e := catalog.NewEnricher(newPlainStore(seeded(t)), nil)

	related := e.Enrich(context.Background(), nil, []store.Row{{"id": 1}})
	require.Len(t, related, 1)
	assert.Nil(t, related[0])
}

func TestEnricher_CancelledContextStopsLookups(t *testing.T) {
	st := newPlainStore(seeded(t))
	e := catalog.NewEnricher(st, nil)
	spec, _ := catalog.Lookup("scholarships")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	related := e.Enrich(ctx, spec.Relations, []store.Row{
		{"id": int64(2), "category_id": int64(1), "country_id": int64(1)},
	})
	require.Len(t, related, 1)
	assert.Contains(t, related[0], "category")
	assert.Nil(t, related[0]["category"])
	assert.Nil(t, related[0]["country"])
	assert.Equal(t, 0, st.findCount("categories"))
	assert.Equal(t, 0, st.findCount("countries"))
}
