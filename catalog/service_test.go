package catalog_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-scholarship-catalog/catalog"
	"github.com/goliatone/go-scholarship-catalog/pkg/testsupport"
	"github.com/goliatone/go-scholarship-catalog/query"
	"github.com/goliatone/go-scholarship-catalog/store/memstore"
)

func values(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func category(t *testing.T, err error) goerrors.Category {
	t.Helper()
	var gerr *goerrors.Error
	require.True(t, errors.As(err, &gerr), "expected *errors.Error, got %T", err)
	return gerr.Category
}

func TestService_SearchSecondPage(t *testing.T) {
	svc := catalog.NewService(seeded(t))

	env, err := svc.List(context.Background(), "scholarships", values(t, "search=engineering&page=2&limit=5"))
	require.NoError(t, err)

	assert.Len(t, env.Data, 5)
	assert.Equal(t, catalog.Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3}, env.Pagination)

	ids := make([]string, 0, len(env.Data))
	for _, item := range env.Data {
		ids = append(ids, item.(catalog.Scholarship).ID)
	}
	assert.Equal(t, []string{"7", "6", "5", "4", "3"}, ids, "newest first")
}

func TestService_UnknownSlugIsDropped(t *testing.T) {
	svc := catalog.NewService(seeded(t))
	ctx := context.Background()

	filtered, err := svc.List(ctx, "scholarships", values(t, "category=nonexistent-slug&limit=100"))
	require.NoError(t, err)
	unfiltered, err := svc.List(ctx, "scholarships", values(t, "limit=100"))
	require.NoError(t, err)

	assert.Equal(t, testsupport.TotalScholarships, filtered.Pagination.Total)
	assert.Equal(t, unfiltered, filtered)
}

func TestService_StrictModeRejectsUnknownSlug(t *testing.T) {
	st := seeded(t)
	svc := catalog.NewService(st, catalog.WithBuilder(query.NewBuilder(catalog.SlugResolver(st), query.WithMode(query.Strict))))

	_, err := svc.List(context.Background(), "scholarships", values(t, "category=nonexistent-slug"))
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrUnknownReference)
	assert.Equal(t, goerrors.CategoryBadInput, category(t, err))

	env, err := svc.List(context.Background(), "scholarships", values(t, "category=stem"))
	require.NoError(t, err)
	assert.Equal(t, 7, env.Pagination.Total)
}

func TestService_Filters(t *testing.T) {
	svc := catalog.NewService(seeded(t))
	ctx := context.Background()

	tests := []struct {
		entity string
		query  string
		total  int
	}{
		{"scholarships", "fundingType=fully-funded", 4},
		{"scholarships", "fundingType=partial", 11},
		{"scholarships", "fundingType=bogus", 15},
		{"scholarships", "isPublished=false", 1},
		{"scholarships", "q=ENGINEERING&country=canada", 4},
		{"scholarships", "level=phd", 1},
		{"success-stories", "", testsupport.PublishedStories},
		{"success-stories", "isPublished=false", 1},
		{"posts", "", testsupport.PublishedPosts},
		{"posts", "status=draft", 1},
		{"posts", "category=stem", 1},
		{"categories", "search=arts", 1},
		{"levels", "", 2},
		{"countries", "sortBy=bogus", 2},
	}

	for _, tt := range tests {
		t.Run(tt.entity+"?"+tt.query, func(t *testing.T) {
			env, err := svc.List(ctx, tt.entity, values(t, tt.query))
			require.NoError(t, err)
			assert.Equal(t, tt.total, env.Pagination.Total)
			assert.Len(t, env.Data, tt.total)
		})
	}
}

func TestService_ListEnrichesAndNormalizes(t *testing.T) {
	svc := catalog.NewService(seeded(t))

	env, err := svc.List(context.Background(), "scholarships", values(t, "sortBy=title&limit=100"))
	require.NoError(t, err)

	byID := map[string]catalog.Scholarship{}
	for _, item := range env.Data {
		s := item.(catalog.Scholarship)
		byID[s.ID] = s
	}

	business := byID["15"]
	assert.Equal(t, "Business Fellowship", business.Title)
	assert.Nil(t, business.Category, "unknown category id")
	require.NotNil(t, business.CategoryID)
	assert.Equal(t, "99", *business.CategoryID)

	camel := byID["3"]
	require.NotNil(t, camel.Category)
	assert.Equal(t, "arts", camel.Category.Slug)
	require.NotNil(t, camel.Country)
	assert.Equal(t, "canada", camel.Country.Slug)
	require.NotNil(t, camel.CreatedAt)

	first := env.Data[0].(catalog.Scholarship)
	assert.Equal(t, "Art History Grant", first.Title, "sorted by title")
}

func TestService_StoreFailureServesEmptyPage(t *testing.T) {
	svc := catalog.NewService(failingStore{memstore.New()})

	env, err := svc.List(context.Background(), "posts", values(t, "page=3"))
	require.NoError(t, err)
	assert.True(t, env.Degraded)
	assert.Equal(t, []any{}, env.Data)
	assert.Equal(t, catalog.Pagination{Page: 3, Limit: 12, Total: 0, TotalPages: 1}, env.Pagination)
}

func TestService_UnknownEntity(t *testing.T) {
	svc := catalog.NewService(seeded(t))

	_, err := svc.List(context.Background(), "users", nil)
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryNotFound, category(t, err))
}

func TestService_Featured(t *testing.T) {
	svc := catalog.NewService(seeded(t))

	col := svc.Featured(context.Background(), 0)
	require.Len(t, col.Data, 3)
	assert.Equal(t, "3", col.Data[0].(catalog.Scholarship).ID)
	assert.Equal(t, "1", col.Data[2].(catalog.Scholarship).ID)

	col = svc.Featured(context.Background(), 1)
	assert.Len(t, col.Data, 1)
}

func TestService_Get(t *testing.T) {
	svc := catalog.NewService(seeded(t))
	ctx := context.Background()

	got, err := svc.Get(ctx, "scholarships", "engineering-scholarship-02")
	require.NoError(t, err)
	s := got.(catalog.Scholarship)
	assert.Equal(t, "2", s.ID)
	require.NotNil(t, s.Category)
	assert.Equal(t, "stem", s.Category.Slug)

	got, err = svc.Get(ctx, "success-stories", "accra-to-berlin")
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", got.(catalog.SuccessStory).Name)

	_, err = svc.Get(ctx, "posts", "missing")
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryNotFound, category(t, err))
}

func TestService_RecordView(t *testing.T) {
	st := seeded(t)
	svc := catalog.NewService(st)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "posts", "visa-checklist"))
	require.NoError(t, svc.RecordView(ctx, "posts", "visa-checklist"))
	got, err := svc.Get(ctx, "posts", "visa-checklist")
	require.NoError(t, err)
	assert.Equal(t, 2, got.(catalog.Post).Views)

	require.NoError(t, svc.RecordView(ctx, "categories", "stem"))
	assert.Equal(t, int64(2), st.Stats().Writes)

	err = svc.RecordView(ctx, "scholarships", "missing")
	assert.Equal(t, goerrors.CategoryNotFound, category(t, err))

	readOnly := catalog.NewService(newPlainStore(st))
	assert.NoError(t, readOnly.RecordView(ctx, "posts", "visa-checklist"))
}

func TestService_FilterOptions(t *testing.T) {
	opts := catalog.NewService(seeded(t)).FilterOptions(context.Background())

	require.Len(t, opts.Categories, 3)
	assert.Equal(t, "Arts", opts.Categories[0].Name)
	assert.Equal(t, "3", opts.Categories[1].ID)
	assert.Len(t, opts.Countries, 2)
	assert.Equal(t, "/flags/de.svg", opts.Countries[1].FlagURL)
	assert.Len(t, opts.Levels, 2)

	empty := catalog.NewService(failingStore{memstore.New()}).FilterOptions(context.Background())
	assert.Empty(t, empty.Categories)
	assert.NotNil(t, empty.Categories)
}

func TestService_Writes(t *testing.T) {
	clock := testsupport.NewClock(testsupport.Epoch)
	st := seeded(t)
	svc := catalog.NewService(st, catalog.WithClock(clock.Now))
	ctx := context.Background()

	_, err := svc.Create(ctx, "categories", map[string]any{"name": "Law"})
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryValidation, category(t, err))

	_, err = svc.Create(ctx, "categories", map[string]any{"name": "Law", "slug": "Not A Slug"})
	require.Error(t, err)

	created, err := svc.Create(ctx, "scholarships", map[string]any{
		"title":         "Law Grant",
		"slug":          "law-grant",
		"categoryId":    float64(1),
		"isFullyFunded": true,
		"category":      map[string]any{"id": "1"},
	})
	require.NoError(t, err)
	s := created.(catalog.Scholarship)
	assert.NotEmpty(t, s.ID)
	assert.True(t, s.IsFullyFunded)
	require.NotNil(t, s.Category)
	assert.Equal(t, "stem", s.Category.Slug)
	require.NotNil(t, s.CreatedAt)
	assert.Equal(t, "2024-03-01T09:00:00.000Z", *s.CreatedAt)

	clock.Advance(time.Hour)
	updated, err := svc.Update(ctx, "scholarships", s.ID, map[string]any{"title": "Law Grant II"})
	require.NoError(t, err)
	u := updated.(catalog.Scholarship)
	assert.Equal(t, "Law Grant II", u.Title)
	assert.Equal(t, *s.CreatedAt, *u.CreatedAt)
	assert.Equal(t, "2024-03-01T10:00:00.000Z", *u.UpdatedAt)

	_, err = svc.Update(ctx, "scholarships", s.ID, map[string]any{"title": ""})
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryValidation, category(t, err))

	_, err = svc.Update(ctx, "scholarships", "9999", map[string]any{"title": "x"})
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryNotFound, category(t, err))

	require.NoError(t, svc.Delete(ctx, "scholarships", s.ID))
	err = svc.Delete(ctx, "scholarships", s.ID)
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryNotFound, category(t, err))
}

func TestService_WritesNeedWriter(t *testing.T) {
	svc := catalog.NewService(newPlainStore(seeded(t)))

	_, err := svc.Create(context.Background(), "levels", map[string]any{"name": "BSc", "slug": "bsc"})
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryOperation, category(t, err))
}

func TestColumns(t *testing.T) {
	row := catalog.Columns(map[string]any{
		"id":            "5",
		"_id":           "x",
		"isFullyFunded": true,
		"seo_title":     "kept",
		"category":      map[string]any{"id": 1},
		"tags":          []any{"a"},
	})
	assert.Equal(t, map[string]any{"is_fully_funded": true, "seo_title": "kept"}, map[string]any(row))
}
