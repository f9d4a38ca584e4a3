package listing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/phimgo/internal/catalog"
	"github.com/vmunix/phimgo/internal/docstore"
	"github.com/vmunix/phimgo/internal/docstore/mocks"
	"github.com/vmunix/phimgo/internal/query"
)

func TestLister_TwoPages(t *testing.T) {
	store := docstore.NewMemory()
	seedMovies(t, store, "hanh-dong", 0, 25)
	seedMovies(t, store, "hai-huoc", 100, 5)
	lister := NewLister(store)
	ctx := context.Background()

	q := query.SearchQuery{
		Filters:  catalog.FilterState{Categories: []string{"hanh-dong"}},
		Page:     1,
		PageSize: 20,
	}
	page1, err := lister.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 20)
	assert.Equal(t, 25, page1.TotalCount)
	assert.Equal(t, 2, page1.TotalPages)
	require.NotNil(t, page1.NextCursor)
	// newest first
	assert.Equal(t, "m024", page1.Items[0].ID)

	q.Page = 2
	q.Cursor = page1.NextCursor
	page2, err := lister.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 5)
	assert.Equal(t, 25, page2.TotalCount)
	assert.Nil(t, page2.NextCursor)
	assert.Equal(t, []string{"m004", "m003", "m002", "m001", "m000"}, movieIDs(page2.Items))
}

func TestLister_EmptyResult(t *testing.T) {
	lister := NewLister(docstore.NewMemory())
	res, err := lister.Fetch(context.Background(), query.SearchQuery{
		Filters:  catalog.FilterState{Countries: []string{"viet-nam"}},
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalCount)
	assert.Zero(t, res.TotalPages)
	assert.Nil(t, res.NextCursor)
}

func TestLister_MaxPageSize(t *testing.T) {
	store := docstore.NewMemory()
	seedMovies(t, store, "hanh-dong", 0, 12)
	lister := NewLister(store, WithMaxPageSize(5))

	res, err := lister.Fetch(context.Background(), query.SearchQuery{Page: 1, PageSize: 50})
	require.NoError(t, err)
	assert.Len(t, res.Items, 5)
	assert.Equal(t, 3, res.TotalPages)
}

func TestLister_RetriesUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	gomock.InOrder(
		store.EXPECT().Query(gomock.Any(), catalog.CollectionMovies, gomock.Any()).Return(nil, docstore.ErrUnavailable),
		store.EXPECT().Query(gomock.Any(), catalog.CollectionMovies, gomock.Any()).Return(nil, docstore.ErrUnavailable),
		store.EXPECT().Query(gomock.Any(), catalog.CollectionMovies, gomock.Any()).Return([]docstore.Document{
			{ID: "m1", Fields: map[string]any{"name": "A", "type": "single", "createdAt": float64(1)}},
		}, nil),
	)
	store.EXPECT().Count(gomock.Any(), catalog.CollectionMovies, gomock.Any()).Return(1, nil)

	lister := NewLister(store, WithBackOff(noWait))
	res, err := lister.Fetch(context.Background(), query.SearchQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, movieIDs(res.Items))
	assert.Equal(t, 1, res.TotalCount)
}

func TestLister_GivesUpAfterAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, docstore.ErrUnavailable).Times(2)
	store.EXPECT().Count(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()

	lister := NewLister(store, WithBackOff(noWait), WithRetryAttempts(2))
	_, err := lister.Fetch(context.Background(), query.SearchQuery{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, docstore.ErrUnavailable)
}

func TestLister_QueryErrorNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	qerr := &docstore.QueryError{Constraint: "year <= 2020", Err: docstore.ErrOrderMismatch}
	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, qerr).Times(1)
	store.EXPECT().Count(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()

	lister := NewLister(store, WithBackOff(noWait))
	_, err := lister.Fetch(context.Background(), query.SearchQuery{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.True(t, docstore.IsQueryError(err))
	assert.ErrorIs(t, err, docstore.ErrOrderMismatch)
}

func TestLister_CompileErrorSkipsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	lister := NewLister(store)
	_, err := lister.Fetch(context.Background(), query.SearchQuery{
		Term:     "abc",
		Filters:  catalog.FilterState{Years: []catalog.YearOption{catalog.YearOlder}},
		Page:     1,
		PageSize: 10,
	})
	assert.ErrorIs(t, err, query.ErrMultipleRanges)
}

func TestPageResult_CursorSurvivesJSON(t *testing.T) {
	store := docstore.NewMemory()
	seedMovies(t, store, "hanh-dong", 0, 25)
	lister := NewLister(store)
	ctx := context.Background()

	q := query.SearchQuery{
		Filters:  catalog.FilterState{Categories: []string{"hanh-dong"}},
		Page:     1,
		PageSize: 20,
	}
	page1, err := lister.Fetch(ctx, q)
	require.NoError(t, err)
	require.NotNil(t, page1.NextCursor)

	body, err := json.Marshal(page1)
	require.NoError(t, err)

	var wire struct {
		NextCursor string `json:"next_cursor"`
	}
	require.NoError(t, json.Unmarshal(body, &wire))
	require.NotEmpty(t, wire.NextCursor)

	cursor, err := docstore.ParseCursor(wire.NextCursor)
	require.NoError(t, err)
	assert.True(t, page1.NextCursor.Equal(cursor))

	var decoded PageResult
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.True(t, page1.NextCursor.Equal(decoded.NextCursor))

	q.Page = 2
	q.Cursor = cursor
	page2, err := lister.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"m004", "m003", "m002", "m001", "m000"}, movieIDs(page2.Items))
}
