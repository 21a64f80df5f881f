package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBlogService(t *testing.T, rm *fakeRepoManager) *BlogService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewBlogService(db, rm)
}

func TestBlogList_FilterNormalisation(t *testing.T) {
	tests := []struct {
		name string
		in   models.PostFilter
		want models.PostFilter
	}{
		{name: "defaults", in: models.PostFilter{}, want: models.PostFilter{Limit: 10}},
		{name: "all category", in: models.PostFilter{Category: "All", Limit: 5}, want: models.PostFilter{Limit: 5}},
		{name: "capped", in: models.PostFilter{Category: "Threats", Limit: 500, Offset: 20}, want: models.PostFilter{Category: "Threats", Limit: 50, Offset: 20}},
		{name: "negative offset", in: models.PostFilter{Search: " zero day ", Offset: -3}, want: models.PostFilter{Search: "zero day", Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := newFakeRepoManager()
			_, err := newBlogService(t, rm).List(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rm.p.listIn)
		})
	}
}

func TestBlogList_HasMore(t *testing.T) {
	rm := newFakeRepoManager()
	rm.p.listOut = []models.Post{{ID: "1"}, {ID: "2"}}
	rm.p.countOut = 12

	page, err := newBlogService(t, rm).List(context.Background(), models.PostFilter{Limit: 10})
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, 12, page.Total)

	page, err = newBlogService(t, rm).List(context.Background(), models.PostFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Equal(t, 10, page.Offset)
}

func TestBlogGetBySlug(t *testing.T) {
	rm := newFakeRepoManager()
	rm.p.slugOut = &models.Post{ID: "p-1", Category: "Compliance"}
	rm.p.relatedOut = []models.Post{{ID: "p-2"}}

	post, related, err := newBlogService(t, rm).GetBySlug(context.Background(), "soc2")
	require.NoError(t, err)
	assert.Equal(t, "p-1", post.ID)
	assert.Len(t, related, 1)
	assert.Equal(t, "Compliance", rm.p.relatedCategory)
	assert.Equal(t, "p-1", rm.p.relatedExclude)
	assert.Equal(t, 3, rm.p.relatedLimit)
}

func TestBlogGetBySlug_NotFound(t *testing.T) {
	rm := newFakeRepoManager()
	rm.p.slugErr = common.ErrorNotFound

	_, _, err := newBlogService(t, rm).GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBlogCategories(t *testing.T) {
	rm := newFakeRepoManager()
	rm.p.categoriesOut = []models.CategoryCount{{Category: "Threats", Count: 2}}

	got, err := newBlogService(t, rm).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rm.p.categoriesOut, got)
}
