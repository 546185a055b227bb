package pagination

import (
	"context"
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantSkip  int
	}{
		{"defaults", "", 1, 10, 0},
		{"explicit", "page=3&limit=20", 3, 20, 40},
		{"zero page", "page=0", 1, 10, 0},
		{"negative page", "page=-4&limit=5", 1, 5, 0},
		{"limit above max", "limit=500", 1, 50, 0},
		{"zero limit", "limit=0", 1, 10, 0},
		{"negative limit", "limit=-5", 1, 1, 0},
		{"negative limit on later page", "page=3&limit=-1", 3, 1, 2},
		{"garbage", "page=abc&limit=xyz", 1, 10, 0},
		{"second page", "page=2&limit=10", 2, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			p := FromQuery(q)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantSkip, p.Skip())
		})
	}
}

func TestHugePageDoesNotOverflow(t *testing.T) {
	p := New(math.MaxInt, MaxLimit)
	assert.GreaterOrEqual(t, p.Skip(), 0)
}

func TestPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{12, 10, 2},
		{101, 50, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Pages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestFetch(t *testing.T) {
	items := make([]int, 12)
	for i := range items {
		items[i] = i
	}
	list := func(_ context.Context, skip, limit int) ([]int, error) {
		if skip >= len(items) {
			return nil, nil
		}
		end := min(skip+limit, len(items))
		return items[skip:end], nil
	}
	count := func(context.Context) (int, error) { return len(items), nil }

	t.Run("second page", func(t *testing.T) {
		page, err := Fetch(context.Background(), New(2, 10), list, count)
		require.NoError(t, err)
		assert.Equal(t, []int{10, 11}, page.Items)
		assert.Equal(t, Meta{Page: 2, Limit: 10, Total: 12, Pages: 2}, page.Meta)
	})

	t.Run("past the end", func(t *testing.T) {
		page, err := Fetch(context.Background(), New(5, 10), list, count)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, 2, page.Meta.Pages)
	})

	t.Run("list error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Fetch(context.Background(), New(1, 10), func(context.Context, int, int) ([]int, error) {
			return nil, boom
		}, count)
		assert.ErrorIs(t, err, boom)
	})
}
