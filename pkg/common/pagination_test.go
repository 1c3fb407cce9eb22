package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPaginationParams(t *testing.T) {
	t.Run("defaults when nothing is given", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/relationships", nil)
		params := ExtractPaginationParams(r)
		assert.Equal(t, 1, params.Page)
		assert.Equal(t, 20, params.PageSize)
	})

	t.Run("reads page and page_size", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/relationships?page=3&page_size=5", nil)
		params := ExtractPaginationParams(r)
		assert.Equal(t, 3, params.Page)
		assert.Equal(t, 5, params.PageSize)
	})

	t.Run("caps the page size and ignores garbage", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/relationships?page=abc&page_size=9999", nil)
		params := ExtractPaginationParams(r)
		assert.Equal(t, 1, params.Page)
		assert.Equal(t, 100, params.PageSize)
	})
}

func TestPaginationBounds(t *testing.T) {
	params := PaginationParams{Page: 2, PageSize: 10}

	lo, hi := params.Bounds(25)
	assert.Equal(t, 10, lo)
	assert.Equal(t, 20, hi)

	lo, hi = params.Bounds(12)
	assert.Equal(t, 10, lo)
	assert.Equal(t, 12, hi)

	// A page past the end collapses to an empty range
	lo, hi = params.Bounds(5)
	assert.Equal(t, 5, lo)
	assert.Equal(t, 5, hi)
}

func TestNormalize(t *testing.T) {
	normalized := PaginationParams{}.Normalize()
	assert.Equal(t, 1, normalized.Page)
	assert.Equal(t, 20, normalized.PageSize)

	capped := PaginationParams{Page: 2, PageSize: 500}.Normalize()
	assert.Equal(t, 100, capped.PageSize)
}

func TestBuildPaginationMeta(t *testing.T) {
	meta := BuildPaginationMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	single := BuildPaginationMeta(1, 10, 4)
	assert.Equal(t, 1, single.TotalPages)
	assert.False(t, single.HasNext)
	assert.False(t, single.HasPrev)
}
