package catalog_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog"
)

func TestParseListFiltersDefaults(t *testing.T) {
	f := catalog.ParseListFilters(url.Values{})
	assert.True(t, f.IsDefault())
	assert.Equal(t, 0, f.Offset())
}

func TestParseListFilters(t *testing.T) {
	f := catalog.ParseListFilters(url.Values{
		"page":       {"3"},
		"limit":      {"500"},
		"search":     {"  shoe "},
		"status":     {"true"},
		"categoryId": {"c1"},
	})
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, catalog.MaxLimit, f.Limit)
	assert.Equal(t, "shoe", f.Search)
	require.NotNil(t, f.Status)
	assert.True(t, *f.Status)
	assert.Equal(t, "c1", f.CategoryID)
	assert.Equal(t, 200, f.Offset())
	assert.False(t, f.IsDefault())
}

func TestParseListFiltersIgnoresGarbage(t *testing.T) {
	f := catalog.ParseListFilters(url.Values{"page": {"-1"}, "limit": {"x"}, "status": {"maybe"}})
	assert.True(t, f.IsDefault())
}
