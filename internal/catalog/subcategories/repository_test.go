package subcategories_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/subcategories"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

const (
	parentID = "0b7c1f0e-5a4b-4d8e-9f1a-3c2d1e0f9a8b"
	subID    = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
)

var subColumns = []string{"id", "name", "category_id", "image", "status", "created_at", "updated_at"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, subcategories.Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, subcategories.NewRepository(mock)
}

func TestRepositoryListByCategory(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM subcategories WHERE name ILIKE \$1 AND category_id = \$2`).
		WithArgs("%boo%", parentID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM subcategories WHERE name ILIKE \$1 AND category_id = \$2 ORDER BY name ASC LIMIT \$3 OFFSET \$4`).
		WithArgs("%boo%", parentID, 20, 0).
		WillReturnRows(pgxmock.NewRows(subColumns).AddRow(subID, "Boots", parentID, "b.png", true, now, now))

	items, total, err := repo.List(context.Background(), catalog.ListFilters{Page: 1, Limit: 20, Search: "boo", CategoryID: parentID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, parentID, items[0].Category.ID)
	assert.False(t, items[0].Category.IsExpanded())
}

func TestRepositoryListUnknownCategoryFormat(t *testing.T) {
	_, repo := newMock(t)

	items, total, err := repo.List(context.Background(), catalog.ListFilters{Page: 1, Limit: 20, CategoryID: "shoes"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestRepositoryGetManySkipsMalformedIDs(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM subcategories WHERE id = ANY\(\$1::uuid\[\]\)`).
		WithArgs([]string{subID}).
		WillReturnRows(pgxmock.NewRows(subColumns).AddRow(subID, "Boots", parentID, "b.png", true, now, now))

	got, err := repo.GetMany(context.Background(), []string{subID, "bogus"})
	require.NoError(t, err)
	require.Contains(t, got, subID)
	assert.Equal(t, "Boots", got[subID].Name)
}

func TestRepositoryCreateUnknownCategory(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery(`INSERT INTO subcategories`).
		WithArgs(pgxmock.AnyArg(), "Boots", parentID, "b.png", true).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

	_, err := repo.Create(context.Background(), subcategories.Subcategory{
		Name:     "Boots",
		Category: catalog.RefTo[categories.Category](parentID),
		Image:    "b.png",
		Status:   true,
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "does not exist", verr.Fields["category"])
}

func TestRepositoryUpdateMissing(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery(`UPDATE subcategories SET`).
		WithArgs(subID, "Boots", parentID, "b.png", false).
		WillReturnRows(pgxmock.NewRows(subColumns))

	_, err := repo.Update(context.Background(), subID, subcategories.Subcategory{
		Name:     "Boots",
		Category: catalog.RefTo[categories.Category](parentID),
		Image:    "b.png",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
