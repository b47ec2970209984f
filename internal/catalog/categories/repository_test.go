package categories_test

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
	"github.com/odyssey-erp/backoffice/internal/shared"
)

const catID = "0b7c1f0e-5a4b-4d8e-9f1a-3c2d1e0f9a8b"

func newMock(t *testing.T) (pgxmock.PgxPoolIface, categories.Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, categories.NewRepository(mock)
}

func TestRepositoryListFilters(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()
	status := true

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM categories WHERE name ILIKE \$1 AND status = \$2`).
		WithArgs("%sho%", true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM categories WHERE name ILIKE \$1 AND status = \$2 ORDER BY name ASC LIMIT \$3 OFFSET \$4`).
		WithArgs("%sho%", true, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "image", "status", "created_at", "updated_at"}).
			AddRow(catID, "Shoes", "a.png", true, now, now))

	items, total, err := repo.List(context.Background(), catalog.ListFilters{Page: 1, Limit: 20, Search: "sho", Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Shoes", items[0].Name)
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery(`INSERT INTO categories`).
		WithArgs(pgxmock.AnyArg(), "Shoes", "a.png", true).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := repo.Create(context.Background(), categories.Category{Name: "Shoes", Image: "a.png", Status: true})
	assert.ErrorIs(t, err, shared.ErrDuplicateKey)
}

func TestRepositoryDeleteReferenced(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs(catID).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

	err := repo.Delete(context.Background(), catID)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestRepositoryDeleteMissing(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
		WithArgs(catID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), catID), shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "not-a-uuid"), shared.ErrNotFound)
}

func TestRepositoryGetManySkipsInvalidIDs(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`WHERE id = ANY\(\$1::uuid\[\]\)`).
		WithArgs([]string{catID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "image", "status", "created_at", "updated_at"}).
			AddRow(catID, "Shoes", "a.png", true, now, now))

	got, err := repo.GetMany(context.Background(), []string{catID, "bogus"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "Shoes", got[catID].Name)
}
