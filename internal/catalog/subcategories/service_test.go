package subcategories_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/subcategories"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

type fakeCategories struct {
	items map[string]categories.Category
	calls int
}

func (f *fakeCategories) Load(_ context.Context, ids []string) (map[string]categories.Category, error) {
	f.calls++
	out := map[string]categories.Category{}
	for _, id := range ids {
		if c, ok := f.items[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

type fakeRepo struct {
	items []subcategories.Subcategory
}

func (f *fakeRepo) List(context.Context, catalog.ListFilters) ([]subcategories.Subcategory, int, error) {
	out := append([]subcategories.Subcategory(nil), f.items...)
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (subcategories.Subcategory, error) {
	for _, s := range f.items {
		if s.ID == id {
			return s, nil
		}
	}
	return subcategories.Subcategory{}, shared.ErrNotFound
}

func (f *fakeRepo) GetMany(context.Context, []string) (map[string]subcategories.Subcategory, error) {
	return nil, nil
}

func (f *fakeRepo) Create(_ context.Context, s subcategories.Subcategory) (subcategories.Subcategory, error) {
	s.ID = uuid.NewString()
	f.items = append(f.items, s)
	return s, nil
}

func (f *fakeRepo) Update(_ context.Context, id string, s subcategories.Subcategory) (subcategories.Subcategory, error) {
	return subcategories.Subcategory{}, shared.ErrNotFound
}

func (f *fakeRepo) Delete(context.Context, string) error { return shared.ErrNotFound }

func TestListExpandsCategoriesInOneLoad(t *testing.T) {
	shoes := categories.Category{ID: uuid.NewString(), Name: "Shoes"}
	cats := &fakeCategories{items: map[string]categories.Category{shoes.ID: shoes}}
	repo := &fakeRepo{items: []subcategories.Subcategory{
		{ID: "s1", Name: "Boots", Category: catalog.RefTo[categories.Category](shoes.ID)},
		{ID: "s2", Name: "Sneakers", Category: catalog.RefTo[categories.Category](shoes.ID)},
	}}
	svc := subcategories.NewService(repo, cats, nil)

	items, total, err := svc.List(context.Background(), catalog.ParseListFilters(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, cats.calls)
	for _, s := range items {
		require.True(t, s.Category.IsExpanded())
		assert.Equal(t, "Shoes", s.Category.Expanded.Name)
	}

	raw, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"category":{"id":"`+shoes.ID+`","name":"Shoes"`)
}

func TestCreateValidatesCategoryID(t *testing.T) {
	status := true
	svc := subcategories.NewService(&fakeRepo{}, &fakeCategories{}, nil)

	_, err := svc.Create(context.Background(), subcategories.Input{Name: "Boots", Category: "shoes", Image: "b.png", Status: &status})
	require.ErrorIs(t, err, shared.ErrValidation)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")
}

func TestCreateReturnsExpandedRecord(t *testing.T) {
	status := true
	shoes := categories.Category{ID: uuid.NewString(), Name: "Shoes"}
	svc := subcategories.NewService(&fakeRepo{}, &fakeCategories{items: map[string]categories.Category{shoes.ID: shoes}}, nil)

	created, err := svc.Create(context.Background(), subcategories.Input{Name: "Boots", Category: shoes.ID, Image: "b.png", Status: &status})
	require.NoError(t, err)
	require.True(t, created.Category.IsExpanded())
	assert.Equal(t, shoes.ID, created.Category.ID)
}
