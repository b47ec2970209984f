package products

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/subcategories"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

type CategoryLoader interface {
	Load(ctx context.Context, ids []string) (map[string]categories.Category, error)
}

type SubcategoryLoader interface {
	Load(ctx context.Context, ids []string) (map[string]subcategories.Subcategory, error)
}

type Service struct {
	repo          Repository
	categories    CategoryLoader
	subcategories SubcategoryLoader
	cache         *catalog.ListCache
	validator     *validator.Validate
}

func NewService(repo Repository, categories CategoryLoader, subcategories SubcategoryLoader, cache *catalog.ListCache) *Service {
	return &Service{
		repo:          repo,
		categories:    categories,
		subcategories: subcategories,
		cache:         cache,
		validator:     shared.NewValidator(),
	}
}

// List returns products with category and subcategory expanded.
func (s *Service) List(ctx context.Context, filters catalog.ListFilters) ([]Product, int, error) {
	return catalog.CachedList(ctx, s.cache, Entity, filters, func(ctx context.Context) ([]Product, int, error) {
		items, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, 0, err
		}
		if err := s.populate(ctx, items); err != nil {
			return nil, 0, err
		}
		return items, total, nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	return s.expanded(ctx, p)
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	p, err := s.validate(in)
	if err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.cache.Invalidate(ctx, Entity)
	return s.expanded(ctx, created)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	p, err := s.validate(in)
	if err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return Product{}, err
	}
	s.cache.Invalidate(ctx, Entity)
	return s.expanded(ctx, updated)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, Entity)
	return nil
}

func (s *Service) expanded(ctx context.Context, p Product) (Product, error) {
	one := []Product{p}
	if err := s.populate(ctx, one); err != nil {
		return Product{}, err
	}
	return one[0], nil
}

func (s *Service) populate(ctx context.Context, items []Product) error {
	cats := make([]*catalog.Ref[categories.Category], 0, len(items))
	subs := make([]*catalog.Ref[subcategories.Subcategory], 0, len(items))
	for i := range items {
		cats = append(cats, &items[i].Category)
		subs = append(subs, &items[i].Subcategory)
	}
	if err := catalog.Populate(ctx, cats, s.categories.Load); err != nil {
		return err
	}
	return catalog.Populate(ctx, subs, s.subcategories.Load)
}
