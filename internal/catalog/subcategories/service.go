package subcategories

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Dependents are the list caches that embed subcategories.
var Dependents = []string{Entity, "products"}

// CategoryLoader resolves category references.
type CategoryLoader interface {
	Load(ctx context.Context, ids []string) (map[string]categories.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryLoader
	cache      *catalog.ListCache
	validator  *validator.Validate
}

func NewService(repo Repository, categories CategoryLoader, cache *catalog.ListCache) *Service {
	return &Service{repo: repo, categories: categories, cache: cache, validator: shared.NewValidator()}
}

// List returns subcategories with their category expanded.
func (s *Service) List(ctx context.Context, filters catalog.ListFilters) ([]Subcategory, int, error) {
	return catalog.CachedList(ctx, s.cache, Entity, filters, func(ctx context.Context) ([]Subcategory, int, error) {
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

func (s *Service) Get(ctx context.Context, id string) (Subcategory, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return Subcategory{}, err
	}
	return s.expanded(ctx, sub)
}

// Load resolves subcategory references without expanding their categories.
func (s *Service) Load(ctx context.Context, ids []string) (map[string]Subcategory, error) {
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) Create(ctx context.Context, in Input) (Subcategory, error) {
	sub, err := s.validate(in)
	if err != nil {
		return Subcategory{}, err
	}
	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		return Subcategory{}, err
	}
	s.cache.Invalidate(ctx, Dependents...)
	return s.expanded(ctx, created)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Subcategory, error) {
	sub, err := s.validate(in)
	if err != nil {
		return Subcategory{}, err
	}
	updated, err := s.repo.Update(ctx, id, sub)
	if err != nil {
		return Subcategory{}, err
	}
	s.cache.Invalidate(ctx, Dependents...)
	return s.expanded(ctx, updated)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, Dependents...)
	return nil
}

func (s *Service) expanded(ctx context.Context, sub Subcategory) (Subcategory, error) {
	one := []Subcategory{sub}
	if err := s.populate(ctx, one); err != nil {
		return Subcategory{}, err
	}
	return one[0], nil
}

func (s *Service) populate(ctx context.Context, subs []Subcategory) error {
	refs := make([]*catalog.Ref[categories.Category], 0, len(subs))
	for i := range subs {
		refs = append(refs, &subs[i].Category)
	}
	return catalog.Populate(ctx, refs, s.categories.Load)
}
