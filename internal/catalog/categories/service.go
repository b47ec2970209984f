package categories

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Dependents are the list caches that embed categories.
var Dependents = []string{Entity, "subcategories", "products"}

type Service struct {
	repo      Repository
	cache     *catalog.ListCache
	validator *validator.Validate
}

func NewService(repo Repository, cache *catalog.ListCache) *Service {
	return &Service{repo: repo, cache: cache, validator: shared.NewValidator()}
}

func (s *Service) List(ctx context.Context, filters catalog.ListFilters) ([]Category, int, error) {
	return catalog.CachedList(ctx, s.cache, Entity, filters, func(ctx context.Context) ([]Category, int, error) {
		return s.repo.List(ctx, filters)
	})
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	return s.repo.Get(ctx, id)
}

// Load resolves category references for the other catalog packages.
func (s *Service) Load(ctx context.Context, ids []string) (map[string]Category, error) {
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	category, err := s.validate(in)
	if err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return Category{}, err
	}
	s.cache.Invalidate(ctx, Dependents...)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Category, error) {
	category, err := s.validate(in)
	if err != nil {
		return Category{}, err
	}
	updated, err := s.repo.Update(ctx, id, category)
	if err != nil {
		return Category{}, err
	}
	s.cache.Invalidate(ctx, Dependents...)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, Dependents...)
	return nil
}
