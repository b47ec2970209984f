package products

import (
	"strings"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/subcategories"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

func (s *Service) validate(in Input) (Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	in.Category = strings.TrimSpace(in.Category)
	in.Subcategory = strings.TrimSpace(in.Subcategory)
	if err := shared.ValidateStruct(s.validator, in); err != nil {
		return Product{}, err
	}
	return Product{
		Name:        in.Name,
		Category:    catalog.RefTo[categories.Category](in.Category),
		Subcategory: catalog.RefTo[subcategories.Subcategory](in.Subcategory),
		Image:       in.Image,
		Status:      *in.Status,
	}, nil
}

func errSubcategoryMissing() error {
	return shared.NewValidationError("subcategory does not exist", map[string]string{"subcategory": "does not exist"})
}

func errSubcategoryMismatch() error {
	return shared.NewValidationError("subcategory does not belong to category", map[string]string{"subcategory": "does not belong to category"})
}
