package subcategories

import (
	"strings"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

func (s *Service) validate(in Input) (Subcategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	in.Category = strings.TrimSpace(in.Category)
	if err := shared.ValidateStruct(s.validator, in); err != nil {
		return Subcategory{}, err
	}
	return Subcategory{
		Name:     in.Name,
		Category: catalog.RefTo[categories.Category](in.Category),
		Image:    in.Image,
		Status:   *in.Status,
	}, nil
}
