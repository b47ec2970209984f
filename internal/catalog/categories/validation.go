package categories

import (
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

func (s *Service) validate(in Input) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Image = strings.TrimSpace(in.Image)
	if err := shared.ValidateStruct(s.validator, in); err != nil {
		return Category{}, err
	}
	return Category{Name: in.Name, Image: in.Image, Status: *in.Status}, nil
}
