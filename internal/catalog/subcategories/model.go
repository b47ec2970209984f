package subcategories

import (
	"time"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
)

const Entity = "subcategories"

// Subcategory belongs to exactly one category.
type Subcategory struct {
	ID        string                          `json:"id"`
	Name      string                          `json:"name"`
	Category  catalog.Ref[categories.Category] `json:"category"`
	Image     string                          `json:"image"`
	Status    bool                            `json:"status"`
	CreatedAt time.Time                       `json:"createdAt"`
	UpdatedAt time.Time                       `json:"updatedAt"`
}

type Input struct {
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"required,uuid"`
	Image    string `json:"image" validate:"required,max=2048"`
	Status   *bool  `json:"status" validate:"required"`
}
