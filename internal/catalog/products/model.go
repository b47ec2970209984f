package products

import (
	"time"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/subcategories"
)

const Entity = "products"

// Product sits under a subcategory of its category.
type Product struct {
	ID          string                                `json:"id"`
	Name        string                                `json:"name"`
	Category    catalog.Ref[categories.Category]       `json:"category"`
	Subcategory catalog.Ref[subcategories.Subcategory] `json:"subcategory"`
	Image       string                                `json:"image"`
	Status      bool                                  `json:"status"`
	CreatedAt   time.Time                             `json:"createdAt"`
	UpdatedAt   time.Time                             `json:"updatedAt"`
}

type Input struct {
	Name        string `json:"name" validate:"required,max=160"`
	Category    string `json:"category" validate:"required,uuid"`
	Subcategory string `json:"subcategory" validate:"required,uuid"`
	Image       string `json:"image" validate:"required,max=2048"`
	Status      *bool  `json:"status" validate:"required"`
}
