package categories

import "time"

// Entity is the list cache and metrics name of categories.
const Entity = "categories"

// Category is the top level of the catalog.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the body accepted by create and update.
type Input struct {
	Name   string `json:"name" validate:"required,max=120"`
	Image  string `json:"image" validate:"required,max=2048"`
	Status *bool  `json:"status" validate:"required"`
}
