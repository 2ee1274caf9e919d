package model

type Product struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Color       string  `json:"color" validate:"required"`
	// Category and Supplier reference other records by name; they are not enforced.
	Category string `json:"category" validate:"required"`
	Supplier string `json:"supplier" validate:"required"`
}

func (p Product) GetID() string { return p.ID }

func (p Product) WithID(id string) Product {
	p.ID = id
	return p
}
