package model

type Category struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (c Category) GetID() string { return c.ID }

func (c Category) WithID(id string) Category {
	c.ID = id
	return c
}
