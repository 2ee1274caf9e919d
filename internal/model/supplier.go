package model

type Supplier struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact" validate:"required"`
	Address string `json:"address" validate:"required"`
}

func (s Supplier) GetID() string { return s.ID }

func (s Supplier) WithID(id string) Supplier {
	s.ID = id
	return s
}
