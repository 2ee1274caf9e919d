package model

// Client is a customer of the store, not an HTTP client.
type Client struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	CPF     string `json:"cpf" validate:"required,cpf"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"required,email"`
}

func (c Client) GetID() string { return c.ID }

func (c Client) WithID(id string) Client {
	c.ID = id
	return c
}
