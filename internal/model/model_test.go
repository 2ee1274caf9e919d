package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

func TestDraftOmitsID(t *testing.T) {
	draft := model.Category{Name: "freios", Description: "Freios e pastilhas"}

	b, err := json.Marshal(draft)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"freios","description":"Freios e pastilhas"}`, string(b))

	b, err = json.Marshal(draft.WithID("c1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","name":"freios","description":"Freios e pastilhas"}`, string(b))
}

func TestWithIDDoesNotMutateReceiver(t *testing.T) {
	p := model.Product{Name: "Pad Kit"}
	withID := p.WithID("abc")

	assert.Empty(t, p.GetID())
	assert.Equal(t, "abc", withID.GetID())
	assert.Equal(t, "Pad Kit", withID.Name)
}

func TestSchemaValidation(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should accept a complete product", func(t *testing.T) {
		p := model.Product{
			Name:        "Pad Kit",
			Description: "brake pads",
			Price:       49.9,
			Quantity:    10,
			Color:       "black",
			Category:    "freios",
			Supplier:    "fornecedorA",
		}
		assert.NoError(t, v.Validate(p))
	})

	t.Run("Should reject negative quantity", func(t *testing.T) {
		p := model.Product{
			Name: "Pad Kit", Description: "brake pads", Color: "black",
			Category: "freios", Supplier: "fornecedorA", Quantity: -1,
		}
		fields := validator.FieldErrors(v.Validate(p))
		assert.Equal(t, map[string]string{"quantity": "must be greater than or equal to 0"}, fields)
	})

	t.Run("Should validate client patterns", func(t *testing.T) {
		c := model.Client{
			Name:    "Maria",
			CPF:     "123.456.789-00",
			Address: "Rua A, 1",
			Phone:   "(11) 91234-5678",
			Email:   "maria@example.com",
		}
		assert.NoError(t, v.Validate(c))

		c.CPF = "123"
		fields := validator.FieldErrors(v.Validate(c))
		assert.Contains(t, fields, "cpf")
	})

	t.Run("Should require supplier fields", func(t *testing.T) {
		fields := validator.FieldErrors(v.Validate(model.Supplier{}))
		assert.Len(t, fields, 3)
	})
}
