package service

import "github.com/tuanvumaihuynh/autoparts-admin/internal/model"

// SeedCategories are the part categories the admin offered out of the box.
var SeedCategories = []model.Category{
	{Name: "freios", Description: "Freios"},
	{Name: "motor", Description: "Motor"},
	{Name: "suspensao", Description: "Suspensão"},
	{Name: "iluminacao", Description: "Iluminação"},
	{Name: "escapamento", Description: "Escapamento"},
}

// SeedSuppliers are the suppliers the admin offered out of the box.
var SeedSuppliers = []model.Supplier{
	{Name: "fornecedorA", Contact: "Fornecedor A (Freios)", Address: "-"},
	{Name: "fornecedorB", Contact: "Fornecedor B (Motor)", Address: "-"},
	{Name: "fornecedorC", Contact: "Fornecedor C (Suspensão)", Address: "-"},
}
