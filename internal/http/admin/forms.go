package admin

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/export"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

type option struct {
	Value string
	Label string
}

// fieldSpec describes one form control. Every field is required.
type fieldSpec struct {
	Name    string
	Label   string
	Type    string
	Pattern string
	Min     string
	Step    string
	// Options lists the choices of a select; it is evaluated on every render.
	Options func() []option
}

type formField struct {
	fieldSpec
	Value   string
	Error   string
	Options []option
}

func buildFields(specs []fieldSpec, values url.Values, fieldErrs map[string]string) []formField {
	fields := make([]formField, 0, len(specs))
	for _, spec := range specs {
		f := formField{
			fieldSpec: spec,
			Value:     values.Get(spec.Name),
			Error:     fieldErrs[spec.Name],
		}
		if spec.Options != nil {
			f.Options = spec.Options()
		}
		fields = append(fields, f)
	}
	return fields
}

// htmlPattern converts an anchored regexp into an HTML pattern attribute,
// which is implicitly anchored.
func htmlPattern(expr string) string {
	return strings.TrimSuffix(strings.TrimPrefix(expr, "^"), "$")
}

func text(name, label string) fieldSpec {
	return fieldSpec{Name: name, Label: label, Type: "text"}
}

func textarea(name, label string) fieldSpec {
	return fieldSpec{Name: name, Label: label, Type: "textarea"}
}

func trimmed(values url.Values, name string) string {
	return strings.TrimSpace(values.Get(name))
}

func productScreen(s *Service) screen[model.Product] {
	categories := s.registry.Categories
	suppliers := s.registry.Suppliers

	categoryOptions := func() []option {
		items := categories.Items()
		opts := make([]option, 0, len(items))
		for _, c := range items {
			opts = append(opts, option{Value: c.Name, Label: c.Description})
		}
		return opts
	}
	supplierOptions := func() []option {
		items := suppliers.Items()
		opts := make([]option, 0, len(items))
		for _, sup := range items {
			opts = append(opts, option{Value: sup.Name, Label: sup.Contact})
		}
		return opts
	}

	return screen[model.Product]{
		store:    s.registry.Products,
		title:    "Products",
		singular: "product",
		columns:  export.ProductColumns,
		fields: []fieldSpec{
			text("name", "Name"),
			textarea("description", "Description"),
			{Name: "price", Label: "Price", Type: "number", Min: "0", Step: "0.01"},
			{Name: "quantity", Label: "Quantity", Type: "number", Min: "0", Step: "1"},
			text("color", "Color"),
			{Name: "category", Label: "Category", Type: "select", Options: categoryOptions},
			{Name: "supplier", Label: "Supplier", Type: "select", Options: supplierOptions},
		},
		encode: func(p model.Product) url.Values {
			return url.Values{
				"name":        {p.Name},
				"description": {p.Description},
				"price":       {strconv.FormatFloat(p.Price, 'f', -1, 64)},
				"quantity":    {strconv.Itoa(p.Quantity)},
				"color":       {p.Color},
				"category":    {p.Category},
				"supplier":    {p.Supplier},
			}
		},
		decode: func(values url.Values) (model.Product, map[string]string) {
			errs := map[string]string{}
			p := model.Product{
				Name:        trimmed(values, "name"),
				Description: trimmed(values, "description"),
				Color:       trimmed(values, "color"),
				Category:    trimmed(values, "category"),
				Supplier:    trimmed(values, "supplier"),
			}

			price, err := strconv.ParseFloat(trimmed(values, "price"), 64)
			if err != nil {
				errs["price"] = "must be a number"
			}
			p.Price = price

			quantity, err := strconv.Atoi(trimmed(values, "quantity"))
			if err != nil {
				errs["quantity"] = "must be a whole number"
			}
			p.Quantity = quantity

			return p, errs
		},
		prepare: func(ctx context.Context) {
			//nolint:errcheck
			load(ctx, categories)
			//nolint:errcheck
			load(ctx, suppliers)
		},
		// references are only checked against options the stores have loaded
		check: func(p model.Product) map[string]string {
			errs := map[string]string{}
			if opts := categoryOptions(); len(opts) > 0 && !hasOption(opts, p.Category) {
				errs["category"] = fmt.Sprintf("unknown category %q", p.Category)
			}
			if opts := supplierOptions(); len(opts) > 0 && !hasOption(opts, p.Supplier) {
				errs["supplier"] = fmt.Sprintf("unknown supplier %q", p.Supplier)
			}
			return errs
		},
	}
}

func hasOption(opts []option, value string) bool {
	return slices.ContainsFunc(opts, func(o option) bool { return o.Value == value })
}

func categoryScreen(s *Service) screen[model.Category] {
	return screen[model.Category]{
		store:    s.registry.Categories,
		title:    "Categories",
		singular: "category",
		columns:  export.CategoryColumns,
		fields: []fieldSpec{
			text("name", "Name"),
			textarea("description", "Description"),
		},
		encode: func(c model.Category) url.Values {
			return url.Values{"name": {c.Name}, "description": {c.Description}}
		},
		decode: func(values url.Values) (model.Category, map[string]string) {
			return model.Category{
				Name:        trimmed(values, "name"),
				Description: trimmed(values, "description"),
			}, nil
		},
	}
}

func supplierScreen(s *Service) screen[model.Supplier] {
	return screen[model.Supplier]{
		store:    s.registry.Suppliers,
		title:    "Suppliers",
		singular: "supplier",
		columns:  export.SupplierColumns,
		fields: []fieldSpec{
			text("name", "Name"),
			text("contact", "Contact"),
			text("address", "Address"),
		},
		encode: func(sup model.Supplier) url.Values {
			return url.Values{"name": {sup.Name}, "contact": {sup.Contact}, "address": {sup.Address}}
		},
		decode: func(values url.Values) (model.Supplier, map[string]string) {
			return model.Supplier{
				Name:    trimmed(values, "name"),
				Contact: trimmed(values, "contact"),
				Address: trimmed(values, "address"),
			}, nil
		},
	}
}

func clientScreen(s *Service) screen[model.Client] {
	return screen[model.Client]{
		store:    s.registry.Clients,
		title:    "Clients",
		singular: "client",
		columns:  export.ClientColumns,
		fields: []fieldSpec{
			text("name", "Name"),
			{Name: "cpf", Label: "CPF", Type: "text", Pattern: htmlPattern(validator.CPFRegex.String())},
			text("address", "Address"),
			{Name: "phone", Label: "Phone", Type: "tel", Pattern: htmlPattern(validator.PhoneRegex.String())},
			{Name: "email", Label: "Email", Type: "email"},
		},
		encode: func(c model.Client) url.Values {
			return url.Values{
				"name":    {c.Name},
				"cpf":     {c.CPF},
				"address": {c.Address},
				"phone":   {c.Phone},
				"email":   {c.Email},
			}
		},
		decode: func(values url.Values) (model.Client, map[string]string) {
			return model.Client{
				Name:    trimmed(values, "name"),
				CPF:     trimmed(values, "cpf"),
				Address: trimmed(values, "address"),
				Phone:   trimmed(values, "phone"),
				Email:   trimmed(values, "email"),
			}, nil
		},
	}
}
