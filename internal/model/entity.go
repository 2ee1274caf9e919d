package model

// Collection names a REST collection endpoint holding one entity kind.
type Collection string

const (
	CollectionProducts   Collection = "products"
	CollectionCategories Collection = "categories"
	CollectionSuppliers  Collection = "suppliers"
	CollectionClients    Collection = "clients"
)

// Collections lists every collection in display order.
var Collections = []Collection{
	CollectionProducts,
	CollectionCategories,
	CollectionSuppliers,
	CollectionClients,
}

func (c Collection) String() string {
	return string(c)
}

// Entity is a flat record with a server-assigned identifier.
// A value with an empty ID is a draft that has not been created yet.
type Entity[T any] interface {
	GetID() string
	// WithID returns a copy of the entity carrying id.
	WithID(id string) T
}
