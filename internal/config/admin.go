package config

// Admin configures the admin UI server.
type Admin struct {
	Port uint32 `env:"ADMIN_PORT" envDefault:"8080"`
}
