package config

// API points the admin application at the backing REST API.
type API struct {
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:5000"`
}
