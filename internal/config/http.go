package config

type HTTP struct {
	Port    uint32 `env:"HTTP_PORT" envDefault:"5000"`
	Swagger bool   `env:"HTTP_SWAGGER" envDefault:"true"`

	// ValidateRequests enforces the OpenAPI contract on incoming requests.
	ValidateRequests bool `env:"HTTP_VALIDATE_REQUESTS" envDefault:"true"`
	// AllowedOrigins lists CORS origins; the admin UI usually runs on another port.
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}
