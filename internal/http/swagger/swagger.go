package swagger

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	// swaggerURL is the URL path where the Swagger UI will be served
	swaggerURL = "/docs"

	// swaggerSpecURL is the URL path where the OpenAPI specification will be served
	swaggerSpecURL = "/docs/openapi.yml"
)

// Register serves spec and a Swagger UI page rendering it.
func Register(r chi.Router, title string, spec []byte) {
	page := getTemplate(title, swaggerSpecURL)
	pageBytes := []byte(page)

	r.Get(swaggerURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(pageBytes)
	})

	r.Get(swaggerSpecURL, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(spec)
	})
}

func getTemplate(title, specPath string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta name="description" content="%[1]s" />
  <title>%[1]s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui.css" />
  <link rel="icon" type="image/png" href="https://static1.smartbear.co/swagger/media/assets/swagger_fav.png" sizes="32x32" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%[2]s',
      dom_id: '#swagger-ui',
      deepLinking: true,
	  showExtensions: true,
	  showCommonExtensions: true,
    });
  };
</script>
</body>
</html>
`, template.HTMLEscapeString(title), specPath)
}
