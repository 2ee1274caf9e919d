package admin

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageHome    = "home"
	pageList    = "list"
	pageForm    = "form"
	pageConfirm = "confirm"
)

// parseTemplates builds one template set per page, each pairing the shared
// layout with the page's "content" block.
func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, page := range []string{pageHome, pageList, pageForm, pageConfirm} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		pages[page] = t
	}

	return pages, nil
}
