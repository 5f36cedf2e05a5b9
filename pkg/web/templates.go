package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded pages. Each page is named after its file.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
