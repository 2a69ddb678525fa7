package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/nholt/grocerly/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func render(w http.ResponseWriter, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render template", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// pageData seeds the template data map with values every page wants.
// CurrentUser is empty for anonymous requests.
func pageData(r *http.Request) map[string]any {
	return map[string]any{
		"CurrentUser": auth.Username(r.Context()),
	}
}
