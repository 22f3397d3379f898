package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLogin         = "login.html"
	PageConfirmForm   = "confirm_form.html"
	PageConfirmResult = "confirm_result.html"
	PageNotFound      = "not_found.html"
)

// Templates parses every page, each is addressed by its file name.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}
