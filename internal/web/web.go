// Package web holds the server-rendered HTML views, embedded so the
// binary (and the tests) need no on-disk asset directory.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var files embed.FS

// Templates parses every embedded view into one template set.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.tmpl"))
}
