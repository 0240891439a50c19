package adapter

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("responses").Funcs(template.FuncMap{
	"inc": func(n int) int { return n + 1 },
}).ParseFS(templateFS, "templates/*.tmpl"))

// render executes one embedded template and trims trailing newlines.
func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
