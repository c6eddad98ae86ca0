// Package html renders shareable dApp and store pages from the search index.
package html

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"dappstore.GO/api"
)

//go:embed templates/*.html
var templateFS embed.FS

func init() {
	api.RegisterRoute(RegisterDAppHTMLRoutes)
	api.RegisterRoute(RegisterStoreHTMLRoutes)
}

type Template struct {
	Templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// NewTemplate parses the embedded page templates.
func NewTemplate() (*Template, error) {
	t, err := template.New("pages").Funcs(TemplateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Template{Templates: t}, nil
}

// TemplateFuncs returns FuncMap with helpers for pagination
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":  func(a, b int) int { return a + b },
		"sub":  func(a, b int) int { return a - b },
		"join": strings.Join,
	}
}

// renderer installs the page templates on e once.
func renderer(e *echo.Echo) {
	if _, ok := e.Renderer.(*Template); ok {
		return
	}
	t, err := NewTemplate()
	if err != nil {
		panic("html templates: " + err.Error())
	}
	e.Renderer = t
}
