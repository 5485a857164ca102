// Package htmlrender renders a document tree as an HTML preview.
package htmlrender

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/signature"
)

//go:embed templates/*.html
var templateFS embed.FS

var tpl = template.Must(template.New("htmlrender").Funcs(template.FuncMap{
	"imageSrc": imageSrc,
}).ParseFS(templateFS, "templates/*.html"))

// imageSrc lets inline signature images through html/template's URL filter.
// Anything that is not a data:image URI renders as a blank signature line.
func imageSrc(s string) template.URL {
	if !signature.IsDataURI(s) {
		return ""
	}
	if _, err := signature.ParseDataURI(s); err != nil {
		return ""
	}
	return template.URL(s)
}

// Render writes a standalone HTML page.
func Render(w io.Writer, doc document.Document) error {
	return tpl.ExecuteTemplate(w, "document", doc)
}

// RenderFragment writes the document body only, for embedding in a page.
func RenderFragment(w io.Writer, doc document.Document) error {
	return tpl.ExecuteTemplate(w, "body", doc)
}

// Fragment returns the body as trusted HTML for use inside another template.
func Fragment(doc document.Document) (template.HTML, error) {
	var b strings.Builder
	if err := RenderFragment(&b, doc); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
