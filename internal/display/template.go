package display

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var templateFuncs = sprig.TxtFuncMap()

// Template is a parsed text template with the sprig functions available.
type Template struct {
	tmpl *template.Template
}

// MustParse parses tmplStr and panics on error. Meant for package level
// templates.
func MustParse(name, tmplStr string) *Template {
	return &Template{tmpl: template.Must(template.New(name).Funcs(templateFuncs).Parse(tmplStr))}
}

// Render executes the template with data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	err := t.tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template %s: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}

// RenderLines executes the template and splits the output on newlines. A
// single trailing newline does not produce an empty last line.
func (t *Template) RenderLines(data any) ([]string, error) {
	out, err := t.Render(data)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n"), nil
}
