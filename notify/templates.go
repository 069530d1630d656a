package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	CodeForgotPassword:  "Reset your password",
	CodePasswordChanged: "Your password was changed",
}

// Renderer turns a notice into an email subject and HTML body.
type Renderer struct {
	templates *template.Template
	subjects  map[string]string
}

// NewRenderer parses the embedded templates, one per notice code.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse notice templates: %w", err)
	}
	return &Renderer{templates: tmpl, subjects: subjects}, nil
}

func (r *Renderer) Render(n Notice) (string, string, error) {
	subject, ok := r.subjects[n.Code]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, n.Code)
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, n.Code+".html", n.Params); err != nil {
		return "", "", fmt.Errorf("render %s: %w", n.Code, err)
	}
	return subject, buf.String(), nil
}
