package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"unicode/utf8"

	"github.com/russross/blackfriday/v2"

	"portfolio/models"
)

// PageData is what every view receives.
type PageData struct {
	Title     string
	Year      int
	Flashes   []string
	Projects  []models.Project
	Project   *models.Project
	Mode      string
	Action    string
	Form      any
	Errors    FieldErrors
	CSRFToken string
}

type fieldView struct {
	Label string
	Type  string
	Name  string
	Value string
	Error string
}

var markdownRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
	Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML | blackfriday.Safelink,
})

var funcs = template.FuncMap{
	"markdown": func(s string) template.HTML {
		return template.HTML(blackfriday.Run([]byte(s), blackfriday.WithRenderer(markdownRenderer)))
	},
	"truncate": func(s string, n int) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		rs := []rune(s)
		return string(rs[:n]) + "..."
	},
	"field": func(label, typ, name, value string, errs FieldErrors) fieldView {
		return fieldView{Label: label, Type: typ, Name: name, Value: value, Error: errs[name]}
	},
}

// Renderer executes the named views parsed once at startup.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every *.html file in fsys.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes view name with the given status. The view is executed into
// a buffer first so a template error never leaves a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data PageData) error {
	var buf bytes.Buffer
	if err := rd.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
