package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageCalculator = "calculator.html"
	PageResults    = "results.html"
)

// LeadOffer is the email capture panel under the results.
type LeadOffer struct {
	Email      string
	Error      string
	Submitted  bool
	Submitting bool
	ToolkitURL string
	BookingURL string
}

// PageData is passed to every template.
type PageData struct {
	Title   string
	Results *ResultsView
	Offer   LeadOffer
}

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.New("pages").Funcs(template.FuncMap{
		"currency":     FormatCurrency,
		"testimonials": Testimonials,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

// Templates exposes the parsed set, e.g. for gin's SetHTMLTemplate.
func (r *Renderer) Templates() *template.Template {
	return r.templates
}

func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	return r.templates.ExecuteTemplate(w, page, data)
}
