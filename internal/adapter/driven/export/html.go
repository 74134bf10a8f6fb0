package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/shopspring/decimal"
)

//go:embed templates/dashboard.html.tmpl
var dashboardTemplate string

var dashboardFuncs = template.FuncMap{
	"usd":     money.Format,
	"percent": money.Percent,
	"clean":   stripANSI,
	"glyph":   func(s entity.State) string { return s.Glyph() },
	"label":   func(s entity.State) string { return s.Label() },
	"stamp":   func(t time.Time) string { return t.Format("2006-01-02 15:04:05 MST") },
	"seconds": func(d time.Duration) string { return fmt.Sprintf("%.1fs", d.Seconds()) },
}

// categoryBar is a category breakdown with its bar width relative to the largest category.
type categoryBar struct {
	entity.CategoryBreakdown
	Width string
}

type dashboardView struct {
	*entity.ReportModel
	Bars   []categoryBar
	Footer string
}

// HTMLRenderer writes the self-contained dashboard. Every analyzer-supplied string
// goes through html/template's contextual escaping.
type HTMLRenderer struct {
	tmpl   *template.Template
	footer string
}

// NewHTMLRenderer parses the embedded dashboard template.
func NewHTMLRenderer(footer string) *HTMLRenderer {
	return &HTMLRenderer{
		tmpl:   template.Must(template.New("dashboard").Funcs(dashboardFuncs).Parse(dashboardTemplate)),
		footer: footer,
	}
}

func (r *HTMLRenderer) Format() string   { return FormatHTML }
func (r *HTMLRenderer) Filename() string { return "index.html" }

// Render implements repository.ReportRenderer.
func (r *HTMLRenderer) Render(m *entity.ReportModel) ([]byte, error) {
	view := dashboardView{ReportModel: m, Footer: r.footer}

	largest := decimal.Zero
	for _, c := range m.Categories {
		if c.Yearly.GreaterThan(largest) {
			largest = c.Yearly
		}
	}
	for _, c := range m.Categories {
		width := decimal.Zero
		if largest.IsPositive() {
			width = c.Yearly.Mul(decimal.NewFromInt(100)).Div(largest)
		}
		view.Bars = append(view.Bars, categoryBar{CategoryBreakdown: c, Width: width.StringFixed(1)})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("error rendering dashboard: %w", err)
	}
	return buf.Bytes(), nil
}
