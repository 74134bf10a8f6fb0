package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/diillson/aws-cost-report/internal/domain/repository"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
	FormatPDF  = "pdf"
	FormatCSV  = "csv"
)

// DefaultFormats are always rendered unless the operator narrows the list.
var DefaultFormats = []string{FormatText, FormatJSON, FormatHTML}

// NewRenderers returns one renderer per requested format, in request order.
// Duplicates are ignored.
func NewRenderers(formats []string, footer string) ([]repository.ReportRenderer, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	seen := map[string]bool{}
	var out []repository.ReportRenderer
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		switch f {
		case FormatText, "txt":
			out = append(out, NewTextRenderer(footer))
		case FormatJSON:
			out = append(out, NewJSONRenderer())
		case FormatHTML, "dashboard":
			out = append(out, NewHTMLRenderer(footer))
		case FormatPDF:
			out = append(out, NewPDFRenderer(footer))
		case FormatCSV:
			out = append(out, NewCSVRenderer())
		default:
			return nil, fmt.Errorf("unsupported report type %q (supported: text, json, html, pdf, csv)", f)
		}
	}
	return out, nil
}

var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// stripANSI remove sequências de cor que os analyzers possam ter impresso.
func stripANSI(text string) string {
	return ansiRegex.ReplaceAllString(text, "")
}
