package export

import (
	"bytes"
	"encoding/csv"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/domain/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// scenarioModel: A and B report savings, C timed out.
func scenarioModel(t *testing.T) *entity.ReportModel {
	t.Helper()
	a := service.BuildResult(entity.RawOutput{
		Spec:   entity.AnalyzerSpec{ID: "a", Name: "Analyzer A", Category: entity.CategoryStorage},
		Status: entity.ExecOk,
	}, entity.Figures{
		CurrentMonthlyCost: dec("1000"),
		CurrentYearlyCost:  dec("12000"),
		MonthlySavings:     dec("100"),
		YearlySavings:      dec("1200"),
		Recommendations: []entity.Recommendation{
			{Description: `Delete <script>alert("x")</script> volumes`, MonthlySavings: dec("100"), YearlySavings: dec("1200")},
		},
	})
	b := service.BuildResult(entity.RawOutput{
		Spec:   entity.AnalyzerSpec{ID: "b", Name: "Analyzer B", Category: entity.CategoryCompute},
		Status: entity.ExecOk,
	}, entity.Figures{
		MonthlySavings: dec("450"),
		YearlySavings:  dec("5400"),
		Recommendations: []entity.Recommendation{
			{Description: "Buy reserved instances", MonthlySavings: dec("450"), YearlySavings: dec("5400")},
		},
		Diagnostics: []entity.Diagnostic{{Field: "current_monthly_cost", Message: `bad token <img src=x onerror=alert(1)>`}},
	})
	c := service.BuildResult(entity.RawOutput{
		Spec:   entity.AnalyzerSpec{ID: "c", Name: "Analyzer C", Category: entity.CategoryNetwork},
		Status: entity.ExecTimedOut,
		Reason: "timed out after 5m0s",
	}, entity.Figures{})

	return service.BuildReport(service.ReportInput{
		RunID:       "20261019_120000",
		AccountID:   "123456789012",
		GeneratedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Results:     []entity.AnalysisResult{a, b, c},
		Performance: entity.Performance{WallTime: 10 * time.Second, AnalyzerTime: 25 * time.Second},
	})
}

func render(t *testing.T, r interface {
	Render(*entity.ReportModel) ([]byte, error)
}, m *entity.ReportModel) string {
	t.Helper()
	out, err := r.Render(m)
	require.NoError(t, err)
	return string(out)
}

var (
	textTotal = regexp.MustCompile(`TOTAL YEARLY SAVINGS:\s+(\$[0-9,.]+)`)
	htmlTotal = regexp.MustCompile(`id="total-yearly-savings">([^<]+)<`)
)

func normalize(s string) string {
	return strings.NewReplacer("$", "", ",", "").Replace(s)
}

func TestCrossFormatConsistency(t *testing.T) {
	m := scenarioModel(t)

	text := render(t, NewTextRenderer(""), m)
	data := render(t, NewJSONRenderer(), m)
	html := render(t, NewHTMLRenderer(""), m)
	csvOut := render(t, NewCSVRenderer(), m)

	jsonTotal := gjson.Get(data, "summary.total_yearly_savings").Raw
	require.Equal(t, "6600.00", jsonTotal)

	tm := textTotal.FindStringSubmatch(text)
	require.NotNil(t, tm)
	require.Equal(t, "$6,600.00", tm[1])

	hm := htmlTotal.FindStringSubmatch(html)
	require.NotNil(t, hm)
	require.Equal(t, "$6,600.00", hm[1])

	records, err := csv.NewReader(strings.NewReader(csvOut)).ReadAll()
	require.NoError(t, err)
	last := records[len(records)-1]
	require.Equal(t, "TOTAL", last[0])

	require.Equal(t, jsonTotal, normalize(tm[1]))
	require.Equal(t, jsonTotal, normalize(hm[1]))
	require.Equal(t, jsonTotal, last[8])
}

func TestJSONRenderer_Shape(t *testing.T) {
	data := render(t, NewJSONRenderer(), scenarioModel(t))

	require.True(t, gjson.Valid(data))
	require.Equal(t, "2026-10-19T12:00:00Z", gjson.Get(data, "generated_at").String())
	require.Equal(t, "550.00", gjson.Get(data, "summary.total_monthly_savings").Raw)
	require.Equal(t, "1000.00", gjson.Get(data, "summary.current_monthly_cost").Raw)
	require.Equal(t, "12000.00", gjson.Get(data, "summary.current_yearly_cost").Raw)
	require.Equal(t, "55.00", gjson.Get(data, "summary.savings_percentage").Raw)
	require.Equal(t, int64(3), gjson.Get(data, "summary.analyses_run").Int())

	require.Equal(t, "1200.00", gjson.Get(data, "categories.Storage.yearly").Raw)
	analyzers := gjson.Get(data, "categories.Network.analyzers").Array()
	require.Len(t, analyzers, 1)
	require.Equal(t, "c", analyzers[0].String())

	require.Equal(t, int64(3), gjson.Get(data, "analyses.#").Int())
	require.Equal(t, "timed_out", gjson.Get(data, "analyses.2.status").String())
	require.Equal(t, "error", gjson.Get(data, "analyses.2.state").String())
	require.Equal(t, "0.00", gjson.Get(data, "analyses.2.yearly_savings").Raw)
	require.Equal(t, "c_report.txt", gjson.Get(data, "analyses.2.raw_report").String())
	require.Equal(t, "[]", gjson.Get(data, "analyses.2.recommendations").Raw)
	require.Equal(t, "5400.00", gjson.Get(data, "analyses.1.recommendations.0.yearly_savings").Raw)

	require.Equal(t, "b", gjson.Get(data, "top_recommendations.0.analyzer_id").String())
	require.Equal(t, "a", gjson.Get(data, "top_recommendations.1.analyzer_id").String())
	require.Equal(t, int64(2), gjson.Get(data, "top_recommendations.1.rank").Int())
}

func TestTextRenderer_Sections(t *testing.T) {
	text := render(t, NewTextRenderer("aws-cost-report 1.0.0"), scenarioModel(t))

	order := []string{"EXECUTIVE SUMMARY", "SAVINGS BREAKDOWN BY CATEGORY", "TOP RECOMMENDATIONS", "RECONCILIATION", "DIAGNOSTICS", "FAILED ANALYSES"}
	last := -1
	for _, heading := range order {
		idx := strings.Index(text, heading)
		require.Greater(t, idx, last, heading)
		last = idx
	}

	require.Contains(t, text, " 1. [Analyzer B] Buy reserved instances")
	require.Contains(t, text, "⚠ Analyzer C: timed out after 5m0s (raw report: c_report.txt)")
	require.Contains(t, text, "💡")
	require.Contains(t, text, "Potential cost reduction:   55.00%")
	require.Contains(t, text, "aws-cost-report 1.0.0")
}

func TestTextRenderer_AllOptimized(t *testing.T) {
	r := service.BuildResult(entity.RawOutput{
		Spec:   entity.AnalyzerSpec{ID: "eip", Name: "Elastic IPs", Category: entity.CategoryNetwork},
		Status: entity.ExecOk,
	}, entity.Figures{})
	m := service.BuildReport(service.ReportInput{RunID: "x", Results: []entity.AnalysisResult{r}})

	text := render(t, NewTextRenderer(""), m)
	require.Contains(t, text, "✓ Great job! All analyzed resources are already optimized.")
}

func TestHTMLRenderer_EscapesAnalyzerText(t *testing.T) {
	html := render(t, NewHTMLRenderer(""), scenarioModel(t))

	require.NotContains(t, html, "<script")
	require.NotContains(t, html, "<img")
	require.Contains(t, html, "&lt;script&gt;")
	require.Contains(t, html, "&lt;img src=x onerror=alert(1)&gt;")
}

func TestHTMLRenderer_SelfContained(t *testing.T) {
	html := render(t, NewHTMLRenderer(""), scenarioModel(t))

	require.NotContains(t, html, "http://")
	require.NotContains(t, html, "https://")
	require.NotContains(t, html, "<link")
	require.Contains(t, html, "<style>")
	require.Contains(t, html, `href="c_report.txt"`)
}

func TestRenderersAreDeterministic(t *testing.T) {
	m := scenarioModel(t)
	for _, r := range []interface {
		Render(*entity.ReportModel) ([]byte, error)
	}{NewTextRenderer(""), NewJSONRenderer(), NewHTMLRenderer(""), NewCSVRenderer()} {
		first, err := r.Render(m)
		require.NoError(t, err)
		second, err := r.Render(m)
		require.NoError(t, err)
		require.True(t, bytes.Equal(first, second))
	}
}

func TestPDFRenderer(t *testing.T) {
	out, err := NewPDFRenderer("footer").Render(scenarioModel(t))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestNewRenderers(t *testing.T) {
	renderers, err := NewRenderers(nil, "")
	require.NoError(t, err)
	require.Len(t, renderers, 3)
	require.Equal(t, "summary.txt", renderers[0].Filename())
	require.Equal(t, "data.json", renderers[1].Filename())
	require.Equal(t, "index.html", renderers[2].Filename())

	renderers, err = NewRenderers([]string{"json", "JSON", "pdf", "csv"}, "")
	require.NoError(t, err)
	require.Len(t, renderers, 3)

	_, err = NewRenderers([]string{"xlsx"}, "")
	require.Error(t, err)
}
