package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/shopspring/decimal"
)

// amount serializes as a JSON number with exactly two fractional digits.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(money.Plain(decimal.Decimal(a))), nil
}

type summaryDoc struct {
	TotalMonthlySavings amount `json:"total_monthly_savings"`
	TotalYearlySavings  amount `json:"total_yearly_savings"`
	CurrentMonthlyCost  amount `json:"current_monthly_cost"`
	CurrentYearlyCost   amount `json:"current_yearly_cost"`
	SavingsPercentage   amount `json:"savings_percentage"`
	AnalysesRun         int    `json:"analyses_run"`
	Optimized           int    `json:"optimized"`
	Opportunities       int    `json:"opportunities"`
	Errors              int    `json:"errors"`
}

type categoryDoc struct {
	Monthly   amount   `json:"monthly"`
	Yearly    amount   `json:"yearly"`
	Analyzers []string `json:"analyzers"`
}

type recommendationDoc struct {
	Description    string `json:"description"`
	MonthlySavings amount `json:"monthly_savings"`
	YearlySavings  amount `json:"yearly_savings"`
}

type analysisDoc struct {
	AnalyzerID         string              `json:"analyzer_id"`
	Name               string              `json:"name"`
	Category           string              `json:"category"`
	Status             string              `json:"status"`
	State              string              `json:"state"`
	Reason             string              `json:"reason,omitempty"`
	ExitCode           int                 `json:"exit_code"`
	MonthlySavings     amount              `json:"monthly_savings"`
	YearlySavings      amount              `json:"yearly_savings"`
	CurrentMonthlyCost amount              `json:"current_monthly_cost"`
	CurrentYearlyCost  amount              `json:"current_yearly_cost"`
	Recommendations    []recommendationDoc `json:"recommendations"`
	Diagnostics        []entity.Diagnostic `json:"diagnostics"`
	RawReport          string              `json:"raw_report"`
	DurationSeconds    float64             `json:"duration_seconds"`
}

type rankedDoc struct {
	Rank         int    `json:"rank"`
	AnalyzerID   string `json:"analyzer_id"`
	AnalyzerName string `json:"analyzer_name"`
	recommendationDoc
}

type performanceDoc struct {
	WallSeconds     float64 `json:"wall_seconds"`
	AnalyzerSeconds float64 `json:"analyzer_seconds"`
	Speedup         float64 `json:"speedup"`
}

type document struct {
	GeneratedAt        string                 `json:"generated_at"`
	RunID              string                 `json:"run_id"`
	AccountID          string                 `json:"account_id,omitempty"`
	Summary            summaryDoc             `json:"summary"`
	Categories         map[string]categoryDoc `json:"categories"`
	Analyses           []analysisDoc          `json:"analyses"`
	TopRecommendations []rankedDoc            `json:"top_recommendations"`
	Performance        performanceDoc         `json:"performance"`
}

// JSONRenderer serializes the report model as the structured data document.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Format() string   { return FormatJSON }
func (r *JSONRenderer) Filename() string { return "data.json" }

// Render implements repository.ReportRenderer.
func (r *JSONRenderer) Render(m *entity.ReportModel) ([]byte, error) {
	doc := document{
		GeneratedAt: m.GeneratedAt.Format(time.RFC3339),
		RunID:       m.RunID,
		AccountID:   m.AccountID,
		Summary: summaryDoc{
			TotalMonthlySavings: amount(m.Totals.TotalMonthlySavings),
			TotalYearlySavings:  amount(m.Totals.TotalYearlySavings),
			CurrentMonthlyCost:  amount(m.Totals.CurrentMonthlyCost),
			CurrentYearlyCost:   amount(m.Totals.CurrentYearlyCost),
			SavingsPercentage:   amount(m.Totals.SavingsPercentage),
			AnalysesRun:         m.Counts.Total,
			Optimized:           m.Counts.Optimized,
			Opportunities:       m.Counts.Opportunities,
			Errors:              m.Counts.Errors,
		},
		Categories:         make(map[string]categoryDoc, len(m.Categories)),
		Analyses:           make([]analysisDoc, 0, len(m.Results)),
		TopRecommendations: make([]rankedDoc, 0, len(m.TopRecommendations)),
		Performance: performanceDoc{
			WallSeconds:     m.Performance.WallTime.Seconds(),
			AnalyzerSeconds: m.Performance.AnalyzerTime.Seconds(),
			Speedup:         m.Performance.Speedup(),
		},
	}

	for _, c := range m.Categories {
		doc.Categories[string(c.Category)] = categoryDoc{
			Monthly:   amount(c.Monthly),
			Yearly:    amount(c.Yearly),
			Analyzers: c.Analyzers,
		}
	}

	for _, res := range m.Results {
		a := analysisDoc{
			AnalyzerID:         res.AnalyzerID,
			Name:               res.Name,
			Category:           string(res.Category),
			Status:             string(res.Status),
			State:              string(res.State),
			Reason:             res.Reason,
			ExitCode:           res.ExitCode,
			MonthlySavings:     amount(res.MonthlySavings),
			YearlySavings:      amount(res.YearlySavings),
			CurrentMonthlyCost: amount(res.CurrentMonthlyCost),
			CurrentYearlyCost:  amount(res.CurrentYearlyCost),
			Recommendations:    make([]recommendationDoc, 0, len(res.Recommendations)),
			Diagnostics:        res.Diagnostics,
			RawReport:          res.RawReportPath,
			DurationSeconds:    res.Duration.Seconds(),
		}
		if a.Diagnostics == nil {
			a.Diagnostics = []entity.Diagnostic{}
		}
		for _, rec := range res.Recommendations {
			a.Recommendations = append(a.Recommendations, toRecommendationDoc(rec))
		}
		doc.Analyses = append(doc.Analyses, a)
	}

	for _, rec := range m.TopRecommendations {
		doc.TopRecommendations = append(doc.TopRecommendations, rankedDoc{
			Rank:              rec.Rank,
			AnalyzerID:        rec.AnalyzerID,
			AnalyzerName:      rec.AnalyzerName,
			recommendationDoc: toRecommendationDoc(rec.Recommendation),
		})
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("error encoding JSON report: %w", err)
	}
	return buf.Bytes(), nil
}

func toRecommendationDoc(rec entity.Recommendation) recommendationDoc {
	return recommendationDoc{
		Description:    rec.Description,
		MonthlySavings: amount(rec.MonthlySavings),
		YearlySavings:  amount(rec.YearlySavings),
	}
}
