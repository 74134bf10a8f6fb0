package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecStatus is the runner's view of how an analyzer process ended.
type ExecStatus string

const (
	ExecOk       ExecStatus = "ok"
	ExecFailed   ExecStatus = "failed"
	ExecTimedOut ExecStatus = "timed_out"
)

// State is the presentation status derived by the categorizer.
type State string

const (
	StateOptimized   State = "optimized"
	StateOpportunity State = "opportunity"
	StateError       State = "error"
)

// Glyph returns the marker used for the state in every rendered format.
func (s State) Glyph() string {
	switch s {
	case StateOptimized:
		return "✓"
	case StateOpportunity:
		return "💡"
	default:
		return "⚠"
	}
}

// Label is the human readable name of the state.
func (s State) Label() string {
	switch s {
	case StateOptimized:
		return "Optimized"
	case StateOpportunity:
		return "Opportunity Found"
	default:
		return "Error"
	}
}

// RawOutput é o que o runner capturou de um processo, sem interpretação.
type RawOutput struct {
	Spec     AnalyzerSpec
	Status   ExecStatus
	Reason   string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Started  time.Time
	Duration time.Duration
}

// Recommendation is one itemized finding of an analyzer.
type Recommendation struct {
	Description    string          `json:"description"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	YearlySavings  decimal.Decimal `json:"yearly_savings"`
}

// Diagnostic is a non-fatal note attached to a result when something could not be parsed.
type Diagnostic struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Figures são os valores extraídos do texto de um analyzer.
type Figures struct {
	CurrentMonthlyCost decimal.Decimal
	CurrentYearlyCost  decimal.Decimal
	MonthlySavings     decimal.Decimal
	YearlySavings      decimal.Decimal
	Recommendations    []Recommendation
	Diagnostics        []Diagnostic
}

// AnalysisResult is one analyzer's reconciled outcome.
type AnalysisResult struct {
	AnalyzerID         string
	Name               string
	Category           Category
	Status             ExecStatus
	Reason             string
	ExitCode           int
	State              State
	CurrentMonthlyCost decimal.Decimal
	CurrentYearlyCost  decimal.Decimal
	MonthlySavings     decimal.Decimal
	YearlySavings      decimal.Decimal
	Recommendations    []Recommendation
	Diagnostics        []Diagnostic
	RawReportPath      string
	Duration           time.Duration
}

// Failed reports whether the runner recorded a failure or a timeout.
func (r AnalysisResult) Failed() bool {
	return r.Status == ExecFailed || r.Status == ExecTimedOut
}
