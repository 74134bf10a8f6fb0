// Package extract turns raw analyzer output into entity.Figures.
package extract

import (
	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/domain/repository"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/shopspring/decimal"
)

// Field names used in diagnostics.
const (
	FieldMonthlySavings = "monthly_savings"
	FieldYearlySavings  = "yearly_savings"
	FieldMonthlyCost    = "current_monthly_cost"
	FieldYearlyCost     = "current_yearly_cost"
	FieldRecommendation = "recommendation"
	FieldDocument       = "document"
)

var monthsPerYear = decimal.NewFromInt(12)

// Options ajusta políticas de extração.
type Options struct {
	// DeriveYearlyCost fills the current yearly cost from the monthly cost when
	// the analyzer states only the latter. Savings are never derived.
	DeriveYearlyCost bool
}

// Dispatcher picks the extractor matching the analyzer's declared output format.
type Dispatcher struct {
	text repository.ResultExtractor
	json repository.ResultExtractor
}

// NewDispatcher creates the default extractor set.
func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{
		text: NewTextExtractor(opts),
		json: NewJSONExtractor(opts),
	}
}

// Extract implements repository.ResultExtractor.
func (d *Dispatcher) Extract(out entity.RawOutput) entity.Figures {
	if out.Spec.Format == entity.OutputJSON {
		return d.json.Extract(out)
	}
	return d.text.Extract(out)
}

// figureSet collects fields while extracting; the first assignment of a field wins.
type figureSet struct {
	values map[string]decimal.Decimal
	seen   map[string]bool
	diags  []entity.Diagnostic
	recs   []entity.Recommendation
}

func newFigureSet() *figureSet {
	return &figureSet{values: map[string]decimal.Decimal{}, seen: map[string]bool{}}
}

func (f *figureSet) claim(field string) bool {
	if f.seen[field] {
		return false
	}
	f.seen[field] = true
	return true
}

func (f *figureSet) set(field string, v decimal.Decimal) {
	f.values[field] = v
}

func (f *figureSet) diag(field, msg string) {
	f.diags = append(f.diags, entity.Diagnostic{Field: field, Message: msg})
}

func (f *figureSet) anomaly(a *types.ExtractionAnomaly) {
	f.diag(a.Field, a.Error())
}

func (f *figureSet) get(field string) decimal.Decimal {
	if v, ok := f.values[field]; ok {
		return v
	}
	return decimal.Zero
}

func (f *figureSet) finish(opts Options) entity.Figures {
	if !f.seen[FieldMonthlySavings] {
		f.diag(FieldMonthlySavings, "monthly savings anchor not found; defaulted to 0")
	}
	if !f.seen[FieldYearlySavings] {
		f.diag(FieldYearlySavings, "yearly savings anchor not found; defaulted to 0")
	}
	yearlyCost := f.get(FieldYearlyCost)
	if opts.DeriveYearlyCost && !f.seen[FieldYearlyCost] && f.seen[FieldMonthlyCost] {
		yearlyCost = f.get(FieldMonthlyCost).Mul(monthsPerYear)
	}
	return entity.Figures{
		CurrentMonthlyCost: f.get(FieldMonthlyCost),
		CurrentYearlyCost:  yearlyCost,
		MonthlySavings:     f.get(FieldMonthlySavings),
		YearlySavings:      f.get(FieldYearlySavings),
		Recommendations:    f.recs,
		Diagnostics:        f.diags,
	}
}
