package extract

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

var errNotNumber = errors.New("value is neither a number nor a currency string")

// JSONExtractor reads analyzers that print their findings as a JSON document
// instead of anchor lines. Unknown keys are ignored.
type JSONExtractor struct {
	opts Options
}

// NewJSONExtractor creates a JSONExtractor.
func NewJSONExtractor(opts Options) *JSONExtractor {
	return &JSONExtractor{opts: opts}
}

// Extract implements repository.ResultExtractor.
func (e *JSONExtractor) Extract(out entity.RawOutput) entity.Figures {
	fs := newFigureSet()
	doc := documentBytes(out.Stdout)
	if !gjson.ValidBytes(doc) {
		fs.diag(FieldDocument, "output is not a valid JSON document")
		return fs.finish(e.opts)
	}
	root := gjson.ParseBytes(doc)

	for _, field := range []string{FieldMonthlySavings, FieldYearlySavings, FieldMonthlyCost, FieldYearlyCost} {
		v := root.Get(field)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		fs.claim(field)
		amount, err := jsonAmount(v)
		if err != nil {
			fs.anomaly(&types.ExtractionAnomaly{Field: field, Token: v.Raw, Err: err})
			continue
		}
		fs.set(field, amount)
	}

	index := 0
	root.Get("recommendations").ForEach(func(_, item gjson.Result) bool {
		index++
		rec := entity.Recommendation{Description: item.Get("description").String()}
		if rec.Description == "" {
			fs.diag(FieldRecommendation, fmt.Sprintf("recommendation #%d has no description; skipped", index))
			return true
		}
		for _, f := range []struct {
			key string
			dst *decimal.Decimal
		}{
			{"monthly_savings", &rec.MonthlySavings},
			{"yearly_savings", &rec.YearlySavings},
		} {
			v := item.Get(f.key)
			if !v.Exists() {
				continue
			}
			amount, err := jsonAmount(v)
			if err != nil {
				fs.anomaly(&types.ExtractionAnomaly{Field: FieldRecommendation, Token: v.Raw, Err: err})
				continue
			}
			*f.dst = amount
		}
		fs.recs = append(fs.recs, rec)
		return true
	})

	return fs.finish(e.opts)
}

// documentBytes trims anything printed around the outermost object.
func documentBytes(b []byte) []byte {
	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start < 0 || end < start {
		return b
	}
	return b[start : end+1]
}

func jsonAmount(v gjson.Result) (decimal.Decimal, error) {
	switch v.Type {
	case gjson.Number:
		d, err := decimal.NewFromString(v.Raw)
		if err != nil {
			return decimal.Zero, err
		}
		if d.IsNegative() {
			return decimal.Zero, money.ErrNegative
		}
		return d.Round(money.Cents), nil
	case gjson.String:
		return money.Parse(v.Str)
	default:
		return decimal.Zero, errNotNumber
	}
}
