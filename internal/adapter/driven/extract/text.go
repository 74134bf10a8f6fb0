package extract

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/shopspring/decimal"
)

// A label may follow any non-alphanumeric lead-in ("💰 ", "→ ", "[rds] "), never a word.
const labelPrefix = `(?i)(?:^|[^\p{L}\p{N}])\s*(?:(?:total|potential|estimated)\s+)*`

// anchors are matched in this order on every line; a line feeds at most one field.
var anchors = []struct {
	field string
	re    *regexp.Regexp
}{
	{FieldMonthlySavings, regexp.MustCompile(labelPrefix + `monthly\s+(?:savings|waste)\s*:(.*)$`)},
	{FieldYearlySavings, regexp.MustCompile(labelPrefix + `(?:yearly|annual)\s+(?:savings|waste)\s*:(.*)$`)},
	{FieldMonthlyCost, regexp.MustCompile(labelPrefix + `(?:current\s+(?:monthly\s+)?cost|monthly\s+cost)\s*:(.*)$`)},
	{FieldYearlyCost, regexp.MustCompile(labelPrefix + `(?:current\s+)?(?:yearly|annual)\s+cost\s*:(.*)$`)},
}

var (
	errNoAmount        = errors.New("no amount after label")
	errTrailingGarbage = errors.New("amount followed by unexpected characters")

	amountPrefix = regexp.MustCompile(`(?i)^(-)?\s*(?:usd\s*)?\$?\s*(-)?((?:[0-9]{1,3}(?:,[0-9]{3})+|[0-9]+)(?:\.[0-9]+)?)`)
	itemLine     = regexp.MustCompile(`^\s*(?:[-*•]|[0-9]+[.)])\s+(.+?)\s*$`)
	periodic     = regexp.MustCompile(`(?i)\$\s*([0-9][0-9,.]*[0-9]|[0-9])\s*(?:/\s*(month|mo|year|yr)\b|per\s+(month|year)\b|(monthly|annually|yearly)\b)`)
)

// TextExtractor reads the anchor-line report every analyzer prints by default.
type TextExtractor struct {
	opts Options
}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor(opts Options) *TextExtractor {
	return &TextExtractor{opts: opts}
}

// Extract implements repository.ResultExtractor.
func (e *TextExtractor) Extract(out entity.RawOutput) entity.Figures {
	fs := newFigureSet()
	scanner := bufio.NewScanner(bytes.NewReader(out.Stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if e.anchorLine(fs, line) {
			continue
		}
		e.recommendationLine(fs, line)
	}
	if err := scanner.Err(); err != nil {
		fs.diag(FieldDocument, fmt.Sprintf("report truncated while reading: %v", err))
	}
	return fs.finish(e.opts)
}

func (e *TextExtractor) anchorLine(fs *figureSet, line string) bool {
	for _, a := range anchors {
		m := a.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if !fs.claim(a.field) {
			return true
		}
		v, err := leadingAmount(m[1])
		if err != nil {
			fs.anomaly(&types.ExtractionAnomaly{Field: a.field, Token: strings.TrimSpace(m[1]), Err: err})
			return true
		}
		fs.set(a.field, v)
		return true
	}
	return false
}

func (e *TextExtractor) recommendationLine(fs *figureSet, line string) {
	m := itemLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	body := m[1]
	matches := periodic.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return
	}
	rec := entity.Recommendation{Description: body}
	var haveMonthly, haveYearly bool
	for _, pm := range matches {
		yearly := isYearly(pm[2] + pm[3] + pm[4])
		if (yearly && haveYearly) || (!yearly && haveMonthly) {
			continue
		}
		v, err := money.Parse(pm[1])
		if err != nil {
			fs.anomaly(&types.ExtractionAnomaly{Field: FieldRecommendation, Token: pm[1], Err: err})
		}
		if yearly {
			rec.YearlySavings, haveYearly = v, true
		} else {
			rec.MonthlySavings, haveMonthly = v, true
		}
	}
	fs.recs = append(fs.recs, rec)
}

func isYearly(unit string) bool {
	switch strings.ToLower(unit) {
	case "year", "yr", "annually", "yearly":
		return true
	}
	return false
}

// leadingAmount parses the amount that opens the text after an anchor label.
func leadingAmount(rest string) (decimal.Decimal, error) {
	rest = strings.TrimSpace(rest)
	m := amountPrefix.FindStringSubmatchIndex(rest)
	if m == nil {
		return decimal.Zero, errNoAmount
	}
	tail := rest[m[1]:]
	if r, _ := utf8.DecodeRuneInString(tail); tail != "" && (unicode.IsLetter(r) || unicode.IsDigit(r)) &&
		!strings.HasPrefix(strings.ToUpper(tail), "USD") {
		return decimal.Zero, errTrailingGarbage
	}
	// "1,2a0" or "12345,678": a separator still glued to digits.
	if len(tail) > 1 && (tail[0] == ',' || tail[0] == '.') && tail[1] >= '0' && tail[1] <= '9' {
		return decimal.Zero, errTrailingGarbage
	}
	token := rest[m[6]:m[7]]
	if m[2] >= 0 || m[4] >= 0 {
		token = "-" + token
	}
	return money.Parse(token)
}
