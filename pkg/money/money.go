package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is the precision every amount is kept at once it enters the report.
const Cents int32 = 2

var (
	ErrEmpty    = errors.New("empty amount")
	ErrNegative = errors.New("negative amount")

	amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	groupPattern  = regexp.MustCompile(`^[0-9]{1,3}(,[0-9]{3})+(\.[0-9]+)?$`)
)

// Parse converte um token monetário ("$1,234.56", "1,234.56 USD", "USD 12") em decimal,
// arredondado para centavos. Separadores de milhar precisam estar bem formados.
func Parse(token string) (decimal.Decimal, error) {
	s := strings.TrimSpace(token)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "USD"), "USD")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "$"), "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrNegative
	}
	switch {
	case groupPattern.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case amountPattern.MatchString(s):
	default:
		return decimal.Zero, fmt.Errorf("not a currency amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(Cents), nil
}

// Format returns "$1,234.56".
func Format(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + Grouped(d.Neg())
	}
	return "$" + Grouped(d)
}

// Grouped returns the amount with thousands separators and two decimals, without a symbol.
func Grouped(d decimal.Decimal) string {
	fixed := d.StringFixed(Cents)
	intPart, decPart, _ := strings.Cut(fixed, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(digit)
		}
		intPart = b.String()
	}
	return sign + intPart + "." + decPart
}

// Plain returns the machine form with exactly two fractional digits ("1234.56").
func Plain(d decimal.Decimal) string {
	return d.StringFixed(Cents)
}

// Percent returns "12.34%".
func Percent(d decimal.Decimal) string {
	return d.StringFixed(Cents) + "%"
}

// Sum folds amounts starting from zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
