package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "symbol prefix", token: "$1,200.00", want: "1200"},
		{name: "symbol suffix", token: "1,200.50$", want: "1200.5"},
		{name: "code suffix", token: "5,400.00 USD", want: "5400"},
		{name: "code prefix", token: "USD 12", want: "12"},
		{name: "space after symbol", token: "$ 99.99", want: "99.99"},
		{name: "no separators", token: "1234567.891", want: "1234567.89"},
		{name: "rounds half up", token: "$0.005", want: "0.01"},
		{name: "millions", token: "$1,234,567.00", want: "1234567"},
		{name: "bad grouping", token: "$1,2,3", wantErr: true},
		{name: "letters", token: "$N/A", wantErr: true},
		{name: "negative", token: "-$5.00", wantErr: true},
		{name: "empty", token: "$", wantErr: true},
		{name: "two dots", token: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFormat(t *testing.T) {
	require.Equal(t, "$0.00", Format(decimal.Zero))
	require.Equal(t, "$999.90", Format(decimal.RequireFromString("999.9")))
	require.Equal(t, "$1,000.00", Format(decimal.NewFromInt(1000)))
	require.Equal(t, "$6,600.00", Format(decimal.RequireFromString("6600")))
	require.Equal(t, "$1,234,567.89", Format(decimal.RequireFromString("1234567.891")))
	require.Equal(t, "-$12.50", Format(decimal.RequireFromString("-12.5")))
}

func TestPlainAndPercent(t *testing.T) {
	require.Equal(t, "6600.00", Plain(decimal.NewFromInt(6600)))
	require.Equal(t, "12.35%", Percent(decimal.RequireFromString("12.345")))
}

func TestSum(t *testing.T) {
	a := decimal.RequireFromString("0.10")
	total := Sum(a, a, a, a, a, a, a, a, a, a)
	require.True(t, total.Equal(decimal.NewFromInt(1)))
	require.True(t, Sum().IsZero())
}
