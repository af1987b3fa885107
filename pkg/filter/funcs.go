package filter

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// Median sorts values in place and returns the middle element. For an even
// count the lower of the two middle elements is returned. It panics on an
// empty slice.
func Median[T cmp.Ordered](values []T) T {
	slices.Sort(values)
	return values[(len(values)-1)/2]
}

// MedianDecimal sorts values in place and returns their median, averaging
// the two middle elements for an even count.
func MedianDecimal(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	slices.SortFunc(values, decimal.Decimal.Cmp)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return values[mid-1].Add(values[mid]).Div(decimal.NewFromInt(2))
}

// MedianNullDecimal is MedianDecimal over the valid values only. A window
// without any valid value yields null.
func MedianNullDecimal(values []decimal.NullDecimal) decimal.NullDecimal {
	valid := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		if v.Valid {
			valid = append(valid, v.Decimal)
		}
	}
	if len(valid) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(MedianDecimal(valid))
}
