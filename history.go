package nexus

import (
	"fmt"
	"slices"
	"strings"
)

// SortKey is a column the history can be ordered by.
type SortKey string

const (
	ByDate     SortKey = "date"
	ByQuantity SortKey = "quantity"
	ByAmount   SortKey = "amount"
	ByProfit   SortKey = "profit"
)

// SortKeys returns every supported sort key.
func SortKeys() []SortKey { return []SortKey{ByDate, ByQuantity, ByAmount, ByProfit} }

// ParseSortKey parses a sort key, "" being ByDate.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ByDate, nil
	case ByDate, ByQuantity, ByAmount, ByProfit:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q, want one of %v", s, SortKeys())
	}
}

// SortEntries returns a copy of entries ordered by key. Ties keep the
// chronological order of the replay. Entries without a realized profit sort
// as zero when ordering by profit.
func SortEntries(entries []Entry, key SortKey, ascending bool) []Entry {
	sorted := slices.Clone(entries)
	cmpKey := func(a, b Entry) int {
		switch key {
		case ByQuantity:
			return a.Quantity.Decimal().Cmp(b.Quantity.Decimal())
		case ByAmount:
			return a.Amount.Decimal().Cmp(b.Amount.Decimal())
		case ByProfit:
			return a.RealizedProfit.Decimal().Cmp(b.RealizedProfit.Decimal())
		default:
			return 0
		}
	}
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		c := cmpKey(a, b)
		if c == 0 {
			c = compareChronological(a.Transaction, b.Transaction)
		}
		if !ascending {
			c = -c
		}
		return c
	})
	return sorted
}
