// Package aggregate derives summary figures from a loaded page of items.
//
// Figures computed here cover only the items on the current page. Where the
// backend serves a matching total, Totals carries both and Best prefers the
// backend's.
package aggregate

import (
	"fintrack/internal/core"
)

// Sum adds amount(item) over items.
func Sum[T any](items []T, amount func(T) core.Money) core.Money {
	var total core.Money
	for _, item := range items {
		total = total.Add(amount(item))
	}
	return total
}

// CountBy counts items per key.
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	out := make(map[K]int)
	for _, item := range items {
		out[key(item)]++
	}
	return out
}

// Percent returns part over whole in whole percent, truncated. A non-positive
// whole yields 0.
func Percent(part, whole core.Money) int {
	if whole.Cents <= 0 {
		return 0
	}
	return int(part.Cents * 100 / whole.Cents)
}

// Totals pairs a page-local figure with the authoritative one, when known.
type Totals struct {
	PageLocal     core.Money
	Authoritative *core.Money
}

// Best returns the authoritative figure if present, else the page-local one.
func (t Totals) Best() core.Money {
	if t.Authoritative != nil {
		return *t.Authoritative
	}
	return t.PageLocal
}

// IsPartial reports whether only the page-local figure is known.
func (t Totals) IsPartial() bool {
	return t.Authoritative == nil
}

func authoritative(m core.Money) *core.Money {
	return &m
}

// ByCategory groups amounts by label, keeping first-seen order.
func ByCategory[T any](items []T, label func(T) string, amount func(T) core.Money) []core.CategoryAmount {
	byName := map[string]int64{}
	order := make([]string, 0)
	for _, item := range items {
		name := label(item)
		if name == "" {
			name = "(uncategorized)"
		}
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] += amount(item).Cents
	}
	out := make([]core.CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: byName[name]}})
	}
	return out
}
