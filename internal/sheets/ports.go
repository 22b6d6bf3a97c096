// Package sheets exports a loaded list page as a table of rows.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Table is a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// TableWriter replaces the contents of a named sheet with a table.
type TableWriter interface {
	// WriteTable returns a reference to the range written.
	WriteTable(ctx context.Context, sheet string, t Table) (ref string, err error)
}

// TransactionHeader is the column order of exported expenses and incomes.
var TransactionHeader = []string{"Date", "Description", "Amount", "Category", "Funding"}

// FundingLabel names a funding source for display.
type FundingLabel func(core.FundingRef) string

// TransactionTable builds the export table for a page of transactions.
// A nil label renders funding as kind#id.
func TransactionTable(items []core.Transaction, label FundingLabel) Table {
	if label == nil {
		label = core.FundingRef.String
	}
	rows := make([][]string, 0, len(items))
	for _, tx := range items {
		category := ""
		if tx.Category != nil {
			category = tx.Category.Name
		}
		rows = append(rows, []string{
			tx.Date.String(),
			tx.Description,
			tx.Amount.String(),
			category,
			label(tx.Funding),
		})
	}
	return Table{Header: TransactionHeader, Rows: rows}
}

// Transactions extracts the shared transaction of expenses or incomes.
func Transactions[T interface{ Tx() core.Transaction }](items []T) []core.Transaction {
	out := make([]core.Transaction, len(items))
	for i, item := range items {
		out[i] = item.Tx()
	}
	return out
}
