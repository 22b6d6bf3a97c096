package sheets_test

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

func TestTransactionTable(t *testing.T) {
	items := []core.Expense{
		{Transaction: core.Transaction{
			Amount:      core.Money{Cents: 250},
			Description: "coffee",
			Date:        core.NewDate(2024, 3, 1),
			Category:    &core.Category{Name: "Food"},
			Funding:     core.BankRef(1),
		}},
		{Transaction: core.Transaction{
			Amount: core.Money{Cents: 90000},
			Date:   core.NewDate(2024, 3, 2),
		}},
	}

	table := sheets.TransactionTable(sheets.Transactions(items), nil)
	want := [][]string{
		{"2024-03-01", "coffee", "2.50", "Food", "bank#1"},
		{"2024-03-02", "", "900.00", "", "-"},
	}
	if len(table.Rows) != len(want) {
		t.Fatalf("rows = %v", table.Rows)
	}
	for i := range want {
		for j := range want[i] {
			if table.Rows[i][j] != want[i][j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, table.Rows[i][j], want[i][j])
			}
		}
	}

	labeled := sheets.TransactionTable(sheets.Transactions(items[:1]), func(core.FundingRef) string { return "Checking" })
	if labeled.Rows[0][4] != "Checking" {
		t.Errorf("funding label = %q", labeled.Rows[0][4])
	}

	store := memory.New()
	if _, err := store.WriteTable(context.Background(), "Export", table); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Table("Export")
	if got.Header[2] != "Amount" {
		t.Errorf("header = %v", got.Header)
	}
}
