package aggregate

import (
	"testing"

	"fintrack/internal/core"
)

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func expense(cents int64, category string) core.Expense {
	e := core.Expense{Transaction: core.Transaction{Amount: money(cents)}}
	if category != "" {
		e.Category = &core.Category{Name: category}
	}
	return e
}

func TestSum(t *testing.T) {
	items := []core.Expense{expense(1250, ""), expense(750, ""), expense(1, "")}
	if got := Sum(items, expenseAmount); got.Cents != 2001 {
		t.Errorf("Sum = %d, want 2001", got.Cents)
	}
	if got := Sum([]core.Expense(nil), expenseAmount); got.Cents != 0 {
		t.Errorf("Sum(nil) = %d", got.Cents)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole int64
		want        int
	}{
		{50, 100, 50},
		{1, 3, 33},
		{150, 100, 150},
		{10, 0, 0},
		{10, -5, 0},
	}
	for _, tt := range tests {
		if got := Percent(money(tt.part), money(tt.whole)); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestTotalsBest(t *testing.T) {
	local := Totals{PageLocal: money(100)}
	if local.Best().Cents != 100 || !local.IsPartial() {
		t.Errorf("page-local only: %+v", local)
	}
	full := Totals{PageLocal: money(100), Authoritative: authoritative(money(900))}
	if full.Best().Cents != 900 || full.IsPartial() {
		t.Errorf("with authoritative: %+v", full)
	}
}

func TestExpensesUsesStatsWhenPresent(t *testing.T) {
	items := []core.Expense{expense(500, "Food"), expense(300, "Food")}
	if got := Expenses(items, nil); got.Best().Cents != 800 {
		t.Errorf("page-local = %d", got.Best().Cents)
	}
	stats := &core.DashboardStats{TotalExpenses: money(12000)}
	got := Expenses(items, stats)
	if got.PageLocal.Cents != 800 || got.Best().Cents != 12000 {
		t.Errorf("totals = %+v", got)
	}
}

func TestExpensesByCategoryKeepsOrder(t *testing.T) {
	items := []core.Expense{expense(100, "Rent"), expense(50, "Food"), expense(25, ""), expense(10, "Rent")}
	got := ExpensesByCategory(items)
	want := []core.CategoryAmount{
		{Name: "Rent", Amount: money(110)},
		{Name: "Food", Amount: money(50)},
		{Name: "(uncategorized)", Amount: money(25)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCategoryCounts(t *testing.T) {
	items := []core.Category{
		{Type: core.CategoryExpense}, {Type: core.CategoryExpense}, {Type: core.CategoryIncome},
	}
	got := CategoryCounts(items)
	if got[core.CategoryExpense] != 2 || got[core.CategoryIncome] != 1 {
		t.Errorf("counts = %v", got)
	}
}

func TestRecurringSplit(t *testing.T) {
	items := []core.RecurringTransaction{{IsActive: true}, {IsActive: false}, {IsActive: true}}
	active, inactive := RecurringSplit(items)
	if active != 2 || inactive != 1 {
		t.Errorf("split = %d/%d", active, inactive)
	}
}

func TestLoanOutstanding(t *testing.T) {
	items := []core.Loan{{BalanceRemaining: money(4000)}, {BalanceRemaining: money(0)}}
	if got := LoanOutstanding(items, nil); got.Best().Cents != 4000 {
		t.Errorf("outstanding = %d", got.Best().Cents)
	}
}

func TestInstallmentMonthlySkipsCompleted(t *testing.T) {
	items := []core.Installment{
		{MonthlyAmount: money(100), TotalMonths: 10, PaidMonths: 3, Status: core.InstallmentOngoing},
		{MonthlyAmount: money(200), TotalMonths: 5, PaidMonths: 5, Status: core.InstallmentOngoing},
		{MonthlyAmount: money(300), TotalMonths: 5, PaidMonths: 1, Status: core.InstallmentCompleted},
	}
	if got := InstallmentMonthly(items); got.Cents != 100 {
		t.Errorf("monthly = %d, want 100", got.Cents)
	}
}

func TestBudgets(t *testing.T) {
	items := []core.Budget{
		{Amount: money(10000), Spent: money(8500), AlertThreshold: 80},
		{Amount: money(5000), Spent: money(6000), AlertThreshold: 80},
		{Amount: money(5000), Spent: money(1000), RolloverEnabled: true, RolloverAmount: money(5000), AlertThreshold: 80},
	}
	s := Budgets(items, nil)
	if s.Limit.PageLocal.Cents != 25000 || s.Spent.PageLocal.Cents != 15500 {
		t.Errorf("limit/spent = %d/%d", s.Limit.PageLocal.Cents, s.Spent.PageLocal.Cents)
	}
	if s.Percent != 62 || s.OverBudget != 1 || s.Alerts != 2 {
		t.Errorf("summary = %+v", s)
	}

	overview := &core.BudgetsOverview{TotalBudget: money(40000), TotalSpent: money(10000), OverBudget: 3}
	s = Budgets(items, overview)
	if s.Percent != 25 || s.OverBudget != 3 || s.Limit.Best().Cents != 40000 {
		t.Errorf("with overview = %+v", s)
	}
}
