package aggregate

import (
	"fintrack/internal/core"
)

func expenseAmount(e core.Expense) core.Money { return e.Amount }
func incomeAmount(i core.Income) core.Money   { return i.Amount }

// Expenses totals a page of expenses. stats may be nil.
func Expenses(items []core.Expense, stats *core.DashboardStats) Totals {
	t := Totals{PageLocal: Sum(items, expenseAmount)}
	if stats != nil {
		t.Authoritative = authoritative(stats.TotalExpenses)
	}
	return t
}

// Incomes totals a page of incomes. stats may be nil.
func Incomes(items []core.Income, stats *core.DashboardStats) Totals {
	t := Totals{PageLocal: Sum(items, incomeAmount)}
	if stats != nil {
		t.Authoritative = authoritative(stats.TotalIncome)
	}
	return t
}

// ExpensesByCategory groups a page of expenses by category name.
func ExpensesByCategory(items []core.Expense) []core.CategoryAmount {
	return ByCategory(items, func(e core.Expense) string {
		if e.Category == nil {
			return ""
		}
		return e.Category.Name
	}, expenseAmount)
}

// CategoryCounts counts categories per type.
func CategoryCounts(items []core.Category) map[core.CategoryType]int {
	return CountBy(items, func(c core.Category) core.CategoryType { return c.Type })
}

// RecurringSplit counts active and inactive recurring transactions.
func RecurringSplit(items []core.RecurringTransaction) (active, inactive int) {
	counts := CountBy(items, func(r core.RecurringTransaction) bool { return r.IsActive })
	return counts[true], counts[false]
}

// BankBalance totals account balances. stats may be nil.
func BankBalance(items []core.BankAccount, stats *core.DashboardStats) Totals {
	t := Totals{PageLocal: Sum(items, func(b core.BankAccount) core.Money { return b.Balance })}
	if stats != nil {
		t.Authoritative = authoritative(stats.TotalBankBalance)
	}
	return t
}

// FundSources totals fund amounts. stats may be nil.
func FundSources(items []core.FundSource, stats *core.DashboardStats) Totals {
	t := Totals{PageLocal: Sum(items, func(f core.FundSource) core.Money { return f.Amount })}
	if stats != nil {
		t.Authoritative = authoritative(stats.TotalFundSources)
	}
	return t
}

// LoanOutstanding totals remaining loan balances. stats may be nil.
func LoanOutstanding(items []core.Loan, stats *core.DashboardStats) Totals {
	t := Totals{PageLocal: Sum(items, func(l core.Loan) core.Money { return l.BalanceRemaining })}
	if stats != nil {
		t.Authoritative = authoritative(stats.TotalLoansRemaining)
	}
	return t
}

// InstallmentMonthly is the monthly outlay of ongoing installments.
func InstallmentMonthly(items []core.Installment) core.Money {
	return Sum(items, func(i core.Installment) core.Money {
		if i.Status == core.InstallmentCompleted || i.RemainingMonths() == 0 {
			return core.Money{}
		}
		return i.MonthlyAmount
	})
}

// BudgetSummary is the spent/limit picture of a page of budgets.
type BudgetSummary struct {
	Limit      Totals
	Spent      Totals
	Percent    int
	OverBudget int
	// Alerts counts budgets at or past their alert threshold.
	Alerts int
}

// Budgets summarizes a page of budgets. overview may be nil.
func Budgets(items []core.Budget, overview *core.BudgetsOverview) BudgetSummary {
	s := BudgetSummary{
		Limit: Totals{PageLocal: Sum(items, core.Budget.Limit)},
		Spent: Totals{PageLocal: Sum(items, func(b core.Budget) core.Money { return b.Spent })},
	}
	for _, b := range items {
		pct := b.Percent()
		if b.Spent.Cents > b.Limit().Cents {
			s.OverBudget++
		}
		if b.AlertThreshold > 0 && pct >= b.AlertThreshold {
			s.Alerts++
		}
	}
	if overview != nil {
		s.Limit.Authoritative = authoritative(overview.TotalBudget)
		s.Spent.Authoritative = authoritative(overview.TotalSpent)
		s.OverBudget = overview.OverBudget
	}
	s.Percent = Percent(s.Spent.Best(), s.Limit.Best())
	return s
}
