package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Amount Money  `json:"amount"`
}

// DashboardStats are the authoritative totals served by /dashboard/stats.
type DashboardStats struct {
	TotalIncome         Money            `json:"total_income"`
	TotalExpenses       Money            `json:"total_expenses"`
	NetBalance          Money            `json:"net_balance"`
	TotalBankBalance    Money            `json:"total_bank_balance"`
	TotalFundSources    Money            `json:"total_fund_sources"`
	TotalLoansRemaining Money            `json:"total_loans_remaining"`
	ExpensesByCategory  []CategoryAmount `json:"expenses_by_category"`
}

// BudgetsOverview is the authoritative monthly budget summary served by
// /budgets-overview.
type BudgetsOverview struct {
	Month       int   `json:"month"`
	Year        int   `json:"year"`
	TotalBudget Money `json:"total_budget"`
	TotalSpent  Money `json:"total_spent"`
	Remaining   Money `json:"remaining"`
	OverBudget  int   `json:"over_budget_count"`
}
