package tui

import (
	"fmt"
	"strconv"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

func idCol[T core.Entity]() Column[T] {
	return Column[T]{Title: "ID", Width: 5, Value: func(item T) string { return strconv.FormatInt(item.EntityID(), 10) }}
}

func categoryName(c *core.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func transactionColumns[T interface {
	core.Entity
	Tx() core.Transaction
}]() []Column[T] {
	return []Column[T]{
		idCol[T](),
		{Title: "Date", Width: 10, Value: func(item T) string { return item.Tx().Date.String() }},
		{Title: "Description", Width: 28, Value: func(item T) string { return item.Tx().Description }},
		{Title: "Amount", Width: 11, Value: func(item T) string { return item.Tx().Amount.String() }},
		{Title: "Category", Width: 16, Value: func(item T) string { return categoryName(item.Tx().Category) }},
		{Title: "Funding", Width: 10, Value: func(item T) string { return item.Tx().Funding.String() }},
	}
}

func ExpenseColumns() []Column[core.Expense] { return transactionColumns[core.Expense]() }
func IncomeColumns() []Column[core.Income]   { return transactionColumns[core.Income]() }

func ExpenseSummary(items []core.Expense) string {
	return fmt.Sprintf("Page total: %s", aggregate.Expenses(items, nil).PageLocal)
}

func IncomeSummary(items []core.Income) string {
	return fmt.Sprintf("Page total: %s", aggregate.Incomes(items, nil).PageLocal)
}

func CategoryColumns() []Column[core.Category] {
	return []Column[core.Category]{
		idCol[core.Category](),
		{Title: "Name", Width: 24, Value: func(c core.Category) string { return c.Name }},
		{Title: "Type", Width: 8, Value: func(c core.Category) string { return string(c.Type) }},
		{Title: "Owner", Width: 8, Value: func(c core.Category) string {
			if c.IsDefault() {
				return "default"
			}
			return "mine"
		}},
	}
}

func CategorySummary(items []core.Category) string {
	counts := aggregate.CategoryCounts(items)
	return fmt.Sprintf("Expense: %d · Income: %d", counts[core.CategoryExpense], counts[core.CategoryIncome])
}

func BankAccountColumns() []Column[core.BankAccount] {
	return []Column[core.BankAccount]{
		idCol[core.BankAccount](),
		{Title: "Name", Width: 24, Value: func(b core.BankAccount) string { return b.Name }},
		{Title: "Number", Width: 18, Value: func(b core.BankAccount) string { return b.AccountNumber }},
		{Title: "Balance", Width: 12, Value: func(b core.BankAccount) string { return b.Balance.String() }},
	}
}

func BankAccountSummary(items []core.BankAccount) string {
	return fmt.Sprintf("Page balance: %s", aggregate.BankBalance(items, nil).PageLocal)
}

func FundSourceColumns() []Column[core.FundSource] {
	return []Column[core.FundSource]{
		idCol[core.FundSource](),
		{Title: "Name", Width: 24, Value: func(f core.FundSource) string { return f.Name }},
		{Title: "Amount", Width: 12, Value: func(f core.FundSource) string { return f.Amount.String() }},
	}
}

func FundSourceSummary(items []core.FundSource) string {
	return fmt.Sprintf("Page total: %s", aggregate.FundSources(items, nil).PageLocal)
}

func LoanColumns() []Column[core.Loan] {
	return []Column[core.Loan]{
		idCol[core.Loan](),
		{Title: "Lender", Width: 20, Value: func(l core.Loan) string { return l.LenderName }},
		{Title: "Amount", Width: 11, Value: func(l core.Loan) string { return l.Amount.String() }},
		{Title: "Remaining", Width: 11, Value: func(l core.Loan) string { return l.BalanceRemaining.String() }},
		{Title: "Status", Width: 14, Value: func(l core.Loan) string { return string(l.Status) }},
		{Title: "Due", Width: 10, Value: func(l core.Loan) string { return l.DueDate.String() }},
	}
}

func LoanSummary(items []core.Loan) string {
	return fmt.Sprintf("Outstanding on page: %s", aggregate.LoanOutstanding(items, nil).PageLocal)
}

func InstallmentColumns() []Column[core.Installment] {
	return []Column[core.Installment]{
		idCol[core.Installment](),
		{Title: "Item", Width: 20, Value: func(i core.Installment) string { return i.ItemName }},
		{Title: "Monthly", Width: 10, Value: func(i core.Installment) string { return i.MonthlyAmount.String() }},
		{Title: "Paid", Width: 7, Value: func(i core.Installment) string {
			return fmt.Sprintf("%d/%d", i.PaidMonths, i.TotalMonths)
		}},
		{Title: "Status", Width: 10, Value: func(i core.Installment) string { return string(i.Status) }},
	}
}

func InstallmentSummary(items []core.Installment) string {
	return fmt.Sprintf("Monthly outlay on page: %s", aggregate.InstallmentMonthly(items))
}

func RecurringColumns() []Column[core.RecurringTransaction] {
	return []Column[core.RecurringTransaction]{
		idCol[core.RecurringTransaction](),
		{Title: "Name", Width: 20, Value: func(r core.RecurringTransaction) string { return r.Name }},
		{Title: "Amount", Width: 10, Value: func(r core.RecurringTransaction) string { return r.Amount.String() }},
		{Title: "Every", Width: 8, Value: func(r core.RecurringTransaction) string { return string(r.Frequency) }},
		{Title: "Next due", Width: 10, Value: func(r core.RecurringTransaction) string { return r.NextDueDate.String() }},
		{Title: "Active", Width: 6, Value: func(r core.RecurringTransaction) string { return strconv.FormatBool(r.IsActive) }},
	}
}

func RecurringSummary(items []core.RecurringTransaction) string {
	active, inactive := aggregate.RecurringSplit(items)
	return fmt.Sprintf("Active: %d · Inactive: %d", active, inactive)
}

func BudgetColumns() []Column[core.Budget] {
	return []Column[core.Budget]{
		idCol[core.Budget](),
		{Title: "Category", Width: 18, Value: func(b core.Budget) string { return categoryName(b.Category) }},
		{Title: "Period", Width: 7, Value: func(b core.Budget) string { return fmt.Sprintf("%02d/%d", b.Month, b.Year) }},
		{Title: "Limit", Width: 10, Value: func(b core.Budget) string { return b.Limit().String() }},
		{Title: "Spent", Width: 10, Value: func(b core.Budget) string { return b.Spent.String() }},
		{Title: "Used", Width: 5, Value: func(b core.Budget) string { return fmt.Sprintf("%d%%", b.Percent()) }},
	}
}

func BudgetSummary(items []core.Budget) string {
	s := aggregate.Budgets(items, nil)
	return fmt.Sprintf("Spent %s of %s (%d%%) · Over budget: %d", s.Spent.PageLocal, s.Limit.PageLocal, s.Percent, s.OverBudget)
}
