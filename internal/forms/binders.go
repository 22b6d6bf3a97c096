package forms

import (
	"strconv"
	"unicode/utf8"

	"fintrack/internal/core"
)

const maxTextLen = 255

func (p *parser) text(field string, required bool) string {
	var v string
	if required {
		v = p.required(field)
	} else {
		v = p.str(field)
	}
	if utf8.RuneCountInString(v) > maxTextLen {
		p.errs.Add(field, "must be at most 255 characters")
	}
	return v
}

// TransactionBinder binds expenses and incomes; both share one shape.
type TransactionBinder struct {
	Now Clock
}

func (TransactionBinder) Fields() []string {
	return []string{FieldAmount, FieldDescription, FieldDate, FieldCategoryID, FieldSourceType, FieldSourceID}
}

func (b TransactionBinder) Blank() Form {
	return newForm(map[string]string{
		FieldAmount:      "",
		FieldDescription: "",
		FieldDate:        b.Now.today(),
		FieldCategoryID:  "",
		FieldSourceType:  "",
		FieldSourceID:    "",
	})
}

func (TransactionBinder) fromTransaction(t core.Transaction) Form {
	values := map[string]string{
		FieldAmount:      moneyString(t.Amount),
		FieldDescription: t.Description,
		FieldDate:        dateString(t.Date),
		FieldCategoryID:  idString(t.CategoryID),
	}
	fundingFields(values, t.Funding)
	f := newForm(values)
	f.EditID = t.ID
	return f
}

func (TransactionBinder) transaction(form Form) (core.Transaction, Errors) {
	p := newParser(form)
	t := core.Transaction{
		ID:          form.EditID,
		Amount:      p.money(FieldAmount, true),
		Description: p.text(FieldDescription, false),
		Date:        p.date(FieldDate, true),
		CategoryID:  p.id(FieldCategoryID, true),
		Funding:     p.funding(true),
	}
	p.validate(t.Validate(), map[error]string{
		core.ErrInvalidAmount:   FieldAmount,
		core.ErrMissingDate:     FieldDate,
		core.ErrMissingCategory: FieldCategoryID,
		core.ErrMissingFunding:  FieldSourceType,
	})
	return t, p.result()
}

// ExpenseBinder binds core.Expense.
type ExpenseBinder struct{ TransactionBinder }

func (b ExpenseBinder) FromEntity(e core.Expense) Form { return b.fromTransaction(e.Transaction) }

func (b ExpenseBinder) Payload(form Form) (core.Expense, Errors) {
	t, errs := b.transaction(form)
	return core.Expense{Transaction: t}, errs
}

// IncomeBinder binds core.Income.
type IncomeBinder struct{ TransactionBinder }

func (b IncomeBinder) FromEntity(i core.Income) Form { return b.fromTransaction(i.Transaction) }

func (b IncomeBinder) Payload(form Form) (core.Income, Errors) {
	t, errs := b.transaction(form)
	return core.Income{Transaction: t}, errs
}

// CategoryBinder binds core.Category.
type CategoryBinder struct{}

const (
	FieldIcon  = "icon"
	FieldColor = "color"
	FieldType  = "type"
)

func (CategoryBinder) Fields() []string {
	return []string{FieldName, FieldType, FieldIcon, FieldColor}
}

func (CategoryBinder) Blank() Form {
	return newForm(map[string]string{
		FieldName:  "",
		FieldType:  string(core.CategoryExpense),
		FieldIcon:  "",
		FieldColor: "#6366f1",
	})
}

func (CategoryBinder) FromEntity(c core.Category) Form {
	f := newForm(map[string]string{
		FieldName:  c.Name,
		FieldType:  string(c.Type),
		FieldIcon:  c.Icon,
		FieldColor: c.Color,
	})
	f.EditID = c.ID
	return f
}

func (CategoryBinder) Payload(form Form) (core.Category, Errors) {
	p := newParser(form)
	c := core.Category{
		ID:    form.EditID,
		Name:  p.text(FieldName, true),
		Type:  core.CategoryType(p.str(FieldType)),
		Icon:  p.str(FieldIcon),
		Color: p.str(FieldColor),
	}
	p.validate(c.Validate(), map[error]string{
		core.ErrEmptyName:   FieldName,
		core.ErrInvalidType: FieldType,
	})
	return c, p.result()
}

// BankAccountBinder binds core.BankAccount.
type BankAccountBinder struct{}

const (
	FieldAccountNumber = "account_number"
	FieldBalance       = "balance"
)

func (BankAccountBinder) Fields() []string {
	return []string{FieldName, FieldAccountNumber, FieldBalance}
}

func (BankAccountBinder) Blank() Form {
	return newForm(map[string]string{FieldName: "", FieldAccountNumber: "", FieldBalance: "0.00"})
}

func (BankAccountBinder) FromEntity(a core.BankAccount) Form {
	f := newForm(map[string]string{
		FieldName:          a.Name,
		FieldAccountNumber: a.AccountNumber,
		FieldBalance:       moneyString(a.Balance),
	})
	f.EditID = a.ID
	return f
}

func (BankAccountBinder) Payload(form Form) (core.BankAccount, Errors) {
	p := newParser(form)
	a := core.BankAccount{
		ID:            form.EditID,
		Name:          p.text(FieldName, true),
		AccountNumber: p.text(FieldAccountNumber, false),
		Balance:       p.balance(FieldBalance),
	}
	p.validate(a.Validate(), map[error]string{core.ErrEmptyName: FieldName})
	return a, p.result()
}

// FundSourceBinder binds core.FundSource.
type FundSourceBinder struct{}

func (FundSourceBinder) Fields() []string { return []string{FieldName, FieldAmount} }

func (FundSourceBinder) Blank() Form {
	return newForm(map[string]string{FieldName: "", FieldAmount: "0.00"})
}

func (FundSourceBinder) FromEntity(s core.FundSource) Form {
	f := newForm(map[string]string{FieldName: s.Name, FieldAmount: moneyString(s.Amount)})
	f.EditID = s.ID
	return f
}

func (FundSourceBinder) Payload(form Form) (core.FundSource, Errors) {
	p := newParser(form)
	s := core.FundSource{
		ID:     form.EditID,
		Name:   p.text(FieldName, true),
		Amount: p.balance(FieldAmount),
	}
	p.validate(s.Validate(), map[error]string{core.ErrEmptyName: FieldName})
	return s, p.result()
}

// LoanBinder binds core.Loan.
type LoanBinder struct{}

const (
	FieldLenderName       = "lender_name"
	FieldBalanceRemaining = "balance_remaining"
	FieldDueDate          = "due_date"
)

func (LoanBinder) Fields() []string {
	return []string{FieldLenderName, FieldAmount, FieldBalanceRemaining, FieldDueDate, FieldDescription}
}

func (LoanBinder) Blank() Form {
	return newForm(map[string]string{
		FieldLenderName:       "",
		FieldAmount:           "",
		FieldBalanceRemaining: "",
		FieldDueDate:          "",
		FieldDescription:      "",
	})
}

func (LoanBinder) FromEntity(l core.Loan) Form {
	f := newForm(map[string]string{
		FieldLenderName:       l.LenderName,
		FieldAmount:           moneyString(l.Amount),
		FieldBalanceRemaining: moneyString(l.BalanceRemaining),
		FieldDueDate:          dateString(l.DueDate),
		FieldDescription:      l.Description,
	})
	f.EditID = l.ID
	return f
}

// Payload defaults the remaining balance to the full amount on create.
func (LoanBinder) Payload(form Form) (core.Loan, Errors) {
	p := newParser(form)
	l := core.Loan{
		ID:          form.EditID,
		LenderName:  p.text(FieldLenderName, true),
		Amount:      p.money(FieldAmount, true),
		DueDate:     p.date(FieldDueDate, false),
		Description: p.text(FieldDescription, false),
	}
	if p.str(FieldBalanceRemaining) == "" {
		l.BalanceRemaining = l.Amount
	} else {
		l.BalanceRemaining = p.balance(FieldBalanceRemaining)
		if l.BalanceRemaining.Cents < 0 || l.BalanceRemaining.Cents > l.Amount.Cents {
			p.errs.Add(FieldBalanceRemaining, "must be between 0 and the loan amount")
		}
	}
	p.validate(l.Validate(), map[error]string{
		core.ErrEmptyName:     FieldLenderName,
		core.ErrInvalidAmount: FieldAmount,
	})
	return l, p.result()
}

// InstallmentBinder binds core.Installment.
type InstallmentBinder struct {
	Now Clock
}

const (
	FieldItemName      = "item_name"
	FieldTotalAmount   = "total_amount"
	FieldMonthlyAmount = "monthly_amount"
	FieldTotalMonths   = "total_months"
	FieldPaidMonths    = "paid_months"
	FieldStartDate     = "start_date"
)

func (InstallmentBinder) Fields() []string {
	return []string{FieldItemName, FieldTotalAmount, FieldMonthlyAmount, FieldTotalMonths, FieldPaidMonths, FieldStartDate, FieldSourceType, FieldSourceID}
}

func (b InstallmentBinder) Blank() Form {
	return newForm(map[string]string{
		FieldItemName:      "",
		FieldTotalAmount:   "",
		FieldMonthlyAmount: "",
		FieldTotalMonths:   "12",
		FieldPaidMonths:    "0",
		FieldStartDate:     b.Now.today(),
		FieldSourceType:    "",
		FieldSourceID:      "",
	})
}

func (InstallmentBinder) FromEntity(i core.Installment) Form {
	values := map[string]string{
		FieldItemName:      i.ItemName,
		FieldTotalAmount:   moneyString(i.TotalAmount),
		FieldMonthlyAmount: moneyString(i.MonthlyAmount),
		FieldTotalMonths:   strconv.Itoa(i.TotalMonths),
		FieldPaidMonths:    strconv.Itoa(i.PaidMonths),
		FieldStartDate:     dateString(i.StartDate),
	}
	fundingFields(values, i.Funding)
	f := newForm(values)
	f.EditID = i.ID
	return f
}

// Payload derives the monthly amount from the total when left blank,
// rounding up so the plan never falls short.
func (InstallmentBinder) Payload(form Form) (core.Installment, Errors) {
	p := newParser(form)
	i := core.Installment{
		ID:          form.EditID,
		ItemName:    p.text(FieldItemName, true),
		TotalAmount: p.money(FieldTotalAmount, true),
		TotalMonths: p.integer(FieldTotalMonths, 1, 600),
		StartDate:   p.date(FieldStartDate, true),
		Funding:     p.funding(false),
	}
	if p.str(FieldPaidMonths) != "" {
		i.PaidMonths = p.integer(FieldPaidMonths, 0, 600)
	}
	if p.str(FieldMonthlyAmount) != "" {
		i.MonthlyAmount = p.money(FieldMonthlyAmount, true)
	} else if i.TotalMonths > 0 {
		months := int64(i.TotalMonths)
		i.MonthlyAmount = core.Money{Cents: (i.TotalAmount.Cents + months - 1) / months}
	}
	if i.TotalMonths > 0 && i.PaidMonths > i.TotalMonths {
		p.errs.Add(FieldPaidMonths, "cannot exceed total months")
	}
	p.validate(i.Validate(), map[error]string{
		core.ErrEmptyName:      FieldItemName,
		core.ErrInvalidAmount:  FieldTotalAmount,
		core.ErrInvalidMonths:  FieldTotalMonths,
		core.ErrMissingFunding: FieldSourceID,
	})
	return i, p.result()
}

// RecurringBinder binds core.RecurringTransaction.
type RecurringBinder struct {
	Now Clock
}

const (
	FieldFrequency   = "frequency"
	FieldNextDueDate = "next_due_date"
	FieldIsActive    = "is_active"
	FieldNotify      = "notify"
)

func (RecurringBinder) Fields() []string {
	return []string{FieldName, FieldAmount, FieldType, FieldFrequency, FieldNextDueDate, FieldCategoryID, FieldSourceType, FieldSourceID, FieldIsActive, FieldNotify}
}

func (b RecurringBinder) Blank() Form {
	return newForm(map[string]string{
		FieldName:        "",
		FieldAmount:      "",
		FieldType:        string(core.CategoryExpense),
		FieldFrequency:   string(core.Monthly),
		FieldNextDueDate: b.Now.today(),
		FieldCategoryID:  "",
		FieldSourceType:  "",
		FieldSourceID:    "",
		FieldIsActive:    "true",
		FieldNotify:      "false",
	})
}

func (RecurringBinder) FromEntity(r core.RecurringTransaction) Form {
	values := map[string]string{
		FieldName:        r.Name,
		FieldAmount:      moneyString(r.Amount),
		FieldType:        string(r.Type),
		FieldFrequency:   string(r.Frequency),
		FieldNextDueDate: dateString(r.NextDueDate),
		FieldCategoryID:  idString(r.CategoryID),
		FieldIsActive:    boolString(r.IsActive),
		FieldNotify:      boolString(r.Notify),
	}
	fundingFields(values, r.Funding)
	f := newForm(values)
	f.EditID = r.ID
	return f
}

func (RecurringBinder) Payload(form Form) (core.RecurringTransaction, Errors) {
	p := newParser(form)
	r := core.RecurringTransaction{
		ID:          form.EditID,
		Name:        p.text(FieldName, true),
		Amount:      p.money(FieldAmount, true),
		Type:        core.CategoryType(p.str(FieldType)),
		Frequency:   core.Frequency(p.str(FieldFrequency)),
		NextDueDate: p.date(FieldNextDueDate, true),
		CategoryID:  p.id(FieldCategoryID, true),
		Funding:     p.funding(true),
		IsActive:    p.boolean(FieldIsActive),
		Notify:      p.boolean(FieldNotify),
	}
	if !r.Type.Valid() {
		p.errs.Add(FieldType, "must be income or expense")
	}
	p.validate(r.Validate(), map[error]string{
		core.ErrEmptyName:        FieldName,
		core.ErrInvalidAmount:    FieldAmount,
		core.ErrInvalidFrequency: FieldFrequency,
		core.ErrMissingDate:      FieldNextDueDate,
		core.ErrMissingCategory:  FieldCategoryID,
		core.ErrMissingFunding:   FieldSourceType,
	})
	return r, p.result()
}

// BudgetBinder binds core.Budget.
type BudgetBinder struct {
	Now Clock
}

const (
	FieldMonth           = "month"
	FieldYear            = "year"
	FieldRolloverEnabled = "rollover_enabled"
	FieldAlertThreshold  = "alert_threshold"
)

func (BudgetBinder) Fields() []string {
	return []string{FieldCategoryID, FieldAmount, FieldMonth, FieldYear, FieldRolloverEnabled, FieldAlertThreshold}
}

func (b BudgetBinder) Blank() Form {
	month, year := b.Now.month()
	return newForm(map[string]string{
		FieldCategoryID:      "",
		FieldAmount:          "",
		FieldMonth:           strconv.Itoa(month),
		FieldYear:            strconv.Itoa(year),
		FieldRolloverEnabled: "false",
		FieldAlertThreshold:  "80",
	})
}

func (BudgetBinder) FromEntity(bg core.Budget) Form {
	f := newForm(map[string]string{
		FieldCategoryID:      idString(bg.CategoryID),
		FieldAmount:          moneyString(bg.Amount),
		FieldMonth:           strconv.Itoa(bg.Month),
		FieldYear:            strconv.Itoa(bg.Year),
		FieldRolloverEnabled: boolString(bg.RolloverEnabled),
		FieldAlertThreshold:  strconv.Itoa(bg.AlertThreshold),
	})
	f.EditID = bg.ID
	return f
}

func (BudgetBinder) Payload(form Form) (core.Budget, Errors) {
	p := newParser(form)
	bg := core.Budget{
		ID:              form.EditID,
		CategoryID:      p.id(FieldCategoryID, true),
		Amount:          p.money(FieldAmount, true),
		Month:           p.integer(FieldMonth, 1, 12),
		Year:            p.integer(FieldYear, 2000, 2100),
		RolloverEnabled: p.boolean(FieldRolloverEnabled),
		AlertThreshold:  p.integer(FieldAlertThreshold, 0, 100),
	}
	p.validate(bg.Validate(), map[error]string{
		core.ErrMissingCategory: FieldCategoryID,
		core.ErrInvalidAmount:   FieldAmount,
		core.ErrInvalidMonth:    FieldMonth,
	})
	return bg, p.result()
}

// Compile-time checks.
var (
	_ Binder[core.Expense]              = ExpenseBinder{}
	_ Binder[core.Income]               = IncomeBinder{}
	_ Binder[core.Category]             = CategoryBinder{}
	_ Binder[core.BankAccount]          = BankAccountBinder{}
	_ Binder[core.FundSource]           = FundSourceBinder{}
	_ Binder[core.Loan]                 = LoanBinder{}
	_ Binder[core.Installment]          = InstallmentBinder{}
	_ Binder[core.RecurringTransaction] = RecurringBinder{}
	_ Binder[core.Budget]               = BudgetBinder{}
)
