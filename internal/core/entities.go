package core

import (
	"encoding/json"
	"time"
)

// Entity is anything the backend addresses by numeric id.
type Entity interface {
	EntityID() int64
}

type (
	// Transaction is the shared shape of expenses and incomes.
	Transaction struct {
		ID          int64
		Amount      Money
		Description string
		Date        Date
		CategoryID  int64
		Category    *Category // eager-loaded relation, read only
		Funding     FundingRef
	}

	Expense struct{ Transaction }
	Income  struct{ Transaction }

	Category struct {
		ID     int64        `json:"id,omitempty"`
		Name   string       `json:"name"`
		Icon   string       `json:"icon"`
		Color  string       `json:"color"`
		Type   CategoryType `json:"type"`
		UserID *int64       `json:"user_id,omitempty"`
	}

	BankAccount struct {
		ID            int64  `json:"id,omitempty"`
		Name          string `json:"name"`
		AccountNumber string `json:"account_number"`
		Balance       Money  `json:"balance"`
	}

	FundSource struct {
		ID     int64  `json:"id,omitempty"`
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}

	Loan struct {
		ID               int64      `json:"id,omitempty"`
		LenderName       string     `json:"lender_name"`
		Amount           Money      `json:"amount"`
		BalanceRemaining Money      `json:"balance_remaining"`
		Status           LoanStatus `json:"status,omitempty"`
		DueDate          Date       `json:"due_date"`
		Description      string     `json:"description,omitempty"`
	}

	Installment struct {
		ID            int64
		ItemName      string
		TotalAmount   Money
		MonthlyAmount Money
		TotalMonths   int
		PaidMonths    int
		Status        InstallmentStatus
		StartDate     Date
		Funding       FundingRef
	}

	RecurringTransaction struct {
		ID                int64
		Name              string
		Amount            Money
		Type              CategoryType
		Frequency         Frequency
		NextDueDate       Date
		LastProcessedDate Date
		IsActive          bool
		Notify            bool
		CategoryID        int64
		Funding           FundingRef
	}

	Budget struct {
		ID              int64     `json:"id,omitempty"`
		CategoryID      int64     `json:"category_id"`
		Category        *Category `json:"category,omitempty"`
		Amount          Money     `json:"amount"`
		Spent           Money     `json:"spent"`
		RolloverEnabled bool      `json:"rollover_enabled"`
		RolloverAmount  Money     `json:"rollover_amount"`
		Month           int       `json:"month"`
		Year            int       `json:"year"`
		AlertThreshold  int       `json:"alert_threshold"`
		AlertSent       bool      `json:"alert_sent"`
	}

	// PaginationMeta describes the window a paginated list response covers.
	PaginationMeta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
		PerPage     int `json:"per_page"`
		Total       int `json:"total"`
		From        int `json:"from"`
		To          int `json:"to"`
	}
)

func (t Transaction) EntityID() int64          { return t.ID }
func (c Category) EntityID() int64             { return c.ID }
func (b BankAccount) EntityID() int64          { return b.ID }
func (f FundSource) EntityID() int64           { return f.ID }
func (l Loan) EntityID() int64                 { return l.ID }
func (i Installment) EntityID() int64          { return i.ID }
func (r RecurringTransaction) EntityID() int64 { return r.ID }
func (b Budget) EntityID() int64               { return b.ID }

// Tx returns the shared transaction part of an expense or income.
func (t Transaction) Tx() Transaction { return t }

// IsDefault reports whether the category is a system default. Defaults have
// no owner and the backend refuses to edit or delete them.
func (c Category) IsDefault() bool {
	return c.UserID == nil
}

type transactionWire struct {
	ID          int64     `json:"id,omitempty"`
	Amount      Money     `json:"amount"`
	Description *string   `json:"description"`
	Date        Date      `json:"date"`
	CategoryID  int64     `json:"category_id"`
	Category    *Category `json:"category,omitempty"`
	fundingWire
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	w := transactionWire{
		ID:          t.ID,
		Amount:      t.Amount,
		Date:        t.Date,
		CategoryID:  t.CategoryID,
		Category:    t.Category,
		fundingWire: wireFromRef(t.Funding),
	}
	if t.Description != "" {
		desc := t.Description
		w.Description = &desc
	}
	return json.Marshal(w)
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ref, err := w.fundingWire.ref()
	if err != nil {
		return err
	}
	*t = Transaction{
		ID:         w.ID,
		Amount:     w.Amount,
		Date:       w.Date,
		CategoryID: w.CategoryID,
		Category:   w.Category,
		Funding:    ref,
	}
	if w.Description != nil {
		t.Description = *w.Description
	}
	if t.CategoryID == 0 && t.Category != nil {
		t.CategoryID = t.Category.ID
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := validateDescription(t.Description, false); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return t.Funding.Validate()
}

func (c Category) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (b BankAccount) Validate() error {
	return validateName(b.Name)
}

func (f FundSource) Validate() error {
	return validateName(f.Name)
}

func (l Loan) Validate() error {
	if err := validateName(l.LenderName); err != nil {
		return err
	}
	return l.Amount.Validate()
}

// PaidAmount is how much of the loan has been repaid so far.
func (l Loan) PaidAmount() Money {
	paid := l.Amount.Sub(l.BalanceRemaining)
	if paid.Cents < 0 {
		return Money{}
	}
	return paid
}

type installmentWire struct {
	ID            int64             `json:"id,omitempty"`
	ItemName      string            `json:"item_name"`
	TotalAmount   Money             `json:"total_amount"`
	MonthlyAmount Money             `json:"monthly_amount"`
	TotalMonths   int               `json:"total_months"`
	PaidMonths    int               `json:"paid_months"`
	Status        InstallmentStatus `json:"status,omitempty"`
	StartDate     Date              `json:"start_date"`
	fundingWire
}

func (i Installment) MarshalJSON() ([]byte, error) {
	return json.Marshal(installmentWire{
		ID:            i.ID,
		ItemName:      i.ItemName,
		TotalAmount:   i.TotalAmount,
		MonthlyAmount: i.MonthlyAmount,
		TotalMonths:   i.TotalMonths,
		PaidMonths:    i.PaidMonths,
		Status:        i.Status,
		StartDate:     i.StartDate,
		fundingWire:   wireFromRef(i.Funding),
	})
}

func (i *Installment) UnmarshalJSON(data []byte) error {
	var w installmentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ref, err := w.fundingWire.ref()
	if err != nil {
		return err
	}
	*i = Installment{
		ID:            w.ID,
		ItemName:      w.ItemName,
		TotalAmount:   w.TotalAmount,
		MonthlyAmount: w.MonthlyAmount,
		TotalMonths:   w.TotalMonths,
		PaidMonths:    w.PaidMonths,
		Status:        w.Status,
		StartDate:     w.StartDate,
		Funding:       ref,
	}
	return nil
}

func (i Installment) Validate() error {
	if err := validateName(i.ItemName); err != nil {
		return err
	}
	if err := i.TotalAmount.Validate(); err != nil {
		return err
	}
	if i.TotalMonths < 1 {
		return ErrInvalidMonths
	}
	// funding is optional for installments
	if !i.Funding.IsZero() {
		return i.Funding.Validate()
	}
	return nil
}

// RemainingMonths is never negative.
func (i Installment) RemainingMonths() int {
	if i.PaidMonths >= i.TotalMonths {
		return 0
	}
	return i.TotalMonths - i.PaidMonths
}

type recurringWire struct {
	ID                int64        `json:"id,omitempty"`
	Name              string       `json:"name"`
	Amount            Money        `json:"amount"`
	Type              CategoryType `json:"type"`
	Frequency         Frequency    `json:"frequency"`
	NextDueDate       Date         `json:"next_due_date"`
	LastProcessedDate Date         `json:"last_processed_date"`
	IsActive          bool         `json:"is_active"`
	Notify            bool         `json:"notify"`
	CategoryID        int64        `json:"category_id"`
	fundingWire
}

func (r RecurringTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(recurringWire{
		ID:                r.ID,
		Name:              r.Name,
		Amount:            r.Amount,
		Type:              r.Type,
		Frequency:         r.Frequency,
		NextDueDate:       r.NextDueDate,
		LastProcessedDate: r.LastProcessedDate,
		IsActive:          r.IsActive,
		Notify:            r.Notify,
		CategoryID:        r.CategoryID,
		fundingWire:       wireFromRef(r.Funding),
	})
}

func (r *RecurringTransaction) UnmarshalJSON(data []byte) error {
	var w recurringWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ref, err := w.fundingWire.ref()
	if err != nil {
		return err
	}
	*r = RecurringTransaction{
		ID:                w.ID,
		Name:              w.Name,
		Amount:            w.Amount,
		Type:              w.Type,
		Frequency:         w.Frequency,
		NextDueDate:       w.NextDueDate,
		LastProcessedDate: w.LastProcessedDate,
		IsActive:          w.IsActive,
		Notify:            w.Notify,
		CategoryID:        w.CategoryID,
		Funding:           ref,
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if err := r.NextDueDate.Validate(); err != nil {
		return err
	}
	if r.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return r.Funding.Validate()
}

// DueWithin reports whether an active subscription falls due in the next
// days days, counting from now's calendar date.
func (r RecurringTransaction) DueWithin(now time.Time, days int) bool {
	if !r.IsActive || r.NextDueDate.IsZero() {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !r.NextDueDate.After(today.AddDate(0, 0, days))
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return ErrInvalidAmount
	}
	return nil
}

// Limit is the budget amount plus whatever rolled over from last month.
func (b Budget) Limit() Money {
	if !b.RolloverEnabled {
		return b.Amount
	}
	return b.Amount.Add(b.RolloverAmount)
}

// Remaining can go negative when the budget is overspent.
func (b Budget) Remaining() Money {
	return b.Limit().Sub(b.Spent)
}

// Percent is spent over limit, in whole percent.
func (b Budget) Percent() int {
	limit := b.Limit()
	if limit.Cents <= 0 {
		return 0
	}
	return int(b.Spent.Cents * 100 / limit.Cents)
}
