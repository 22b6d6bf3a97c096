package core

import (
	"errors"
	"fmt"
)

// FundingKind names the account a transaction debits or credits.
type FundingKind string

const (
	FundingNone FundingKind = ""
	FundingBank FundingKind = "bank"
	FundingFund FundingKind = "fund"
	FundingLoan FundingKind = "loan"
)

var (
	ErrAmbiguousFunding = errors.New("more than one funding source set")
	ErrMissingFunding   = errors.New("missing funding source")
)

// FundingRef is exactly one of a bank account, a fund source or a loan.
type FundingRef struct {
	Kind FundingKind
	ID   int64
}

func BankRef(id int64) FundingRef { return FundingRef{Kind: FundingBank, ID: id} }
func FundRef(id int64) FundingRef { return FundingRef{Kind: FundingFund, ID: id} }
func LoanRef(id int64) FundingRef { return FundingRef{Kind: FundingLoan, ID: id} }

// ParseFundingKind maps the source_type filter/form value to a kind.
func ParseFundingKind(s string) (FundingKind, error) {
	switch FundingKind(s) {
	case FundingBank, FundingFund, FundingLoan:
		return FundingKind(s), nil
	case FundingNone:
		return FundingNone, nil
	}
	return FundingNone, fmt.Errorf("unknown source type %q", s)
}

func (r FundingRef) IsZero() bool {
	return r.Kind == FundingNone
}

func (r FundingRef) Validate() error {
	switch r.Kind {
	case FundingBank, FundingFund, FundingLoan:
	case FundingNone:
		return ErrMissingFunding
	default:
		return fmt.Errorf("unknown source type %q", r.Kind)
	}
	if r.ID <= 0 {
		return ErrMissingFunding
	}
	return nil
}

func (r FundingRef) String() string {
	if r.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// fundingWire is how the backend serializes a FundingRef: three nullable
// foreign keys of which at most one is set.
type fundingWire struct {
	BankAccountID *int64 `json:"bank_account_id"`
	FundSourceID  *int64 `json:"fund_source_id"`
	LoanID        *int64 `json:"loan_id"`
}

func (w fundingWire) ref() (FundingRef, error) {
	var out FundingRef
	set := 0
	if w.BankAccountID != nil {
		out = BankRef(*w.BankAccountID)
		set++
	}
	if w.FundSourceID != nil {
		out = FundRef(*w.FundSourceID)
		set++
	}
	if w.LoanID != nil {
		out = LoanRef(*w.LoanID)
		set++
	}
	if set > 1 {
		return FundingRef{}, ErrAmbiguousFunding
	}
	return out, nil
}

func wireFromRef(r FundingRef) fundingWire {
	id := r.ID
	switch r.Kind {
	case FundingBank:
		return fundingWire{BankAccountID: &id}
	case FundingFund:
		return fundingWire{FundSourceID: &id}
	case FundingLoan:
		return fundingWire{LoanID: &id}
	}
	return fundingWire{}
}
