package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"fintrack/internal/core"
)

// Resource names as exposed by the backend under {base}/{name}.
const (
	Expenses              = "expenses"
	Incomes               = "incomes"
	Categories            = "categories"
	BankAccounts          = "bank-accounts"
	FundSources           = "fund-sources"
	Loans                 = "loans"
	Installments          = "installments"
	RecurringTransactions = "recurring-transactions"
	Budgets               = "budgets"
)

// ResourceNames lists every CRUD resource in display order.
var ResourceNames = []string{
	Expenses, Incomes, Categories, BankAccounts, FundSources,
	Loans, Installments, RecurringTransactions, Budgets,
}

// Resource is the REST collection of one entity type.
type Resource[T any] struct {
	client *Client
	name   string
}

func NewResource[T any](client *Client, name string) *Resource[T] {
	return &Resource[T]{client: client, name: name}
}

func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) itemPath(id int64) string {
	return r.name + "/" + strconv.FormatInt(id, 10)
}

// List issues one GET with the given query and normalizes the envelope.
func (r *Resource[T]) List(ctx context.Context, query url.Values) (Page[T], error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodGet, r.name, query, nil, &raw); err != nil {
		return Page[T]{}, err
	}
	return DecodeList[T](raw, r.client.logger), nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &raw); err != nil {
		var zero T
		return zero, err
	}
	return decodeItem[T](raw)
}

// Create POSTs payload and returns the stored entity.
func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodPost, r.name, nil, payload, &raw); err != nil {
		var zero T
		return zero, err
	}
	return decodeItem[T](raw)
}

// Update PUTs payload to the entity with the given id.
func (r *Resource[T]) Update(ctx context.Context, id int64, payload any) (T, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodPut, r.itemPath(id), nil, payload, &raw); err != nil {
		var zero T
		return zero, err
	}
	return decodeItem[T](raw)
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

// decodeItem accepts the entity itself or {data: entity}. An empty or
// unreadable body yields the zero value: the caller refetches anyway.
func decodeItem[T any](raw json.RawMessage) (T, error) {
	var zero T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return zero, nil
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if d := bytes.TrimSpace(wrapped.Data); len(d) > 0 && d[0] == '{' {
			raw = d
		}
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return zero, fmt.Errorf("decoding entity: %w", err)
	}
	return item, nil
}

// Resources groups one typed Resource per backend collection.
type Resources struct {
	Expenses              *Resource[core.Expense]
	Incomes               *Resource[core.Income]
	Categories            *Resource[core.Category]
	BankAccounts          *Resource[core.BankAccount]
	FundSources           *Resource[core.FundSource]
	Loans                 *Resource[core.Loan]
	Installments          *Resource[core.Installment]
	RecurringTransactions *Resource[core.RecurringTransaction]
	Budgets               *Resource[core.Budget]
}

func NewResources(client *Client) *Resources {
	return &Resources{
		Expenses:              NewResource[core.Expense](client, Expenses),
		Incomes:               NewResource[core.Income](client, Incomes),
		Categories:            NewResource[core.Category](client, Categories),
		BankAccounts:          NewResource[core.BankAccount](client, BankAccounts),
		FundSources:           NewResource[core.FundSource](client, FundSources),
		Loans:                 NewResource[core.Loan](client, Loans),
		Installments:          NewResource[core.Installment](client, Installments),
		RecurringTransactions: NewResource[core.RecurringTransaction](client, RecurringTransactions),
		Budgets:               NewResource[core.Budget](client, Budgets),
	}
}
