package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"fintrack/internal/core"
)

// DashboardStats fetches the authoritative totals.
func (c *Client) DashboardStats(ctx context.Context) (core.DashboardStats, error) {
	var raw dataOr[core.DashboardStats]
	if err := c.Do(ctx, http.MethodGet, "dashboard/stats", nil, nil, &raw); err != nil {
		return core.DashboardStats{}, err
	}
	return raw.value(), nil
}

// BudgetsOverview fetches the monthly budget summary. Zero month or year
// lets the server pick the current one.
func (c *Client) BudgetsOverview(ctx context.Context, month, year int) (core.BudgetsOverview, error) {
	query := url.Values{}
	if month > 0 {
		query.Set("month", strconv.Itoa(month))
	}
	if year > 0 {
		query.Set("year", strconv.Itoa(year))
	}
	var raw dataOr[core.BudgetsOverview]
	if err := c.Do(ctx, http.MethodGet, "budgets-overview", query, nil, &raw); err != nil {
		return core.BudgetsOverview{}, err
	}
	return raw.value(), nil
}

// RepayLoan records a repayment against a loan.
func (c *Client) RepayLoan(ctx context.Context, id int64, amount core.Money) error {
	body := struct {
		Amount core.Money `json:"amount"`
	}{amount}
	return c.Do(ctx, http.MethodPost, Loans+"/"+strconv.FormatInt(id, 10)+"/repay", nil, body, nil)
}

// PayInstallment marks the next month of an installment plan as paid.
func (c *Client) PayInstallment(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPost, Installments+"/"+strconv.FormatInt(id, 10)+"/pay", nil, nil, nil)
}

// ToggleRecurring flips a recurring transaction between active and paused.
func (c *Client) ToggleRecurring(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPost, RecurringTransactions+"/"+strconv.FormatInt(id, 10)+"/toggle", nil, nil, nil)
}

// dataOr decodes either a bare object or one wrapped as {data: {...}}.
type dataOr[T any] struct{ v T }

func (d *dataOr[T]) UnmarshalJSON(b []byte) error {
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil {
		if inner := bytes.TrimSpace(wrapped.Data); len(inner) > 0 && inner[0] == '{' {
			return json.Unmarshal(inner, &d.v)
		}
	}
	return json.Unmarshal(b, &d.v)
}

func (d dataOr[T]) value() T { return d.v }
