package worker

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/listview"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// StatsReader serves the authoritative dashboard totals.
type StatsReader interface {
	DashboardStats(ctx context.Context) (core.DashboardStats, error)
}

// maxPages bounds a full export of one resource.
const maxPages = 50

// SyncWorker reacts to mutation events: it drops stale lookups, refreshes
// the dashboard totals and mirrors expenses and incomes into the export
// sheets.
type SyncWorker struct {
	stats     StatsReader
	resources *api.Resources
	// writer is nil when sheet export is disabled.
	writer  sheets.TableWriter
	lookups *listview.Lookups
	perPage int
	logger  *applog.Logger

	mu      sync.Mutex
	last    core.DashboardStats
	handled int
}

func NewSyncWorker(stats StatsReader, resources *api.Resources, writer sheets.TableWriter, lookups *listview.Lookups, perPage int, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	if perPage <= 0 {
		perPage = 100
	}
	return &SyncWorker{
		stats:     stats,
		resources: resources,
		writer:    writer,
		lookups:   lookups,
		perPage:   perPage,
		logger:    logger.WithComponent(applog.ComponentWatch),
	}
}

// HandleMutation processes a single mutation event from AMQP.
func (w *SyncWorker) HandleMutation(ctx context.Context, evt *amqp.MutationEvent) error {
	w.logger.InfoContext(ctx, "Processing mutation event",
		applog.NewFields().WithResource(evt.Resource, evt.ID).ToSlice()...)

	switch evt.Resource {
	case api.Categories, api.BankAccounts, api.FundSources, api.Loans:
		if w.lookups != nil {
			w.lookups.Invalidate()
		}
	case api.Expenses, api.Incomes:
		if w.writer != nil {
			if err := w.syncResource(ctx, evt.Resource); err != nil {
				return fmt.Errorf("sync %s to sheets: %w", evt.Resource, err)
			}
		}
	}

	if err := w.RefreshStats(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	w.handled++
	w.mu.Unlock()
	return nil
}

// RefreshStats fetches and logs the dashboard totals.
func (w *SyncWorker) RefreshStats(ctx context.Context) error {
	stats, err := w.stats.DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("refresh dashboard stats: %w", err)
	}
	w.mu.Lock()
	w.last = stats
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Dashboard totals refreshed",
		"income", stats.TotalIncome.String(),
		"expenses", stats.TotalExpenses.String(),
		"net", stats.NetBalance.String(),
		"loans_remaining", stats.TotalLoansRemaining.String())
	return nil
}

// SyncAll re-exports every transaction resource. It backs up event delivery
// when messages were missed while the worker was down.
func (w *SyncWorker) SyncAll(ctx context.Context) error {
	if w.writer == nil {
		return nil
	}
	for _, resource := range []string{api.Expenses, api.Incomes} {
		if err := w.syncResource(ctx, resource); err != nil {
			return fmt.Errorf("sync %s to sheets: %w", resource, err)
		}
	}
	return nil
}

// Reminders logs the recurring transactions falling due within days days.
func (w *SyncWorker) Reminders(ctx context.Context, now time.Time, days int) ([]services.Occurrence, error) {
	items, err := listAll(ctx, w.resources.RecurringTransactions, w.perPage)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	upcoming := services.Upcoming(items, now, days)
	for _, o := range upcoming {
		w.logger.InfoContext(ctx, "Recurring transaction due",
			applog.FieldEntityID, o.RecurringID,
			"name", o.Name,
			"date", o.Date.String(),
			"amount", o.Amount.String())
	}
	income, expense := services.Projected(upcoming)
	w.logger.InfoContext(ctx, "Upcoming recurring totals",
		applog.FieldCount, len(upcoming),
		"income", income.String(),
		"expense", expense.String())
	return upcoming, nil
}

// Stats returns the last totals fetched.
func (w *SyncWorker) Stats() core.DashboardStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Handled counts the events processed successfully.
func (w *SyncWorker) Handled() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handled
}

// SheetName is the sheet a transaction resource is exported to.
func SheetName(resource string) string {
	switch resource {
	case api.Expenses:
		return "Expenses"
	case api.Incomes:
		return "Incomes"
	}
	return resource
}

func (w *SyncWorker) syncResource(ctx context.Context, resource string) error {
	var (
		txs []core.Transaction
		err error
	)
	switch resource {
	case api.Expenses:
		var items []core.Expense
		items, err = listAll(ctx, w.resources.Expenses, w.perPage)
		txs = sheets.Transactions(items)
	case api.Incomes:
		var items []core.Income
		items, err = listAll(ctx, w.resources.Incomes, w.perPage)
		txs = sheets.Transactions(items)
	default:
		return fmt.Errorf("resource %q cannot be exported", resource)
	}
	if err != nil {
		return err
	}

	ref, err := w.writer.WriteTable(ctx, SheetName(resource), sheets.TransactionTable(txs, w.fundingLabel(ctx)))
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Successfully synced resource",
		applog.FieldResource, resource,
		applog.FieldCount, len(txs),
		"sheets_ref", ref)
	return nil
}

func (w *SyncWorker) fundingLabel(ctx context.Context) sheets.FundingLabel {
	if w.lookups == nil {
		return nil
	}
	set, err := w.lookups.Load(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "Lookups unavailable, exporting raw funding references", applog.FieldError, err.Error())
		return nil
	}
	return set.FundingName
}

// listAll walks every page of a resource.
func listAll[T any](ctx context.Context, res *api.Resource[T], perPage int) ([]T, error) {
	var out []T
	for page := 1; page <= maxPages; page++ {
		p, err := res.List(ctx, url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(perPage)},
		})
		if err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		if p.Kind == api.Plain || p.Meta.CurrentPage >= p.Meta.LastPage {
			break
		}
	}
	return out, nil
}
