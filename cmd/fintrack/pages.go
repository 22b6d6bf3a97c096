package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"

	"fintrack/internal/api"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/filters"
	"fintrack/internal/forms"
	"fintrack/internal/listview"
	"fintrack/internal/tui"
)

// page is the command surface of one resource.
type page interface {
	fields() []string
	list(ctx context.Context, app *cli.App, updates map[string]string, out io.Writer) error
	create(ctx context.Context, app *cli.App, values map[string]string, out io.Writer) error
	update(ctx context.Context, app *cli.App, id int64, values map[string]string, out io.Writer) error
	remove(ctx context.Context, app *cli.App, id int64, out io.Writer) error
	browse(ctx context.Context, app *cli.App) error
}

type resourcePage[T core.Entity] struct {
	title   string
	res     func(*api.Resources) *api.Resource[T]
	binder  forms.Binder[T]
	columns []tui.Column[T]
	summary func([]T) string
}

var pages = map[string]page{
	api.Expenses: resourcePage[core.Expense]{
		title: "Expenses", binder: forms.ExpenseBinder{}, columns: tui.ExpenseColumns(), summary: tui.ExpenseSummary,
		res: func(r *api.Resources) *api.Resource[core.Expense] { return r.Expenses },
	},
	api.Incomes: resourcePage[core.Income]{
		title: "Incomes", binder: forms.IncomeBinder{}, columns: tui.IncomeColumns(), summary: tui.IncomeSummary,
		res: func(r *api.Resources) *api.Resource[core.Income] { return r.Incomes },
	},
	api.Categories: resourcePage[core.Category]{
		title: "Categories", binder: forms.CategoryBinder{}, columns: tui.CategoryColumns(), summary: tui.CategorySummary,
		res: func(r *api.Resources) *api.Resource[core.Category] { return r.Categories },
	},
	api.BankAccounts: resourcePage[core.BankAccount]{
		title: "Bank accounts", binder: forms.BankAccountBinder{}, columns: tui.BankAccountColumns(), summary: tui.BankAccountSummary,
		res: func(r *api.Resources) *api.Resource[core.BankAccount] { return r.BankAccounts },
	},
	api.FundSources: resourcePage[core.FundSource]{
		title: "Fund sources", binder: forms.FundSourceBinder{}, columns: tui.FundSourceColumns(), summary: tui.FundSourceSummary,
		res: func(r *api.Resources) *api.Resource[core.FundSource] { return r.FundSources },
	},
	api.Loans: resourcePage[core.Loan]{
		title: "Loans", binder: forms.LoanBinder{}, columns: tui.LoanColumns(), summary: tui.LoanSummary,
		res: func(r *api.Resources) *api.Resource[core.Loan] { return r.Loans },
	},
	api.Installments: resourcePage[core.Installment]{
		title: "Installments", binder: forms.InstallmentBinder{}, columns: tui.InstallmentColumns(), summary: tui.InstallmentSummary,
		res: func(r *api.Resources) *api.Resource[core.Installment] { return r.Installments },
	},
	api.RecurringTransactions: resourcePage[core.RecurringTransaction]{
		title: "Recurring transactions", binder: forms.RecurringBinder{}, columns: tui.RecurringColumns(), summary: tui.RecurringSummary,
		res: func(r *api.Resources) *api.Resource[core.RecurringTransaction] { return r.RecurringTransactions },
	},
	api.Budgets: resourcePage[core.Budget]{
		title: "Budgets", binder: forms.BudgetBinder{}, columns: tui.BudgetColumns(), summary: tui.BudgetSummary,
		res: func(r *api.Resources) *api.Resource[core.Budget] { return r.Budgets },
	},
}

func lookupPage(name string) (page, error) {
	p, ok := pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (one of: %s)", name, strings.Join(api.ResourceNames, ", "))
	}
	return p, nil
}

// printer writes notifications as status lines.
func printer(out io.Writer) listview.Notifier {
	return listview.NotifierFunc(func(n listview.Notification) {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, n.Message)
	})
}

func (p resourcePage[T]) fields() []string { return p.binder.Fields() }

func (p resourcePage[T]) controller(app *cli.App, out io.Writer) *listview.Controller[T] {
	return cli.Controller(app, p.res(app.Resources), p.binder, printer(out))
}

func (p resourcePage[T]) list(ctx context.Context, app *cli.App, updates map[string]string, out io.Writer) error {
	ctrl := p.controller(app, io.Discard)
	name := p.res(app.Resources).Name()

	saved, err := app.Store.LoadLocation(ctx, name)
	if err != nil {
		return err
	}
	if _, err := filters.Push(ctx, ctrl, name, saved, updates); err != nil {
		return err
	}
	p.print(ctrl.View(), out)
	return nil
}

func (p resourcePage[T]) print(view listview.View[T], out io.Writer) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	titles := make([]string, len(p.columns))
	for i, col := range p.columns {
		titles[i] = strings.ToUpper(col.Title)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, item := range view.Items {
		cells := make([]string, len(p.columns))
		for i, col := range p.columns {
			cells[i] = col.Value(item)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	m := view.Meta
	if view.Kind == api.Paginated {
		fmt.Fprintf(out, "\nPage %d of %d · Showing %d-%d of %d\n", m.CurrentPage, m.LastPage, m.From, m.To, m.Total)
	} else {
		fmt.Fprintf(out, "\n%d items\n", len(view.Items))
	}
	if view.Query != "" {
		fmt.Fprintf(out, "Filters: %s\n", view.Query)
	}
	if p.summary != nil && len(view.Items) > 0 {
		fmt.Fprintln(out, p.summary(view.Items))
	}
}

func (p resourcePage[T]) fill(ctrl *listview.Controller[T], values map[string]string) error {
	known := map[string]bool{}
	for _, f := range p.binder.Fields() {
		known[f] = true
	}
	for k, v := range values {
		if !known[k] {
			return fmt.Errorf("unknown field %q (one of: %s)", k, strings.Join(p.binder.Fields(), ", "))
		}
		ctrl.SetField(k, v)
	}
	return nil
}

func (p resourcePage[T]) create(ctx context.Context, app *cli.App, values map[string]string, out io.Writer) error {
	ctrl := p.controller(app, out)
	ctrl.OpenCreate()
	if err := p.fill(ctrl, values); err != nil {
		return err
	}
	return formError(ctrl.View().Form, ctrl.Submit(ctx))
}

func (p resourcePage[T]) update(ctx context.Context, app *cli.App, id int64, values map[string]string, out io.Writer) error {
	item, err := p.res(app.Resources).Get(ctx, id)
	if err != nil {
		return err
	}
	ctrl := p.controller(app, out)
	if err := ctrl.OpenEdit(item); err != nil {
		return err
	}
	if err := p.fill(ctrl, values); err != nil {
		return err
	}
	return formError(ctrl.View().Form, ctrl.Submit(ctx))
}

func (p resourcePage[T]) remove(ctx context.Context, app *cli.App, id int64, out io.Writer) error {
	item, err := p.res(app.Resources).Get(ctx, id)
	if err != nil {
		return err
	}
	ctrl := p.controller(app, out)
	if err := ctrl.ConfirmDelete(item); err != nil {
		return err
	}
	return ctrl.Delete(ctx)
}

func (p resourcePage[T]) browse(ctx context.Context, app *cli.App) error {
	events := tui.NewEvents()
	ctrl := cli.Controller(app, p.res(app.Resources), p.binder, events)
	m := tui.New(ctx, tui.Config[T]{
		Title:      p.title,
		Controller: ctrl,
		Columns:    p.columns,
		Summary:    p.summary,
		Quiet:      app.Config.SearchDebounce,
		Events:     events,
		Logger:     app.Logger,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// formError folds inline field errors into the returned error.
func formError(f forms.Form, err error) error {
	if err == nil {
		return nil
	}
	fields := f.ErrorFields()
	if len(fields) == 0 {
		return err
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		name := field
		if name == "" {
			name = "form"
		}
		parts = append(parts, name+": "+f.Errors[field])
	}
	if errors.Is(err, listview.ErrInvalidForm) {
		return fmt.Errorf("%w: %s", err, strings.Join(parts, "; "))
	}
	return fmt.Errorf("%w (%s)", err, strings.Join(parts, "; "))
}
