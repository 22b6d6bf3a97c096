package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/filters"
	"fintrack/internal/forms"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
)

var errUsage = errors.New("invalid usage")

type command struct {
	usage string
	// auth commands fail early without a stored session.
	auth bool
	run  func(ctx context.Context, app *cli.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"login":    {usage: "login -email EMAIL [-password PASSWORD]", run: runLogin},
	"logout":   {usage: "logout", run: runLogout},
	"list":     {usage: "list RESOURCE [-search S] [-category ID] [-source bank|fund|loan] [-start DATE] [-end DATE] [-page N] [-per-page N] [-reset]", auth: true, run: runList},
	"fields":   {usage: "fields RESOURCE", run: runFields},
	"create":   {usage: "create RESOURCE field=value...", auth: true, run: runCreate},
	"update":   {usage: "update RESOURCE ID field=value...", auth: true, run: runUpdate},
	"delete":   {usage: "delete RESOURCE ID", auth: true, run: runDelete},
	"stats":    {usage: "stats [-month M] [-year Y]", auth: true, run: runStats},
	"export":   {usage: "export expenses|incomes [-sheet NAME] [-dry-run] [filters]", auth: true, run: runExport},
	"repay":    {usage: "repay LOAN_ID AMOUNT", auth: true, run: runRepay},
	"pay":      {usage: "pay INSTALLMENT_ID", auth: true, run: runPay},
	"toggle":   {usage: "toggle RECURRING_ID", auth: true, run: runToggle},
	"tui":      {usage: "tui RESOURCE", auth: true, run: runTUI},
	"session":  {usage: "session", run: runSession},
	"upcoming": {usage: "upcoming [-days N]", auth: true, run: runUpcoming},
}

func runLogin(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", app.Session.Email(), "account email")
	password := fs.String("password", os.Getenv("FINTRACK_PASSWORD"), "account password (or FINTRACK_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: email and password are required", errUsage)
	}
	if err := app.Client.Login(ctx, *email, *password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(out, "Logged in as %s\n", app.Session.Email())
	return nil
}

func runLogout(ctx context.Context, app *cli.App, _ []string, out io.Writer) error {
	if err := app.Client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out")
	return nil
}

func runSession(_ context.Context, app *cli.App, _ []string, out io.Writer) error {
	if !app.Session.Valid() {
		fmt.Fprintln(out, "Not logged in")
		return nil
	}
	fmt.Fprintf(out, "Logged in as %s\n", app.Session.Email())
	if exp, ok := app.Session.ExpiresAt(); ok {
		fmt.Fprintf(out, "Token expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

// filterFlags registers the list filter flags on fs. The returned func
// reports only the flags given on the command line.
func filterFlags(fs *flag.FlagSet) func() map[string]string {
	names := map[string]string{
		"search":   filters.KeySearch,
		"category": filters.KeyCategoryID,
		"source":   filters.KeySourceType,
		"start":    filters.KeyStartDate,
		"end":      filters.KeyEndDate,
		"page":     filters.KeyPage,
		"per-page": filters.KeyPerPage,
	}
	values := map[string]*string{}
	for name, key := range names {
		values[name] = fs.String(name, "", "filter on "+key)
	}
	return func() map[string]string {
		updates := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			if key, ok := names[f.Name]; ok {
				updates[key] = *values[f.Name]
			}
		})
		return updates
	}
}

// splitResource takes the leading positional resource name.
func splitResource(args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: missing resource", errUsage)
	}
	return args[0], args[1:], nil
}

func runList(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	name, rest, err := splitResource(args)
	if err != nil {
		return err
	}
	p, err := lookupPage(name)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	updates := filterFlags(fs)
	reset := fs.Bool("reset", false, "forget the saved filters first")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if *reset {
		if err := app.Store.SaveLocation(ctx, name, ""); err != nil {
			return err
		}
	}
	return p.list(ctx, app, updates(), out)
}

func runFields(_ context.Context, _ *cli.App, args []string, out io.Writer) error {
	name, _, err := splitResource(args)
	if err != nil {
		return err
	}
	p, err := lookupPage(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.Join(p.fields(), "\n"))
	return nil
}

// parseAssignments reads field=value arguments.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("%w: expected field=value, got %q", errUsage, arg)
		}
		values[field] = value
	}
	return values, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, s)
	}
	return id, nil
}

func runCreate(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	name, rest, err := splitResource(args)
	if err != nil {
		return err
	}
	p, err := lookupPage(name)
	if err != nil {
		return err
	}
	values, err := parseAssignments(rest)
	if err != nil {
		return err
	}
	return p.create(ctx, app, values, out)
}

func runUpdate(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	name, rest, err := splitResource(args)
	if err != nil {
		return err
	}
	p, err := lookupPage(name)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("%w: missing id", errUsage)
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}
	values, err := parseAssignments(rest[1:])
	if err != nil {
		return err
	}
	return p.update(ctx, app, id, values, out)
}

func runDelete(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	name, rest, err := splitResource(args)
	if err != nil {
		return err
	}
	p, err := lookupPage(name)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: expected one id", errUsage)
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}
	return p.remove(ctx, app, id, out)
}

func runStats(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	now := time.Now()
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	month := fs.Int("month", int(now.Month()), "budget month")
	year := fs.Int("year", now.Year(), "budget year")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *month < 1 || *month > 12 {
		return fmt.Errorf("%w: month must be 1-12", errUsage)
	}

	stats, err := app.Client.DashboardStats(ctx)
	if err != nil {
		return err
	}
	overview, err := app.Client.BudgetsOverview(ctx, *month, *year)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Income\t%s\n", stats.TotalIncome)
	fmt.Fprintf(tw, "Expenses\t%s\n", stats.TotalExpenses)
	fmt.Fprintf(tw, "Net balance\t%s\n", stats.NetBalance)
	fmt.Fprintf(tw, "Bank balance\t%s\n", stats.TotalBankBalance)
	fmt.Fprintf(tw, "Fund sources\t%s\n", stats.TotalFundSources)
	fmt.Fprintf(tw, "Loans remaining\t%s\n", stats.TotalLoansRemaining)
	fmt.Fprintln(tw, "\t")
	for _, c := range stats.ExpensesByCategory {
		fmt.Fprintf(tw, "  %s\t%s\t%d%%\n", c.Name, c.Amount, aggregate.Percent(c.Amount, stats.TotalExpenses))
	}
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "Budgets %02d/%d\t%s of %s\n", overview.Month, overview.Year, overview.TotalSpent, overview.TotalBudget)
	fmt.Fprintf(tw, "Remaining\t%s\n", overview.Remaining)
	fmt.Fprintf(tw, "Over budget\t%d\n", overview.OverBudget)
	return tw.Flush()
}

func runExport(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	name, rest, err := splitResource(args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	updates := filterFlags(fs)
	sheet := fs.String("sheet", app.Config.GoogleSheetName, "target sheet")
	dryRun := fs.Bool("dry-run", false, "print the table instead of writing it")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var table sheets.Table
	switch name {
	case api.Expenses:
		table, err = exportTable(ctx, app, app.Resources.Expenses, forms.ExpenseBinder{}, updates())
	case api.Incomes:
		table, err = exportTable(ctx, app, app.Resources.Incomes, forms.IncomeBinder{}, updates())
	default:
		return fmt.Errorf("%w: only expenses and incomes can be exported", errUsage)
	}
	if err != nil {
		return err
	}

	var writer sheets.TableWriter
	if *dryRun {
		writer = memory.New()
	} else {
		if !app.Config.SheetsEnabled() {
			return errors.New("google sheets export is not configured (set GOOGLE_SPREADSHEET_ID)")
		}
		writer, err = gsheet.NewClient(ctx, gsheet.Config{
			SpreadsheetID:   app.Config.GoogleSpreadsheetID,
			CredentialsJSON: app.Config.GoogleServiceAccountJSON,
			CredentialsFile: app.Config.GoogleServiceAccountFile,
		}, app.Logger)
		if err != nil {
			return err
		}
	}

	ref, err := writer.WriteTable(ctx, *sheet, table)
	if err != nil {
		return err
	}
	if *dryRun {
		printTable(out, table)
	}
	fmt.Fprintf(out, "Exported %d rows to %s\n", len(table.Rows), ref)
	return nil
}

// exportTable loads one page of transactions with the saved filters plus
// updates and renders it with funding names from the lookups.
func exportTable[T interface {
	core.Entity
	Tx() core.Transaction
}](ctx context.Context, app *cli.App, res *api.Resource[T], binder forms.Binder[T], updates map[string]string) (sheets.Table, error) {
	ctrl := cli.Controller(app, res, binder, nil)
	saved, err := app.Store.LoadLocation(ctx, res.Name())
	if err != nil {
		return sheets.Table{}, err
	}
	if _, err := filters.Push(ctx, ctrl, res.Name(), saved, updates); err != nil {
		return sheets.Table{}, err
	}

	var label sheets.FundingLabel
	if set, err := app.Lookups.Load(ctx); err != nil {
		app.Logger.WarnContext(ctx, "Lookups unavailable, exporting raw funding references", applog.FieldError, err.Error())
	} else {
		label = set.FundingName
	}
	return sheets.TransactionTable(sheets.Transactions(ctrl.Items()), label), nil
}

func printTable(out io.Writer, t sheets.Table) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// afterAction refreshes what an action endpoint invalidated.
func afterAction(ctx context.Context, app *cli.App, resource string, id int64) {
	app.Lookups.Invalidate()
	if app.Publisher == nil {
		return
	}
	if err := app.Publisher.PublishMutation(ctx, amqp.NewMutationEvent(resource, amqp.ActionUpdated, id)); err != nil {
		app.Logger.WarnContext(ctx, "Failed to publish mutation event",
			applog.NewFields().WithOperation(applog.OpPublish).WithResource(resource, id).WithError(err).ToSlice()...)
	}
}

func runRepay(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: expected LOAN_ID AMOUNT", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cents, err := core.ParseDecimalToCents(args[1])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[1], err)
	}
	amount := core.Money{Cents: cents}
	if err := app.Client.RepayLoan(ctx, id, amount); err != nil {
		return err
	}
	afterAction(ctx, app, api.Loans, id)
	fmt.Fprintf(out, "Repaid %s on loan #%d\n", amount, id)
	return nil
}

func runPay(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected INSTALLMENT_ID", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := app.Client.PayInstallment(ctx, id); err != nil {
		return err
	}
	afterAction(ctx, app, api.Installments, id)
	fmt.Fprintf(out, "Recorded payment for installment #%d\n", id)
	return nil
}

func runToggle(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected RECURRING_ID", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := app.Client.ToggleRecurring(ctx, id); err != nil {
		return err
	}
	afterAction(ctx, app, api.RecurringTransactions, id)
	fmt.Fprintf(out, "Toggled recurring transaction #%d\n", id)
	return nil
}

func runTUI(ctx context.Context, app *cli.App, args []string, _ io.Writer) error {
	name, _, err := splitResource(args)
	if err != nil {
		return err
	}
	p, err := lookupPage(name)
	if err != nil {
		return err
	}
	return p.browse(ctx, app)
}

func runUpcoming(ctx context.Context, app *cli.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("upcoming", flag.ContinueOnError)
	days := fs.Int("days", app.Config.ReminderDays, "horizon in days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := app.Resources.RecurringTransactions.List(ctx, url.Values{filters.KeyPerPage: {"100"}})
	if err != nil {
		return err
	}
	upcoming := services.Upcoming(page.Items, time.Now(), *days)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tNAME\tTYPE\tAMOUNT")
	for _, o := range upcoming {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Date, o.Name, o.Type, o.Amount)
	}
	tw.Flush()

	income, expense := services.Projected(upcoming)
	fmt.Fprintf(out, "\nNext %d days: income %s · expense %s\n", *days, income, expense)
	return nil
}
