package listview

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/api"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// Option is one entry of a select field.
type Option struct {
	ID    int64
	Label string
}

// LookupSet holds the select options forms need.
type LookupSet struct {
	Categories   []Option
	BankAccounts []Option
	FundSources  []Option
	Loans        []Option
}

// ForFunding returns the options matching a source_type value.
func (s LookupSet) ForFunding(kind core.FundingKind) []Option {
	switch kind {
	case core.FundingBank:
		return s.BankAccounts
	case core.FundingFund:
		return s.FundSources
	case core.FundingLoan:
		return s.Loans
	}
	return nil
}

// FundingName labels ref with its option, or kind#id when it is unknown.
func (s LookupSet) FundingName(ref core.FundingRef) string {
	for _, o := range s.ForFunding(ref.Kind) {
		if o.ID == ref.ID {
			return o.Label
		}
	}
	return ref.String()
}

const lookupPageSize = 100

// Lookups loads select options from the backend and caches them until a
// write invalidates them.
type Lookups struct {
	resources *api.Resources
	cache     cache.Cache[[]Option]
	logger    *applog.Logger
}

func NewLookups(resources *api.Resources, c cache.Cache[[]Option], logger *applog.Logger) *Lookups {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Lookups{
		resources: resources,
		cache:     c,
		logger:    logger.WithComponent(applog.ComponentCache),
	}
}

// Load fetches every option list concurrently, serving cached lists without a
// request.
func (l *Lookups) Load(ctx context.Context) (LookupSet, error) {
	var set LookupSet
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		set.Categories, err = cached(ctx, l, l.resources.Categories, func(c core.Category) string {
			return c.Name + " (" + string(c.Type) + ")"
		})
		return err
	})
	g.Go(func() error {
		var err error
		set.BankAccounts, err = cached(ctx, l, l.resources.BankAccounts, func(b core.BankAccount) string {
			return b.Name
		})
		return err
	})
	g.Go(func() error {
		var err error
		set.FundSources, err = cached(ctx, l, l.resources.FundSources, func(f core.FundSource) string {
			return f.Name
		})
		return err
	})
	g.Go(func() error {
		var err error
		set.Loans, err = cached(ctx, l, l.resources.Loans, func(ln core.Loan) string {
			return ln.LenderName
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return LookupSet{}, err
	}
	return set, nil
}

// Invalidate drops every cached list.
func (l *Lookups) Invalidate() {
	l.cache.Clear()
	l.logger.Debug("Lookup cache cleared")
}

func cached[T core.Entity](ctx context.Context, l *Lookups, res *api.Resource[T], label func(T) string) ([]Option, error) {
	if opts, ok := l.cache.Get(res.Name()); ok {
		return opts, nil
	}
	page, err := res.List(ctx, url.Values{"per_page": {strconv.Itoa(lookupPageSize)}})
	if err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(page.Items))
	for _, item := range page.Items {
		opts = append(opts, Option{ID: item.EntityID(), Label: label(item)})
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
	l.cache.Set(res.Name(), opts)
	l.logger.Debug("Lookup loaded", applog.FieldResource, res.Name(), applog.FieldCount, len(opts))
	return opts, nil
}
