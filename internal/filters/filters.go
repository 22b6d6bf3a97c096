// Package filters maps a list page's query string to typed filters and back.
// The query string is the single source of truth for what a list shows.
package filters

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Recognized query keys.
const (
	KeySearch     = "search"
	KeyCategoryID = "category_id"
	KeySourceType = "source_type"
	KeyStartDate  = "start_date"
	KeyEndDate    = "end_date"
	KeyPage       = "page"
	KeyPerPage    = "per_page"
)

// All is the enum sentinel meaning "no filter".
const All = "all"

const defaultPage = "1"

// Keys lists every recognized key in canonical order.
var Keys = []string{KeyCategoryID, KeyEndDate, KeyPage, KeyPerPage, KeySearch, KeySourceType, KeyStartDate}

// Filters is the decoded filter state. Empty fields mean "no filter"; Page is
// never empty after Decode.
type Filters struct {
	Search     string
	CategoryID string
	SourceType string
	StartDate  string
	EndDate    string
	Page       string
	PerPage    string
}

func isEnumKey(key string) bool {
	return key == KeyCategoryID || key == KeySourceType
}

// Decode reads the recognized keys from a query string and applies defaults.
// Malformed values decode as if absent.
func Decode(query string) Filters {
	vals, _ := url.ParseQuery(strings.TrimPrefix(query, "?"))
	get := func(key string) string { return strings.TrimSpace(vals.Get(key)) }

	f := Filters{
		Search:     get(KeySearch),
		CategoryID: enumValue(get(KeyCategoryID)),
		SourceType: enumValue(get(KeySourceType)),
		StartDate:  dateValue(get(KeyStartDate)),
		EndDate:    dateValue(get(KeyEndDate)),
		Page:       positiveInt(get(KeyPage)),
		PerPage:    positiveInt(get(KeyPerPage)),
	}
	if f.Page == "" {
		f.Page = defaultPage
	}
	if _, err := core.ParseFundingKind(f.SourceType); err != nil {
		f.SourceType = ""
	}
	return f
}

func enumValue(v string) string {
	if strings.EqualFold(v, All) {
		return ""
	}
	return v
}

func dateValue(v string) string {
	if v == "" {
		return ""
	}
	d, err := core.ParseDate(v)
	if err != nil || d.IsZero() {
		return ""
	}
	return d.String()
}

func positiveInt(v string) string {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return ""
	}
	return strconv.Itoa(n)
}

// Values returns every recognized key with its current value, empty ones
// included, suitable for Apply.
func (f Filters) Values() map[string]string {
	return map[string]string{
		KeySearch:     f.Search,
		KeyCategoryID: f.CategoryID,
		KeySourceType: f.SourceType,
		KeyStartDate:  f.StartDate,
		KeyEndDate:    f.EndDate,
		KeyPage:       f.Page,
		KeyPerPage:    f.PerPage,
	}
}

// Query builds the list request parameters. page is always present.
func (f Filters) Query() url.Values {
	q := url.Values{}
	for key, v := range f.Values() {
		if v != "" {
			q.Set(key, v)
		}
	}
	if q.Get(KeyPage) == "" {
		q.Set(KeyPage, defaultPage)
	}
	return q
}

// PageNumber returns Page as an int, 1 when unset.
func (f Filters) PageNumber() int {
	n, err := strconv.Atoi(f.Page)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Active reports whether any filter other than paging is set.
func (f Filters) Active() bool {
	return f.Search != "" || f.CategoryID != "" || f.SourceType != "" || f.StartDate != "" || f.EndDate != ""
}

// Apply merges updates into the current query string. An empty value, or
// "all" for enum keys, removes the key. Unrelated parameters are kept.
// Changing any filter other than page drops page so the list restarts at
// the first page. The result is canonical: keys sorted, no empty values.
func Apply(current string, updates map[string]string) string {
	vals, _ := url.ParseQuery(strings.TrimPrefix(current, "?"))
	if vals == nil {
		vals = url.Values{}
	}

	resetPage := false
	for key, v := range updates {
		v = strings.TrimSpace(v)
		if isEnumKey(key) && strings.EqualFold(v, All) {
			v = ""
		}
		if key != KeyPage && key != KeyPerPage && vals.Get(key) != v {
			resetPage = true
		}
		if v == "" {
			vals.Del(key)
		} else {
			vals.Set(key, v)
		}
	}
	if _, explicit := updates[KeyPage]; resetPage && !explicit {
		vals.Del(KeyPage)
	}

	for key, vs := range vals {
		if len(vs) == 0 || vs[0] == "" {
			vals.Del(key)
		}
	}
	return vals.Encode()
}

// Location is a list page address: the resource plus its query string.
type Location struct {
	Resource string
	Query    string
	// ScrollReset is false for filter changes so the list keeps its place.
	ScrollReset bool
}

// Navigator moves a list page to a new location.
type Navigator interface {
	Navigate(ctx context.Context, loc Location) error
}

// Push applies updates to the current query and navigates there without a
// scroll reset. It returns the new query string.
func Push(ctx context.Context, nav Navigator, resource, current string, updates map[string]string) (string, error) {
	next := Apply(current, updates)
	return next, nav.Navigate(ctx, Location{Resource: resource, Query: next, ScrollReset: false})
}
