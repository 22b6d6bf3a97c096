package filters

import (
	"context"
	"testing"
)

func TestDecodeDefaults(t *testing.T) {
	f := Decode("")
	if f.Page != "1" {
		t.Errorf("Page = %q, want 1", f.Page)
	}
	if f.Active() {
		t.Errorf("empty query reported active filters: %+v", f)
	}
	if got := f.Query().Encode(); got != "page=1" {
		t.Errorf("Query() = %q, want page=1", got)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Filters
	}{
		{
			name:  "all recognized keys",
			query: "?search=cof&category_id=3&source_type=bank&start_date=2024-01-01&end_date=2024-01-31&page=2&per_page=25",
			want:  Filters{Search: "cof", CategoryID: "3", SourceType: "bank", StartDate: "2024-01-01", EndDate: "2024-01-31", Page: "2", PerPage: "25"},
		},
		{
			name:  "all means no filter",
			query: "category_id=all&source_type=all",
			want:  Filters{Page: "1"},
		},
		{
			name:  "invalid page falls back to 1",
			query: "page=0",
			want:  Filters{Page: "1"},
		},
		{
			name:  "non numeric page falls back to 1",
			query: "page=abc",
			want:  Filters{Page: "1"},
		},
		{
			name:  "unknown source type ignored",
			query: "source_type=card",
			want:  Filters{Page: "1"},
		},
		{
			name:  "malformed dates ignored",
			query: "start_date=31/01/2024&end_date=2024-02-01",
			want:  Filters{EndDate: "2024-02-01", Page: "1"},
		},
		{
			name:  "unrecognized keys ignored",
			query: "tab=summary&search=rent",
			want:  Filters{Search: "rent", Page: "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode(tt.query); got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		current string
		updates map[string]string
		want    string
	}{
		{
			name:    "adds a filter and drops page",
			current: "page=3",
			updates: map[string]string{KeySearch: "cof"},
			want:    "search=cof",
		},
		{
			name:    "empty value removes key",
			current: "page=2&search=cof",
			updates: map[string]string{KeySearch: ""},
			want:    "",
		},
		{
			name:    "all removes enum key",
			current: "category_id=4&search=cof",
			updates: map[string]string{KeyCategoryID: "all"},
			want:    "search=cof",
		},
		{
			name:    "page change keeps filters",
			current: "search=cof&source_type=fund",
			updates: map[string]string{KeyPage: "2"},
			want:    "page=2&search=cof&source_type=fund",
		},
		{
			name:    "unchanged filter keeps page",
			current: "page=4&search=cof",
			updates: map[string]string{KeySearch: "cof"},
			want:    "page=4&search=cof",
		},
		{
			name:    "unrelated params are preserved",
			current: "tab=summary&page=2",
			updates: map[string]string{KeyStartDate: "2024-01-01"},
			want:    "start_date=2024-01-01&tab=summary",
		},
		{
			name:    "output is canonical",
			current: "?source_type=loan&category_id=1",
			updates: map[string]string{KeyEndDate: "2024-03-31"},
			want:    "category_id=1&end_date=2024-03-31&source_type=loan",
		},
		{
			name:    "explicit page with filter change is honored",
			current: "page=5",
			updates: map[string]string{KeySearch: "rent", KeyPage: "1"},
			want:    "page=1&search=rent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.current, tt.updates); got != tt.want {
				t.Errorf("Apply(%q, %v) = %q, want %q", tt.current, tt.updates, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, q := range []string{
		"",
		"search=coffee&page=3",
		"category_id=2&source_type=fund&start_date=2024-01-01&end_date=2024-12-31&per_page=50",
		"search=%20ab",
		"search=cof%20%20&category_id=%203",
	} {
		f := Decode(q)
		if got := Decode(Apply("", f.Values())); got != f {
			t.Errorf("round trip of %q: got %+v, want %+v", q, got, f)
		}
	}
}

func TestDecodeTrimsValues(t *testing.T) {
	f := Decode("search=%20ab%20&page=%202")
	if f.Search != "ab" || f.Page != "2" {
		t.Errorf("Decode = %+v", f)
	}
}

func TestQueryAlwaysHasPage(t *testing.T) {
	f := Filters{Search: "cof"}
	if got := f.Query().Encode(); got != "page=1&search=cof" {
		t.Errorf("Query() = %q, want page=1&search=cof", got)
	}
}

type recordingNavigator struct {
	locs []Location
}

func (r *recordingNavigator) Navigate(ctx context.Context, loc Location) error {
	r.locs = append(r.locs, loc)
	return nil
}

func TestPushNavigatesWithoutScrollReset(t *testing.T) {
	nav := &recordingNavigator{}
	next, err := Push(context.Background(), nav, "expenses", "page=2", map[string]string{KeySourceType: "bank"})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if next != "source_type=bank" {
		t.Errorf("next = %q", next)
	}
	if len(nav.locs) != 1 {
		t.Fatalf("expected one navigation, got %d", len(nav.locs))
	}
	loc := nav.locs[0]
	if loc.Resource != "expenses" || loc.Query != next || loc.ScrollReset {
		t.Errorf("unexpected location %+v", loc)
	}
}

func TestKeysAreSorted(t *testing.T) {
	for i := 1; i < len(Keys); i++ {
		if Keys[i-1] >= Keys[i] {
			t.Fatalf("Keys not in canonical order at %d: %v", i, Keys)
		}
	}
}
