package api

import (
	"testing"

	"fintrack/internal/core"
)

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		kind     PageKind
		count    int
		wantMeta core.PaginationMeta
	}{
		{
			name:     "bare array",
			body:     `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`,
			kind:     Plain,
			count:    2,
			wantMeta: core.PaginationMeta{CurrentPage: 1, LastPage: 1, PerPage: 2, Total: 2, From: 1, To: 2},
		},
		{
			name:     "wrapped array",
			body:     `{"data":[{"id":1,"name":"a"}]}`,
			kind:     Plain,
			count:    1,
			wantMeta: core.PaginationMeta{CurrentPage: 1, LastPage: 1, PerPage: 1, Total: 1, From: 1, To: 1},
		},
		{
			name:     "paginated top level",
			body:     `{"data":[{"id":11,"name":"k"}],"current_page":2,"last_page":3,"per_page":10,"total":21,"from":11,"to":11}`,
			kind:     Paginated,
			count:    1,
			wantMeta: core.PaginationMeta{CurrentPage: 2, LastPage: 3, PerPage: 10, Total: 21, From: 11, To: 11},
		},
		{
			name:     "paginated under meta",
			body:     `{"data":[{"id":1,"name":"a"}],"meta":{"current_page":"1","last_page":4,"total":31}}`,
			kind:     Paginated,
			count:    1,
			wantMeta: core.PaginationMeta{CurrentPage: 1, LastPage: 4, Total: 31},
		},
		{
			name:     "top level wins over meta",
			body:     `{"data":[],"current_page":3,"meta":{"current_page":1,"last_page":5}}`,
			kind:     Paginated,
			count:    0,
			wantMeta: core.PaginationMeta{CurrentPage: 3, LastPage: 5},
		},
		{
			name:     "paginated with zero pages",
			body:     `{"data":[],"current_page":0,"last_page":0,"total":0}`,
			kind:     Paginated,
			count:    0,
			wantMeta: core.PaginationMeta{CurrentPage: 1, LastPage: 1},
		},
		{
			name:     "empty array",
			body:     `[]`,
			kind:     Plain,
			wantMeta: core.PaginationMeta{CurrentPage: 1, LastPage: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := DecodeList[item]([]byte(tt.body), nil)
			if page.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", page.Kind, tt.kind)
			}
			if len(page.Items) != tt.count {
				t.Errorf("len(Items) = %d, want %d", len(page.Items), tt.count)
			}
			if page.Meta != tt.wantMeta {
				t.Errorf("Meta = %+v, want %+v", page.Meta, tt.wantMeta)
			}
		})
	}
}

func TestDecodeListMalformedDegradesToEmpty(t *testing.T) {
	for _, body := range []string{
		``,
		`null`,
		`"text"`,
		`42`,
		`{"message":"oops"}`,
		`{"data":{"id":1}}`,
		`{"data":"nope","current_page":1}`,
		`[{"id":1}`,
		`<html></html>`,
	} {
		page := DecodeList[item]([]byte(body), nil)
		if page.Items == nil || len(page.Items) != 0 {
			t.Errorf("%q: expected empty non-nil items, got %#v", body, page.Items)
		}
		if page.Meta.CurrentPage != 1 || page.Meta.LastPage != 1 {
			t.Errorf("%q: expected page 1 of 1, got %+v", body, page.Meta)
		}
	}
}

func TestDecodeListSkipsBadItems(t *testing.T) {
	page := DecodeList[item]([]byte(`[{"id":1,"name":"a"},{"id":"x"},{"id":3,"name":"c"}]`), nil)
	if len(page.Items) != 2 || page.Skipped != 1 {
		t.Fatalf("expected 2 items and 1 skipped, got %d and %d", len(page.Items), page.Skipped)
	}
	if page.Items[1].ID != 3 {
		t.Errorf("unexpected order %+v", page.Items)
	}
}

func TestDecodeListEntities(t *testing.T) {
	body := `{"data":[{"id":7,"amount":"4.50","description":null,"date":"2024-05-01","category_id":3,"bank_account_id":2}],"total":1}`
	page := DecodeList[core.Expense]([]byte(body), nil)
	if len(page.Items) != 1 {
		t.Fatalf("expected one expense, got %d", len(page.Items))
	}
	e := page.Items[0]
	if e.Amount.Cents != 450 || e.Funding != core.BankRef(2) || e.Description != "" {
		t.Errorf("unexpected expense %+v", e)
	}
}
