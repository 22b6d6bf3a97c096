package api

import (
	"bytes"
	"encoding/json"
	"strconv"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// PageKind tells whether the server paginated a list response.
type PageKind int

const (
	Plain PageKind = iota
	Paginated
)

func (k PageKind) String() string {
	if k == Paginated {
		return "paginated"
	}
	return "plain"
}

// Page is a list response normalized once at the client boundary. Meta never
// carries a zero page number.
type Page[T any] struct {
	Kind  PageKind
	Items []T
	Meta  core.PaginationMeta
	// Skipped counts items that could not be decoded.
	Skipped int
}

var paginationKeys = []string{"current_page", "last_page", "per_page", "total", "from", "to"}

// DecodeList normalizes the three list shapes the backend returns: a bare
// array, {data: [...]}, and a paginated envelope whose numbers sit at the top
// level or under meta. Malformed input yields an empty plain page, never an
// error. logger may be nil.
func DecodeList[T any](raw []byte, logger *applog.Logger) Page[T] {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return plainPage[T](nil, 0)
	}

	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			warn(logger, "malformed list response", err)
			return plainPage[T](nil, 0)
		}
		items, skipped := decodeItems[T](elems, logger)
		return plainPage(items, skipped)

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			warn(logger, "malformed list envelope", err)
			return plainPage[T](nil, 0)
		}
		var elems []json.RawMessage
		if data, ok := obj["data"]; !ok || json.Unmarshal(data, &elems) != nil {
			return plainPage[T](nil, 0)
		}
		items, skipped := decodeItems[T](elems, logger)

		var meta map[string]json.RawMessage
		if m, ok := obj["meta"]; ok {
			_ = json.Unmarshal(m, &meta)
		}
		numbers := map[string]int{}
		for _, key := range paginationKeys {
			if v, ok := lenientInt(obj[key]); ok {
				numbers[key] = v
			} else if v, ok := lenientInt(meta[key]); ok {
				numbers[key] = v
			}
		}
		if len(numbers) == 0 {
			return plainPage(items, skipped)
		}
		return Page[T]{
			Kind:    Paginated,
			Items:   items,
			Skipped: skipped,
			Meta: core.PaginationMeta{
				CurrentPage: atLeastOne(numbers["current_page"]),
				LastPage:    atLeastOne(numbers["last_page"]),
				PerPage:     numbers["per_page"],
				Total:       numbers["total"],
				From:        numbers["from"],
				To:          numbers["to"],
			},
		}

	default:
		return plainPage[T](nil, 0)
	}
}

func plainPage[T any](items []T, skipped int) Page[T] {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	from := 0
	if n > 0 {
		from = 1
	}
	return Page[T]{
		Kind:    Plain,
		Items:   items,
		Skipped: skipped,
		Meta: core.PaginationMeta{
			CurrentPage: 1,
			LastPage:    1,
			PerPage:     n,
			Total:       n,
			From:        from,
			To:          n,
		},
	}
}

func decodeItems[T any](elems []json.RawMessage, logger *applog.Logger) ([]T, int) {
	items := make([]T, 0, len(elems))
	skipped := 0
	for i, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			skipped++
			if logger != nil {
				logger.Warn("Skipping undecodable list item", "index", i, applog.FieldError, err.Error())
			}
			continue
		}
		items = append(items, item)
	}
	return items, skipped
}

// lenientInt accepts a JSON number or a numeric string.
func lenientInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func warn(logger *applog.Logger, msg string, err error) {
	if logger != nil {
		logger.Warn(msg, applog.FieldError, err.Error())
	}
}
