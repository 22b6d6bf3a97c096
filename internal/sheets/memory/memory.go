// Package memory keeps exported tables in memory. It backs dry runs of the
// export command.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "fintrack/internal/sheets"
)

var _ ports.TableWriter = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	sheets map[string]ports.Table
	writes int
}

func New() *Store {
	return &Store{sheets: map[string]ports.Table{}}
}

// WriteTable replaces the named sheet and returns a synthetic range reference.
func (s *Store) WriteTable(_ context.Context, sheet string, t ports.Table) (string, error) {
	if sheet == "" {
		return "", fmt.Errorf("missing sheet name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = cloneTable(t)
	s.writes++
	return fmt.Sprintf("mem:%s!%d", sheet, len(t.Rows)+1), nil
}

// Table returns the last table written to sheet.
func (s *Store) Table(sheet string) (ports.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.sheets[sheet]
	if !ok {
		return ports.Table{}, false
	}
	return cloneTable(t), true
}

// Writes counts WriteTable calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func cloneTable(t ports.Table) ports.Table {
	out := ports.Table{Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}
