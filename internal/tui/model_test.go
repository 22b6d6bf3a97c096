package tui

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/debounce"
	"fintrack/internal/forms"
	"fintrack/internal/listview"
)

type stubBackend struct {
	mu      sync.Mutex
	queries []url.Values
	deleted []int64
	items   []core.Expense
}

func (s *stubBackend) Name() string { return api.Expenses }

func (s *stubBackend) List(_ context.Context, q url.Values) (api.Page[core.Expense], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	items := append([]core.Expense(nil), s.items...)
	return api.Page[core.Expense]{
		Kind:  api.Paginated,
		Items: items,
		Meta:  core.PaginationMeta{CurrentPage: 1, LastPage: 2, PerPage: 10, Total: 12, From: 1, To: len(items)},
	}, nil
}

func (s *stubBackend) Create(context.Context, any) (core.Expense, error) { return core.Expense{}, nil }

func (s *stubBackend) Update(context.Context, int64, any) (core.Expense, error) {
	return core.Expense{}, nil
}

func (s *stubBackend) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubBackend) lastQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

type stepClock struct {
	mu  sync.Mutex
	fns []func()
}

type stepTimer struct{ stopped *bool }

func (t stepTimer) Stop() bool { *t.stopped = true; return true }

func (c *stepClock) after(_ time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	stopped := new(bool)
	c.fns = append(c.fns, func() {
		if !*stopped {
			f()
		}
	})
	return stepTimer{stopped: stopped}
}

func (c *stepClock) fire() {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func expense(id int64, desc string, cents int64) core.Expense {
	return core.Expense{Transaction: core.Transaction{ID: id, Description: desc, Amount: core.Money{Cents: cents}, Date: core.NewDate(2024, 3, 1)}}
}

func newTestModel(t *testing.T, backend *stubBackend, clock *stepClock) *Model[core.Expense] {
	t.Helper()
	events := NewEvents()
	ctrl := listview.New[core.Expense](backend, forms.ExpenseBinder{}, listview.Options{Notifier: events})
	m := New(context.Background(), Config[core.Expense]{
		Title:      "Expenses",
		Controller: ctrl,
		Columns:    ExpenseColumns(),
		Summary:    ExpenseSummary,
		Clock:      clock.after,
		Events:     events,
	})
	runCmd(t, m, m.loadCmd())
	return m
}

// runCmd executes cmd and feeds its message back into the model.
func runCmd(t *testing.T, m *Model[core.Expense], cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewRendersPage(t *testing.T) {
	backend := &stubBackend{items: []core.Expense{expense(1, "coffee", 250), expense(2, "bread", 300)}}
	m := newTestModel(t, backend, &stepClock{})

	out := m.View()
	for _, want := range []string{"Expenses", "coffee", "bread", "Page 1 of 2", "Page total: 5.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestSearchIsDebounced(t *testing.T) {
	backend := &stubBackend{items: []core.Expense{expense(1, "coffee", 250)}}
	clock := &stepClock{}
	m := newTestModel(t, backend, clock)

	m.Update(key("/"))
	for _, r := range []string{"c", "o", "f"} {
		m.Update(key(r))
	}
	if m.search.Text() != "cof" {
		t.Fatalf("text = %q", m.search.Text())
	}
	if got := len(backend.queries); got != 1 {
		t.Fatalf("queries before quiet period = %d", got)
	}

	clock.fire()
	msg := m.waitForEvent()()
	_, cmd := m.Update(msg)
	// The batch holds the fetch and the next event wait; run only the fetch.
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) == 0 {
		t.Fatalf("unexpected cmd result %T", cmd())
	}
	runCmd(t, m, batch[0])

	if q := backend.lastQuery(); q.Get("search") != "cof" || q.Get("page") != "1" {
		t.Errorf("query = %v", q)
	}
	m.Update(key("enter"))
	if m.searching {
		t.Error("still in search mode")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	backend := &stubBackend{items: []core.Expense{expense(1, "coffee", 250), expense(2, "bread", 300)}}
	m := newTestModel(t, backend, &stepClock{})

	m.Update(key("j"))
	m.Update(key("d"))
	if !strings.Contains(m.View(), "Delete #2?") {
		t.Fatalf("missing confirmation:\n%s", m.View())
	}

	m.Update(key("n"))
	if m.ctrl.View().FormState != listview.Closed {
		t.Fatal("cancel did not close the prompt")
	}

	m.Update(key("d"))
	_, cmd := m.Update(key("y"))
	runCmd(t, m, cmd)
	if len(backend.deleted) != 1 || backend.deleted[0] != 2 {
		t.Errorf("deleted = %v", backend.deleted)
	}
}

func TestPagingMovesForward(t *testing.T) {
	backend := &stubBackend{items: []core.Expense{expense(1, "coffee", 250)}}
	m := newTestModel(t, backend, &stepClock{})

	_, cmd := m.Update(key("l"))
	runCmd(t, m, cmd)
	if q := backend.lastQuery(); q.Get("page") != "2" {
		t.Errorf("page = %q", q.Get("page"))
	}
}

func TestCell(t *testing.T) {
	if got := cell("abc", 5); got != "abc  " {
		t.Errorf("pad = %q", got)
	}
	if got := cell("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
}
