// Package tui renders one list page in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/core"
	"fintrack/internal/debounce"
	"fintrack/internal/filters"
	"fintrack/internal/listview"
	applog "fintrack/internal/log"
)

// Column renders one field of an item.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Config describes a list page.
type Config[T core.Entity] struct {
	Title      string
	Controller *listview.Controller[T]
	Columns    []Column[T]
	// Summary renders page-local totals for the footer; nil hides it.
	Summary func(items []T) string
	Quiet   time.Duration
	Clock   debounce.AfterFunc
	// Events must be the notifier the controller was built with.
	Events *Events
	Logger *applog.Logger
}

type (
	loadedMsg      struct{ err error }
	mutatedMsg     struct{ err error }
	searchMsg      struct{ value string }
	noticeMsg      struct{ note listview.Notification }
	clearNoticeMsg struct{ seq int }
)

// Events carries notifications and debounced searches into the update loop.
// It implements listview.Notifier.
type Events struct {
	ch chan tea.Msg
}

func NewEvents() *Events {
	return &Events{ch: make(chan tea.Msg, 16)}
}

func (e *Events) Notify(n listview.Notification) {
	select {
	case e.ch <- noticeMsg{note: n}:
	default:
	}
}

func (e *Events) send(msg tea.Msg) {
	e.ch <- msg
}

const noticeTTL = 4 * time.Second

// Model is the bubbletea model of a list page.
type Model[T core.Entity] struct {
	ctx    context.Context
	cfg    Config[T]
	ctrl   *listview.Controller[T]
	search *debounce.Search
	events *Events
	logger *applog.Logger

	searching bool
	cursor    int
	notice    listview.Notification
	noticeSeq int
	width     int
	quitting  bool
}

func New[T core.Entity](ctx context.Context, cfg Config[T]) *Model[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	events := cfg.Events
	if events == nil {
		events = NewEvents()
	}
	m := &Model[T]{
		ctx:    ctx,
		cfg:    cfg,
		ctrl:   cfg.Controller,
		events: events,
		logger: logger.WithComponent(applog.ComponentTUI),
		width:  80,
	}
	m.search = debounce.New(cfg.Quiet, cfg.Clock, cfg.Controller.View().Filters.Search, func(v string) {
		events.send(searchMsg{value: v})
	})
	return m
}

func (m *Model[T]) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForEvent())
}

func (m *Model[T]) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events.ch:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model[T]) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.ctrl.Load(m.ctx)}
	}
}

func (m *Model[T]) run(op func(ctx context.Context) error, msg func(error) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg(op(m.ctx))
	}
}

func asLoaded(err error) tea.Msg  { return loadedMsg{err: err} }
func asMutated(err error) tea.Msg { return mutatedMsg{err: err} }

func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loadedMsg:
		m.clampCursor()
		if msg.err != nil {
			m.logger.Debug("Load finished with error", applog.FieldError, msg.err.Error())
		}
		return m, nil

	case mutatedMsg:
		m.clampCursor()
		return m, nil

	case searchMsg:
		value := msg.value
		return m, tea.Batch(
			m.run(func(ctx context.Context) error {
				return m.ctrl.SetFilters(ctx, map[string]string{filters.KeySearch: value})
			}, asLoaded),
			m.waitForEvent(),
		)

	case noticeMsg:
		m.notice = msg.note
		m.noticeSeq++
		seq := m.noticeSeq
		return m, tea.Batch(
			tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} }),
			m.waitForEvent(),
		)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = listview.Notification{}
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		text := []rune(m.search.Text())
		if len(text) > 0 {
			m.search.Input(string(text[:len(text)-1]))
		}
	case tea.KeyCtrlU:
		m.search.Input("")
	case tea.KeySpace:
		m.search.Input(m.search.Text() + " ")
	case tea.KeyRunes:
		m.search.Input(m.search.Text() + string(msg.Runes))
	case tea.KeyCtrlC:
		return m.quit()
	}
	return m, nil
}

func (m *Model[T]) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.ctrl.View()

	if view.FormState == listview.ConfirmDelete {
		switch msg.String() {
		case "y", "enter":
			return m, m.run(m.ctrl.Delete, asMutated)
		case "n", "esc":
			m.ctrl.Close()
		case "ctrl+c":
			return m.quit()
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()
	case "/":
		m.searching = true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(view.Items)-1 {
			m.cursor++
		}
	case "right", "l", "pgdown":
		if view.Meta.CurrentPage < view.Meta.LastPage {
			page := view.Meta.CurrentPage + 1
			m.cursor = 0
			return m, m.run(func(ctx context.Context) error { return m.ctrl.GoToPage(ctx, page) }, asLoaded)
		}
	case "left", "h", "pgup":
		if view.Meta.CurrentPage > 1 {
			page := view.Meta.CurrentPage - 1
			m.cursor = 0
			return m, m.run(func(ctx context.Context) error { return m.ctrl.GoToPage(ctx, page) }, asLoaded)
		}
	case "r":
		return m, m.run(m.ctrl.Fetch, asLoaded)
	case "c":
		m.search.Sync("")
		m.cursor = 0
		return m, m.run(func(ctx context.Context) error {
			return m.ctrl.Navigate(ctx, filters.Location{Resource: m.ctrl.Resource()})
		}, asLoaded)
	case "d", "delete":
		if m.cursor < len(view.Items) {
			// A refused default entity reports through the notifier.
			_ = m.ctrl.ConfirmDelete(view.Items[m.cursor])
		}
	}
	return m, nil
}

func (m *Model[T]) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.search.Close()
	return m, tea.Quit
}

func (m *Model[T]) clampCursor() {
	n := len(m.ctrl.View().Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model[T]) View() string {
	if m.quitting {
		return ""
	}
	view := m.ctrl.View()
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.cfg.Title))
	b.WriteString("\n")
	b.WriteString(m.searchLine())
	b.WriteString("\n\n")
	b.WriteString(m.table(view))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(pageLine(view)))
	if m.cfg.Summary != nil && len(view.Items) > 0 {
		b.WriteString("\n")
		b.WriteString(totalStyle.Render(m.cfg.Summary(view.Items)))
	}
	b.WriteString("\n")

	if view.FormState == listview.ConfirmDelete {
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete #%d? [y/n]", view.DeleteID)))
		b.WriteString("\n")
	}
	if m.notice.Message != "" {
		b.WriteString(noticeStyle(m.notice.Level).Render(m.notice.Message))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("/ search · ←/→ page · ↑/↓ select · d delete · c clear · r refresh · q quit"))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
}

func (m *Model[T]) searchLine() string {
	text := m.search.Text()
	if m.searching {
		return searchActiveStyle.Render("Search: " + text + "▏")
	}
	if text == "" {
		return helpStyle.Render("Search: (press /)")
	}
	return searchStyle.Render("Search: " + text)
}

func (m *Model[T]) table(view listview.View[T]) string {
	var b strings.Builder
	header := make([]string, len(m.cfg.Columns))
	for i, col := range m.cfg.Columns {
		header[i] = cell(col.Title, col.Width)
	}
	b.WriteString(headerStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	switch {
	case view.Loading && len(view.Items) == 0:
		b.WriteString(helpStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(view.Items) == 0:
		b.WriteString(helpStyle.Render("No results"))
		b.WriteString("\n")
	}

	for i, item := range view.Items {
		cells := make([]string, len(m.cfg.Columns))
		for j, col := range m.cfg.Columns {
			cells[j] = cell(col.Value(item), col.Width)
		}
		line := strings.Join(cells, " ")
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
