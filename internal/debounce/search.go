// Package debounce delays search input until typing pauses.
package debounce

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultQuiet is the pause after the last keystroke before a search fires.
const DefaultQuiet = 800 * time.Millisecond

// Timer is the subset of *time.Timer the trigger needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

// RealClock schedules with time.AfterFunc.
func RealClock(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Search holds the visible text of a search box and propagates it once input
// stabilizes. A value propagates only when it differs from the applied one
// and is either empty or at least two characters long.
type Search struct {
	mu        sync.Mutex
	quiet     time.Duration
	after     AfterFunc
	propagate func(string)

	text    string
	applied string
	pending Timer
	gen     uint64
	closed  bool
}

// New creates a trigger. applied is the value currently reflected in the
// query; propagate is called with the new value, from the timer goroutine.
// A nil clock uses RealClock and a non-positive quiet uses DefaultQuiet.
func New(quiet time.Duration, clock AfterFunc, applied string, propagate func(string)) *Search {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	if clock == nil {
		clock = RealClock
	}
	return &Search{
		quiet:     quiet,
		after:     clock,
		propagate: propagate,
		text:      applied,
		applied:   applied,
	}
}

// Input records a keystroke. The visible text updates immediately and the
// quiet timer restarts.
func (s *Search) Input(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.text = value
	if s.pending != nil {
		s.pending.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending = s.after(s.quiet, func() { s.fire(gen) })
}

func (s *Search) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	value := strings.TrimSpace(s.text)
	if !ShouldPropagate(value, s.applied) {
		s.mu.Unlock()
		return
	}
	s.applied = value
	s.mu.Unlock()

	s.propagate(value)
}

// ShouldPropagate reports whether value may replace applied.
func ShouldPropagate(value, applied string) bool {
	if value == applied {
		return false
	}
	n := utf8.RuneCountInString(value)
	return n == 0 || n >= 2
}

// Text is the value shown in the input box.
func (s *Search) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Sync records a value applied by other means (back navigation, clear
// filters) without propagating it.
func (s *Search) Sync(applied string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
	s.applied = applied
	s.text = applied
}

// Pending reports whether a propagation is scheduled.
func (s *Search) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Close cancels any pending propagation. Later input is ignored.
func (s *Search) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
}
