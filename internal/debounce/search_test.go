package debounce

import (
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

type recorder struct {
	values []string
}

func (r *recorder) propagate(v string) { r.values = append(r.values, v) }

func newTestSearch(applied string) (*Search, *fakeClock, *recorder) {
	clock := &fakeClock{}
	rec := &recorder{}
	return New(DefaultQuiet, clock.AfterFunc, applied, rec.propagate), clock, rec
}

func TestOnlyFinalValuePropagates(t *testing.T) {
	s, clock, rec := newTestSearch("")

	for _, v := range []string{"c", "co", "cof", "coff", "coffe", "coffee"} {
		s.Input(v)
		if s.Text() != v {
			t.Fatalf("visible text = %q, want %q", s.Text(), v)
		}
		clock.Advance(200 * time.Millisecond)
	}
	if len(rec.values) != 0 {
		t.Fatalf("propagated during typing: %v", rec.values)
	}

	clock.Advance(600 * time.Millisecond)
	if len(rec.values) != 1 || rec.values[0] != "coffee" {
		t.Fatalf("propagated %v, want [coffee]", rec.values)
	}
}

func TestSingleCharacterNeverPropagates(t *testing.T) {
	s, clock, rec := newTestSearch("")
	s.Input("c")
	clock.Advance(2 * time.Second)
	if len(rec.values) != 0 {
		t.Fatalf("single character propagated: %v", rec.values)
	}

	s.Input("é")
	clock.Advance(time.Second)
	if len(rec.values) != 0 {
		t.Fatalf("single multibyte character propagated: %v", rec.values)
	}
}

func TestClearPropagatesEmpty(t *testing.T) {
	s, clock, rec := newTestSearch("cof")
	s.Input("")
	clock.Advance(900 * time.Millisecond)
	if len(rec.values) != 1 || rec.values[0] != "" {
		t.Fatalf("propagated %v, want one empty value", rec.values)
	}
}

func TestUnchangedValueDoesNotPropagate(t *testing.T) {
	s, clock, rec := newTestSearch("cof")
	s.Input("coff")
	clock.Advance(100 * time.Millisecond)
	s.Input("cof")
	clock.Advance(time.Second)
	if len(rec.values) != 0 {
		t.Fatalf("unchanged value propagated: %v", rec.values)
	}
}

func TestQuietPeriodBoundary(t *testing.T) {
	s, clock, rec := newTestSearch("")
	s.Input("rent")
	clock.Advance(799 * time.Millisecond)
	if len(rec.values) != 0 || !s.Pending() {
		t.Fatalf("fired before quiet period elapsed")
	}
	clock.Advance(time.Millisecond)
	if len(rec.values) != 1 || s.Pending() {
		t.Fatalf("expected exactly one propagation at 800ms, got %v", rec.values)
	}
}

func TestWhitespaceIsTrimmed(t *testing.T) {
	s, clock, rec := newTestSearch("")
	s.Input("  ")
	clock.Advance(time.Second)
	s.Input(" tax ")
	clock.Advance(time.Second)
	if len(rec.values) != 1 || rec.values[0] != "tax" {
		t.Fatalf("propagated %v, want [tax]", rec.values)
	}
}

func TestCloseCancelsPending(t *testing.T) {
	s, clock, rec := newTestSearch("")
	s.Input("groceries")
	s.Close()
	clock.Advance(time.Second)
	s.Input("more")
	clock.Advance(time.Second)
	if len(rec.values) != 0 {
		t.Fatalf("propagated after Close: %v", rec.values)
	}
}

func TestSyncDropsPending(t *testing.T) {
	s, clock, rec := newTestSearch("")
	s.Input("bills")
	s.Sync("")
	clock.Advance(time.Second)
	if len(rec.values) != 0 {
		t.Fatalf("propagated after Sync: %v", rec.values)
	}
	if s.Text() != "" {
		t.Fatalf("Text = %q after Sync", s.Text())
	}
}

func TestShouldPropagate(t *testing.T) {
	tests := []struct {
		value, applied string
		want           bool
	}{
		{"", "", false},
		{"", "cof", true},
		{"c", "", false},
		{"co", "", true},
		{"co", "co", false},
		{"日本", "", true},
	}
	for _, tt := range tests {
		if got := ShouldPropagate(tt.value, tt.applied); got != tt.want {
			t.Errorf("ShouldPropagate(%q, %q) = %v, want %v", tt.value, tt.applied, got, tt.want)
		}
	}
}

func TestRealClockFires(t *testing.T) {
	done := make(chan string, 1)
	s := New(10*time.Millisecond, nil, "", func(v string) { done <- v })
	defer s.Close()
	s.Input("ab")
	select {
	case v := <-done:
		if v != "ab" {
			t.Fatalf("got %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}
