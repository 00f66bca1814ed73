package timer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// collectingNotifier captures messages for assertions.
type collectingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *collectingNotifier) Notify(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *collectingNotifier) NotifyUrgent(_ context.Context, msg string) error {
	return n.Notify(context.Background(), msg)
}

func (n *collectingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func (n *collectingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

type stateBox struct {
	mu sync.Mutex
	st domain.SessionState
}

func (b *stateBox) State() domain.SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}

func (b *stateBox) set(st domain.SessionState) {
	b.mu.Lock()
	b.st = st
	b.mu.Unlock()
}

var owl = &domain.AnimalDrawing{Name: "owl", Steps: []domain.Step{
	{Instruction: "Draw an oval body."},
	{Instruction: "Add two ear tufts."},
	{Instruction: "Add big round eyes."},
}}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWatcher(src StateSource, n domain.Notifier, clk *fakeClock) *Watcher {
	return NewWatcher(src, n, logger.New(logger.LevelOff, nil),
		WithIdleAfter(time.Minute), WithClock(clk.now))
}

func TestWatcherNudgesOncePerStep(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	src := &stateBox{st: domain.Drawing("s1", owl, 0, clk.t)}
	n := &collectingNotifier{}
	w := newTestWatcher(src, n, clk)
	ctx := context.Background()

	clk.advance(30 * time.Second)
	if w.Check(ctx) {
		t.Fatal("nudged before the idle threshold")
	}

	clk.advance(45 * time.Second)
	if !w.Check(ctx) {
		t.Fatal("expected a nudge after 75s")
	}
	if got := n.last(); !strings.Contains(got, "step 1 of 3 of the owl") {
		t.Errorf("unexpected message %q", got)
	}

	clk.advance(5 * time.Minute)
	if w.Check(ctx) {
		t.Fatal("second nudge on the same step")
	}

	src.set(domain.Drawing("s1", owl, 1, clk.t))
	clk.advance(2 * time.Minute)
	if !w.Check(ctx) {
		t.Fatal("expected a nudge on the new step")
	}
	if n.count() != 2 {
		t.Fatalf("got %d nudges, want 2", n.count())
	}
}

func TestWatcherIgnoresNonDrawing(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	n := &collectingNotifier{}

	for name, st := range map[string]domain.SessionState{
		"selecting": domain.Selecting(),
		"completed": domain.Completed("s1", owl),
	} {
		t.Run(name, func(t *testing.T) {
			w := newTestWatcher(&stateBox{st: st}, n, clk)
			clk.advance(time.Hour)
			if w.Check(context.Background()) {
				t.Fatal("nudged outside of drawing")
			}
		})
	}
	if n.count() != 0 {
		t.Fatalf("got %d messages", n.count())
	}
}

func TestWatcherRedrawIsNewVisit(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	src := &stateBox{st: domain.Drawing("s1", owl, 0, clk.t)}
	n := &collectingNotifier{}
	w := newTestWatcher(src, n, clk)

	clk.advance(2 * time.Minute)
	w.Check(context.Background())

	src.set(domain.Drawing("s2", owl, 0, clk.t))
	clk.advance(2 * time.Minute)
	if !w.Check(context.Background()) {
		t.Fatal("redraw should allow another nudge")
	}
}

func TestWatcherCustomMessage(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	src := &stateBox{st: domain.Drawing("s1", owl, 2, clk.t)}
	n := &collectingNotifier{}
	w := NewWatcher(src, n, logger.New(logger.LevelOff, nil),
		WithIdleAfter(time.Second), WithClock(clk.now),
		WithMessage(func(st domain.SessionState, idle time.Duration) string { return "take your time" }))

	clk.advance(time.Minute)
	w.Check(context.Background())
	if n.last() != "take your time" {
		t.Fatalf("got %q", n.last())
	}
}

func TestWatcherRun(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	src := &stateBox{st: domain.Drawing("s1", owl, 0, start)}
	n := &collectingNotifier{}
	w := NewWatcher(src, n, logger.New(logger.LevelOff, nil),
		WithWatchInterval(5*time.Millisecond), WithIdleAfter(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for n.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher never nudged")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
	if n.count() != 1 {
		t.Fatalf("got %d nudges, want 1", n.count())
	}
}
