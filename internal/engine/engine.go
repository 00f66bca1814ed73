// Package engine implements the drawing session state machine:
// Selecting, then Drawing step by step, then Completed.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/ottodraw/internal/catalog"
	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
	"github.com/hammamikhairi/ottodraw/internal/render"
	"github.com/hammamikhairi/ottodraw/internal/resolver"
)

// Option configures the engine.
type Option func(*Engine)

// WithAutoAcceptSuggestion starts a close fuzzy match without asking.
// On by default.
func WithAutoAcceptSuggestion(on bool) Option {
	return func(e *Engine) { e.acceptSuggestion = on }
}

// WithAutoAcceptFallback starts the first fallback alternative without
// asking. Off by default.
func WithAutoAcceptFallback(on bool) Option {
	return func(e *Engine) { e.acceptFallback = on }
}

// WithClock overrides time.Now for step timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the session ID source.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithHistory records every drawing session in store.
func WithHistory(store domain.HistoryStore) Option {
	return func(e *Engine) { e.history = store }
}

// Outcome reports the state after a command. Result is set when the
// command resolved user text; Started is true when a new drawing began.
type Outcome struct {
	State   domain.SessionState
	Result  *resolver.Result
	Started bool
	// Offered lists the animals the user may now pick by number.
	Offered []*domain.AnimalDrawing
}

// Engine owns the single session state. All methods are safe for
// concurrent use; mutations are serialized.
type Engine struct {
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	renderer *render.Renderer
	log      *logger.Logger

	acceptSuggestion bool
	acceptFallback   bool
	now              func() time.Time
	newID            func() string
	history          domain.HistoryStore

	mu      sync.Mutex
	state   domain.SessionState
	offered []*domain.AnimalDrawing
	started time.Time
}

// New creates an engine in the Selecting state.
func New(c *catalog.Catalog, res *resolver.Resolver, rend *render.Renderer, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:          c,
		resolver:         res,
		renderer:         rend,
		log:              log,
		acceptSuggestion: true,
		now:              time.Now,
		newID:            uuid.NewString,
		state:            domain.Selecting(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine draws from.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// State returns a copy of the current state.
func (e *Engine) State() domain.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Offered returns the alternatives from the last unsuccessful selection.
func (e *Engine) Offered() []*domain.AnimalDrawing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*domain.AnimalDrawing(nil), e.offered...)
}

// Select resolves input and, depending on the match and the acceptance
// policy, starts drawing the animal. Selecting from Drawing or Completed
// switches animals. An unresolvable input leaves the state unchanged and
// returns domain.ErrNotFound; blank input returns domain.ErrEmptyInput.
func (e *Engine) Select(input string) (Outcome, error) {
	if strings.TrimSpace(input) == "" {
		return Outcome{State: e.State()}, domain.ErrEmptyInput
	}
	res := e.resolver.Resolve(input)

	e.mu.Lock()
	defer e.mu.Unlock()

	out := Outcome{Result: &res}
	if err := res.Err(); err != nil {
		out.State = e.state
		return out, fmt.Errorf("resolving %q: %w", input, err)
	}

	switch res.Kind {
	case resolver.KindExact:
		e.startLocked(res.Drawing)
		out.Started = true
	case resolver.KindSuggestion:
		if e.acceptSuggestion {
			e.startLocked(res.Drawing)
			out.Started = true
		} else {
			e.offered = []*domain.AnimalDrawing{res.Drawing}
		}
	case resolver.KindFallback:
		if e.acceptFallback {
			e.startLocked(res.Alternatives[0])
			out.Started = true
		} else {
			e.offered = res.Alternatives
		}
	}

	e.log.Debug("select %q: %s started=%v", input, res.Kind, out.Started)
	out.State = e.state
	out.Offered = append([]*domain.AnimalDrawing(nil), e.offered...)
	return out, nil
}

// Start begins drawing the named animal, which must match exactly.
func (e *Engine) Start(name string) (domain.SessionState, error) {
	d, ok := e.catalog.Get(name)
	if !ok {
		return e.State(), fmt.Errorf("animal %q: %w", name, domain.ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked(d)
	return e.state, nil
}

// Pick starts the n-th (1-based) animal from the last offer.
func (e *Engine) Pick(n int) (domain.SessionState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 1 || n > len(e.offered) {
		return e.state, fmt.Errorf("pick %d of %d offered: %w", n, len(e.offered), domain.ErrNotFound)
	}
	e.startLocked(e.offered[n-1])
	return e.state, nil
}

// Next advances one step, completing the drawing after the last step.
// Outside Drawing it changes nothing; in Selecting it reports
// domain.ErrNoAnimal.
func (e *Engine) Next() (domain.SessionState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case domain.PhaseSelecting:
		return e.state, domain.ErrNoAnimal
	case domain.PhaseDrawing:
		if e.state.IsLastStep() {
			e.state = domain.Completed(e.state.ID, e.state.Animal)
			e.log.Info("completed %s (session %s)", e.state.Animal.Name, e.state.ID)
		} else {
			e.state = domain.Drawing(e.state.ID, e.state.Animal, e.state.StepIndex+1, e.now())
		}
		e.recordLocked()
	}
	return e.state, nil
}

// Back returns to the previous step; on the first step it does nothing.
func (e *Engine) Back() (domain.SessionState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.Phase {
	case domain.PhaseSelecting:
		return e.state, domain.ErrNoAnimal
	case domain.PhaseDrawing:
		if e.state.StepIndex > 0 {
			e.state = domain.Drawing(e.state.ID, e.state.Animal, e.state.StepIndex-1, e.now())
			e.recordLocked()
		}
	}
	return e.state, nil
}

// Home returns to Selecting from any state.
func (e *Engine) Home() domain.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = domain.Selecting()
	e.offered = nil
	return e.state
}

// Redraw restarts the current animal from its first step.
func (e *Engine) Redraw() (domain.SessionState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Animal == nil {
		return e.state, domain.ErrNoAnimal
	}
	e.startLocked(e.state.Animal)
	return e.state, nil
}

// Apply executes a parsed command. Commands that do not change session
// state (repeat, list, help, quit, unknown) return the state untouched.
func (e *Engine) Apply(cmd domain.Command) (Outcome, error) {
	var (
		st  domain.SessionState
		err error
	)
	switch cmd.Type {
	case domain.CommandDrawAnimal:
		if n, convErr := strconv.Atoi(cmd.Animal); convErr == nil {
			st, err = e.Pick(n)
			return Outcome{State: st, Started: err == nil}, err
		}
		return e.Select(cmd.Animal)
	case domain.CommandNext, domain.CommandDone:
		st, err = e.Next()
	case domain.CommandBack:
		st, err = e.Back()
	case domain.CommandHome:
		st = e.Home()
	case domain.CommandRedraw:
		st, err = e.Redraw()
		return Outcome{State: st, Started: err == nil}, err
	default:
		st = e.State()
	}
	return Outcome{State: st}, err
}

// CurrentStep returns the step being drawn.
func (e *Engine) CurrentStep() (domain.Step, bool) {
	return e.State().CurrentStep()
}

// Program renders the current cursor, or the finished drawing once
// Completed. It returns false while Selecting.
func (e *Engine) Program(width, height int) (render.Program, bool) {
	st := e.State()
	if st.Animal == nil {
		return render.Program{}, false
	}
	return e.renderer.Render(st.Animal, st.StepIndex, width, height), true
}

// Related suggests other animals to try after the current one.
func (e *Engine) Related() []*domain.AnimalDrawing {
	st := e.State()
	if st.Animal == nil {
		return nil
	}
	return e.resolver.RelatedTo(st.Animal.Name)
}

// History returns the recorded sessions, oldest first. It is empty
// without WithHistory.
func (e *Engine) History(ctx context.Context) ([]domain.DrawingRecord, error) {
	if e.history == nil {
		return nil, nil
	}
	return e.history.List(ctx)
}

func (e *Engine) startLocked(d *domain.AnimalDrawing) {
	e.started = e.now()
	e.state = domain.Drawing(e.newID(), d, 0, e.started)
	e.offered = nil
	e.log.Info("started %s (session %s, %d steps)", d.Name, e.state.ID, len(d.Steps))
	e.recordLocked()
}

func (e *Engine) recordLocked() {
	if e.history == nil {
		return
	}
	rec, ok := e.state.Record(e.started, e.now())
	if !ok {
		return
	}
	if err := e.history.Save(context.Background(), rec); err != nil {
		e.log.Warn("saving history for %s: %v", rec.SessionID, err)
	}
}
