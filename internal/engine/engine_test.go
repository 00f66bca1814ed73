package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/catalog"
	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
	"github.com/hammamikhairi/ottodraw/internal/render"
	"github.com/hammamikhairi/ottodraw/internal/resolver"
	"github.com/hammamikhairi/ottodraw/internal/storage"
)

func fixture(name string, tier, steps int) *domain.AnimalDrawing {
	d := &domain.AnimalDrawing{Name: name, Tier: domain.IntPtr(tier)}
	for i := 0; i < steps; i++ {
		d.Steps = append(d.Steps, domain.Step{
			Instruction: fmt.Sprintf("%s step %d", name, i+1),
			Shapes:      []domain.Shape{domain.Circle{Center: domain.Point{X: 25, Y: 25}, Radius: float64(10 - i)}},
		})
	}
	return d
}

func setupEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	c := catalog.New([]*domain.AnimalDrawing{
		fixture("cat", 1, 2),
		fixture("dog", 1, 2),
		fixture("elephant", 3, 4),
	})
	res := resolver.New(c, resolver.WithRandom(rand.New(rand.NewSource(1))))
	n := 0
	opts = append([]Option{WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	})}, opts...)
	return New(c, res, render.New(render.Options{}), log, opts...)
}

func TestScenarioDog(t *testing.T) {
	eng := setupEngine(t)

	out, err := eng.Select("dog")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !out.Started || out.State.Phase != domain.PhaseDrawing || out.State.StepIndex != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.State.Animal.Key() != "dog" || out.State.ID != "session-1" {
		t.Fatalf("unexpected state %+v", out.State)
	}

	st, _ := eng.Next()
	if st.Phase != domain.PhaseDrawing || st.StepIndex != 1 {
		t.Fatalf("after next: %s %d", st.Phase, st.StepIndex)
	}
	st, _ = eng.Next()
	if st.Phase != domain.PhaseCompleted || st.Animal.Key() != "dog" {
		t.Fatalf("after second next: %s", st.Phase)
	}
	st, _ = eng.Next()
	if st.Phase != domain.PhaseCompleted {
		t.Fatalf("next past completion changed phase to %s", st.Phase)
	}
}

func TestCursorBounds(t *testing.T) {
	eng := setupEngine(t)
	if _, err := eng.Start("elephant"); err != nil {
		t.Fatalf("start: %v", err)
	}

	st, _ := eng.Back()
	if st.StepIndex != 0 || st.Phase != domain.PhaseDrawing {
		t.Fatalf("back at 0 should be a no-op, got %d", st.StepIndex)
	}

	for i := 1; i < 4; i++ {
		st, _ = eng.Next()
		if st.StepIndex != i {
			t.Fatalf("expected step %d, got %d", i, st.StepIndex)
		}
	}
	st, _ = eng.Back()
	if st.StepIndex != 2 {
		t.Fatalf("back: expected 2, got %d", st.StepIndex)
	}
	st, _ = eng.Next()
	st, _ = eng.Next()
	if st.Phase != domain.PhaseCompleted || st.StepIndex != 3 {
		t.Fatalf("expected completed at last index, got %s %d", st.Phase, st.StepIndex)
	}
}

func TestSelectionPolicy(t *testing.T) {
	t.Run("suggestion accepted by default", func(t *testing.T) {
		out, err := setupEngine(t).Select("dg")
		if err != nil || !out.Started || out.State.Animal.Key() != "dog" {
			t.Fatalf("unexpected %+v %v", out, err)
		}
		if out.Result.Kind != resolver.KindSuggestion {
			t.Fatalf("kind = %s", out.Result.Kind)
		}
	})

	t.Run("suggestion offered when auto accept is off", func(t *testing.T) {
		eng := setupEngine(t, WithAutoAcceptSuggestion(false))
		out, err := eng.Select("dg")
		if err != nil || out.Started || out.State.Phase != domain.PhaseSelecting {
			t.Fatalf("unexpected %+v %v", out, err)
		}
		if len(out.Offered) != 1 || out.Offered[0].Key() != "dog" {
			t.Fatalf("offered = %v", out.Offered)
		}
		st, err := eng.Pick(1)
		if err != nil || st.Animal.Key() != "dog" {
			t.Fatalf("pick: %+v %v", st, err)
		}
	})

	t.Run("fallback offered by default", func(t *testing.T) {
		eng := setupEngine(t)
		out, err := eng.Select("zzz")
		if err != nil || out.Started || len(out.Offered) != 2 {
			t.Fatalf("unexpected %+v %v", out, err)
		}
		if _, err := eng.Pick(3); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("pick out of range: %v", err)
		}
		st, err := eng.Pick(2)
		if err != nil || st.Animal != out.Offered[1] {
			t.Fatalf("pick 2: %+v %v", st, err)
		}
		if len(eng.Offered()) != 0 {
			t.Fatal("offer should clear once a drawing starts")
		}
	})

	t.Run("fallback accepted when enabled", func(t *testing.T) {
		out, err := setupEngine(t, WithAutoAcceptFallback(true)).Select("zzz")
		if err != nil || !out.Started || out.State.Animal != out.Result.Alternatives[0] {
			t.Fatalf("unexpected %+v %v", out, err)
		}
	})
}

func TestSelectEmptyCatalog(t *testing.T) {
	c := catalog.New(nil)
	eng := New(c, resolver.New(c), render.New(render.Options{}), logger.New(logger.LevelOff, nil))
	out, err := eng.Select("cat")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if out.State.Phase != domain.PhaseSelecting {
		t.Fatalf("state changed to %s", out.State.Phase)
	}
}

func TestSelectBlankInput(t *testing.T) {
	eng := setupEngine(t)
	for _, in := range []string{"", "   ", "\t"} {
		out, err := eng.Select(in)
		if !errors.Is(err, domain.ErrEmptyInput) {
			t.Fatalf("Select(%q) err = %v, want ErrEmptyInput", in, err)
		}
		if out.Result != nil || out.State.Phase != domain.PhaseSelecting || len(eng.Offered()) != 0 {
			t.Fatalf("Select(%q) changed state: %+v", in, out)
		}
	}
}

func TestSelectSwitchesAnimal(t *testing.T) {
	eng := setupEngine(t)
	eng.Select("cat")
	eng.Next()

	out, err := eng.Select("elephant")
	if err != nil || out.State.Animal.Key() != "elephant" || out.State.StepIndex != 0 {
		t.Fatalf("unexpected %+v %v", out.State, err)
	}
	if out.State.ID != "session-2" {
		t.Fatalf("expected a fresh session id, got %s", out.State.ID)
	}
}

func TestHomeAndRedraw(t *testing.T) {
	eng := setupEngine(t)

	if _, err := eng.Redraw(); !errors.Is(err, domain.ErrNoAnimal) {
		t.Fatalf("redraw while selecting: %v", err)
	}
	if _, err := eng.Next(); !errors.Is(err, domain.ErrNoAnimal) {
		t.Fatalf("next while selecting: %v", err)
	}

	eng.Start("cat")
	eng.Next()
	eng.Next()
	if eng.State().Phase != domain.PhaseCompleted {
		t.Fatal("expected completed")
	}

	st, err := eng.Redraw()
	if err != nil || st.Phase != domain.PhaseDrawing || st.StepIndex != 0 || st.Animal.Key() != "cat" {
		t.Fatalf("redraw: %+v %v", st, err)
	}

	if st := eng.Home(); st.Phase != domain.PhaseSelecting || st.Animal != nil {
		t.Fatalf("home: %+v", st)
	}
}

func TestApply(t *testing.T) {
	eng := setupEngine(t)

	tests := []struct {
		cmd       domain.Command
		wantPhase domain.SessionPhase
		wantStep  int
	}{
		{domain.Command{Type: domain.CommandDrawAnimal, Animal: "Dog"}, domain.PhaseDrawing, 0},
		{domain.Command{Type: domain.CommandRepeat}, domain.PhaseDrawing, 0},
		{domain.Command{Type: domain.CommandNext}, domain.PhaseDrawing, 1},
		{domain.Command{Type: domain.CommandBack}, domain.PhaseDrawing, 0},
		{domain.Command{Type: domain.CommandDone}, domain.PhaseDrawing, 1},
		{domain.Command{Type: domain.CommandDone}, domain.PhaseCompleted, 1},
		{domain.Command{Type: domain.CommandRedraw}, domain.PhaseDrawing, 0},
		{domain.Command{Type: domain.CommandHome}, domain.PhaseSelecting, 0},
	}
	for _, tt := range tests {
		out, err := eng.Apply(tt.cmd)
		if err != nil {
			t.Fatalf("%s: %v", tt.cmd.Type, err)
		}
		if out.State.Phase != tt.wantPhase || out.State.StepIndex != tt.wantStep {
			t.Fatalf("%s: got %s/%d, want %s/%d", tt.cmd.Type, out.State.Phase, out.State.StepIndex, tt.wantPhase, tt.wantStep)
		}
	}
}

func TestApplyNumberedPick(t *testing.T) {
	eng := setupEngine(t)
	eng.Select("qqq")
	out, err := eng.Apply(domain.Command{Type: domain.CommandDrawAnimal, Animal: "1"})
	if err != nil || !out.Started || out.State.Phase != domain.PhaseDrawing {
		t.Fatalf("unexpected %+v %v", out, err)
	}
}

func TestStepTimestamps(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	eng := setupEngine(t, WithClock(func() time.Time { return now }))

	st, _ := eng.Start("cat")
	if !st.StepStartedAt.Equal(now) {
		t.Fatalf("started at %v, want %v", st.StepStartedAt, now)
	}
	now = now.Add(time.Minute)
	st, _ = eng.Next()
	if !st.StepStartedAt.Equal(now) {
		t.Fatalf("next step started at %v, want %v", st.StepStartedAt, now)
	}
}

func TestProgramAndRelated(t *testing.T) {
	eng := setupEngine(t)
	if _, ok := eng.Program(50, 50); ok {
		t.Fatal("no program while selecting")
	}

	eng.Start("elephant")
	eng.Next()
	p, ok := eng.Program(100, 100)
	if !ok || len(p.Instructions) != 2 || p.Cursor != 1 {
		t.Fatalf("unexpected program %+v", p)
	}
	if step, ok := eng.CurrentStep(); !ok || step.Instruction != "elephant step 2" {
		t.Fatalf("current step %+v", step)
	}

	for _, d := range eng.Related() {
		if d.Key() == "elephant" {
			t.Fatal("related should exclude the current animal")
		}
	}
}

func TestDefaultIDsAreUnique(t *testing.T) {
	c := catalog.New([]*domain.AnimalDrawing{fixture("cat", 1, 1)})
	eng := New(c, resolver.New(c), render.New(render.Options{}), logger.New(logger.LevelOff, nil))
	a, _ := eng.Start("cat")
	b, _ := eng.Redraw()
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}

func TestHistory(t *testing.T) {
	store := storage.NewMemoryStore(logger.New(logger.LevelOff, nil))
	eng := setupEngine(t, WithHistory(store))
	ctx := context.Background()

	if list, _ := eng.History(ctx); len(list) != 0 {
		t.Fatalf("history before drawing = %v", list)
	}

	eng.Select("cat")
	eng.Next()
	eng.Next()
	eng.Select("elephant")
	eng.Next()
	eng.Home()

	list, err := eng.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %+v", list)
	}
	cat, elephant := list[0], list[1]
	if cat.Animal != "cat" || !cat.Finished || cat.StepsDone != 2 {
		t.Errorf("cat record = %+v", cat)
	}
	if elephant.Animal != "elephant" || elephant.Finished || elephant.StepsDone != 2 || elephant.TotalSteps != 4 {
		t.Errorf("elephant record = %+v", elephant)
	}
}

func TestHistoryDisabled(t *testing.T) {
	eng := setupEngine(t)
	eng.Select("dog")
	if list, err := eng.History(context.Background()); list != nil || err != nil {
		t.Errorf("History = %v, %v", list, err)
	}
}
