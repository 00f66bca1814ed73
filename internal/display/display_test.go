package display

import (
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/render"
)

func TestStatusOf(t *testing.T) {
	fox := &domain.AnimalDrawing{Name: "fox", Steps: []domain.Step{
		{Instruction: "a"}, {Instruction: "b"}, {Instruction: "c"}, {Instruction: "d"},
	}}
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state domain.SessionState
		want  status
		title string
	}{
		{"selecting", domain.Selecting(), status{}, "OttoDraw"},
		{
			"drawing",
			domain.Drawing("s1", fox, 1, start),
			status{phase: domain.PhaseDrawing, animal: "fox", step: 2, total: 4, onStep: 90 * time.Second},
			"OttoDraw · fox 2/4",
		},
		{
			"completed",
			domain.Completed("s1", fox),
			status{phase: domain.PhaseCompleted, animal: "fox", step: 4, total: 4},
			"OttoDraw · fox done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statusOf(tt.state, start.Add(90*time.Second))
			if got != tt.want {
				t.Errorf("statusOf = %+v, want %+v", got, tt.want)
			}
			if got.title() != tt.title {
				t.Errorf("title = %q, want %q", got.title(), tt.title)
			}
		})
	}
}

func TestFmtDuration(t *testing.T) {
	for d, want := range map[time.Duration]string{
		-time.Second:      "0s",
		42 * time.Second:  "42s",
		125 * time.Second: "2m05s",
	} {
		if got := fmtDuration(d); got != want {
			t.Errorf("fmtDuration(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestRenderCanvas(t *testing.T) {
	r := render.New(render.Options{Mode: render.ModeColor})
	dot := &domain.AnimalDrawing{Name: "dot", Steps: []domain.Step{{
		Instruction: "Draw a big circle.",
		Shapes:      []domain.Shape{domain.Circle{Center: domain.Point{X: 25, Y: 25}, Radius: 20}},
	}}}
	p := r.Render(dot, 0, 20, 20)

	out := RenderCanvas(p, 20)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d rows, want 10", len(lines))
	}
	if n := strings.Count(lines[5], upperHalf); n != 20 {
		t.Errorf("row has %d cells, want 20", n)
	}

	if RenderCanvas(render.Program{}, 10) != "" {
		t.Error("empty program should render nothing")
	}
}

func TestRenderCanvasDownsamples(t *testing.T) {
	r := render.New(render.Options{})
	p := r.Render(&domain.AnimalDrawing{Name: "blank", Steps: []domain.Step{{Instruction: "x"}}}, 0, 100, 60)

	lines := strings.Split(strings.TrimRight(RenderCanvas(p, 40), "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("got %d rows, want 12", len(lines))
	}
}

func TestCentre(t *testing.T) {
	out := centre("ab\nabcd\n", 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "   ") {
			t.Errorf("line %q not padded by 3", l)
		}
	}
}
