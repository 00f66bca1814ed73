// Package render turns a drawing and a step cursor into a paint program:
// an ordered list of device-space shapes with their colors and strokes.
package render

import (
	"fmt"
	"math"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

// Mode selects how shapes are colored.
type Mode int

const (
	// ModeOutline draws everything in a single ink. The first shape is
	// the outline and is stroked; later shapes are filled except
	// ellipses, lines and polylines.
	ModeOutline Mode = iota
	// ModeColor infers per-shape colors from species rules and generic
	// position/size heuristics.
	ModeColor
)

// String returns the flag name of the mode.
func (m Mode) String() string {
	if m == ModeColor {
		return "color"
	}
	return "outline"
}

// ParseMode accepts "outline" or "color".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "outline", "mono":
		return ModeOutline, nil
	case "color", "colour":
		return ModeColor, nil
	}
	return ModeOutline, fmt.Errorf("unknown render mode %q", s)
}

// Stroke widths in canvas units, and their device-pixel floors.
const (
	outlineStroke = 0.5
	colorStroke   = 0.35
	outlineFloor  = 2.0
	colorFloor    = 1.0
)

// Options configures a Renderer.
type Options struct {
	Mode   Mode
	Scheme Scheme
	// Rules holds species overrides for color mode. Nil means
	// DefaultRegistry.
	Rules *Registry
}

// Renderer is stateless after construction and safe for concurrent use.
type Renderer struct {
	opts Options
}

// New creates a renderer.
func New(opts Options) *Renderer {
	if opts.Rules == nil {
		opts.Rules = DefaultRegistry()
	}
	return &Renderer{opts: opts}
}

// Mode returns the configured mode.
func (r *Renderer) Mode() Mode { return r.opts.Mode }

// Render builds the paint program for steps [0, cursor] of d on a
// width x height surface. The cursor is clamped into the drawing's step
// range. The 50-unit canvas is scaled uniformly and centred.
func (r *Renderer) Render(d *domain.AnimalDrawing, cursor, width, height int) Program {
	if width <= 0 {
		width = int(domain.CanvasUnits)
	}
	if height <= 0 {
		height = int(domain.CanvasUnits)
	}

	scale := math.Min(float64(width), float64(height)) / domain.CanvasUnits
	dx := (float64(width) - domain.CanvasUnits*scale) / 2
	dy := (float64(height) - domain.CanvasUnits*scale) / 2

	p := Program{
		Animal:     d.Key(),
		Mode:       r.opts.Mode,
		Width:      width,
		Height:     height,
		Scale:      scale,
		Background: r.opts.Scheme.Background(),
	}
	if len(d.Steps) == 0 {
		return p
	}
	p.Cursor = d.ClampStep(cursor)

	shapes, steps := d.Flatten(p.Cursor)
	p.Instructions = make([]Instruction, 0, len(shapes))
	for i, s := range shapes {
		st := r.style(d.Key(), shapes, steps, i)

		floor := colorFloor
		if r.opts.Mode == ModeOutline {
			floor = outlineFloor
		}
		p.Instructions = append(p.Instructions, Instruction{
			Index:       i,
			Step:        steps[i],
			Shape:       s.Transform(scale, dx, dy),
			Color:       st.Color,
			Filled:      st.Filled,
			StrokeWidth: math.Max(st.Width*scale, floor),
		})
	}
	return p
}

func (r *Renderer) style(animal string, shapes []domain.Shape, steps []int, i int) Style {
	s := shapes[i]
	if r.opts.Mode == ModeOutline {
		return outlineStyle(s, i, r.opts.Scheme.Foreground())
	}

	ctx := ShapeContext{
		Animal: animal,
		Shape:  s,
		Index:  i,
		Step:   steps[i],
		Prior:  shapes[:i],
		Base:   BaseColor(animal),
		Scheme: r.opts.Scheme,
	}

	var st Style
	ok := false
	if rule, found := r.opts.Rules.Lookup(animal); found {
		st, ok = rule(ctx)
	}
	if !ok {
		st = Generic(ctx)
	}
	if st.Width == 0 {
		st.Width = colorStroke
	}
	return st
}

func outlineStyle(s domain.Shape, i int, ink Color) Style {
	st := Style{Color: ink, Filled: true, Width: outlineStroke}
	if i == 0 {
		st.Filled = false
		return st
	}
	switch s.Kind() {
	case domain.KindEllipse, domain.KindLine, domain.KindPolyline:
		st.Filled = false
	}
	return st
}
