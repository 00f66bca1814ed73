package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Step is one stage of a drawing: an instruction and the shapes it adds
// on top of everything drawn so far.
type Step struct {
	Instruction string
	Shapes      []Shape
}

// AnimalDrawing is a pre-authored, step-by-step illustration.
//
// Two drawings are the same entity when their names match
// case-insensitively. Use SameAs, not ==, to compare them.
type AnimalDrawing struct {
	Name       string
	Tier       *int
	Difficulty string
	Steps      []Step
}

// Key returns the normalized catalog key for the drawing.
func (d *AnimalDrawing) Key() string { return NameKey(d.Name) }

// SameAs reports whether d and o name the same animal.
func (d *AnimalDrawing) SameAs(o *AnimalDrawing) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Key() == o.Key()
}

// TierOr returns the drawing's tier, or def when none was authored.
func (d *AnimalDrawing) TierOr(def int) int {
	if d.Tier == nil {
		return def
	}
	return *d.Tier
}

// StepCount returns the number of steps.
func (d *AnimalDrawing) StepCount() int { return len(d.Steps) }

// ClampStep pins i into [0, StepCount()-1].
func (d *AnimalDrawing) ClampStep(i int) int {
	if i < 0 {
		return 0
	}
	if n := len(d.Steps); i >= n {
		return n - 1
	}
	return i
}

// Flatten returns all shapes from steps 0..cursor inclusive in step order,
// then shape order, together with the step each shape came from.
func (d *AnimalDrawing) Flatten(cursor int) (shapes []Shape, steps []int) {
	if len(d.Steps) == 0 {
		return nil, nil
	}
	cursor = d.ClampStep(cursor)
	for i := 0; i <= cursor; i++ {
		for _, s := range d.Steps[i].Shapes {
			shapes = append(shapes, s)
			steps = append(steps, i)
		}
	}
	return shapes, steps
}

// NameKey normalizes an animal name for keyed lookup: NFC composed,
// lower-cased, trimmed, inner whitespace collapsed.
func NameKey(name string) string {
	name = norm.NFC.String(name)
	// A Caser is stateful and not safe for concurrent use.
	name = cases.Lower(language.Und).String(name)
	return strings.Join(strings.Fields(name), " ")
}

// IntPtr is a helper for building optional tiers.
func IntPtr(v int) *int { return &v }
