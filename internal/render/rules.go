package render

import (
	"math"
	"sort"
	"sync"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

// Style is how one shape is painted. Width is in canvas units; zero
// selects the mode's default.
type Style struct {
	Color  Color
	Filled bool
	Width  float64
}

func fill(c Color) Style { return Style{Color: c, Filled: true} }

func stroke(c Color, width float64) Style { return Style{Color: c, Width: width} }

// ShapeContext is everything a coloring rule may inspect. Shape and
// Prior are in canvas units.
type ShapeContext struct {
	Animal string
	Shape  domain.Shape
	// Index is the position in the flattened shape sequence; Prior holds
	// the shapes before it.
	Index  int
	Step   int
	Prior  []domain.Shape
	Base   Color
	Scheme Scheme
}

// RuleFunc styles a shape for a particular species. Returning false
// defers to the generic heuristics.
type RuleFunc func(ShapeContext) (Style, bool)

// Registry maps animal names to their coloring rules.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]RuleFunc)}
}

// Register installs fn for the animal, replacing any existing rule.
func (r *Registry) Register(animal string, fn RuleFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[domain.NameKey(animal)] = fn
}

// Lookup returns the rule for an animal.
func (r *Registry) Lookup(animal string) (RuleFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.rules[domain.NameKey(animal)]
	return fn, ok
}

// Names lists the animals with rules, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rules))
	for n := range r.rules {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with the built-in species rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("fox", foxRule)
	r.Register("duck", duckRule)
	r.Register("whale", whaleRule)
	r.Register("panda", pandaRule)
	r.Register("penguin", penguinRule)
	r.Register("cow", cowRule)
	r.Register("sheep", sheepRule)
	return r
}

// Geometry helpers shared by the rules.

func ellipseArea(e domain.Ellipse) float64 { return math.Pi * e.RadiusX * e.RadiusY }

// nestedIn reports whether c sits inside an earlier, larger circle of at
// most maxOuter radius whose centre is within tol units.
func nestedIn(c domain.Circle, prior []domain.Shape, maxOuter, tol float64) bool {
	for _, s := range prior {
		o, ok := s.(domain.Circle)
		if !ok {
			continue
		}
		if o.Radius > c.Radius && o.Radius <= maxOuter && o.Center.Dist(c.Center) <= tol {
			return true
		}
	}
	return false
}
