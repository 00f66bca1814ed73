package render

import "github.com/hammamikhairi/ottodraw/internal/domain"

// Thresholds for the generic heuristics, in canvas units.
const (
	eyeMaxRadius   = 3.0
	eyeOuterMax    = 6.0
	pupilTolerance = 1.5
	dotMaxRadius   = 1.5
	faceTolerance  = 2.0
	noseMaxArea    = 12.0
	bodyMinArea    = 100.0
)

// Generic styles a shape from its order, position and size alone. Rules
// are tried in order and the first that applies wins:
//
//   - pupil: a small circle nested in an earlier eye-sized circle is white
//   - eye: a small circle in the eye band (x 15..35, y 15..25) is black
//   - dot: any tiny circle is black
//   - the first shape gets the animal's base color
//   - face: a circle centred inside a first circle is a lighter base
//   - nose: a small triangle is pink
//   - lines and polylines are ink strokes
//   - ellipses are ink strokes when small, light body fills when large
//   - anything else gets the base color
func Generic(ctx ShapeContext) Style {
	switch s := ctx.Shape.(type) {
	case domain.Circle:
		if s.Radius <= eyeMaxRadius && nestedIn(s, ctx.Prior, eyeOuterMax, pupilTolerance) {
			return fill(White)
		}
		if s.Radius <= eyeMaxRadius && inEyeBand(s.Center) {
			return fill(Black)
		}
		if s.Radius <= dotMaxRadius {
			return fill(Black)
		}
		if ctx.Index == 0 {
			return fill(ctx.Base)
		}
		if first, ok := ctx.Prior[0].(domain.Circle); ok &&
			first.Radius > s.Radius && first.Center.Dist(s.Center) <= faceTolerance {
			return fill(ctx.Base.Lighten(0.45))
		}
		return fill(ctx.Base)
	case domain.Triangle:
		if ctx.Index != 0 && domain.TriangleArea(s) <= noseMaxArea {
			return fill(Pink)
		}
	case domain.Line, domain.Polyline:
		if ctx.Index != 0 {
			return stroke(ctx.Scheme.Ink(), 0)
		}
	case domain.Ellipse:
		if ctx.Index != 0 {
			if ellipseArea(s) <= bodyMinArea {
				return stroke(ctx.Scheme.Ink(), 0)
			}
			return fill(ctx.Base.Lighten(0.3))
		}
	}
	return fill(ctx.Base)
}

func inEyeBand(p domain.Point) bool {
	return p.X >= 15 && p.X <= 35 && p.Y >= 15 && p.Y <= 25
}

// isPupil reports whether s is a small circle nested in an earlier eye.
func isPupil(ctx ShapeContext) bool {
	c, ok := ctx.Shape.(domain.Circle)
	return ok && c.Radius <= eyeMaxRadius && nestedIn(c, ctx.Prior, eyeOuterMax, pupilTolerance)
}
