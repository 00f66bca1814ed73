package render

import "github.com/hammamikhairi/ottodraw/internal/domain"

// Species rules. Each knows the authored shape order of its animal and
// returns false for shapes the generic heuristics already handle.

func foxRule(ctx ShapeContext) (Style, bool) {
	switch s := ctx.Shape.(type) {
	case domain.Triangle:
		return fill(Orange), true
	case domain.Circle:
		if s.Center.Y > 30 {
			return fill(Black), true
		}
	case domain.Polyline:
		return stroke(White, 0.6), true
	}
	return Style{}, false
}

func duckRule(ctx ShapeContext) (Style, bool) {
	switch s := ctx.Shape.(type) {
	case domain.Circle:
		if ctx.Index == 0 {
			return fill(Yellow), true
		}
	case domain.Ellipse:
		if ellipseArea(s) > bodyMinArea {
			return fill(Yellow), true
		}
	case domain.Triangle:
		return fill(Orange), true
	case domain.Polyline:
		return stroke(Gold, 0.5), true
	}
	return Style{}, false
}

func whaleRule(ctx ShapeContext) (Style, bool) {
	switch ctx.Shape.(type) {
	case domain.Ellipse:
		if ctx.Index == 0 {
			return fill(Blue), true
		}
		return fill(NavyBlue), true
	case domain.Triangle:
		return fill(Blue), true
	case domain.Line:
		return stroke(SkyBlue, 0.6), true
	case domain.Polyline:
		return stroke(SkyBlue, 0.4), true
	}
	return Style{}, false
}

// The panda's head is an outline only, so the white face reads against
// either background.
func pandaRule(ctx ShapeContext) (Style, bool) {
	switch s := ctx.Shape.(type) {
	case domain.Circle:
		switch {
		case ctx.Index == 0:
			return stroke(ctx.Scheme.Foreground(), 0.6), true
		case s.Radius >= 4:
			return fill(Black), true
		default:
			return fill(White), true
		}
	case domain.Ellipse:
		return fill(Black), true
	case domain.Polyline:
		return stroke(Black, 0.4), true
	}
	return Style{}, false
}

func penguinRule(ctx ShapeContext) (Style, bool) {
	switch s := ctx.Shape.(type) {
	case domain.Ellipse:
		switch {
		case ctx.Index == 0:
			return fill(Charcoal), true
		case ellipseArea(s) > bodyMinArea:
			return fill(White), true
		default:
			return fill(Orange), true
		}
	case domain.Circle:
		if isPupil(ctx) {
			return fill(Black), true
		}
		return fill(White), true
	case domain.Triangle:
		return fill(Orange), true
	}
	return Style{}, false
}

func cowRule(ctx ShapeContext) (Style, bool) {
	if ctx.Index == 0 {
		return fill(White), true
	}
	switch s := ctx.Shape.(type) {
	case domain.Triangle:
		return fill(Tan), true
	case domain.Ellipse:
		if s.RadiusX <= 4 && s.RadiusY <= 4 {
			return fill(Black), true
		}
		return fill(Pink), true
	case domain.Circle:
		if s.Center.Y > 28 {
			return fill(Charcoal), true
		}
	}
	return Style{}, false
}

func sheepRule(ctx ShapeContext) (Style, bool) {
	switch s := ctx.Shape.(type) {
	case domain.Ellipse:
		if ctx.Index == 0 {
			return fill(Wool), true
		}
		return fill(Charcoal), true
	case domain.Circle:
		if s.Radius >= 4 {
			return fill(Wool), true
		}
		return fill(White), true
	case domain.Line:
		return stroke(Charcoal, 0.8), true
	}
	return Style{}, false
}
