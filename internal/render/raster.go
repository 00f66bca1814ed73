package render

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

// curveSegments is how many edges approximate a circle or ellipse.
const curveSegments = 64

// Rasterize paints the program onto a new RGBA image of the program's
// size. Instructions are painted in order over the background.
func Rasterize(p Program) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(p.Background.NRGBA()), image.Point{}, draw.Src)

	z := vector.NewRasterizer(p.Width, p.Height)
	for _, in := range p.Instructions {
		z.Reset(p.Width, p.Height)
		if in.Filled && fillable(in.Shape) {
			addPolygon(z, outline(in.Shape))
		} else {
			addStroke(z, in.Shape, in.StrokeWidth)
		}
		z.Draw(dst, dst.Bounds(), image.NewUniform(in.Color.NRGBA()), image.Point{})
	}
	return dst
}

func fillable(s domain.Shape) bool {
	switch v := s.(type) {
	case domain.Line:
		return false
	case domain.Polyline:
		return len(v.Points) >= 3
	}
	return true
}

// outline returns the closed boundary of a shape, or the path of an open
// one.
func outline(s domain.Shape) []domain.Point {
	switch v := s.(type) {
	case domain.Circle:
		return arc(v.Center, v.Radius, v.Radius)
	case domain.Ellipse:
		return arc(v.Center, v.RadiusX, v.RadiusY)
	case domain.Square:
		return box(v.Origin, v.Side, v.Side)
	case domain.Rectangle:
		return box(v.Origin, v.Size.Width, v.Size.Height)
	case domain.Triangle:
		return []domain.Point{v.P1, v.P2, v.P3}
	case domain.Line:
		return []domain.Point{v.From, v.To}
	case domain.Polyline:
		return v.Points
	}
	return nil
}

func closed(s domain.Shape) bool {
	switch s.Kind() {
	case domain.KindLine, domain.KindPolyline:
		return false
	}
	return true
}

func arc(c domain.Point, rx, ry float64) []domain.Point {
	pts := make([]domain.Point, curveSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / curveSegments
		pts[i] = domain.Point{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)}
	}
	return pts
}

func box(o domain.Point, w, h float64) []domain.Point {
	return []domain.Point{o, {X: o.X + w, Y: o.Y}, {X: o.X + w, Y: o.Y + h}, {X: o.X, Y: o.Y + h}}
}

func addPolygon(z *vector.Rasterizer, pts []domain.Point) {
	if len(pts) < 3 {
		return
	}
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

// addStroke expands every edge into a quad of the given width. Quads and
// caps must share the box winding or their overlaps cancel out.
func addStroke(z *vector.Rasterizer, s domain.Shape, width float64) {
	pts := outline(s)
	half := width / 2
	if len(pts) == 1 {
		p := pts[0]
		addPolygon(z, box(domain.Point{X: p.X - half, Y: p.Y - half}, width, width))
		return
	}

	n := len(pts) - 1
	if closed(s) {
		n = len(pts)
	}
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		addPolygon(z, []domain.Point{
			{X: a.X - nx, Y: a.Y - ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: a.X + nx, Y: a.Y + ny},
		})
		// Square caps hide the gaps between consecutive quads.
		addPolygon(z, box(domain.Point{X: b.X - half, Y: b.Y - half}, width, width))
	}
}
