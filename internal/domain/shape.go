package domain

import "math"

// CanvasUnits is the side of the square logical canvas every drawing is
// authored in. Renderers scale it to device pixels.
const CanvasUnits = 50.0

// Point is a coordinate in canvas units.
type Point struct {
	X float64
	Y float64
}

// Add returns p shifted by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

func (p Point) transform(scale, dx, dy float64) Point {
	return Point{X: p.X*scale + dx, Y: p.Y*scale + dy}
}

// Size is a width/height pair in canvas units.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min Point
	Max Point
}

// Width of the box.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height of the box.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Area of the box.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Center of the box.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// ShapeKind discriminates the shape variants. Its String form is the
// discriminant used by the asset format.
type ShapeKind int

const (
	KindCircle ShapeKind = iota
	KindEllipse
	KindSquare
	KindRectangle
	KindTriangle
	KindLine
	KindPolyline
)

var kindNames = [...]string{
	KindCircle:    "circle",
	KindEllipse:   "ellipse",
	KindSquare:    "square",
	KindRectangle: "rectangle",
	KindTriangle:  "triangle",
	KindLine:      "line",
	KindPolyline:  "polyline",
}

// String returns the wire discriminant for the kind.
func (k ShapeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ShapeKindFromString converts a wire discriminant to a ShapeKind.
func ShapeKindFromString(s string) (ShapeKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return ShapeKind(k), true
		}
	}
	return 0, false
}

// Shape is one drawable primitive. The set of implementations is closed:
// only this package can add variants.
type Shape interface {
	Kind() ShapeKind
	// Bounds returns the axis-aligned bounding box of the shape.
	Bounds() Rect
	// Transform scales every coordinate and length by scale, then
	// translates by (dx, dy).
	Transform(scale, dx, dy float64) Shape
	isShape()
}

// Circle is a circle around Center.
type Circle struct {
	Center Point
	Radius float64
}

// Ellipse is an axis-aligned ellipse around Center.
type Ellipse struct {
	Center  Point
	RadiusX float64
	RadiusY float64
}

// Square has its top-left corner at Origin.
type Square struct {
	Origin Point
	Side   float64
}

// Rectangle has its top-left corner at Origin.
type Rectangle struct {
	Origin Point
	Size   Size
}

// Triangle is a filled-or-stroked three point polygon.
type Triangle struct {
	P1, P2, P3 Point
}

// Line is a single segment.
type Line struct {
	From Point
	To   Point
}

// Polyline is an open path through Points.
type Polyline struct {
	Points []Point
}

func (Circle) Kind() ShapeKind    { return KindCircle }
func (Ellipse) Kind() ShapeKind   { return KindEllipse }
func (Square) Kind() ShapeKind    { return KindSquare }
func (Rectangle) Kind() ShapeKind { return KindRectangle }
func (Triangle) Kind() ShapeKind  { return KindTriangle }
func (Line) Kind() ShapeKind      { return KindLine }
func (Polyline) Kind() ShapeKind  { return KindPolyline }

func (Circle) isShape()    {}
func (Ellipse) isShape()   {}
func (Square) isShape()    {}
func (Rectangle) isShape() {}
func (Triangle) isShape()  {}
func (Line) isShape()      {}
func (Polyline) isShape()  {}

func (c Circle) Bounds() Rect {
	return Rect{
		Min: Point{c.Center.X - c.Radius, c.Center.Y - c.Radius},
		Max: Point{c.Center.X + c.Radius, c.Center.Y + c.Radius},
	}
}

func (e Ellipse) Bounds() Rect {
	return Rect{
		Min: Point{e.Center.X - e.RadiusX, e.Center.Y - e.RadiusY},
		Max: Point{e.Center.X + e.RadiusX, e.Center.Y + e.RadiusY},
	}
}

func (s Square) Bounds() Rect {
	return Rect{Min: s.Origin, Max: Point{s.Origin.X + s.Side, s.Origin.Y + s.Side}}
}

func (r Rectangle) Bounds() Rect {
	return Rect{Min: r.Origin, Max: Point{r.Origin.X + r.Size.Width, r.Origin.Y + r.Size.Height}}
}

func (t Triangle) Bounds() Rect { return boundsOf([]Point{t.P1, t.P2, t.P3}) }

func (l Line) Bounds() Rect { return boundsOf([]Point{l.From, l.To}) }

func (p Polyline) Bounds() Rect { return boundsOf(p.Points) }

func (c Circle) Transform(scale, dx, dy float64) Shape {
	return Circle{Center: c.Center.transform(scale, dx, dy), Radius: c.Radius * scale}
}

func (e Ellipse) Transform(scale, dx, dy float64) Shape {
	return Ellipse{Center: e.Center.transform(scale, dx, dy), RadiusX: e.RadiusX * scale, RadiusY: e.RadiusY * scale}
}

func (s Square) Transform(scale, dx, dy float64) Shape {
	return Square{Origin: s.Origin.transform(scale, dx, dy), Side: s.Side * scale}
}

func (r Rectangle) Transform(scale, dx, dy float64) Shape {
	return Rectangle{
		Origin: r.Origin.transform(scale, dx, dy),
		Size:   Size{Width: r.Size.Width * scale, Height: r.Size.Height * scale},
	}
}

func (t Triangle) Transform(scale, dx, dy float64) Shape {
	return Triangle{
		P1: t.P1.transform(scale, dx, dy),
		P2: t.P2.transform(scale, dx, dy),
		P3: t.P3.transform(scale, dx, dy),
	}
}

func (l Line) Transform(scale, dx, dy float64) Shape {
	return Line{From: l.From.transform(scale, dx, dy), To: l.To.transform(scale, dx, dy)}
}

func (p Polyline) Transform(scale, dx, dy float64) Shape {
	pts := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = pt.transform(scale, dx, dy)
	}
	return Polyline{Points: pts}
}

// TriangleArea returns the unsigned area of t.
func TriangleArea(t Triangle) float64 {
	return math.Abs((t.P2.X-t.P1.X)*(t.P3.Y-t.P1.Y)-(t.P3.X-t.P1.X)*(t.P2.Y-t.P1.Y)) / 2
}

func boundsOf(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}
