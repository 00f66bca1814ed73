package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

// Instruction paints one shape in device space.
type Instruction struct {
	// Index is the position in the flattened shape sequence.
	Index       int
	Step        int
	Shape       domain.Shape
	Color       Color
	Filled      bool
	StrokeWidth float64
}

// Program is an ordered paint list for one drawing at one cursor.
type Program struct {
	Animal       string
	Cursor       int
	Mode         Mode
	Width        int
	Height       int
	Scale        float64
	Background   Color
	Instructions []Instruction
}

// String encodes the program canonically: one header line, then one line
// per instruction. Equal programs encode to identical text.
func (p Program) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "program %s cursor=%d mode=%s size=%dx%d scale=%s bg=%s\n",
		p.Animal, p.Cursor, p.Mode, p.Width, p.Height, formatFloat(p.Scale), p.Background)
	for _, in := range p.Instructions {
		paint := "stroke"
		if in.Filled {
			paint = "fill"
		}
		fmt.Fprintf(&b, "%d step=%d %s %s width=%s %s\n",
			in.Index, in.Step, paint, in.Color, formatFloat(in.StrokeWidth), describe(in.Shape))
	}
	return b.String()
}

func describe(s domain.Shape) string {
	switch v := s.(type) {
	case domain.Circle:
		return fmt.Sprintf("circle c=%s r=%s", formatPoint(v.Center), formatFloat(v.Radius))
	case domain.Ellipse:
		return fmt.Sprintf("ellipse c=%s rx=%s ry=%s", formatPoint(v.Center), formatFloat(v.RadiusX), formatFloat(v.RadiusY))
	case domain.Square:
		return fmt.Sprintf("square o=%s side=%s", formatPoint(v.Origin), formatFloat(v.Side))
	case domain.Rectangle:
		return fmt.Sprintf("rectangle o=%s w=%s h=%s", formatPoint(v.Origin), formatFloat(v.Size.Width), formatFloat(v.Size.Height))
	case domain.Triangle:
		return fmt.Sprintf("triangle %s %s %s", formatPoint(v.P1), formatPoint(v.P2), formatPoint(v.P3))
	case domain.Line:
		return fmt.Sprintf("line %s %s", formatPoint(v.From), formatPoint(v.To))
	case domain.Polyline:
		pts := make([]string, len(v.Points))
		for i, pt := range v.Points {
			pts[i] = formatPoint(pt)
		}
		return "polyline " + strings.Join(pts, " ")
	}
	return s.Kind().String()
}

// formatFloat rounds to hundredths so encodings stay short and stable.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func formatPoint(p domain.Point) string {
	return formatFloat(p.X) + "," + formatFloat(p.Y)
}
