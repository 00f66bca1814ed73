package render

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottodraw/internal/domain"
)

// EncodeSVG renders a program as a standalone SVG document.
func EncodeSVG(p Program) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		p.Width, p.Height, p.Width, p.Height)
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <rect width="100%%" height="100%%" fill="%s" />`+"\n", p.Background)

	for _, in := range p.Instructions {
		b.WriteString("  ")
		b.WriteString(svgElement(in))
		b.WriteString("\n")
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func svgElement(in Instruction) string {
	paint := svgPaint(in)
	switch s := in.Shape.(type) {
	case domain.Circle:
		return fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" %s />`,
			formatFloat(s.Center.X), formatFloat(s.Center.Y), formatFloat(s.Radius), paint)
	case domain.Ellipse:
		return fmt.Sprintf(`<ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s />`,
			formatFloat(s.Center.X), formatFloat(s.Center.Y), formatFloat(s.RadiusX), formatFloat(s.RadiusY), paint)
	case domain.Square:
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" %s />`,
			formatFloat(s.Origin.X), formatFloat(s.Origin.Y), formatFloat(s.Side), formatFloat(s.Side), paint)
	case domain.Rectangle:
		return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" %s />`,
			formatFloat(s.Origin.X), formatFloat(s.Origin.Y), formatFloat(s.Size.Width), formatFloat(s.Size.Height), paint)
	case domain.Triangle:
		return fmt.Sprintf(`<polygon points="%s" %s />`, svgPoints(s.P1, s.P2, s.P3), paint)
	case domain.Line:
		return fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" %s />`,
			formatFloat(s.From.X), formatFloat(s.From.Y), formatFloat(s.To.X), formatFloat(s.To.Y), svgStroke(in))
	case domain.Polyline:
		if in.Filled {
			return fmt.Sprintf(`<polygon points="%s" %s />`, svgPoints(s.Points...), paint)
		}
		return fmt.Sprintf(`<polyline points="%s" %s />`, svgPoints(s.Points...), paint)
	}
	return fmt.Sprintf(`<!-- unsupported %s -->`, in.Shape.Kind())
}

func svgPaint(in Instruction) string {
	if in.Filled {
		return fmt.Sprintf(`fill="%s"`, in.Color)
	}
	return svgStroke(in)
}

func svgStroke(in Instruction) string {
	return fmt.Sprintf(`fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"`,
		in.Color, formatFloat(in.StrokeWidth))
}

func svgPoints(pts ...domain.Point) string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = formatFloat(p.X) + "," + formatFloat(p.Y)
	}
	return strings.Join(out, " ")
}
