package display

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottodraw/internal/render"
)

// upperHalf paints the top pixel in the foreground colour and the bottom
// pixel in the background colour, two pixels per cell.
const upperHalf = "▀"

// RenderCanvas rasterizes p and returns it as rows of half-block cells,
// cols cells wide. The image is sampled nearest-neighbour, so a program
// rendered at cols pixels wide maps one pixel per cell.
func RenderCanvas(p render.Program, cols int) string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}
	if cols <= 0 {
		cols = p.Width
	}
	img := render.Rasterize(p)
	rows := (p.Height*cols/p.Width + 1) / 2 * 2

	var b strings.Builder
	for y := 0; y < rows; y += 2 {
		var (
			run      strings.Builder
			top, bot string
		)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bot)).
				Render(run.String()))
			run.Reset()
		}
		for x := 0; x < cols; x++ {
			t := sample(img, x, y, cols, rows)
			d := sample(img, x, y+1, cols, rows)
			if t != top || d != bot {
				flush()
				top, bot = t, d
			}
			run.WriteString(upperHalf)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

// sample returns the hex colour of the pixel under cell (x, y) of a
// cols×rows grid.
func sample(img *image.RGBA, x, y, cols, rows int) string {
	r := img.Bounds()
	px := r.Min.X + x*r.Dx()/cols
	py := r.Min.Y + y*r.Dy()/rows
	if py >= r.Max.Y {
		py = r.Max.Y - 1
	}
	c := img.RGBAAt(px, py)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
