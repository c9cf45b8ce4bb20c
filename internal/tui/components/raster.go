// Package components holds the dashboard's view components. Each one
// rasterizes a render scene into a colored cell grid; the renderers stay
// surface-agnostic.
package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/geoscope/internal/render"
)

type cell struct {
	fg   string
	name string
	ch   rune
}

// Canvas is a grid of colored cells, one scene rasterized at one size.
// Cells remember the name of the primitive that painted them so a view
// can map the cursor back to a country or bar.
type Canvas struct {
	cells []cell
	cols  int
	rows  int
}

// Rasterize draws a scene into a cols x rows cell grid.
func Rasterize(scene render.Scene, cols, rows int) *Canvas {
	c := &Canvas{
		cells: make([]cell, cols*rows),
		cols:  cols,
		rows:  rows,
	}
	if cols <= 0 || rows <= 0 || scene.Width <= 0 || scene.Height <= 0 {
		return c
	}

	sx := float64(cols) / scene.Width
	sy := float64(rows) / scene.Height

	for _, item := range scene.Items {
		switch p := item.(type) {
		case render.Path:
			c.drawPath(p, sx, sy)
		case render.Line:
			c.drawLine(p.X1*sx, p.Y1*sy, p.X2*sx, p.Y2*sy, '·', p.Stroke, "", p.Dashed)
		case render.Circle:
			c.set(int(p.X*sx), int(p.Y*sy), '●', p.Fill, p.Name)
		case render.Rect:
			c.fillRect(p, sx, sy)
		case render.Text:
			c.drawText(p, sx, sy)
		}
	}
	return c
}

func (c *Canvas) drawPath(p render.Path, sx, sy float64) {
	if p.Closed && p.Fill != "" {
		c.fillPolygon(p, sx, sy)
	}
	stroke := p.Stroke
	if stroke == "" {
		stroke = p.Fill
	}
	for _, ring := range p.Rings {
		for i := 1; i < len(ring); i++ {
			c.drawLine(ring[i-1][0]*sx, ring[i-1][1]*sy, ring[i][0]*sx, ring[i][1]*sy, '·', stroke, p.Name, p.Dashed)
		}
		if p.Closed && len(ring) > 1 {
			first, last := ring[0], ring[len(ring)-1]
			c.drawLine(last[0]*sx, last[1]*sy, first[0]*sx, first[1]*sy, '·', stroke, p.Name, p.Dashed)
		}
	}
}

// fillPolygon paints every cell whose center falls inside the path's
// rings, even-odd so holes stay empty.
func (c *Canvas) fillPolygon(p render.Path, sx, sy float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, ring := range p.Rings {
		for _, pt := range ring {
			minX = math.Min(minX, pt[0]*sx)
			maxX = math.Max(maxX, pt[0]*sx)
			minY = math.Min(minY, pt[1]*sy)
			maxY = math.Max(maxY, pt[1]*sy)
		}
	}

	for y := int(minY); y <= int(maxY); y++ {
		for x := int(minX); x <= int(maxX); x++ {
			cx := (float64(x) + 0.5) / sx
			cy := (float64(y) + 0.5) / sy
			if pointInRings(cx, cy, p.Rings) {
				c.set(x, y, '█', p.Fill, p.Name)
			}
		}
	}
}

// pointInRings is an even-odd ray cast across all rings: the first
// ring's interior minus any hole rings.
func pointInRings(x, y float64, rings [][][2]float64) bool {
	inside := false
	for _, ring := range rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := ring[i][0], ring[i][1]
			xj, yj := ring[j][0], ring[j][1]
			if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
	}
	return inside
}

func (c *Canvas) drawLine(x1, y1, x2, y2 float64, ch rune, fg, name string, dashed bool) {
	steps := int(math.Max(math.Abs(x2-x1), math.Abs(y2-y1)))
	if steps == 0 {
		c.set(int(x1), int(y1), ch, fg, name)
		return
	}
	for i := 0; i <= steps; i++ {
		if dashed && i%4 >= 2 {
			continue
		}
		t := float64(i) / float64(steps)
		c.set(int(x1+t*(x2-x1)), int(y1+t*(y2-y1)), ch, fg, name)
	}
}

func (c *Canvas) fillRect(p render.Rect, sx, sy float64) {
	x1, y1 := int(p.X*sx), int(p.Y*sy)
	x2, y2 := int((p.X+p.W)*sx), int((p.Y+p.H)*sy)
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			c.set(x, y, '█', p.Fill, p.Name)
		}
	}
}

func (c *Canvas) drawText(p render.Text, sx, sy float64) {
	x := int(p.X * sx)
	y := int(p.Y * sy)
	switch p.Anchor {
	case render.AnchorMiddle:
		x -= len(p.S) / 2
	case render.AnchorEnd:
		x -= len(p.S)
	}
	for i, r := range p.S {
		c.set(x+i, y, r, p.Fill, "")
	}
}

func (c *Canvas) set(x, y int, ch rune, fg, name string) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y*c.cols+x] = cell{ch: ch, fg: fg, name: name}
}

// NameAt returns the primitive name painted at a cell, if any.
func (c *Canvas) NameAt(x, y int) string {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return ""
	}
	return c.cells[y*c.cols+x].name
}

// View renders the canvas as styled terminal lines. cursorX/cursorY mark
// a highlighted cell; pass -1, -1 for no cursor.
func (c *Canvas) View(cursorX, cursorY int, cursorStyle lipgloss.Style) string {
	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			cl := c.cells[y*c.cols+x]
			ch := cl.ch
			if ch == 0 {
				ch = ' '
			}
			switch {
			case x == cursorX && y == cursorY:
				b.WriteString(cursorStyle.Render(string(ch)))
			case cl.fg != "":
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(cl.fg)).Render(string(ch)))
			default:
				b.WriteRune(ch)
			}
		}
		if y < c.rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
