package components

import (
	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/render"
	"github.com/Veraticus/geoscope/internal/tui/themes"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// Scenes are rendered at a fixed logical size and rasterized down to
// whatever cell grid is available; margins and legends scale with them.
const (
	sceneWidth  = 800.0
	sceneHeight = 480.0
)

// Terminal cells are coarse, so map rings are simplified before
// projection.
const mapSimplifyTolerance = 0.4

// MapViewModel is the choropleth pane: a rasterized world map with a
// movable cursor for selecting countries and a pan/zoom transform that
// survives data and feature changes.
type MapViewModel struct {
	dataset   *model.Dataset
	canvas    *Canvas
	theme     themes.Theme
	state     viewstate.State
	transform render.Transform
	cols      int
	rows      int
	cursorX   int
	cursorY   int
}

// NewMapViewModel creates the map pane.
func NewMapViewModel(theme themes.Theme) MapViewModel {
	return MapViewModel{
		theme:     theme,
		transform: render.Transform{K: 1},
		cursorX:   -1,
		cursorY:   -1,
	}
}

// SetSize resizes the pane. A dimension change refits the projection, so
// the zoom transform resets; anything else preserves it.
func (m MapViewModel) SetSize(cols, rows int) MapViewModel {
	if cols == m.cols && rows == m.rows {
		return m
	}
	m.cols, m.rows = cols, rows
	m.transform = render.Transform{K: 1}
	m.cursorX, m.cursorY = cols/2, rows/2
	return m.redraw()
}

// SetData installs fresh dataset and view-state snapshots and redraws.
func (m MapViewModel) SetData(ds *model.Dataset, st viewstate.State) MapViewModel {
	m.dataset = ds
	m.state = st
	return m.redraw()
}

// Zoom scales around the scene center, bounded to the legal zoom range.
func (m MapViewModel) Zoom(factor float64) MapViewModel {
	next := (render.Transform{K: m.transform.K * factor}).Clamped()
	ratio := next.K / m.transform.Clamped().K

	cx, cy := sceneWidth/2, sceneHeight/2
	m.transform.X = cx - (cx-m.transform.X)*ratio
	m.transform.Y = cy - (cy-m.transform.Y)*ratio
	m.transform.K = next.K
	return m.redraw()
}

// Pan shifts the rendered layer by a fraction of the scene.
func (m MapViewModel) Pan(dx, dy float64) MapViewModel {
	m.transform.X += dx * sceneWidth
	m.transform.Y += dy * sceneHeight
	return m.redraw()
}

// MoveCursor moves the selection cursor by whole cells.
func (m MapViewModel) MoveCursor(dx, dy int) MapViewModel {
	m.cursorX = clampInt(m.cursorX+dx, 0, m.cols-1)
	m.cursorY = clampInt(m.cursorY+dy, 0, m.rows-1)
	return m
}

// CountryUnderCursor returns the country painted under the cursor, if any.
func (m MapViewModel) CountryUnderCursor() string {
	if m.canvas == nil {
		return ""
	}
	return m.canvas.NameAt(m.cursorX, m.cursorY)
}

func (m MapViewModel) redraw() MapViewModel {
	if m.cols <= 0 || m.rows <= 0 {
		return m
	}
	scene := render.Map(m.dataset, m.state, sceneWidth, sceneHeight, m.transform, render.MapOptions{
		SimplifyTolerance: mapSimplifyTolerance,
	})
	m.canvas = Rasterize(scene, m.cols, m.rows)
	return m
}

// View renders the pane.
func (m MapViewModel) View() string {
	if m.canvas == nil {
		return ""
	}
	return m.canvas.View(m.cursorX, m.cursorY, m.theme.Selected)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= lo && v > hi {
		return hi
	}
	return v
}
