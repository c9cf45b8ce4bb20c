package components

import (
	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/render"
	"github.com/Veraticus/geoscope/internal/tui/themes"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// ScatterViewModel is the scatter pane.
type ScatterViewModel struct {
	canvas *Canvas
	theme  themes.Theme
	cols   int
	rows   int
}

// NewScatterViewModel creates the scatter pane.
func NewScatterViewModel(theme themes.Theme) ScatterViewModel {
	return ScatterViewModel{theme: theme}
}

// SetSize resizes the pane.
func (m ScatterViewModel) SetSize(cols, rows int) ScatterViewModel {
	m.cols, m.rows = cols, rows
	return m
}

// SetData redraws from fresh snapshots.
func (m ScatterViewModel) SetData(ds *model.Dataset, st viewstate.State) ScatterViewModel {
	if m.cols > 0 && m.rows > 0 {
		scene := render.Scatter(ds, st, sceneWidth, sceneHeight)
		m.canvas = Rasterize(scene, m.cols, m.rows)
	}
	return m
}

// View renders the pane.
func (m ScatterViewModel) View() string {
	if m.canvas == nil {
		return ""
	}
	return m.canvas.View(-1, -1, m.theme.Selected)
}

// PCPViewModel is the parallel-coordinates pane.
type PCPViewModel struct {
	canvas *Canvas
	theme  themes.Theme
	cols   int
	rows   int
}

// NewPCPViewModel creates the parallel-coordinates pane.
func NewPCPViewModel(theme themes.Theme) PCPViewModel {
	return PCPViewModel{theme: theme}
}

// SetSize resizes the pane.
func (m PCPViewModel) SetSize(cols, rows int) PCPViewModel {
	m.cols, m.rows = cols, rows
	return m
}

// SetData redraws from fresh snapshots.
func (m PCPViewModel) SetData(ds *model.Dataset, st viewstate.State) PCPViewModel {
	if m.cols > 0 && m.rows > 0 {
		scene := render.PCP(ds, st, sceneWidth, sceneHeight)
		m.canvas = Rasterize(scene, m.cols, m.rows)
	}
	return m
}

// View renders the pane.
func (m PCPViewModel) View() string {
	if m.canvas == nil {
		return ""
	}
	return m.canvas.View(-1, -1, m.theme.Selected)
}

// ClusterViewModel is the clustering-error pane: one bar per candidate k.
// The digit keys pick k directly; the parent routes them here.
type ClusterViewModel struct {
	curve  *model.ErrorCurve
	canvas *Canvas
	theme  themes.Theme
	cols   int
	rows   int
}

// NewClusterViewModel creates the clustering-error pane.
func NewClusterViewModel(theme themes.Theme) ClusterViewModel {
	return ClusterViewModel{theme: theme}
}

// SetSize resizes the pane.
func (m ClusterViewModel) SetSize(cols, rows int) ClusterViewModel {
	m.cols, m.rows = cols, rows
	return m
}

// SetCurve installs the error curve and redraws for the selected k.
func (m ClusterViewModel) SetCurve(curve *model.ErrorCurve, selectedK int) ClusterViewModel {
	m.curve = curve
	if m.cols > 0 && m.rows > 0 {
		scene := render.Histogram(curve, selectedK, sceneWidth, sceneHeight)
		m.canvas = Rasterize(scene, m.cols, m.rows)
	}
	return m
}

// KForColumn maps a cell column to the cluster count of the bar drawn
// there, or 0 if the column is outside the bars.
func (m ClusterViewModel) KForColumn(col int) int {
	if m.curve == nil || m.cols == 0 {
		return 0
	}
	sceneX := float64(col) / float64(m.cols) * sceneWidth
	idx := render.BarIndexAt(m.curve, sceneWidth, sceneX)
	if idx < 0 {
		return 0
	}
	return idx + 1
}

// View renders the pane.
func (m ClusterViewModel) View() string {
	if m.canvas == nil {
		return ""
	}
	return m.canvas.View(-1, -1, m.theme.Selected)
}
