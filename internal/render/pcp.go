package render

import (
	"github.com/Veraticus/geoscope/internal/clusterer"
	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// PCPDisplayLimit caps the parallel-coordinates view when nothing is
// selected. Purely a legibility limit.
const PCPDisplayLimit = 20

// PCP renders the parallel-coordinates view: one polyline per record
// across the four fixed indicator axes, each axis scaled independently.
// Cluster colors come from the first two axis fields so they agree with
// the scatter view's grouping.
func PCP(ds *model.Dataset, st viewstate.State, width, height float64) Scene {
	if !ds.Status().Ready() {
		return Message(width, height, "no data")
	}

	columns := model.Fields
	rows := DisplayRows(ds.PCPRows(columns), st.SelectedCountries, PCPDisplayLimit)
	if len(rows) == 0 {
		return Message(width, height, "no data")
	}

	scene := Scene{Width: width, Height: height}
	const marginX, marginTop, marginBottom = 50.0, 30.0, 26.0
	plotH := height - marginTop - marginBottom

	axisX := make([]float64, len(columns))
	scales := make([]Scale, len(columns))
	for i, col := range columns {
		axisX[i] = marginX + float64(i)*(width-2*marginX)/float64(len(columns)-1)
		scales[i] = FieldScale(col, ds.NumericValues(col), marginTop+plotH, marginTop)
	}

	ids := clusterer.Assign(rows, columns[0], columns[1], st.K)
	for i, r := range rows {
		pts := make([][2]float64, len(columns))
		for j, col := range columns {
			pts[j] = [2]float64{axisX[j], scales[j].Apply(r.Value(col))}
		}
		scene.add(Path{
			Name:   r.Name,
			Rings:  [][][2]float64{pts},
			Stroke: ClusterColor(ids[i]),
			Width:  1,
		})
	}

	// Axes on top of the polylines, five ticks each, spaced evenly in the
	// axis's transformed space.
	for i, col := range columns {
		scene.add(Line{X1: axisX[i], Y1: marginTop, X2: axisX[i], Y2: marginTop + plotH, Stroke: colorAxis, Width: 1})
		for _, v := range scales[i].Ticks(5) {
			y := scales[i].Apply(v)
			scene.add(Line{X1: axisX[i] - 3, Y1: y, X2: axisX[i] + 3, Y2: y, Stroke: colorAxis, Width: 1})
			scene.add(Text{X: axisX[i] + 5, Y: y + 3, S: FormatValue(col, v), Size: 8, Fill: colorMuted, Anchor: AnchorStart})
		}
		scene.add(Text{X: axisX[i], Y: marginTop - 10, S: col.String(), Size: 10, Fill: colorText, Anchor: AnchorMiddle})
	}

	return scene
}
