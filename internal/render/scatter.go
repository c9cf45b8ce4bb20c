package render

import (
	"fmt"
	"math"

	"github.com/Veraticus/geoscope/internal/clusterer"
	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// ScatterDisplayLimit caps the scatter view when nothing is selected.
const ScatterDisplayLimit = 50

// Regression is an ordinary-least-squares fit plus the Pearson
// correlation of the fitted pairs.
type Regression struct {
	Slope       float64
	Intercept   float64
	Correlation float64
}

// FitRegression computes the OLS line and Pearson r for paired samples.
// Degenerate inputs (fewer than two points, zero variance on either
// variable) yield a zero correlation rather than NaN.
func FitRegression(xs, ys []float64) Regression {
	n := float64(len(xs))
	if len(xs) < 2 || len(xs) != len(ys) {
		return Regression{}
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var covXY, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		covXY += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return Regression{}
	}

	slope := covXY / varX
	return Regression{
		Slope:       slope,
		Intercept:   meanY - slope*meanX,
		Correlation: covXY / math.Sqrt(varX*varY),
	}
}

// Scatter renders the two-variable view: one dot per country on the
// chosen axes, cluster-colored, with a dashed regression line and the
// correlation coefficient.
func Scatter(ds *model.Dataset, st viewstate.State, width, height float64) Scene {
	if !ds.Status().Ready() {
		return Message(width, height, "no data")
	}

	rows := DisplayRows(ds.ScatterRows(st.XVar, st.YVar), st.SelectedCountries, ScatterDisplayLimit)
	if len(rows) == 0 {
		return Message(width, height, "no data")
	}

	scene := Scene{Width: width, Height: height}
	const margin = 46.0
	plotW := width - 2*margin
	plotH := height - 2*margin

	xValues := make([]float64, len(rows))
	yValues := make([]float64, len(rows))
	for i, r := range rows {
		xValues[i] = r.Value(st.XVar)
		yValues[i] = r.Value(st.YVar)
	}

	xScale := FieldScale(st.XVar, xValues, margin, margin+plotW)
	yScale := FieldScale(st.YVar, yValues, margin+plotH, margin)

	addAxes(&scene, st.XVar, st.YVar, xScale, yScale, margin, plotW, plotH)

	fit := FitRegression(xValues, yValues)

	ids := clusterer.Assign(rows, st.XVar, st.YVar, st.K)
	for i, r := range rows {
		scene.add(Circle{
			Name: r.Name,
			X:    xScale.Apply(xValues[i]),
			Y:    yScale.Apply(yValues[i]),
			R:    3.5,
			Fill: ClusterColor(ids[i]),
		})
	}

	// The line is the fit evaluated at the x-domain extremes, drawn as one
	// straight dashed segment between the two projected endpoints.
	if fit.Correlation != 0 {
		scene.add(Line{
			X1:     xScale.Apply(xScale.DomainLo),
			Y1:     yScale.Apply(fit.Intercept + fit.Slope*xScale.DomainLo),
			X2:     xScale.Apply(xScale.DomainHi),
			Y2:     yScale.Apply(fit.Intercept + fit.Slope*xScale.DomainHi),
			Stroke: colorRegression,
			Width:  1.5,
			Dashed: true,
		})
	}

	scene.add(Text{
		X:      margin + plotW,
		Y:      margin - 8,
		S:      fmt.Sprintf("r = %.3f", fit.Correlation),
		Size:   11,
		Fill:   colorText,
		Anchor: AnchorEnd,
	})

	return scene
}

// DisplayRows keeps only the selected countries, or the first limit rows
// in load order when nothing is selected. Every host that draws
// per-record marks (scatter, PCP, export) goes through this.
func DisplayRows(rows []model.CountryRecord, selected []string, limit int) []model.CountryRecord {
	if len(selected) > 0 {
		want := make(map[string]bool, len(selected))
		for _, name := range selected {
			want[name] = true
		}
		kept := make([]model.CountryRecord, 0, len(selected))
		for _, r := range rows {
			if want[r.Name] {
				kept = append(kept, r)
			}
		}
		return kept
	}
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// addAxes draws the frame, five ticks per axis, and the axis labels.
func addAxes(scene *Scene, xVar, yVar model.Field, xScale, yScale Scale, margin, plotW, plotH float64) {
	scene.add(Line{X1: margin, Y1: margin + plotH, X2: margin + plotW, Y2: margin + plotH, Stroke: colorAxis, Width: 1})
	scene.add(Line{X1: margin, Y1: margin, X2: margin, Y2: margin + plotH, Stroke: colorAxis, Width: 1})

	for _, v := range xScale.Ticks(5) {
		x := xScale.Apply(v)
		scene.add(Line{X1: x, Y1: margin + plotH, X2: x, Y2: margin + plotH + 4, Stroke: colorAxis, Width: 1})
		scene.add(Text{X: x, Y: margin + plotH + 16, S: FormatValue(xVar, v), Size: 9, Fill: colorText, Anchor: AnchorMiddle})
	}
	for _, v := range yScale.Ticks(5) {
		y := yScale.Apply(v)
		scene.add(Line{X1: margin - 4, Y1: y, X2: margin, Y2: y, Stroke: colorAxis, Width: 1})
		scene.add(Text{X: margin - 6, Y: y + 3, S: FormatValue(yVar, v), Size: 9, Fill: colorText, Anchor: AnchorEnd})
	}

	scene.add(Text{X: margin + plotW/2, Y: margin + plotH + 30, S: xVar.String(), Size: 11, Fill: colorText, Anchor: AnchorMiddle})
	scene.add(Text{X: margin, Y: margin - 8, S: yVar.String(), Size: 11, Fill: colorText, Anchor: AnchorStart})
}
