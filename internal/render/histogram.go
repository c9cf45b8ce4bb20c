package render

import (
	"fmt"

	"github.com/Veraticus/geoscope/internal/model"
)

// Histogram renders the clustering-error bar chart: one bar per candidate
// k, the currently selected k highlighted, and a dashed vertical marker on
// the optimal k. Hosts map a click on bar i to k = i + 1.
func Histogram(curve *model.ErrorCurve, selectedK int, width, height float64) Scene {
	if curve == nil || len(curve.Points) == 0 {
		return Message(width, height, "no data")
	}

	scene := Scene{Width: width, Height: height}
	const margin = 36.0
	plotW := width - 2*margin
	plotH := height - 2*margin

	_, maxMSE := extent(mseValues(curve))
	if maxMSE == 0 {
		maxMSE = 1
	}

	n := len(curve.Points)
	slot := plotW / float64(n)
	barW := slot * 0.75

	for i, p := range curve.Points {
		barH := p.MSE / maxMSE * plotH
		x := margin + float64(i)*slot + (slot-barW)/2

		fill := "#6baed6"
		if p.K == selectedK {
			fill = colorSelection
		}

		scene.add(Rect{
			Name: fmt.Sprintf("k=%d", p.K),
			X:    x,
			Y:    margin + plotH - barH,
			W:    barW,
			H:    barH,
			Fill: fill,
		})
		scene.add(Text{
			X:      margin + float64(i)*slot + slot/2,
			Y:      margin + plotH + 14,
			S:      fmt.Sprintf("%d", p.K),
			Size:   9,
			Fill:   colorText,
			Anchor: AnchorMiddle,
		})
	}

	// Dashed marker through the optimal-k bar.
	for i, p := range curve.Points {
		if p.K != curve.OptimalK {
			continue
		}
		x := margin + float64(i)*slot + slot/2
		scene.add(Line{X1: x, Y1: margin, X2: x, Y2: margin + plotH, Stroke: colorText, Width: 1, Dashed: true})
		scene.add(Text{X: x, Y: margin - 6, S: fmt.Sprintf("optimal k = %d", p.K), Size: 9, Fill: colorText, Anchor: AnchorMiddle})
		break
	}

	scene.add(Line{X1: margin, Y1: margin + plotH, X2: margin + plotW, Y2: margin + plotH, Stroke: colorAxis, Width: 1})
	scene.add(Text{X: margin + plotW/2, Y: height - 6, S: "cluster count k", Size: 10, Fill: colorText, Anchor: AnchorMiddle})

	return scene
}

// BarIndexAt maps an x coordinate in a histogram scene back to the bar
// index, or -1 outside the plot area. Hosts use it to turn clicks into a
// k selection.
func BarIndexAt(curve *model.ErrorCurve, width float64, x float64) int {
	if curve == nil || len(curve.Points) == 0 {
		return -1
	}
	const margin = 36.0
	plotW := width - 2*margin
	if x < margin || x > margin+plotW {
		return -1
	}
	idx := int((x - margin) / (plotW / float64(len(curve.Points))))
	if idx >= len(curve.Points) {
		idx = len(curve.Points) - 1
	}
	return idx
}

func mseValues(curve *model.ErrorCurve) []float64 {
	values := make([]float64, len(curve.Points))
	for i, p := range curve.Points {
		values[i] = p.MSE
	}
	return values
}
