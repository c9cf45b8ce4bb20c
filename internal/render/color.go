package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/Veraticus/geoscope/internal/model"
)

// Shared scene colors.
const (
	colorAxis       = "#555555"
	colorMuted      = "#8a8a8a"
	colorText       = "#222222"
	colorNoData     = "#c8c8c8"
	colorSelection  = "#ff5a36"
	colorRegression = "#d62728"
)

// clusterPalette colors cluster ids across scatter and PCP views. Ten
// entries so every legal k has a distinct color.
var clusterPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// ClusterColor returns the palette color for a cluster id.
func ClusterColor(id int) string {
	if id < 0 {
		id = 0
	}
	return clusterPalette[id%len(clusterPalette)]
}

// SelectionColor is the highlight color shared by every host.
func SelectionColor() string {
	return colorSelection
}

// HexRGB parses a #rrggbb color into its channels.
func HexRGB(s string) (int, int, int, bool) {
	var r, g, b int
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}

// ColorScale interpolates between two stop colors over a clamped domain.
type ColorScale struct {
	LoColor  string
	HiColor  string
	DomainLo float64
	DomainHi float64
}

// FeatureColorScale builds the choropleth scale for a field. Life
// expectancy spans its full [min, max]; every other field clamps to the
// 5th-95th percentile band so a single extreme country cannot flatten the
// rest of the palette.
func FeatureColorScale(f model.Field, values []float64) ColorScale {
	scale := ColorScale{LoColor: "#fee8c8", HiColor: "#b30000"}
	if f == model.FieldLifeExpectancy {
		scale.LoColor, scale.HiColor = "#ffffcc", "#006837"
		scale.DomainLo, scale.DomainHi = extent(values)
		return scale
	}
	scale.DomainLo = Percentile(values, 0.05)
	scale.DomainHi = Percentile(values, 0.95)
	return scale
}

// Color maps v into the interpolated palette, clamped at the domain ends.
func (c ColorScale) Color(v float64) string {
	span := c.DomainHi - c.DomainLo
	t := 0.5
	if span != 0 {
		t = (v - c.DomainLo) / span
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return lerpHex(c.LoColor, c.HiColor, t)
}

// Percentile returns the p-quantile (0..1) of values by linear
// interpolation between order statistics.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func lerpHex(a, b string, t float64) string {
	ar, ag, ab := hexRGB(a)
	br, bg, bb := hexRGB(b)
	lerp := func(x, y int) int {
		return int(math.Round(float64(x) + t*float64(y-x)))
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(ar, br), lerp(ag, bg), lerp(ab, bb))
}

func hexRGB(s string) (int, int, int) {
	var r, g, b int
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
