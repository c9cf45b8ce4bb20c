package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/geoscope/internal/model"
)

func TestFeatureColorScaleLifeExpectancy(t *testing.T) {
	values := []float64{40, 58, 66, 74, 90}
	scale := FeatureColorScale(model.FieldLifeExpectancy, values)

	// Full min-max domain, green-ish palette.
	assert.Equal(t, 40.0, scale.DomainLo)
	assert.Equal(t, 90.0, scale.DomainHi)
	assert.Equal(t, "#ffffcc", scale.Color(40))
	assert.Equal(t, "#006837", scale.Color(90))
}

func TestFeatureColorScalePercentileClamp(t *testing.T) {
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(i)
	}
	scale := FeatureColorScale(model.FieldGDP, values)

	assert.Equal(t, 5.0, scale.DomainLo)
	assert.Equal(t, 95.0, scale.DomainHi)

	// An outlier beyond the p95 band gets the same color as the band edge
	// instead of stretching the palette.
	assert.Equal(t, scale.Color(95), scale.Color(10000))
	assert.Equal(t, scale.Color(5), scale.Color(-50))
	assert.Equal(t, "#fee8c8", scale.Color(0))
	assert.Equal(t, "#b30000", scale.Color(100))
}

func TestColorScaleMidpoint(t *testing.T) {
	scale := ColorScale{LoColor: "#000000", HiColor: "#ff0000", DomainLo: 0, DomainHi: 10}
	assert.Equal(t, "#800000", scale.Color(5))
}

func TestColorScaleDegenerateDomain(t *testing.T) {
	scale := ColorScale{LoColor: "#000000", HiColor: "#ffffff", DomainLo: 3, DomainHi: 3}
	assert.Equal(t, "#808080", scale.Color(3))
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	assert.Equal(t, 10.0, Percentile(values, 0))
	assert.Equal(t, 30.0, Percentile(values, 0.5))
	assert.Equal(t, 50.0, Percentile(values, 1))
	assert.Equal(t, 15.0, Percentile(values, 0.125))
	assert.Equal(t, 0.0, Percentile(nil, 0.5))
}

func TestClusterColor(t *testing.T) {
	seen := make(map[string]bool)
	for id := 0; id < 10; id++ {
		c := ClusterColor(id)
		assert.False(t, seen[c], "palette repeats at id %d", id)
		seen[c] = true
	}

	// Out-of-range ids stay usable.
	assert.Equal(t, ClusterColor(0), ClusterColor(10))
	assert.Equal(t, ClusterColor(0), ClusterColor(-1))
}

func TestHexRGB(t *testing.T) {
	r, g, b, ok := HexRGB("#1f77b4")
	assert.True(t, ok)
	assert.Equal(t, []int{0x1f, 0x77, 0xb4}, []int{r, g, b})

	_, _, _, ok = HexRGB("blue")
	assert.False(t, ok)
}
