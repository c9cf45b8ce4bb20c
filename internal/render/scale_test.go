package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/geoscope/internal/model"
)

func TestFieldScaleKind(t *testing.T) {
	values := []float64{10, 100, 1000}

	assert.True(t, FieldScale(model.FieldGDP, values, 0, 100).Log)
	assert.True(t, FieldScale(model.FieldPopulation, values, 0, 100).Log)
	assert.False(t, FieldScale(model.FieldLifeExpectancy, values, 0, 100).Log)
}

func TestScaleApplyLinear(t *testing.T) {
	s := Scale{DomainLo: 0, DomainHi: 10, RangeLo: 0, RangeHi: 100}

	assert.Equal(t, 0.0, s.Apply(0))
	assert.Equal(t, 50.0, s.Apply(5))
	assert.Equal(t, 100.0, s.Apply(10))

	// Out-of-domain values clamp to the range ends.
	assert.Equal(t, 0.0, s.Apply(-3))
	assert.Equal(t, 100.0, s.Apply(42))
}

func TestScaleApplyLog(t *testing.T) {
	s := Scale{DomainLo: 1, DomainHi: 10000, RangeLo: 0, RangeHi: 100, Log: true}

	assert.InDelta(t, 0, s.Apply(1), 1e-9)
	assert.InDelta(t, 50, s.Apply(100), 1e-9)
	assert.InDelta(t, 100, s.Apply(10000), 1e-9)

	// Sub-one values floor at 1 rather than exploding.
	assert.InDelta(t, 0, s.Apply(0.001), 1e-9)
	assert.InDelta(t, 0, s.Apply(0), 1e-9)
}

func TestScaleApplyDegenerateDomain(t *testing.T) {
	s := Scale{DomainLo: 5, DomainHi: 5, RangeLo: 0, RangeHi: 100}
	assert.Equal(t, 50.0, s.Apply(5))
	assert.Equal(t, 50.0, s.Apply(99))
}

func TestScaleInvertedRange(t *testing.T) {
	// Screen y axes run high-to-low.
	s := Scale{DomainLo: 0, DomainHi: 10, RangeLo: 100, RangeHi: 0}
	assert.Equal(t, 100.0, s.Apply(0))
	assert.Equal(t, 0.0, s.Apply(10))
}

func TestScaleTicks(t *testing.T) {
	linear := Scale{DomainLo: 0, DomainHi: 100, RangeLo: 0, RangeHi: 1}
	assert.Equal(t, []float64{0, 25, 50, 75, 100}, linear.Ticks(5))

	logScale := Scale{DomainLo: 1, DomainHi: 10000, RangeLo: 0, RangeHi: 1, Log: true}
	ticks := logScale.Ticks(5)
	require.Len(t, ticks, 5)
	// Evenly spaced in log space: successive decades.
	for i, want := range []float64{1, 10, 100, 1000, 10000} {
		assert.InDelta(t, want, ticks[i], want*1e-9)
	}

	// Too few requested ticks clamp to the two domain ends.
	assert.Len(t, linear.Ticks(1), 2)
}

func TestFormatSI(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		input float64
	}{
		{name: "trillions", input: 2.5e12, want: "2.5T"},
		{name: "billions", input: 1e9, want: "1B"},
		{name: "millions", input: 3.2e6, want: "3.2M"},
		{name: "thousands", input: 47000, want: "47k"},
		{name: "tens", input: 82, want: "82"},
		{name: "integer", input: 5, want: "5"},
		{name: "small fraction", input: 1.234, want: "1.23"},
		{name: "zero", input: 0, want: "0"},
		{name: "negative", input: -4.2e9, want: "-4.2B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSI(tt.input))
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "71.2", FormatValue(model.FieldLifeExpectancy, 71.23))
	assert.Equal(t, "1.2B", FormatValue(model.FieldGDP, 1.2e9))
}

func TestExtent(t *testing.T) {
	lo, hi := extent([]float64{5, -2, 9, 3})
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 9.0, hi)

	lo, hi = extent(nil)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestFieldScaleLogFloorsDomain(t *testing.T) {
	s := FieldScale(model.FieldGDP, []float64{0.2, 0.5}, 0, 1)
	assert.Equal(t, 1.0, s.DomainLo)
	assert.Equal(t, 1.0, s.DomainHi)
	assert.False(t, math.IsInf(s.Apply(0.2), 0))
}
