package render

import (
	"fmt"
	"math"

	"github.com/Veraticus/geoscope/internal/model"
)

// Scale maps a data domain onto a pixel range, either linearly or in
// log10 space. Log domains are floored at 1 so zero and sub-one values
// can never produce an invalid transform.
type Scale struct {
	DomainLo float64
	DomainHi float64
	RangeLo  float64
	RangeHi  float64
	Log      bool
}

// FieldScale builds the conventional scale for a field over values:
// linear for life expectancy, log10 for everything else.
func FieldScale(f model.Field, values []float64, rangeLo, rangeHi float64) Scale {
	lo, hi := extent(values)
	s := Scale{DomainLo: lo, DomainHi: hi, RangeLo: rangeLo, RangeHi: rangeHi, Log: !f.Linear()}
	if s.Log {
		s.DomainLo = math.Max(s.DomainLo, 1)
		s.DomainHi = math.Max(s.DomainHi, s.DomainLo)
	}
	return s
}

// Apply maps v into the range, clamping to the range ends.
func (s Scale) Apply(v float64) float64 {
	lo, hi := s.transformedDomain()
	t := s.transform(v)

	span := hi - lo
	if span == 0 {
		return (s.RangeLo + s.RangeHi) / 2
	}
	frac := (t - lo) / span
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return s.RangeLo + frac*(s.RangeHi-s.RangeLo)
}

// Ticks returns n tick values evenly spaced in the scale's transformed
// space: log ticks look evenly spaced on a log axis, linear ticks on a
// linear one.
func (s Scale) Ticks(n int) []float64 {
	if n < 2 {
		n = 2
	}
	lo, hi := s.transformedDomain()
	ticks := make([]float64, n)
	for i := 0; i < n; i++ {
		t := lo + (hi-lo)*float64(i)/float64(n-1)
		ticks[i] = s.invert(t)
	}
	return ticks
}

func (s Scale) transform(v float64) float64 {
	if s.Log {
		return math.Log10(math.Max(v, 1))
	}
	return v
}

func (s Scale) invert(t float64) float64 {
	if s.Log {
		return math.Pow(10, t)
	}
	return t
}

func (s Scale) transformedDomain() (float64, float64) {
	return s.transform(s.DomainLo), s.transform(s.DomainHi)
}

func extent(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// FormatValue renders a value the way the field's legend and axes expect:
// one fixed decimal for life expectancy, an SI-suffixed magnitude for the
// large-magnitude fields.
func FormatValue(f model.Field, v float64) string {
	if f.Linear() {
		return fmt.Sprintf("%.1f", v)
	}
	return FormatSI(v)
}

// FormatSI formats v with a metric suffix (k, M, B, T).
func FormatSI(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return trimZero(v/1e12) + "T"
	case abs >= 1e9:
		return trimZero(v/1e9) + "B"
	case abs >= 1e6:
		return trimZero(v/1e6) + "M"
	case abs >= 1e3:
		return trimZero(v/1e3) + "k"
	case abs >= 10 || v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
