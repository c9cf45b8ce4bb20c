package model

import (
	"math"

	"github.com/paulmach/orb/geojson"
)

// Dataset is one immutable snapshot of everything the renderers read: the
// country table in load order, a name index, and the world geometry. A new
// load publishes a whole new Dataset; readers never see a partial one.
type Dataset struct {
	byName   map[string]int
	Records  []CountryRecord
	Features []*geojson.Feature
}

// NewDataset builds a snapshot and its name index.
func NewDataset(records []CountryRecord, features []*geojson.Feature) *Dataset {
	byName := make(map[string]int, len(records))
	for i, r := range records {
		byName[r.Name] = i
	}
	return &Dataset{
		byName:   byName,
		Records:  records,
		Features: features,
	}
}

// Record looks a country up by name.
func (d *Dataset) Record(name string) (CountryRecord, bool) {
	if d == nil {
		return CountryRecord{}, false
	}
	i, ok := d.byName[name]
	if !ok {
		return CountryRecord{}, false
	}
	return d.Records[i], true
}

// HasCountry reports whether name is present in the country table.
func (d *Dataset) HasCountry(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.byName[name]
	return ok
}

// Status describes how complete this snapshot is. Renderers wait for Ready
// before drawing anything.
func (d *Dataset) Status() CacheStatus {
	if d == nil {
		return CacheStatus{}
	}
	return CacheStatus{
		HasRecords:  len(d.Records) > 0,
		HasGeometry: len(d.Features) > 0,
		HasIndex:    d.byName != nil,
	}
}

// CacheStatus is the "ready" gate derived from the loaded caches.
type CacheStatus struct {
	HasRecords  bool
	HasGeometry bool
	HasIndex    bool
}

// Ready reports whether every cache a renderer depends on is present.
func (s CacheStatus) Ready() bool {
	return s.HasRecords && s.HasGeometry && s.HasIndex
}

// FeatureName extracts the country name from a geometry feature's property
// bag. Sources disagree on the property key, so several aliases are tried.
func FeatureName(f *geojson.Feature) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	for _, key := range []string{"NAME", "Country", "name"} {
		if v, ok := f.Properties[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// ValidValue reports whether v can participate in a log-scaled view:
// finite, not NaN, and strictly positive.
func ValidValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// ErrorCurvePoint is one (k, mean squared error) sample of the clustering
// error curve shown in the bar chart.
type ErrorCurvePoint struct {
	K   int
	MSE float64
}

// ErrorCurve is the clustering-error sequence plus the precomputed elbow.
type ErrorCurve struct {
	Points   []ErrorCurvePoint
	OptimalK int
}
