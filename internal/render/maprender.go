package render

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// Transform is the map's pan/zoom state: a translation plus a scale
// applied on top of the fitted projection. Hosts own the transform so it
// survives data and feature changes; a resize refits the projection and
// resets it.
type Transform struct {
	X float64
	Y float64
	K float64
}

// Zoom bounds.
const (
	MinZoom = 1.0
	MaxZoom = 8.0
)

// Clamped returns the transform with its scale bounded to [MinZoom,
// MaxZoom] and a zero scale treated as identity.
func (t Transform) Clamped() Transform {
	if t.K == 0 {
		t.K = 1
	}
	t.K = math.Min(math.Max(t.K, MinZoom), MaxZoom)
	return t
}

// Projection maps lon/lat onto scene coordinates using the Natural Earth
// equal-area-ish projection, fitted to the container.
type Projection struct {
	scale float64
	tx    float64
	ty    float64
}

// naturalEarthRaw is the Natural Earth I polynomial, radians in, unit
// projection coordinates out.
func naturalEarthRaw(lambda, phi float64) (float64, float64) {
	phi2 := phi * phi
	phi4 := phi2 * phi2
	x := lambda * (0.8707 - 0.131979*phi2 + phi4*(-0.013791+phi4*(0.003971*phi2-0.001529*phi4)))
	y := phi * (1.007226 + phi2*(0.015085+phi4*(-0.044475+0.028874*phi2-0.005916*phi4)))
	return x, y
}

// FitProjection computes projection parameters so the whole world fills
// the given container. Recomputed whenever the container size changes.
func FitProjection(width, height float64) Projection {
	xMax, _ := naturalEarthRaw(math.Pi, 0)
	_, yMax := naturalEarthRaw(0, math.Pi/2)

	scale := math.Min(width/(2*xMax), height/(2*yMax)) * 0.96
	return Projection{
		scale: scale,
		tx:    width / 2,
		ty:    height / 2,
	}
}

// Project maps a lon/lat pair to scene coordinates, y growing downward.
func (p Projection) Project(lon, lat float64) (float64, float64) {
	x, y := naturalEarthRaw(lon*math.Pi/180, lat*math.Pi/180)
	return p.tx + x*p.scale, p.ty - y*p.scale
}

// MapOptions tunes the map scene.
type MapOptions struct {
	// SimplifyTolerance, in degrees, reduces ring detail before
	// projection. Zero keeps full detail; coarse hosts (terminal cells)
	// pass something like 0.5.
	SimplifyTolerance float64
}

// Map renders the choropleth: every feature filled by the selected
// indicator, missing or invalid countries in a neutral fill, selected
// countries with a distinct stroke, plus the gradient legend.
func Map(ds *model.Dataset, st viewstate.State, width, height float64, t Transform, opts MapOptions) Scene {
	if !ds.Status().Ready() {
		return Message(width, height, "no data")
	}

	scene := Scene{Width: width, Height: height}
	proj := FitProjection(width, height-legendHeight)
	t = t.Clamped()

	colors := FeatureColorScale(st.MapFeature, ds.NumericValues(st.MapFeature))
	selected := make(map[string]bool, len(st.SelectedCountries))
	for _, name := range st.SelectedCountries {
		selected[name] = true
	}

	for _, feature := range ds.Features {
		name := model.FeatureName(feature)
		rings := featureRings(feature, opts.SimplifyTolerance)
		if len(rings) == 0 {
			continue
		}

		fill := colorNoData
		if rec, ok := ds.Record(name); ok {
			if v := rec.Value(st.MapFeature); model.ValidValue(v) {
				fill = colors.Color(v)
			}
		}

		stroke, strokeWidth := "#ffffff", 0.5
		if selected[name] {
			stroke, strokeWidth = colorSelection, 1.5
		}

		projected := make([][][2]float64, 0, len(rings))
		for _, ring := range rings {
			pts := make([][2]float64, 0, len(ring))
			for _, pt := range ring {
				x, y := proj.Project(pt[0], pt[1])
				pts = append(pts, [2]float64{
					x*t.K + t.X,
					y*t.K + t.Y,
				})
			}
			projected = append(projected, pts)
		}

		scene.add(Path{
			Name:   name,
			Rings:  projected,
			Fill:   fill,
			Stroke: stroke,
			Width:  strokeWidth,
			Closed: true,
		})
	}

	addLegend(&scene, st.MapFeature, colors, width, height)
	return scene
}

// featureRings flattens a feature's polygon or multipolygon into rings of
// lon/lat points, optionally simplified.
func featureRings(feature *geojson.Feature, tolerance float64) []orb.Ring {
	if feature == nil {
		return nil
	}
	geometry := feature.Geometry
	if tolerance > 0 {
		// Simplify works in place, so it gets a copy.
		geometry = simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(geometry))
	}

	switch g := geometry.(type) {
	case orb.Polygon:
		return g
	case orb.MultiPolygon:
		var rings []orb.Ring
		for _, poly := range g {
			rings = append(rings, poly...)
		}
		return rings
	default:
		return nil
	}
}

const legendHeight = 34.0

// addLegend draws the horizontal gradient swatch with five evenly spaced
// tick labels formatted for the feature.
func addLegend(scene *Scene, f model.Field, colors ColorScale, width, height float64) {
	const steps = 40
	margin := width * 0.1
	swatchW := width - 2*margin
	y := height - legendHeight + 6
	barH := 10.0

	for i := 0; i < steps; i++ {
		frac := float64(i) / float64(steps-1)
		v := colors.DomainLo + frac*(colors.DomainHi-colors.DomainLo)
		scene.add(Rect{
			X:    margin + float64(i)*swatchW/steps,
			Y:    y,
			W:    swatchW/steps + 1,
			H:    barH,
			Fill: colors.Color(v),
		})
	}

	for i := 0; i < 5; i++ {
		frac := float64(i) / 4
		v := colors.DomainLo + frac*(colors.DomainHi-colors.DomainLo)
		scene.add(Text{
			X:      margin + frac*swatchW,
			Y:      y + barH + 12,
			S:      FormatValue(f, v),
			Size:   10,
			Fill:   colorText,
			Anchor: AnchorMiddle,
		})
	}
}
