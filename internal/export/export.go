// Package export renders dashboard views to PNG files for use outside a
// terminal or browser.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Veraticus/geoscope/internal/clusterer"
	"github.com/Veraticus/geoscope/internal/model"
	"github.com/Veraticus/geoscope/internal/render"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

// Views that can be exported.
const (
	ViewScatter  = "scatter"
	ViewPCP      = "pcp"
	ViewClusters = "clusters"
)

// AllViews lists the exportable views in output order.
var AllViews = []string{ViewScatter, ViewPCP, ViewClusters}

// Exporter writes PNG renderings of the dashboard views.
type Exporter struct {
	repo  *repository.Repository
	store *viewstate.Store
}

// New creates an Exporter.
func New(repo *repository.Repository, store *viewstate.Store) *Exporter {
	if store == nil {
		store = viewstate.NewStore()
	}
	return &Exporter{repo: repo, store: store}
}

// Export loads the dataset and writes one PNG per requested view into
// dir. An empty views slice exports everything.
func (e *Exporter) Export(ctx context.Context, dir string, views []string) error {
	if len(views) == 0 {
		views = AllViews
	}
	for _, view := range views {
		switch view {
		case ViewScatter, ViewPCP, ViewClusters:
		default:
			return fmt.Errorf("unknown view %q", view)
		}
	}

	if _, err := e.repo.LoadAll(ctx); err != nil {
		return fmt.Errorf("loading data: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	bar := progressbar.NewOptions(len(views),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Exporting views..."),
	)

	st := e.store.Snapshot()
	for _, view := range views {
		var (
			buf bytes.Buffer
			err error
		)
		switch view {
		case ViewScatter:
			err = e.renderScatter(st, &buf)
		case ViewPCP:
			err = e.renderPCP(st, &buf)
		case ViewClusters:
			err = e.renderClusters(ctx, st, &buf)
		}
		if err != nil {
			return fmt.Errorf("rendering %s: %w", view, err)
		}

		path := filepath.Join(dir, view+".png")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		_ = bar.Add(1)
	}

	return nil
}

// renderScatter draws the scatter view: cluster-colored points plus the
// least-squares trend line.
func (e *Exporter) renderScatter(st viewstate.State, buf *bytes.Buffer) error {
	ds := e.repo.Dataset()
	rows := render.DisplayRows(ds.ScatterRows(st.XVar, st.YVar), st.SelectedCountries, render.ScatterDisplayLimit)
	if len(rows) == 0 {
		return fmt.Errorf("no rows with valid %s and %s", st.XVar, st.YVar)
	}

	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = row.Value(st.XVar)
		ys[i] = row.Value(st.YVar)
	}
	fit := render.FitRegression(xs, ys)

	ids := clusterer.Assign(rows, st.XVar, st.YVar, st.K)
	byCluster := make(map[int][]int)
	for i, id := range ids {
		byCluster[id] = append(byCluster[id], i)
	}

	series := make([]chart.Series, 0, st.K+1)
	for id := 0; id < st.K; id++ {
		idxs := byCluster[id]
		if len(idxs) == 0 {
			continue
		}
		cx := make([]float64, len(idxs))
		cy := make([]float64, len(idxs))
		for j, i := range idxs {
			cx[j], cy[j] = xs[i], ys[i]
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("cluster %d", id),
			XValues: cx,
			YValues: cy,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColor:    chartColor(render.ClusterColor(id)),
			},
		})
	}

	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	series = append(series, chart.ContinuousSeries{
		Name:    fmt.Sprintf("fit (r = %.3f)", fit.Correlation),
		XValues: []float64{lo, hi},
		YValues: []float64{fit.Slope*lo + fit.Intercept, fit.Slope*hi + fit.Intercept},
		Style: chart.Style{
			StrokeWidth:     2,
			StrokeColor:     drawing.ColorBlack,
			StrokeDashArray: []float64{5, 4},
		},
	})

	ch := chart.Chart{
		Title:      fmt.Sprintf("%s vs %s", st.YVar, st.XVar),
		Background: chart.Style{Padding: chart.Box{Top: 16, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      axisFor(st.XVar),
		YAxis:      chart.YAxis{Name: st.YVar.String(), NameStyle: chart.Style{TextRotationDegrees: 90}},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, buf)
}

// renderPCP draws the parallel-coordinates view as normalized polylines,
// one x position per indicator axis.
func (e *Exporter) renderPCP(st viewstate.State, buf *bytes.Buffer) error {
	ds := e.repo.Dataset()
	columns := model.Fields
	rows := render.DisplayRows(ds.PCPRows(columns), st.SelectedCountries, render.PCPDisplayLimit)
	if len(rows) == 0 {
		return fmt.Errorf("no rows with all indicators present")
	}

	scales := make([]render.Scale, len(columns))
	for i, f := range columns {
		scales[i] = render.FieldScale(f, ds.NumericValues(f), 0, 1)
	}

	ids := clusterer.Assign(rows, columns[0], columns[1], st.K)
	series := make([]chart.Series, 0, len(rows))
	for i, row := range rows {
		ys := make([]float64, len(columns))
		xsAxis := make([]float64, len(columns))
		for j, f := range columns {
			xsAxis[j] = float64(j)
			ys[j] = scales[j].Apply(row.Value(f))
		}
		series = append(series, chart.ContinuousSeries{
			XValues: xsAxis,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: 1,
				StrokeColor: chartColor(render.ClusterColor(ids[i])),
			},
		})
	}

	ticks := make([]chart.Tick, len(columns))
	for i, f := range columns {
		ticks[i] = chart.Tick{Value: float64(i), Label: f.String()}
	}

	ch := chart.Chart{
		Title:      "Parallel Coordinates",
		Background: chart.Style{Padding: chart.Box{Top: 16, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(columns) - 1)},
		},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: series,
	}
	return ch.Render(chart.PNG, buf)
}

// renderClusters draws the clustering-error bar chart with the currently
// selected k highlighted.
func (e *Exporter) renderClusters(ctx context.Context, st viewstate.State, buf *bytes.Buffer) error {
	curve := e.repo.ErrorCurve(ctx, st.XVar, st.YVar)
	if curve == nil || len(curve.Points) == 0 {
		return fmt.Errorf("error curve unavailable")
	}

	bars := make([]chart.Value, 0, len(curve.Points))
	for _, p := range curve.Points {
		color := chartColor("#6baed6")
		if p.K == st.K {
			color = chartColor(render.SelectionColor())
		}
		bars = append(bars, chart.Value{
			Value: p.MSE,
			Label: fmt.Sprintf("%d", p.K),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	ch := chart.BarChart{
		Title:      fmt.Sprintf("Clustering error (optimal k = %d)", curve.OptimalK),
		Background: chart.Style{Padding: chart.Box{Top: 16, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   36,
		Bars:       bars,
	}
	return ch.Render(chart.PNG, buf)
}

func axisFor(f model.Field) chart.XAxis {
	return chart.XAxis{
		Name: f.String(),
		ValueFormatter: func(v any) string {
			fv, ok := v.(float64)
			if !ok {
				return ""
			}
			return render.FormatValue(f, fv)
		},
	}
}

// chartColor converts a #rrggbb hex string to a drawing color.
func chartColor(hex string) drawing.Color {
	r, g, b, ok := render.HexRGB(hex)
	if !ok {
		return drawing.ColorBlack
	}
	return drawing.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
