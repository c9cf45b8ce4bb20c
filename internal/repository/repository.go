// Package repository loads the country table and world geometry exactly
// once per session, normalizes them, and hands out immutable dataset
// snapshots plus derived views.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/Veraticus/geoscope/internal/clusterer"
	"github.com/Veraticus/geoscope/internal/common"
	"github.com/Veraticus/geoscope/internal/config"
	"github.com/Veraticus/geoscope/internal/model"
)

// MaxClusterCount bounds the candidate k range everywhere: the error
// curve, the bar chart, and the view-state invariant.
const MaxClusterCount = 10

// Repository obtains country records and geometry from the backend, with
// a static-file fallback, and caches one immutable snapshot per session.
type Repository struct {
	client  *Client
	dataDir string

	mu       sync.Mutex
	inflight chan struct{}
	gen      uint64
	done     bool
	dataset  *model.Dataset
	loadErr  error
	curves   map[axisPair]*model.ErrorCurve
}

// axisPair keys the error-curve cache: a locally computed curve depends
// on which two fields feed the clustering.
type axisPair struct {
	x model.Field
	y model.Field
}

// New creates a repository from configuration. One instance is constructed
// at application start and shared by every renderer host.
func New(cfg *config.Config) *Repository {
	return &Repository{
		client:  NewClient(cfg.APIBaseURL, cfg.RequestTimeout, cfg.RetryAttempts),
		dataDir: cfg.DataDir,
	}
}

// LoadAll loads the country table and geometry. It is idempotent: once a
// load has finished its result (or error) is returned immediately, and
// concurrent callers share a single in-flight load rather than issuing
// duplicate fetches. A started load always runs to completion; a caller
// whose context expires first just stops waiting for it.
func (r *Repository) LoadAll(ctx context.Context) (*model.Dataset, error) {
	r.mu.Lock()
	if r.done {
		ds, err := r.dataset, r.loadErr
		r.mu.Unlock()
		return ds, err
	}
	if r.inflight != nil {
		ch := r.inflight
		r.mu.Unlock()
		return r.await(ctx, ch)
	}

	ch := make(chan struct{})
	r.inflight = ch
	gen := r.gen
	r.mu.Unlock()

	go func() {
		ds, err := r.load(context.WithoutCancel(ctx))

		r.mu.Lock()
		// A ClearCache bumps the generation; a stale load's result is
		// then discarded rather than resurrecting the old caches.
		if r.gen == gen {
			r.dataset = ds
			r.loadErr = err
			r.done = true
			r.inflight = nil
		}
		r.mu.Unlock()

		close(ch)
	}()

	return r.await(ctx, ch)
}

func (r *Repository) await(ctx context.Context, ch <-chan struct{}) (*model.Dataset, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-ch:
	}

	r.mu.Lock()
	if r.done {
		ds, err := r.dataset, r.loadErr
		r.mu.Unlock()
		return ds, err
	}
	r.mu.Unlock()

	// A ClearCache discarded the load this caller was waiting on. Start
	// over so the caller still gets a real snapshot or error.
	return r.LoadAll(ctx)
}

// load runs the two primary fetches concurrently, joins them, and falls
// back to the static files if the primary source fails. If the fallback
// fails too, the primary error is the one that propagates.
func (r *Repository) load(ctx context.Context) (*model.Dataset, error) {
	start := time.Now()

	var (
		wg       sync.WaitGroup
		records  []model.CountryRecord
		features []*geojson.Feature
		recErr   error
		geoErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		records, recErr = r.client.Countries(ctx)
	}()
	go func() {
		defer wg.Done()
		features, geoErr = r.client.GeoJSON(ctx)
	}()
	wg.Wait()

	primaryErr := recErr
	if primaryErr == nil {
		primaryErr = geoErr
	}

	if primaryErr == nil {
		slog.Info("Loaded data from backend",
			"countries", len(records),
			"features", len(features),
			"elapsed", time.Since(start))
		return model.NewDataset(records, features), nil
	}

	slog.Warn("Primary source failed, trying static fallback",
		"data_dir", r.dataDir,
		"error", primaryErr)

	records, err := loadStaticCountries(r.dataDir)
	if err == nil {
		features, err = loadStaticGeoJSON(r.dataDir)
	}
	if err != nil {
		common.LogError(err, "Static fallback failed", common.Fields{"data_dir": r.dataDir})
		return nil, fmt.Errorf("%w: %v", common.ErrSourceExhausted, primaryErr)
	}

	slog.Info("Loaded data from static fallback",
		"countries", len(records),
		"features", len(features))
	return model.NewDataset(records, features), nil
}

// Dataset returns the cached snapshot, or nil before a successful load.
func (r *Repository) Dataset() *model.Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dataset
}

// Status reports the cache readiness gate.
func (r *Repository) Status() model.CacheStatus {
	return r.Dataset().Status()
}

// NumericValues returns all valid values of the requested field.
func (r *Repository) NumericValues(f model.Field) []float64 {
	return r.Dataset().NumericValues(f)
}

// ScatterData projects the table onto (x, y), keeping only records valid
// on both fields.
func (r *Repository) ScatterData(x, y model.Field) []model.CountryRecord {
	return r.Dataset().ScatterRows(x, y)
}

// PCPData returns records valid on every requested column.
func (r *Repository) PCPData(columns []model.Field) []model.CountryRecord {
	return r.Dataset().PCPRows(columns)
}

// ErrorCurve returns the clustering-error sequence for the bar chart.
// Sources, in order: the backend clustering endpoints, a locally computed
// k-means curve over the loaded records, and finally a fixed curve so the
// view always has something to draw. The result is cached per axis pair,
// since the local fallback clusters on the two requested fields.
func (r *Repository) ErrorCurve(ctx context.Context, x, y model.Field) *model.ErrorCurve {
	pair := axisPair{x: x, y: y}

	r.mu.Lock()
	if curve := r.curves[pair]; curve != nil {
		r.mu.Unlock()
		return curve
	}
	dataset := r.dataset
	r.mu.Unlock()

	curve, err := r.client.ErrorCurve(ctx)
	if err != nil {
		slog.Warn("Backend clustering endpoints unavailable", "error", err)
		if dataset != nil {
			curve, err = clusterer.ErrorCurve(dataset.Records, x, y, MaxClusterCount)
		}
		if curve == nil || err != nil {
			curve = defaultErrorCurve()
		}
	}

	r.mu.Lock()
	if r.curves == nil {
		r.curves = make(map[axisPair]*model.ErrorCurve)
	}
	r.curves[pair] = curve
	r.mu.Unlock()
	return curve
}

// ClearCache drops every cache and the load memo so the next LoadAll hits
// the sources again.
func (r *Repository) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.done = false
	r.inflight = nil
	r.dataset = nil
	r.loadErr = nil
	r.curves = nil
}

// defaultErrorCurve is the last-resort clustering-error shape: a smooth
// decay with its elbow at k=4, matching the default cluster count.
func defaultErrorCurve() *model.ErrorCurve {
	mse := []float64{12.5, 7.8, 5.1, 3.6, 3.0, 2.6, 2.3, 2.1, 1.95, 1.85}
	curve := &model.ErrorCurve{OptimalK: 4}
	for i, v := range mse {
		curve.Points = append(curve.Points, model.ErrorCurvePoint{K: i + 1, MSE: v})
	}
	return curve
}
