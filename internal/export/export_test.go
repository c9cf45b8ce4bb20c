package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/geoscope/internal/config"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

const exportCountries = `[
	{"country": "Aland", "co2_emissions": 1200, "gdp": 2.1e9, "population": 1.1e6, "life_expectancy": 71.2},
	{"country": "Borduria", "co2_emissions": 8500, "gdp": 5.1e10, "population": 4.1e7, "life_expectancy": 68.4},
	{"country": "Cydonia", "co2_emissions": 124000, "gdp": 1.2e12, "population": 8.2e7, "life_expectancy": 81.5},
	{"country": "Drome", "co2_emissions": 310, "gdp": 3.1e8, "population": 2.1e5, "life_expectancy": 64.0},
	{"country": "Elbonia", "co2_emissions": 47000, "gdp": 4.4e11, "population": 2.6e7, "life_expectancy": 74.8}
]`

const exportGeoJSON = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"NAME": "Aland"},
	 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}}
]}`

func exportRepository(t *testing.T) *repository.Repository {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/countries":
			_, _ = w.Write([]byte(exportCountries))
		case "/api/map/geojson":
			_, _ = w.Write([]byte(exportGeoJSON))
		case "/api/clustering/mse":
			_, _ = w.Write([]byte(`[
				{"k_value": 1, "mse_value": 9.0},
				{"k_value": 2, "mse_value": 5.0},
				{"k_value": 3, "mse_value": 3.5}
			]`))
		case "/api/clustering/optimal-k":
			_, _ = w.Write([]byte(`{"optimalK": 2}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	return repository.New(&config.Config{
		APIBaseURL:     backend.URL,
		DataDir:        t.TempDir(),
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
}

func TestExportWritesPNGs(t *testing.T) {
	dir := t.TempDir()
	exporter := New(exportRepository(t), viewstate.NewStore())

	require.NoError(t, exporter.Export(context.Background(), dir, nil))

	for _, view := range AllViews {
		path := filepath.Join(dir, view+".png")
		data, err := os.ReadFile(path)
		require.NoError(t, err, view)
		// PNG magic bytes.
		require.Greater(t, len(data), 8, view)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4], view)
	}
}

func TestExportSubset(t *testing.T) {
	dir := t.TempDir()
	exporter := New(exportRepository(t), viewstate.NewStore())

	require.NoError(t, exporter.Export(context.Background(), dir, []string{ViewClusters}))

	_, err := os.Stat(filepath.Join(dir, "clusters.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "scatter.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestExportRejectsUnknownView(t *testing.T) {
	exporter := New(exportRepository(t), viewstate.NewStore())
	err := exporter.Export(context.Background(), t.TempDir(), []string{"map"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown view")
}

func TestExportScatterHonorsSelection(t *testing.T) {
	repo := exportRepository(t)
	store := viewstate.NewStore()
	exporter := New(repo, store)

	// A selection that matches no scatter rows leaves nothing to plot,
	// which proves the selection filter is applied before rendering.
	store.SetSelectedCountries([]string{"Atlantis"})
	err := exporter.Export(context.Background(), t.TempDir(), []string{ViewScatter})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows")

	// A real selection exports cleanly.
	store.SetSelectedCountries([]string{"Aland", "Cydonia"})
	dir := t.TempDir()
	require.NoError(t, exporter.Export(context.Background(), dir, []string{ViewScatter, ViewPCP}))
	_, err = os.Stat(filepath.Join(dir, "scatter.png"))
	assert.NoError(t, err)
}
