package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/geoscope/internal/config"
	"github.com/Veraticus/geoscope/internal/repository"
	"github.com/Veraticus/geoscope/internal/viewstate"
)

const backendCountries = `[
	{"country": "Aland", "co2_emissions": 1200, "gdp": 2.1e9, "population": 1.1e6, "life_expectancy": 71.2},
	{"country": "Borduria", "co2_emissions": 8500, "gdp": 5.1e10, "population": 4.1e7, "life_expectancy": 68.4},
	{"country": "Cydonia", "co2_emissions": 124000, "gdp": 1.2e12, "population": 8.2e7, "life_expectancy": 81.5}
]`

const backendGeoJSON = `{"type": "FeatureCollection", "features": [
	{"type": "Feature", "properties": {"NAME": "Aland"},
	 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}}
]}`

func loadedServer(t *testing.T) (*Server, *viewstate.Store) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/countries":
			_, _ = w.Write([]byte(backendCountries))
		case "/api/map/geojson":
			_, _ = w.Write([]byte(backendGeoJSON))
		case "/api/clustering/mse":
			_, _ = w.Write([]byte(`[{"k_value": 1, "mse_value": 9.0}, {"k_value": 2, "mse_value": 5.0}]`))
		case "/api/clustering/optimal-k":
			_, _ = w.Write([]byte(`{"optimalK": 2}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	repo := repository.New(&config.Config{
		APIBaseURL:     backend.URL,
		DataDir:        t.TempDir(),
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
	_, err := repo.LoadAll(context.Background())
	require.NoError(t, err)

	store := viewstate.NewStore()
	return New(repo, store, nil), store
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := loadedServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ready"])
}

func TestHealthzNotReady(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(backend.Close)

	repo := repository.New(&config.Config{
		APIBaseURL:     backend.URL,
		DataDir:        t.TempDir(),
		RequestTimeout: time.Second,
		RetryAttempts:  1,
	})
	srv := New(repo, viewstate.NewStore(), nil)

	w := doJSON(t, srv.Router(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetState(t *testing.T) {
	srv, _ := loadedServer(t)

	w := doJSON(t, srv.Router(), http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var st stateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "co2_emissions", st.MapFeature)
	assert.Equal(t, "co2_emissions", st.XVar)
	assert.Equal(t, "population", st.YVar)
	assert.Equal(t, 4, st.K)
}

func TestPatchState(t *testing.T) {
	srv, store := loadedServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPatch, "/api/state",
		`{"map_feature": "life_expectancy", "x_var": "gdp", "k": 7}`)
	require.Equal(t, http.StatusOK, w.Code)

	st := store.Snapshot()
	assert.Equal(t, 7, st.K)
	assert.Equal(t, "gdp", st.XVar.APIName())
	assert.Equal(t, "life_expectancy", st.MapFeature.APIName())
}

func TestPatchStateRejectsBadValues(t *testing.T) {
	srv, store := loadedServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPatch, "/api/state", `{"k": 11}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/state", `{"x_var": "density"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was applied.
	assert.Equal(t, 4, store.Snapshot().K)
}

func TestSelectionToggle(t *testing.T) {
	srv, store := loadedServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodPost, "/api/selection/toggle", `{"country": "Aland"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Aland"}, store.Snapshot().SelectedCountries)

	w = doJSON(t, router, http.MethodPost, "/api/selection/toggle", `{"country": "Atlantis"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/selection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.Snapshot().SelectedCountries)
}

func TestViewEndpointsServeSVG(t *testing.T) {
	srv, _ := loadedServer(t)
	router := srv.Router()

	for _, path := range []string{
		"/views/map.svg",
		"/views/scatter.svg",
		"/views/pcp.svg",
		"/views/clusters.svg",
	} {
		w := doJSON(t, router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"), path)
		assert.Contains(t, w.Body.String(), "<svg", path)
	}
}

func TestMapViewQueryParams(t *testing.T) {
	srv, _ := loadedServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/views/map.svg?width=400&height=300&zoom=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `width="400"`)

	// Unusable dimensions fall back to the defaults.
	w = doJSON(t, router, http.MethodGet, "/views/map.svg?width=-5&height=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `width="800"`)
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := loadedServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))
}
