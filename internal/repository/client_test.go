package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/geoscope/internal/model"
)

func newTestClient(url string) *Client {
	c := NewClient(url, 5*time.Second, 3)
	c.retry.InitialDelay = time.Millisecond
	c.retry.MaxDelay = 2 * time.Millisecond
	return c
}

func TestClientCountries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/countries", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"country": "Aland", "co2_emissions": 1200, "gdp": "$2,100,000,000", "population": 1100000, "life_expectancy": 71.2},
			{"country": "", "gdp": 5},
			{"country": "Borduria", "gdp": 5.1e10}
		]`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).Countries(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Aland", records[0].Name)
	assert.Equal(t, 2.1e9, records[0].GDP)
	assert.Equal(t, "Borduria", records[1].Name)
}

func TestClientGeoJSONShapes(t *testing.T) {
	collection := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {"NAME": "Aland"},
		 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}
	]}`
	bareArray := `[
		{"type": "Feature", "properties": {"NAME": "Aland"},
		 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}
	]`

	tests := []struct {
		name string
		body string
	}{
		{name: "feature collection", body: collection},
		{name: "bare feature array", body: bareArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			features, err := newTestClient(srv.URL).GeoJSON(context.Background())
			require.NoError(t, err)
			require.Len(t, features, 1)
			assert.Equal(t, "Aland", model.FeatureName(features[0]))
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Countries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Countries(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientErrorCurve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clustering/mse":
			_, _ = w.Write([]byte(`[
				{"k_value": 1, "mse_value": 10.0},
				{"k_value": 2, "mse_value": 6.0},
				{"k_value": 3, "mse_value": 4.5}
			]`))
		case "/api/clustering/optimal-k":
			_, _ = w.Write([]byte(`{"optimalK": 2}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	curve, err := newTestClient(srv.URL).ErrorCurve(context.Background())
	require.NoError(t, err)
	require.Len(t, curve.Points, 3)
	assert.Equal(t, 2, curve.OptimalK)
	assert.Equal(t, model.ErrorCurvePoint{K: 2, MSE: 6.0}, curve.Points[1])
}
