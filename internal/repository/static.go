package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"github.com/Veraticus/geoscope/internal/model"
)

// Static fallback file names, looked up under the configured data dir.
const (
	staticCountriesFile = "countries.csv"
	staticGeometryFile  = "world.geojson"
)

// loadStaticCountries reads the bundled delimited country table. The
// header row is matched through the same alias table as the API payload,
// so either snake_case or display-name headers work.
func loadStaticCountries(dir string) ([]model.CountryRecord, error) {
	path := filepath.Join(dir, staticCountriesFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fallback table: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read fallback table %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("fallback table %s has no data rows", path)
	}

	header := rows[0]
	records := make([]model.CountryRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]any, len(header))
		for i, key := range header {
			if i < len(row) {
				m[key] = row[i]
			}
		}
		if rec, ok := recordFromRow(m); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// loadStaticGeoJSON reads the bundled world geometry. Same shape rules as
// the API endpoint: FeatureCollection object or bare feature array.
func loadStaticGeoJSON(dir string) ([]*geojson.Feature, error) {
	path := filepath.Join(dir, staticGeometryFile)
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open fallback geometry: %w", err)
	}
	features, err := decodeFeatures(body)
	if err != nil {
		return nil, fmt.Errorf("fallback geometry %s: %w", path, err)
	}
	return features, nil
}
