package repository

import (
	"strconv"
	"strings"

	"github.com/Veraticus/geoscope/internal/model"
)

// countryKeys are the property names a source may use for the country name.
var countryKeys = []string{"country", "Country", "name", "NAME"}

// CleanNumber normalizes a numeric source value to a plain float64.
// Sources are inconsistent: some emit real JSON numbers, others emit
// strings with currency symbols, thousands separators, or a trailing
// percent sign. Anything unparseable normalizes to 0.
func CleanNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// recordFromRow builds a CountryRecord from a loosely typed source row.
// Field keys are matched through the alias table (snake_case API names,
// display names, condensed forms); missing fields default to 0. Rows with
// no recognizable country name are rejected.
func recordFromRow(row map[string]any) (model.CountryRecord, bool) {
	var rec model.CountryRecord

	for _, key := range countryKeys {
		if v, ok := row[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				rec.Name = strings.TrimSpace(s)
				break
			}
		}
	}
	if rec.Name == "" {
		return model.CountryRecord{}, false
	}

	for key, v := range row {
		field, err := model.ParseField(key)
		if err != nil {
			continue
		}
		switch field {
		case model.FieldCo2Emissions:
			rec.Co2Emissions = CleanNumber(v)
		case model.FieldGDP:
			rec.GDP = CleanNumber(v)
		case model.FieldPopulation:
			rec.Population = CleanNumber(v)
		case model.FieldLifeExpectancy:
			rec.LifeExpectancy = CleanNumber(v)
		}
	}

	return rec, true
}
