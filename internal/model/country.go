package model

// CountryRecord holds the per-country indicators for one country. Records
// are immutable once loaded; missing source fields default to zero.
type CountryRecord struct {
	Name           string
	Co2Emissions   float64
	GDP            float64
	Population     float64
	LifeExpectancy float64
}

// Value returns the indicator selected by f.
func (r CountryRecord) Value(f Field) float64 {
	switch f {
	case FieldCo2Emissions:
		return r.Co2Emissions
	case FieldGDP:
		return r.GDP
	case FieldPopulation:
		return r.Population
	case FieldLifeExpectancy:
		return r.LifeExpectancy
	default:
		return 0
	}
}
