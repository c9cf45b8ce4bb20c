package model

import (
	"fmt"
	"strings"
)

// Field identifies one of the four numeric indicators tracked per country.
type Field int

const (
	FieldCo2Emissions Field = iota
	FieldGDP
	FieldPopulation
	FieldLifeExpectancy
)

// Fields lists every indicator in PCP axis order.
var Fields = []Field{FieldCo2Emissions, FieldGDP, FieldPopulation, FieldLifeExpectancy}

// String returns the display name used across views and legends.
func (f Field) String() string {
	switch f {
	case FieldCo2Emissions:
		return "Co2-Emissions"
	case FieldGDP:
		return "GDP"
	case FieldPopulation:
		return "Population"
	case FieldLifeExpectancy:
		return "Life expectancy"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// APIName returns the snake_case name the backend uses for this field.
func (f Field) APIName() string {
	switch f {
	case FieldCo2Emissions:
		return "co2_emissions"
	case FieldGDP:
		return "gdp"
	case FieldPopulation:
		return "population"
	case FieldLifeExpectancy:
		return "life_expectancy"
	default:
		return ""
	}
}

// Linear reports whether the field is drawn on a linear scale. Everything
// except life expectancy spans several orders of magnitude and uses a log
// scale instead.
func (f Field) Linear() bool {
	return f == FieldLifeExpectancy
}

// ParseField resolves a field from any of its aliases: the display name,
// the backend snake_case name, or a condensed form like "lifeExpectancy".
func ParseField(name string) (Field, error) {
	switch normalizeFieldKey(name) {
	case "co2emissions", "co2":
		return FieldCo2Emissions, nil
	case "gdp":
		return FieldGDP, nil
	case "population":
		return FieldPopulation, nil
	case "lifeexpectancy":
		return FieldLifeExpectancy, nil
	default:
		return 0, fmt.Errorf("unknown field %q", name)
	}
}

func normalizeFieldKey(name string) string {
	name = strings.ToLower(name)
	for _, cut := range []string{" ", "-", "_"} {
		name = strings.ReplaceAll(name, cut, "")
	}
	return name
}
