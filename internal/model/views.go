package model

// NumericValues returns every valid value of f across the table: positive,
// finite, non-NaN. Used to build scale and color domains, which must stay
// log-safe.
func (d *Dataset) NumericValues(f Field) []float64 {
	if d == nil {
		return nil
	}
	values := make([]float64, 0, len(d.Records))
	for _, r := range d.Records {
		if v := r.Value(f); ValidValue(v) {
			values = append(values, v)
		}
	}
	return values
}

// ScatterRows projects the table onto (x, y), dropping any record where
// either value is invalid.
func (d *Dataset) ScatterRows(x, y Field) []CountryRecord {
	return d.rowsWithValid(x, y)
}

// PCPRows returns records where every requested column is valid.
func (d *Dataset) PCPRows(columns []Field) []CountryRecord {
	return d.rowsWithValid(columns...)
}

func (d *Dataset) rowsWithValid(fields ...Field) []CountryRecord {
	if d == nil {
		return nil
	}
	rows := make([]CountryRecord, 0, len(d.Records))
	for _, r := range d.Records {
		ok := true
		for _, f := range fields {
			if !ValidValue(r.Value(f)) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, r)
		}
	}
	return rows
}
