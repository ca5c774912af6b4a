package pipeline

import (
	"github.com/spigell/job-change/internal/candidate"
	"github.com/spigell/job-change/internal/model"
)

// NumericColumns are the only columns the scaler rewrites.
var NumericColumns = []string{
	candidate.FieldCityDevelopmentIndex.Column(),
	candidate.FieldTrainingHours.Column(),
}

// Features builds the single feature row of a validated profile in field
// declaration order.
func Features(v *candidate.Validated) model.Row {
	row := make(model.Row, 0, len(candidate.Fields()))
	for _, f := range candidate.Fields() {
		if f.IsNumeric() {
			row = append(row, model.Value{Name: f.Column(), Numeric: true, Number: v.Number(f)})
			continue
		}
		row = append(row, model.Value{Name: f.Column(), Category: v.Category(f)})
	}
	return row
}

// Scale returns a copy of row with the numeric columns replaced by the
// scaler output. The values are passed in the scaler's fit order, which must
// be exactly NumericColumns.
func Scale(scaler model.Scaler, row model.Row) (model.Row, error) {
	columns := scaler.Columns()
	if err := requireColumns(columns); err != nil {
		return nil, err
	}

	values := make([]float64, len(columns))
	for i, name := range columns {
		value, ok := row.Number(name)
		if !ok {
			return nil, &model.ConfigError{Component: "scaler", Reason: "row has no numeric column " + name}
		}
		values[i] = value
	}

	scaled, err := scaler.Transform(columns, values)
	if err != nil {
		return nil, err
	}
	if len(scaled) != len(columns) {
		return nil, &model.ConfigError{Component: "scaler", Reason: "transform changed the number of columns"}
	}

	out := make(model.Row, len(row))
	copy(out, row)
	for i, name := range columns {
		for j := range out {
			if out[j].Name == name && out[j].Numeric {
				out[j].Number = scaled[i]
			}
		}
	}
	return out, nil
}

func requireColumns(columns []string) error {
	if len(columns) != len(NumericColumns) {
		return &model.ConfigError{Component: "scaler", Reason: "fit columns do not match the numeric features"}
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	for _, c := range NumericColumns {
		if !seen[c] {
			return &model.ConfigError{Component: "scaler", Reason: "fit columns do not match the numeric features"}
		}
	}
	return nil
}
