package model

import (
	"fmt"
	"math"
)

// Standard scales each column to zero mean and unit variance with the
// statistics captured at fit time.
type Standard struct {
	Cols  []string  `json:"columns"`
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Standard) Columns() []string {
	return append([]string(nil), s.Cols...)
}

func (s *Standard) Transform(columns []string, values []float64) ([]float64, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if !sameColumns(columns, s.Cols) {
		return nil, &ConfigError{
			Component: "scaler",
			Reason:    fmt.Sprintf("fit on %s, applied to %s", describeColumns(s.Cols), describeColumns(columns)),
		}
	}
	if len(values) != len(columns) {
		return nil, &ConfigError{
			Component: "scaler",
			Reason:    fmt.Sprintf("got %d values for %d columns", len(values), len(columns)),
		}
	}

	out := make([]float64, len(values))
	for i, v := range values {
		scale := s.Scale[i]
		// constant columns are left unscaled, as scikit-learn does
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

func (s *Standard) check() error {
	if len(s.Cols) == 0 {
		return &ConfigError{Component: "scaler", Reason: "no fit columns"}
	}
	if len(s.Mean) != len(s.Cols) || len(s.Scale) != len(s.Cols) {
		return &ConfigError{
			Component: "scaler",
			Reason:    fmt.Sprintf("%d columns, %d means, %d scales", len(s.Cols), len(s.Mean), len(s.Scale)),
		}
	}
	for i := range s.Cols {
		if math.IsNaN(s.Mean[i]) || math.IsNaN(s.Scale[i]) || math.IsInf(s.Mean[i], 0) || math.IsInf(s.Scale[i], 0) {
			return &ConfigError{Component: "scaler", Reason: fmt.Sprintf("non-finite statistics for %q", s.Cols[i])}
		}
	}
	return nil
}
