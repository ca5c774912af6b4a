// Package model defines the capabilities the prediction pipeline needs from a
// trained classifier and a numeric scaler, and the JSON-persisted backends
// that implement them.
package model

import (
	"fmt"
	"strings"
)

// Value is one named feature of a row. Numeric features carry Number,
// categorical features carry Category.
type Value struct {
	Name     string
	Numeric  bool
	Number   float64
	Category string
}

// Row is a single feature row in column order.
type Row []Value

// Number returns the numeric feature with the given name.
func (r Row) Number(name string) (float64, bool) {
	for _, v := range r {
		if v.Name == name && v.Numeric {
			return v.Number, true
		}
	}
	return 0, false
}

// Category returns the categorical feature with the given name.
func (r Row) Category(name string) (string, bool) {
	for _, v := range r {
		if v.Name == name && !v.Numeric {
			return v.Category, true
		}
	}
	return "", false
}

// Names returns the column names of the row in order.
func (r Row) Names() []string {
	names := make([]string, 0, len(r))
	for _, v := range r {
		names = append(names, v.Name)
	}
	return names
}

// Classifier is a binary classifier scoring a single row.
type Classifier interface {
	// Predict returns the class, 0 or 1.
	Predict(row Row) (int, error)
	// PredictProba returns [p0, p1].
	PredictProba(row Row) ([]float64, error)
}

// Importance is the score of one feature in a ranking.
type Importance struct {
	Feature string
	Score   float64
}

// ImportanceRanker is an optional Classifier capability.
type ImportanceRanker interface {
	// FeatureImportance returns features ordered by descending score.
	FeatureImportance() ([]Importance, error)
}

// Scaler transforms the numeric subset of a row.
type Scaler interface {
	// Columns returns the columns the scaler was fit on, in fit order.
	Columns() []string
	// Transform scales values given in the order of columns. The columns
	// must match the fit columns exactly.
	Transform(columns []string, values []float64) ([]float64, error)
}

// ConfigError reports an artifact that does not fit the data it is applied
// to. It is never retryable.
type ConfigError struct {
	Component string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s configuration mismatch: %s", e.Component, e.Reason)
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func describeColumns(columns []string) string {
	return "[" + strings.Join(columns, ", ") + "]"
}
