package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const defaultThreshold = 0.5

// Logistic is a logistic-regression classifier over numeric features and
// one-hot encoded categorical features. Categories without a weight
// contribute nothing to the score.
type Logistic struct {
	Intercept   float64                       `json:"intercept"`
	Numeric     map[string]float64            `json:"numeric"`
	Categorical map[string]map[string]float64 `json:"categorical"`
	// Threshold on p1 for class 1. Zero means 0.5.
	Threshold float64 `json:"threshold,omitempty"`
}

func (l *Logistic) Predict(row Row) (int, error) {
	proba, err := l.PredictProba(row)
	if err != nil {
		return 0, err
	}

	threshold := l.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = defaultThreshold
	}

	if proba[1] >= threshold {
		return 1, nil
	}
	return 0, nil
}

func (l *Logistic) PredictProba(row Row) ([]float64, error) {
	if len(l.Numeric) == 0 && len(l.Categorical) == 0 {
		return nil, errors.New("model not trained")
	}

	z := l.Intercept
	for name, weight := range l.Numeric {
		value, ok := row.Number(name)
		if !ok {
			return nil, &ConfigError{Component: "classifier", Reason: fmt.Sprintf("numeric feature %q missing from row %s", name, describeColumns(row.Names()))}
		}
		z += weight * value
	}

	for name, weights := range l.Categorical {
		category, ok := row.Category(name)
		if !ok {
			return nil, &ConfigError{Component: "classifier", Reason: fmt.Sprintf("categorical feature %q missing from row %s", name, describeColumns(row.Names()))}
		}
		z += weights[category]
	}

	p1 := sigmoid(z)
	return []float64{1 - p1, p1}, nil
}

// FeatureImportance scores numeric features by absolute weight and
// categorical features by the spread of their category weights, normalized
// to sum to 100.
func (l *Logistic) FeatureImportance() ([]Importance, error) {
	raw := make([]Importance, 0, len(l.Numeric)+len(l.Categorical))
	for name, weight := range l.Numeric {
		raw = append(raw, Importance{Feature: name, Score: math.Abs(weight)})
	}
	for name, weights := range l.Categorical {
		raw = append(raw, Importance{Feature: name, Score: spread(weights)})
	}

	var total float64
	for _, imp := range raw {
		total += imp.Score
	}
	if total == 0 {
		return nil, errors.New("all feature weights are zero")
	}

	for i := range raw {
		raw[i].Score = math.Round(raw[i].Score/total*100*100) / 100
	}

	sort.SliceStable(raw, func(i, j int) bool {
		if raw[i].Score != raw[j].Score {
			return raw[i].Score > raw[j].Score
		}
		return raw[i].Feature < raw[j].Feature
	})

	return raw, nil
}

// spread includes the implicit zero weight of unlisted categories.
func spread(weights map[string]float64) float64 {
	lo, hi := 0.0, 0.0
	for _, w := range weights {
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}
	return hi - lo
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
