package model

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func testRow() Row {
	return Row{
		{Name: "city_development_index", Numeric: true, Number: 0.5},
		{Name: "gender", Category: "Male"},
		{Name: "training_hours", Numeric: true, Number: -1.2},
	}
}

func testLogistic() *Logistic {
	return &Logistic{
		Intercept: 0.2,
		Numeric: map[string]float64{
			"city_development_index": -2,
			"training_hours":         0.5,
		},
		Categorical: map[string]map[string]float64{
			"gender": {"Male": 0.4, "Female": -0.1},
		},
	}
}

func TestLogisticPredictProba(t *testing.T) {
	m := testLogistic()

	proba, err := m.PredictProba(testRow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(proba) != 2 {
		t.Fatalf("expected 2 probabilities, got %d", len(proba))
	}

	if math.Abs(proba[0]+proba[1]-1) > 1e-12 {
		t.Fatalf("expected probabilities to sum to 1, got %v", proba)
	}

	// z = 0.2 - 1 - 0.6 + 0.4 = -1
	want := 1 / (1 + math.Exp(1))
	if math.Abs(proba[1]-want) > 1e-12 {
		t.Fatalf("expected p1 %v, got %v", want, proba[1])
	}

	label, err := m.Predict(testRow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
}

func TestLogisticUnseenCategoryHasNoWeight(t *testing.T) {
	m := testLogistic()
	row := testRow()
	row[1].Category = "Other"

	proba, err := m.PredictProba(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := 1 / (1 + math.Exp(1.4))
	if math.Abs(proba[1]-want) > 1e-12 {
		t.Fatalf("expected p1 %v, got %v", want, proba[1])
	}
}

func TestLogisticMissingFeature(t *testing.T) {
	m := testLogistic()

	_, err := m.PredictProba(testRow()[:2])

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestLogisticFeatureImportance(t *testing.T) {
	ranking, err := testLogistic().FeatureImportance()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// raw scores: cdi 2, training_hours 0.5, gender 0.5 (spread 0.4 - -0.1)
	want := []Importance{
		{Feature: "city_development_index", Score: 66.67},
		{Feature: "gender", Score: 16.67},
		{Feature: "training_hours", Score: 16.67},
	}

	if len(ranking) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(ranking))
	}
	for i := range want {
		if ranking[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], ranking[i])
		}
	}
}

func TestStandardTransform(t *testing.T) {
	s := &Standard{
		Cols:  []string{"city_development_index", "training_hours"},
		Mean:  []float64{0.8, 65},
		Scale: []float64{0.1, 0},
	}

	out, err := s.Transform([]string{"city_development_index", "training_hours"}, []float64{0.9, 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(out[0]-1) > 1e-9 {
		t.Fatalf("expected 1, got %v", out[0])
	}
	if out[1] != -25 {
		t.Fatalf("expected constant column to be centered only, got %v", out[1])
	}
}

func TestStandardTransformColumnMismatch(t *testing.T) {
	s := &Standard{
		Cols:  []string{"city_development_index", "training_hours"},
		Mean:  []float64{0.8, 65},
		Scale: []float64{0.1, 60},
	}

	tests := []struct {
		name    string
		columns []string
	}{
		{name: "reversed order", columns: []string{"training_hours", "city_development_index"}},
		{name: "missing column", columns: []string{"training_hours"}},
		{name: "extra column", columns: []string{"city_development_index", "training_hours", "experience"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Transform(tt.columns, make([]float64, len(tt.columns)))
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestArtifactsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	clfPath := filepath.Join(dir, "classifier.json")
	if err := testLogistic().Save(clfPath); err != nil {
		t.Fatalf("saving classifier: %v", err)
	}

	clf, err := LoadClassifier(clfPath)
	if err != nil {
		t.Fatalf("loading classifier: %v", err)
	}
	if _, ok := clf.(ImportanceRanker); !ok {
		t.Fatalf("expected logistic classifier to rank importance")
	}
	if kind := ClassifierKind(clf); kind != KindLogistic {
		t.Fatalf("unexpected classifier kind %q", kind)
	}

	scalerPath := filepath.Join(dir, "scaler.json")
	scaler := &Standard{Cols: []string{"training_hours"}, Mean: []float64{10}, Scale: []float64{2}}
	if err := scaler.Save(scalerPath); err != nil {
		t.Fatalf("saving scaler: %v", err)
	}

	loaded, err := LoadScaler(scalerPath)
	if err != nil {
		t.Fatalf("loading scaler: %v", err)
	}
	if cols := loaded.Columns(); len(cols) != 1 || cols[0] != "training_hours" {
		t.Fatalf("unexpected scaler columns: %v", cols)
	}

	if _, err := LoadScaler(clfPath); err == nil {
		t.Fatalf("expected classifier artifact to be rejected as a scaler")
	}
	if _, err := LoadClassifier(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing artifact")
	}
}
