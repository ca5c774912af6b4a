package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spigell/job-change/internal/logger"
	"github.com/spigell/job-change/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFixtures(t *testing.T, accuracy string) Paths {
	t.Helper()

	dir := t.TempDir()
	paths := Paths{
		Classifier: filepath.Join(dir, "classifier.json"),
		Scaler:     filepath.Join(dir, "scaler.json"),
		Accuracy:   filepath.Join(dir, "accuracy.txt"),
	}

	clf := &model.Logistic{
		Intercept: -0.2,
		Numeric:   map[string]float64{"city_development_index": -1.5, "training_hours": 0.1},
		Categorical: map[string]map[string]float64{
			"gender": {"Male": 0.05},
		},
	}
	if err := clf.Save(paths.Classifier); err != nil {
		t.Fatalf("save classifier: %v", err)
	}

	scaler := &model.Standard{
		Cols:  []string{"city_development_index", "training_hours"},
		Mean:  []float64{0.8, 65},
		Scale: []float64{0.12, 60},
	}
	if err := scaler.Save(paths.Scaler); err != nil {
		t.Fatalf("save scaler: %v", err)
	}

	if accuracy != "" {
		if err := os.WriteFile(paths.Accuracy, []byte(accuracy), 0o644); err != nil {
			t.Fatalf("write accuracy: %v", err)
		}
	}

	return paths
}

func TestProviderLoadsAssets(t *testing.T) {
	paths := writeFixtures(t, "86.2\n")

	got, err := NewProvider(paths, zap.NewNop()).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Classifier == nil || got.Scaler == nil {
		t.Fatalf("expected classifier and scaler to be loaded")
	}
	if got.Accuracy != (Accuracy{Value: 86.2, Measured: true}) {
		t.Fatalf("unexpected accuracy: %+v", got.Accuracy)
	}
}

func TestProviderLogsModelKind(t *testing.T) {
	paths := writeFixtures(t, "86.2")

	core, logs := observer.New(zapcore.InfoLevel)
	if _, err := NewProvider(paths, zap.New(core)).Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("trained assets loaded").All()
	if len(entries) != 1 {
		t.Fatalf("expected one load entry, got %d", len(entries))
	}
	if kind := entries[0].ContextMap()[logger.FieldModelKind]; kind != model.KindLogistic {
		t.Fatalf("unexpected model kind %v", kind)
	}
}

func TestProviderFallsBackToDefaultAccuracy(t *testing.T) {
	paths := writeFixtures(t, "")

	core, logs := observer.New(zapcore.WarnLevel)
	got, err := NewProvider(paths, zap.New(core)).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Accuracy.Value != 88.5 || got.Accuracy.Measured {
		t.Fatalf("expected unmeasured default accuracy, got %+v", got.Accuracy)
	}

	entries := logs.FilterMessage("using default accuracy").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields[logger.FieldAsset] != AssetAccuracy || fields["default"] != 88.5 {
		t.Fatalf("unexpected warning fields: %v", fields)
	}
}

func TestProviderMandatoryAssets(t *testing.T) {
	tests := []struct {
		name      string
		breakPath func(p *Paths)
		asset     string
	}{
		{name: "classifier", breakPath: func(p *Paths) { p.Classifier += ".missing" }, asset: AssetClassifier},
		{name: "scaler", breakPath: func(p *Paths) { p.Scaler += ".missing" }, asset: AssetScaler},
		{name: "unconfigured classifier", breakPath: func(p *Paths) { p.Classifier = "" }, asset: AssetClassifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := writeFixtures(t, "90")
			tt.breakPath(&paths)

			got, err := NewProvider(paths, zap.NewNop()).Load()
			if got != nil {
				t.Fatalf("expected no assets on failure")
			}

			var assetErr *AssetUnavailableError
			if !errors.As(err, &assetErr) {
				t.Fatalf("expected AssetUnavailableError, got %v", err)
			}
			if assetErr.Asset != tt.asset {
				t.Fatalf("expected asset %q, got %q", tt.asset, assetErr.Asset)
			}
		})
	}
}

func TestProviderLoadsOnce(t *testing.T) {
	paths := writeFixtures(t, "90")
	provider := NewProvider(paths, zap.NewNop())

	var calls atomic.Int32
	provider.loadClassifier = func(path string) (model.Classifier, error) {
		calls.Add(1)
		return model.LoadClassifier(path)
	}

	var wg sync.WaitGroup
	results := make([]*TrainedAssets, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := provider.Load()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", calls.Load())
	}
	for i := range results {
		if results[i] != results[0] {
			t.Fatalf("expected every caller to share the same assets")
		}
	}
}

func TestProviderCachesFailure(t *testing.T) {
	paths := writeFixtures(t, "90")
	provider := NewProvider(paths, zap.NewNop())

	var calls int
	provider.loadScaler = func(string) (model.Scaler, error) {
		calls++
		return nil, errors.New("corrupt")
	}

	for i := 0; i < 3; i++ {
		if _, err := provider.Load(); err == nil {
			t.Fatalf("expected error")
		}
	}
	if calls != 1 {
		t.Fatalf("expected failed load to be cached, got %d attempts", calls)
	}
}

func TestReadAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
		wantErr bool
	}{
		{name: "plain", content: "86.25", want: 86.25},
		{name: "json", content: `{"accuracy": 79.1}`, want: 79.1},
		{name: "padded", content: "  91\n", want: 91},
		{name: "empty", content: "   ", wantErr: true},
		{name: "json without key", content: `{"score": 1}`, wantErr: true},
		{name: "garbage", content: "high", wantErr: true},
		{name: "out of range", content: "140", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "accuracy")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}

			got, err := ReadAccuracy(path)
			if tt.wantErr {
				var metricErr *MetricUnavailableError
				if !errors.As(err, &metricErr) {
					t.Fatalf("expected MetricUnavailableError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Value != tt.want || !got.Measured {
				t.Fatalf("expected measured %v, got %+v", tt.want, got)
			}
		})
	}
}
