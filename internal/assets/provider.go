// Package assets loads the trained classifier, scaler and accuracy metric
// once and shares them read-only.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spigell/job-change/internal/logger"
	"github.com/spigell/job-change/internal/model"
	"go.uber.org/zap"
)

// DefaultAccuracy is reported when no measured accuracy is available.
const DefaultAccuracy = 88.5

const (
	AssetClassifier = "classifier"
	AssetScaler     = "scaler"
	AssetAccuracy   = "accuracy"
)

// Paths locates the persisted assets.
type Paths struct {
	Classifier string `mapstructure:"classifier"`
	Scaler     string `mapstructure:"scaler"`
	Accuracy   string `mapstructure:"accuracy"`
}

// Accuracy is the model accuracy in percent. Measured is false when the
// value is DefaultAccuracy substituted for a missing metric.
type Accuracy struct {
	Value    float64 `json:"value"`
	Measured bool    `json:"measured"`
}

// TrainedAssets is shared by all predictions and never mutated.
type TrainedAssets struct {
	Classifier model.Classifier
	Scaler     model.Scaler
	Accuracy   Accuracy
}

// AssetUnavailableError reports a mandatory asset that could not be loaded.
type AssetUnavailableError struct {
	Asset string
	Path  string
	Err   error
}

func (e *AssetUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable at %q: %v", e.Asset, e.Path, e.Err)
}

func (e *AssetUnavailableError) Unwrap() error { return e.Err }

// MetricUnavailableError reports a missing accuracy metric. It is never
// returned to callers, only logged.
type MetricUnavailableError struct {
	Path string
	Err  error
}

func (e *MetricUnavailableError) Error() string {
	return fmt.Sprintf("accuracy metric unavailable at %q: %v", e.Path, e.Err)
}

func (e *MetricUnavailableError) Unwrap() error { return e.Err }

// Provider loads the assets on the first call to Load and returns the same
// result, success or failure, to every later caller.
type Provider struct {
	paths  Paths
	logger *zap.Logger

	loadClassifier func(string) (model.Classifier, error)
	loadScaler     func(string) (model.Scaler, error)

	once   sync.Once
	assets *TrainedAssets
	err    error
}

func NewProvider(paths Paths, log *zap.Logger) *Provider {
	return &Provider{
		paths:          paths,
		logger:         logger.WithComponent(log, "assets"),
		loadClassifier: model.LoadClassifier,
		loadScaler:     model.LoadScaler,
	}
}

// Load returns the cached assets, loading them on first use. It is safe for
// concurrent use.
func (p *Provider) Load() (*TrainedAssets, error) {
	p.once.Do(func() {
		p.assets, p.err = p.load()
	})
	return p.assets, p.err
}

func (p *Provider) load() (*TrainedAssets, error) {
	classifier, err := p.loadClassifier(p.paths.Classifier)
	if err != nil {
		return nil, p.unavailable(AssetClassifier, p.paths.Classifier, err)
	}

	scaler, err := p.loadScaler(p.paths.Scaler)
	if err != nil {
		return nil, p.unavailable(AssetScaler, p.paths.Scaler, err)
	}

	accuracy, err := ReadAccuracy(p.paths.Accuracy)
	if err != nil {
		p.logger.Warn("using default accuracy",
			append(logger.AssetFields(AssetAccuracy, p.paths.Accuracy),
				zap.Float64("default", DefaultAccuracy),
				zap.Error(err),
			)...,
		)
		accuracy = Accuracy{Value: DefaultAccuracy}
	}

	p.logger.Info("trained assets loaded",
		zap.String(logger.FieldModelKind, model.ClassifierKind(classifier)),
		zap.String("classifier", p.paths.Classifier),
		zap.String("scaler", p.paths.Scaler),
		zap.Strings("scaler_columns", scaler.Columns()),
		zap.Float64("accuracy", accuracy.Value),
		zap.Bool("accuracy_measured", accuracy.Measured),
	)

	return &TrainedAssets{
		Classifier: classifier,
		Scaler:     scaler,
		Accuracy:   accuracy,
	}, nil
}

func (p *Provider) unavailable(asset, path string, err error) error {
	p.logger.Error("trained asset unavailable",
		append(logger.AssetFields(asset, path), zap.Error(err))...,
	)
	return &AssetUnavailableError{Asset: asset, Path: path, Err: err}
}

// ReadAccuracy reads a persisted accuracy percentage, either a bare number
// or a JSON object with an "accuracy" key. Any failure is returned as a
// *MetricUnavailableError.
func ReadAccuracy(path string) (Accuracy, error) {
	if strings.TrimSpace(path) == "" {
		return Accuracy{}, &MetricUnavailableError{Path: path, Err: errors.New("path is not configured")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Accuracy{}, &MetricUnavailableError{Path: path, Err: err}
	}

	value, err := parseAccuracy(strings.TrimSpace(string(data)))
	if err != nil {
		return Accuracy{}, &MetricUnavailableError{Path: path, Err: err}
	}

	return Accuracy{Value: value, Measured: true}, nil
}

func parseAccuracy(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("file is empty")
	}

	var value float64
	if strings.HasPrefix(raw, "{") {
		var doc struct {
			Accuracy *float64 `json:"accuracy"`
		}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return 0, fmt.Errorf("decode accuracy: %w", err)
		}
		if doc.Accuracy == nil {
			return 0, errors.New("accuracy key is missing")
		}
		value = *doc.Accuracy
	} else {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parse accuracy: %w", err)
		}
		value = parsed
	}

	if value < 0 || value > 100 || value != value {
		return 0, fmt.Errorf("accuracy %v is not a percentage", value)
	}

	return value, nil
}
