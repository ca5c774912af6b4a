// Package pipeline turns a validated candidate profile into a labeled,
// confidence-scored prediction.
package pipeline

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/assets"
	"github.com/spigell/job-change/internal/candidate"
	"github.com/spigell/job-change/internal/logger"
	"github.com/spigell/job-change/internal/model"
)

const (
	// DefaultCacheSize is the number of predictions memoized per Predictor.
	DefaultCacheSize = 1024

	probabilityTolerance = 1e-6
)

// Label is the human facing outcome of a prediction.
type Label string

const (
	LabelLikely   Label = "likely"
	LabelUnlikely Label = "unlikely"
)

// Result is a single prediction.
type Result struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	// Probabilities holds [p(unlikely), p(likely)].
	Probabilities [2]float64      `json:"probabilities"`
	Accuracy      assets.Accuracy `json:"accuracy"`
}

// AssetSource supplies the trained assets. *assets.Provider implements it.
type AssetSource interface {
	Load() (*assets.TrainedAssets, error)
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithCacheSize sets the memoization size. Zero or less disables caching.
func WithCacheSize(size int) Option {
	return func(p *Predictor) {
		p.cacheSize = size
	}
}

// Predictor runs the scaling and inference steps.
type Predictor struct {
	source    AssetSource
	logger    *zap.Logger
	cacheSize int
	cache     *lru.Cache[candidate.Validated, Result]
}

func New(source AssetSource, log *zap.Logger, opts ...Option) (*Predictor, error) {
	if source == nil {
		return nil, fmt.Errorf("asset source is required")
	}

	p := &Predictor{
		source:    source,
		logger:    logger.WithComponent(log, "pipeline"),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.cacheSize > 0 {
		cache, err := lru.New[candidate.Validated, Result](p.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		p.cache = cache
	}

	return p, nil
}

// PredictProfile validates a raw profile and predicts it. Validation errors
// are returned unchanged.
func (p *Predictor) PredictProfile(ctx context.Context, profile candidate.Profile) (*Result, error) {
	validated, err := candidate.Validate(profile)
	if err != nil {
		return nil, err
	}
	return p.Predict(ctx, validated)
}

// Predict scales the numeric features of v, runs the classifier and derives
// the confidence. Asset and configuration errors are fatal and never
// retried.
func (p *Predictor) Predict(ctx context.Context, v *candidate.Validated) (*Result, error) {
	if v == nil {
		return nil, fmt.Errorf("validated profile is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(*v); ok {
			p.logger.Debug("prediction served from cache", zap.String("label", string(cached.Label)))
			return &cached, nil
		}
	}

	trained, err := p.source.Load()
	if err != nil {
		return nil, err
	}

	row, err := Scale(trained.Scaler, Features(v))
	if err != nil {
		return nil, err
	}

	result, err := infer(trained.Classifier, row)
	if err != nil {
		return nil, err
	}
	result.Accuracy = trained.Accuracy

	p.logger.Debug("prediction computed",
		zap.String("label", string(result.Label)),
		zap.Float64("confidence", result.Confidence),
	)

	if p.cache != nil {
		p.cache.Add(*v, *result)
	}

	return result, nil
}

func infer(classifier model.Classifier, row model.Row) (*Result, error) {
	class, err := classifier.Predict(row)
	if err != nil {
		return nil, fmt.Errorf("predict class: %w", err)
	}

	proba, err := classifier.PredictProba(row)
	if err != nil {
		return nil, fmt.Errorf("predict probability: %w", err)
	}
	if err := checkProbabilities(proba); err != nil {
		return nil, err
	}

	var label Label
	switch class {
	case 1:
		label = LabelLikely
	case 0:
		label = LabelUnlikely
	default:
		return nil, &model.ConfigError{Component: "classifier", Reason: fmt.Sprintf("class %d is not binary", class)}
	}

	return &Result{
		Label:         label,
		Confidence:    100 * math.Max(proba[0], proba[1]),
		Probabilities: [2]float64{proba[0], proba[1]},
	}, nil
}

func checkProbabilities(proba []float64) error {
	if len(proba) != 2 {
		return &model.ConfigError{Component: "classifier", Reason: fmt.Sprintf("expected 2 class probabilities, got %d", len(proba))}
	}
	for _, p := range proba {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
			return &model.ConfigError{Component: "classifier", Reason: fmt.Sprintf("probability %v out of range", p)}
		}
	}
	if math.Abs(proba[0]+proba[1]-1) > probabilityTolerance {
		return &model.ConfigError{Component: "classifier", Reason: fmt.Sprintf("probabilities %v do not sum to 1", proba)}
	}
	return nil
}
