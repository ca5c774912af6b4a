// Package analytics computes the dashboard snapshot of a historical dataset.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/dataset"
	"github.com/spigell/job-change/internal/logger"
	"github.com/spigell/job-change/internal/model"
)

// TargetColumn holds the 0/1 job change outcome.
const TargetColumn = "target"

// Snapshot is one complete aggregation result. It is replaced, never
// merged, by the next run.
type Snapshot struct {
	Distribution       Distribution       `json:"pred_distribution"`
	FeatureImportances map[string]float64 `json:"feature_importances"`
	ExperienceLabels   []string           `json:"experience_labels"`
	ExperienceValues   []float64          `json:"experience_values"`
	EducationLabels    []string           `json:"education_labels"`
	EducationValues    []float64          `json:"education_values"`

	// ImportanceOrder is the ranking order of FeatureImportances keys.
	ImportanceOrder []string      `json:"-"`
	Status          []FieldStatus `json:"-"`
}

type plainSnapshot Snapshot

// MarshalJSON writes feature importances in ranking order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		plainSnapshot
		FeatureImportances rankedScores `json:"feature_importances"`
	}{
		plainSnapshot:      plainSnapshot(s),
		FeatureImportances: rankedScores{order: s.ImportanceOrder, scores: s.FeatureImportances},
	})
}

// UnmarshalJSON restores ImportanceOrder from the key order of
// feature_importances.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	aux := struct {
		*plainSnapshot
		FeatureImportances rankedScores `json:"feature_importances"`
	}{plainSnapshot: (*plainSnapshot)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.FeatureImportances = aux.FeatureImportances.scores
	s.ImportanceOrder = aux.FeatureImportances.order
	return nil
}

// rankedScores is a JSON object whose keys keep a given order.
type rankedScores struct {
	order  []string
	scores map[string]float64
}

func (r rankedScores) keys() []string {
	keys := make([]string, 0, len(r.scores))
	seen := make(map[string]bool, len(r.scores))
	for _, k := range r.order {
		if _, ok := r.scores[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	var rest []string
	for k := range r.scores {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func (r rankedScores) MarshalJSON() ([]byte, error) {
	if r.scores == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.scores[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *rankedScores) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("feature_importances: expected an object, got %v", tok)
	}

	r.scores = make(map[string]float64)
	r.order = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("feature_importances: unexpected key %v", tok)
		}

		var score float64
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("feature_importances[%q]: %w", key, err)
		}
		if _, dup := r.scores[key]; !dup {
			r.order = append(r.order, key)
		}
		r.scores[key] = score
	}
	_, err = dec.Token()
	return err
}

// Distribution holds the outcome shares in percent.
type Distribution struct {
	Likely   float64 `json:"Likely to Change"`
	Unlikely float64 `json:"Unlikely to Change"`
}

// FieldStatus tells whether a snapshot field was computed or fell back.
type FieldStatus struct {
	Name     string
	Computed bool
	Reason   string
}

// Step computes one snapshot field.
type Step interface {
	Name() string
	Apply(ctx context.Context, deps Deps, s *Snapshot) error
	Fallback(s *Snapshot)
}

// Deps aggregates the inputs shared by all steps.
type Deps struct {
	Dataset    *dataset.Dataset
	Classifier model.Classifier
	Logger     *zap.Logger
}

// SchemaGapError reports a dataset that cannot feed one snapshot field.
type SchemaGapError struct {
	Field  string
	Column string
	Reason string
}

func (e *SchemaGapError) Error() string {
	return fmt.Sprintf("%s: column %q %s", e.Field, e.Column, e.Reason)
}

// DefaultSteps returns the steps of a full snapshot in output order.
func DefaultSteps() []Step {
	return []Step{
		NewDistribution(),
		NewImportance(),
		NewExperienceTrend(),
		NewEducationTrend(),
	}
}

// Aggregator runs the steps sequentially. A failing step falls back to its
// documented values and never stops the others.
type Aggregator struct {
	logger *zap.Logger
	steps  []Step
}

func NewAggregator(log *zap.Logger, steps ...Step) *Aggregator {
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	return &Aggregator{
		logger: logger.WithComponent(log, "analytics"),
		steps:  steps,
	}
}

// Aggregate builds a snapshot from ds. The classifier is optional and only
// consulted for feature importance. The only error is context
// cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, ds *dataset.Dataset, classifier model.Classifier) (*Snapshot, error) {
	deps := Deps{Dataset: ds, Classifier: classifier, Logger: a.logger}
	snapshot := &Snapshot{}

	rows := 0
	if ds != nil {
		rows = ds.Len()
	}

	for _, step := range a.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := step.Apply(ctx, deps, snapshot)
		if err == nil {
			snapshot.Status = append(snapshot.Status, FieldStatus{Name: step.Name(), Computed: true})
			a.logger.Info("analytics step", zap.String("name", step.Name()), zap.Int("rows", rows))
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		step.Fallback(snapshot)
		snapshot.Status = append(snapshot.Status, FieldStatus{Name: step.Name(), Reason: err.Error()})

		var gap *SchemaGapError
		if errors.As(err, &gap) {
			a.logger.Warn("analytics step fell back",
				zap.String("name", step.Name()),
				zap.String("column", gap.Column),
				zap.String("reason", gap.Reason),
			)
			continue
		}
		a.logger.Warn("analytics step fell back", zap.String("name", step.Name()), zap.Error(err))
	}

	return snapshot, nil
}

// Fallbacks lists the names of the fields that used fallback values.
func (s *Snapshot) Fallbacks() []string {
	var names []string
	for _, st := range s.Status {
		if !st.Computed {
			names = append(names, st.Name)
		}
	}
	return names
}

// round2 rounds half to even at two decimals.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
