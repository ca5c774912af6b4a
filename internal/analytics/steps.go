package analytics

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/spigell/job-change/internal/dataset"
	"github.com/spigell/job-change/internal/model"
)

const (
	StepDistribution = "distribution"
	StepImportance   = "feature_importances"
	StepExperience   = "experience_trend"
	StepEducation    = "education_trend"

	ExperienceColumn = "experience"
	EducationColumn  = "education_level"
)

// ErrNoImportance is returned when the classifier cannot rank features.
var ErrNoImportance = errors.New("classifier does not rank feature importance")

// unknownOutcome marks a target cell that is neither 0 nor 1.
const unknownOutcome = -1

var (
	defaultImportances = []model.Importance{
		{Feature: "city_development_index", Score: 12.7},
		{Feature: "last_new_job", Score: 9.4},
		{Feature: "training_hours", Score: 8.9},
		{Feature: "company_size", Score: 12.6},
		{Feature: "experience", Score: 10.5},
		{Feature: "education_level", Score: 8.0},
	}

	defaultExperienceLabels = []string{"<1", "1-3", "4-6", "7-9", ">10"}
	defaultExperienceValues = []float64{75, 60, 45, 35, 25}

	defaultEducationLabels = []string{"Primary", "Secondary", "Bachelor", "Master", "PhD"}
	defaultEducationValues = []float64{40, 55, 60, 50, 30}
)

type distributionStep struct{}

// NewDistribution computes the share of each outcome.
func NewDistribution() Step { return distributionStep{} }

func (distributionStep) Name() string { return StepDistribution }

func (distributionStep) Apply(_ context.Context, deps Deps, s *Snapshot) error {
	outcomes, err := targets(deps.Dataset, StepDistribution)
	if err != nil {
		return err
	}

	// Unknown outcomes stay in the denominator.
	var likely, unlikely int
	for _, o := range outcomes {
		switch o {
		case 1:
			likely++
		case 0:
			unlikely++
		}
	}
	total := float64(len(outcomes))

	s.Distribution = Distribution{
		Likely:   round2(float64(likely) * 100 / total),
		Unlikely: round2(float64(unlikely) * 100 / total),
	}
	return nil
}

func (distributionStep) Fallback(s *Snapshot) {
	s.Distribution = Distribution{}
}

type importanceStep struct{}

// NewImportance takes the ranking from the classifier when it offers one.
func NewImportance() Step { return importanceStep{} }

func (importanceStep) Name() string { return StepImportance }

func (importanceStep) Apply(_ context.Context, deps Deps, s *Snapshot) error {
	ranker, ok := deps.Classifier.(model.ImportanceRanker)
	if !ok {
		return ErrNoImportance
	}

	ranking, err := ranker.FeatureImportance()
	if err != nil {
		return err
	}
	if len(ranking) == 0 {
		return errors.New("classifier returned an empty ranking")
	}

	setImportances(s, ranking)
	return nil
}

func (importanceStep) Fallback(s *Snapshot) {
	setImportances(s, defaultImportances)
}

// setImportances keeps the ranking order next to the scores.
func setImportances(s *Snapshot, ranking []model.Importance) {
	scores := make(map[string]float64, len(ranking))
	order := make([]string, 0, len(ranking))
	for _, imp := range ranking {
		if _, ok := scores[imp.Feature]; !ok {
			order = append(order, imp.Feature)
		}
		scores[imp.Feature] = imp.Score
	}
	s.FeatureImportances = scores
	s.ImportanceOrder = order
}

type trendStep struct {
	name           string
	column         string
	fallbackLabels []string
	fallbackValues []float64
	set            func(s *Snapshot, labels []string, values []float64)
}

// NewExperienceTrend computes the change rate per experience bucket.
func NewExperienceTrend() Step {
	return &trendStep{
		name:           StepExperience,
		column:         ExperienceColumn,
		fallbackLabels: defaultExperienceLabels,
		fallbackValues: defaultExperienceValues,
		set: func(s *Snapshot, labels []string, values []float64) {
			s.ExperienceLabels, s.ExperienceValues = labels, values
		},
	}
}

// NewEducationTrend computes the change rate per education level.
func NewEducationTrend() Step {
	return &trendStep{
		name:           StepEducation,
		column:         EducationColumn,
		fallbackLabels: defaultEducationLabels,
		fallbackValues: defaultEducationValues,
		set: func(s *Snapshot, labels []string, values []float64) {
			s.EducationLabels, s.EducationValues = labels, values
		},
	}
}

func (t *trendStep) Name() string { return t.name }

func (t *trendStep) Apply(_ context.Context, deps Deps, s *Snapshot) error {
	keys, err := column(deps.Dataset, t.name, t.column)
	if err != nil {
		return err
	}
	outcomes, err := targets(deps.Dataset, t.name)
	if err != nil {
		return err
	}

	labels, values := groupRates(keys, outcomes)
	t.set(s, labels, values)
	return nil
}

func (t *trendStep) Fallback(s *Snapshot) {
	t.set(s,
		append([]string(nil), t.fallbackLabels...),
		append([]float64(nil), t.fallbackValues...),
	)
}

// groupRates returns the mean known outcome of each key in percent, keys in
// ascending order. Keys without a known outcome are left out.
func groupRates(keys []string, outcomes []int) ([]string, []float64) {
	type group struct {
		sum, count int
	}
	groups := make(map[string]*group)
	for i, key := range keys {
		if outcomes[i] == unknownOutcome {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.sum += outcomes[i]
		g.count++
	}

	labels := make([]string, 0, len(groups))
	for key := range groups {
		labels = append(labels, key)
	}
	sort.Strings(labels)

	values := make([]float64, len(labels))
	for i, key := range labels {
		g := groups[key]
		values[i] = round2(float64(g.sum) / float64(g.count) * 100)
	}
	return labels, values
}

func column(ds *dataset.Dataset, field, name string) ([]string, error) {
	if ds == nil {
		return nil, &SchemaGapError{Field: field, Column: name, Reason: "has no dataset"}
	}
	if !ds.HasColumn(name) {
		return nil, &SchemaGapError{Field: field, Column: name, Reason: "is absent"}
	}
	values, _ := ds.Column(name)
	if len(values) == 0 {
		return nil, &SchemaGapError{Field: field, Column: name, Reason: "is empty"}
	}
	return values, nil
}

// targets parses the outcome column. Cells other than 0 or 1 become
// unknownOutcome. The column is unusable only when no cell is 0 or 1.
func targets(ds *dataset.Dataset, field string) ([]int, error) {
	raw, err := column(ds, field, TargetColumn)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(raw))
	known := 0
	for i, cell := range raw {
		out[i] = unknownOutcome
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || (v != 0 && v != 1) {
			continue
		}
		out[i] = int(v)
		known++
	}
	if known == 0 {
		return nil, &SchemaGapError{Field: field, Column: TargetColumn, Reason: "has no 0/1 values"}
	}
	return out, nil
}
