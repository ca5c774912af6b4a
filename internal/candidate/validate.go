package candidate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationError lists every required field that is empty or unselected.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.MissingFields, ", ")
}

// InvalidField describes a present numeric field that cannot be used.
type InvalidField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// FormatError lists numeric fields that are present but malformed or out of
// range.
type FormatError struct {
	Fields []InvalidField
}

func (e *FormatError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %q: %s", f.Name, f.Value, f.Reason))
	}
	return "invalid numeric fields: " + strings.Join(parts, "; ")
}

// FieldNames returns the display names of the invalid fields.
func (e *FormatError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	return names
}

type numberDomain struct {
	min, max float64
}

var domains = map[Field]numberDomain{
	FieldCityDevelopmentIndex: {min: 0, max: 1},
	FieldTrainingHours:        {min: 0, max: math.Inf(1)},
}

// Validate checks every field of the profile. Missing fields are all
// reported together as a *ValidationError; numeric format problems are only
// checked once nothing is missing and are reported as a *FormatError.
func Validate(p Profile) (*Validated, error) {
	var missing []string
	for _, f := range Fields() {
		if f.IsChoice() {
			c := p.choice(f)
			if !c.Set || !f.allows(c.Value) {
				missing = append(missing, f.DisplayName())
			}
			continue
		}
		if strings.TrimSpace(p.text(f)) == "" {
			missing = append(missing, f.DisplayName())
		}
	}

	if len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	numbers := make(map[Field]float64, len(domains))
	var invalid []InvalidField
	for _, f := range Fields() {
		if !f.IsNumeric() {
			continue
		}
		raw := strings.TrimSpace(p.text(f))
		value, reason := parseNumber(raw, domains[f])
		if reason != "" {
			invalid = append(invalid, InvalidField{Name: f.DisplayName(), Value: raw, Reason: reason})
			continue
		}
		numbers[f] = value
	}

	if len(invalid) > 0 {
		return nil, &FormatError{Fields: invalid}
	}

	return &Validated{
		City:                 strings.TrimSpace(p.City),
		CityDevelopmentIndex: numbers[FieldCityDevelopmentIndex],
		Gender:               p.Gender.Value,
		RelevantExperience:   p.RelevantExperience.Value,
		EnrolledUniversity:   p.EnrolledUniversity.Value,
		EducationLevel:       p.EducationLevel.Value,
		MajorDiscipline:      p.MajorDiscipline.Value,
		Experience:           strings.TrimSpace(p.Experience),
		CompanySize:          p.CompanySize.Value,
		CompanyType:          p.CompanyType.Value,
		LastNewJob:           p.LastNewJob.Value,
		TrainingHours:        numbers[FieldTrainingHours],
	}, nil
}

func parseNumber(raw string, domain numberDomain) (float64, string) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "not a number"
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, "not a finite number"
	}
	if value < domain.min || value > domain.max {
		if math.IsInf(domain.max, 1) {
			return 0, fmt.Sprintf("must be at least %g", domain.min)
		}
		return 0, fmt.Sprintf("must be between %g and %g", domain.min, domain.max)
	}
	return value, ""
}
