package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/spigell/job-change/internal/assets"
	"github.com/spigell/job-change/internal/candidate"
	"github.com/spigell/job-change/internal/pipeline"
)

func newPredictFlags(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "predict"}
	for _, f := range candidate.Fields() {
		cmd.Flags().String(flagName(f), "", f.DisplayName())
	}
	return cmd
}

func TestProfileFromFlags(t *testing.T) {
	cmd := newPredictFlags(t)
	if err := cmd.Flags().Parse([]string{
		"--city", "city_103",
		"--city-development-index", "0.92",
		"--gender", "Male",
		"--last-new-job", ">4",
		"--training-hours", "40",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile, err := profileFromFlags(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.City != "city_103" || profile.CityDevelopmentIndex != "0.92" || profile.TrainingHours != "40" {
		t.Fatalf("unexpected text fields: %+v", profile)
	}
	if profile.Gender != candidate.Select("Male") || profile.LastNewJob != candidate.Select(">4") {
		t.Fatalf("unexpected choices: %+v", profile)
	}
	if profile.CompanyType.Set {
		t.Fatalf("expected an unset flag to leave the choice unselected")
	}
}

func TestFlagNames(t *testing.T) {
	if got := flagName(candidate.FieldRelevantExperience); got != "relevent-experience" {
		t.Fatalf("unexpected flag name %q", got)
	}
}

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name     string
		accuracy assets.Accuracy
		want     string
	}{
		{name: "measured", accuracy: assets.Accuracy{Value: 86.2, Measured: true}, want: "Model accuracy: 86.2%\n"},
		{name: "default", accuracy: assets.Accuracy{Value: assets.DefaultAccuracy}, want: "Model accuracy: 88.5% (default, not measured)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			printResult(&out, &pipeline.Result{Label: pipeline.LabelLikely, Confidence: 73.5, Accuracy: tt.accuracy})

			got := out.String()
			if !strings.Contains(got, "The candidate is likely to change jobs.\n") {
				t.Fatalf("missing verdict: %q", got)
			}
			if !strings.Contains(got, "Confidence: 73.50%\n") {
				t.Fatalf("missing confidence: %q", got)
			}
			if !strings.HasSuffix(got, tt.want) {
				t.Fatalf("expected suffix %q, got %q", tt.want, got)
			}
		})
	}
}
