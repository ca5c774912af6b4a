package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-change/internal/candidate"
	"github.com/spigell/job-change/internal/pipeline"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict whether a candidate is likely to change jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		predict(cmd)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().BoolP("interactive", "i", false, "fill in the candidate profile interactively")
	for _, f := range candidate.Fields() {
		usage := f.DisplayName()
		if f.IsChoice() {
			usage += " (one of: " + strings.Join(f.Options(), ", ") + ")"
		}
		predictCmd.Flags().String(flagName(f), "", usage)
	}
}

func flagName(f candidate.Field) string {
	return strings.ReplaceAll(f.Column(), "_", "-")
}

func predict(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()
	_, predictor := newPredictor(config, logger)

	interactive, _ := cmd.Flags().GetBool("interactive")

	var (
		profile candidate.Profile
		err     error
	)
	if interactive {
		profile, err = promptProfile()
	} else {
		profile, err = profileFromFlags(cmd)
	}
	if err != nil {
		logger.Fatal("reading the candidate profile", zap.Error(err))
	}

	result, err := predictor.PredictProfile(ctx, profile)

	var (
		missing *candidate.ValidationError
		format  *candidate.FormatError
	)
	switch {
	case errors.As(err, &missing):
		logger.Fatal("please fill in all required fields", zap.Strings("missing_fields", missing.MissingFields))
	case errors.As(err, &format):
		logger.Fatal("please enter valid numbers", zap.Strings("invalid_fields", format.FieldNames()), zap.Error(err))
	case err != nil:
		logger.Fatal("prediction failed", zap.Error(err))
	}

	printResult(cmd.OutOrStdout(), result)
}

func profileFromFlags(cmd *cobra.Command) (candidate.Profile, error) {
	input := make(map[string]any)
	for _, f := range candidate.Fields() {
		flag := cmd.Flags().Lookup(flagName(f))
		if flag == nil || !flag.Changed {
			continue
		}
		input[f.Column()] = flag.Value.String()
	}
	return candidate.Decode(input)
}

func promptProfile() (candidate.Profile, error) {
	input := make(map[string]any)
	for _, f := range candidate.Fields() {
		var (
			value string
			err   error
		)
		if f.IsChoice() {
			selection := promptui.Select{
				Label: "Select " + f.DisplayName(),
				Items: f.Options(),
				Size:  10,
			}
			_, value, err = selection.Run()
		} else {
			prompt := promptui.Prompt{Label: f.DisplayName()}
			value, err = prompt.Run()
		}
		if err != nil {
			return candidate.Profile{}, fmt.Errorf("%s: %w", f.DisplayName(), err)
		}
		input[f.Column()] = value
	}
	return candidate.Decode(input)
}

func printResult(w io.Writer, result *pipeline.Result) {
	accuracy := fmt.Sprintf("%.1f%%", result.Accuracy.Value)
	if !result.Accuracy.Measured {
		accuracy += " (default, not measured)"
	}

	fmt.Fprintf(w, "The candidate is %s to change jobs.\n", result.Label)
	fmt.Fprintf(w, "Confidence: %.2f%%\n", result.Confidence)
	fmt.Fprintf(w, "Model accuracy: %s\n", accuracy)
}
