package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/council"
	"github.com/sevigo/code-council/internal/jobs"
	"github.com/sevigo/code-council/internal/logger"
)

var (
	consolidateInput  string
	consolidatePolicy string
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Consolidate recorded candidate annotations without calling a model",
	Long: `Consolidate recorded candidate annotations without calling a model.

The input is a JSON document of the form
  {"results": [{"unit": {...}, "candidates": [...], "error": ""}], "warnings": [...]}
A unit with a non-empty "error" is treated as a failed generation.

Examples:
  council-cli consolidate --input candidates.json
  council-cli consolidate --input candidates.json --policy .code-council.yml --json`,
	Args: cobra.NoArgs,
	RunE: runConsolidate,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	consolidateCmd.Flags().StringVarP(&consolidateInput, "input", "i", "", "Path to the candidates JSON file (- for stdin)")
	consolidateCmd.Flags().StringVar(&consolidatePolicy, "policy", "", "Optional repository config applied as policy")
	_ = consolidateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(consolidateCmd)
}

type recordedResult struct {
	Unit       core.WorkUnit              `json:"unit"`
	Candidates []core.CandidateAnnotation `json:"candidates"`
	Error      string                     `json:"error,omitempty"`
}

type recordedInput struct {
	Results  []recordedResult `json:"results"`
	Warnings []core.Warning   `json:"warnings"`
}

// toInput converts a recorded run into a consolidation input.
func (r recordedInput) toInput(policy *core.RepoConfig) council.Input {
	in := council.Input{Warnings: r.Warnings, Policy: policy}
	for _, res := range r.Results {
		ur := council.UnitResult{Unit: res.Unit, Candidates: res.Candidates}
		if res.Error != "" {
			ur.Err = errors.New(res.Error)
		}
		in.Results = append(in.Results, ur)
	}
	return in
}

func runConsolidate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.NewLogger(cfg.Logging, os.Stderr)

	recorded, err := readRecordedInput(consolidateInput)
	if err != nil {
		return err
	}

	var policy *core.RepoConfig
	if consolidatePolicy != "" {
		data, err := os.ReadFile(consolidatePolicy)
		if err != nil {
			return fmt.Errorf("failed to read policy: %w", err)
		}
		if policy, err = config.ParseRepoConfig(data); err != nil {
			return fmt.Errorf("invalid policy: %w", err)
		}
	}

	runner, err := jobs.NewRunner(cfg.Council, log)
	if err != nil {
		return err
	}
	return emitReport(runner.Consolidate(recorded.toInput(policy)))
}

func readRecordedInput(path string) (recordedInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return recordedInput{}, fmt.Errorf("failed to read input: %w", err)
	}

	var in recordedInput
	if err := json.Unmarshal(data, &in); err != nil {
		return recordedInput{}, fmt.Errorf("failed to decode input: %w", err)
	}
	return in, nil
}
