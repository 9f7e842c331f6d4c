package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/livix/roommates/internal/compat"
	"github.com/livix/roommates/internal/preferences"
)

var scoreWeightsPath string

var scoreCmd = &cobra.Command{
	Use:   "score <mine.yaml> <other.yaml>",
	Short: "Score two preference files against each other",
	Long: `Score reads two preference vectors (YAML or JSON) and prints the
compatibility of the second from the first one's point of view, with the
points each attribute earned.`,
	Args: cobra.ExactArgs(2),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreWeightsPath, "weights", "", "YAML file overriding the default weights")
}

func readPreferences(path string) (compat.PreferenceVector, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return compat.PreferenceVector{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	vec := preferences.Defaults()
	if err := yaml.Unmarshal(raw, &vec); err != nil {
		return compat.PreferenceVector{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := preferences.Validate(vec); err != nil {
		return compat.PreferenceVector{}, fmt.Errorf("%s: %w", path, err)
	}
	return vec, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	mine, err := readPreferences(args[0])
	if err != nil {
		return err
	}
	other, err := readPreferences(args[1])
	if err != nil {
		return err
	}

	w := compat.DefaultWeights()
	if scoreWeightsPath != "" {
		if w, err = compat.LoadWeightsFromFile(scoreWeightsPath); err != nil {
			return err
		}
	}
	scorer := compat.NewScorer(w)

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range scorer.Explain(mine, other) {
		fmt.Fprintf(tw, "%s\t%d/%d\n", c.Attribute, c.Points, c.Max)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "score: %d\n", scorer.Score(&mine, other))
	return nil
}
