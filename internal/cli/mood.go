package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/justestif/resonance/internal/mood"
)

func (a *app) moodCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "mood <emotion=strength>...",
		Short: "Map emotion scores to a mood profile",
		Long: `Map emotion scores straight to the musical profile used for recommendations.
Labels are joy, sadness, anger, fear, surprise and neutral. A bare label
counts as strength 1.

Example:
  resonance mood joy=0.8 sadness=0.2
  resonance mood sadness=0.5 anger=0.5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMood(cmd.OutOrStdout(), mapperFor(a.cfg), args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the profile as JSON")
	return cmd
}

func runMood(out io.Writer, m mood.Mapper, args []string, asJSON bool) error {
	scores := make([]mood.Score, 0, len(args))
	for _, arg := range args {
		s, err := mood.ParseScore(arg)
		if err != nil {
			return err
		}
		scores = append(scores, s)
	}

	p := m.Map(scores)
	category := p.Category()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Mood    string       `json:"mood"`
			Profile mood.Profile `json:"profile"`
		}{category.Name, p})
	}

	fmt.Fprintf(out, "Mood: %s\n", category.Name)
	fmt.Fprintf(out, "%s\n\n", mood.Describe(scores, p))
	fmt.Fprint(out, FormatProfile(p))
	return nil
}
