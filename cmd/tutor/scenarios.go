package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/scenarios"
)

func newScenariosCmd(a *app) *cobra.Command {
	var personalized int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List practice scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if personalized <= 0 {
				printScenarios(out, scenarios.All(), verbose)
				return nil
			}

			_, mem, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			insights, err := mem.Insights(ctx)
			if err != nil {
				return err
			}
			level := mem.DetermineLevel(insights)
			if len(insights.Preferences.RecentActivity) == 0 {
				insights = nil
			}

			generated := scenarios.NewGenerator(nil, nil).Generate(insights, level, personalized)
			dynamic, err := mem.DynamicScenarios(ctx, personalized)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Estimated level: %s\n\n", level)
			printScenarios(out, append(generated, dynamic...), verbose)
			for _, r := range recommendationsOf(insights) {
				fmt.Fprintf(out, "* %s\n", r.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&personalized, "personalized", "p", 0, "Generate this many scenarios from your learning history")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show objectives")
	return cmd
}

func recommendationsOf(in *model.Insights) []model.Recommendation {
	if in == nil {
		return nil
	}
	return in.Recommendations
}

func printScenarios(out io.Writer, list []model.Scenario, verbose bool) {
	for _, s := range list {
		fmt.Fprintf(out, "%-40s %s\n", s.ID, s.Title)
		if !verbose {
			continue
		}
		if s.Description != "" {
			fmt.Fprintf(out, "    %s\n", s.Description)
		}
		for i, o := range s.Objectives {
			fmt.Fprintf(out, "    %d. %s\n", i+1, o.Text)
		}
	}
}
