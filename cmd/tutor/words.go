package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai-english-tutor/server/internal/tutor/memory"
	"github.com/ai-english-tutor/server/internal/tutor/model"
)

func newWordsCmd(a *app) *cobra.Command {
	var filter, search string
	var phrases bool

	cmd := &cobra.Command{
		Use:   "words",
		Short: "Show learned words and phrases",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := memory.Filter(filter)
			switch f {
			case memory.FilterAll, memory.FilterRecent, memory.FilterHighConfidence:
			default:
				return fmt.Errorf("unknown filter %q", filter)
			}

			_, mem, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var entries []model.LearnedEntry
			if phrases {
				entries, err = mem.LearnedPhrases(ctx, f, search)
			} else {
				entries, err = mem.LearnedWords(ctx, f, search)
			}
			if err != nil {
				return err
			}

			for _, e := range entries {
				line := fmt.Sprintf("%-24s %-24s %3.0f%% (%s)", e.English, e.Translation, e.Confidence*100, memory.ConfidenceLevel(e.Confidence))
				if e.Type != "" {
					line += " " + e.Type
				}
				fmt.Fprintln(out, line)
			}

			st, err := mem.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d words, %d phrases, average confidence %.0f%%, %d learned this week\n",
				st.TotalWords, st.TotalPhrases, st.AverageConfidence*100, st.LearnedThisWeek)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(memory.FilterAll), "all, recent or high-confidence")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only entries whose English or translation contains this text")
	cmd.Flags().BoolVar(&phrases, "phrases", false, "Show phrases instead of words")
	return cmd
}
