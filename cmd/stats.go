package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/calcmaster/internal/personalize"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics",
	Long:  "Show per-user totals, or the per-topic breakdown for one user with --user.",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("user", "", "Username to show in detail")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	results := st.ResultRepo()
	out := cmd.OutOrStdout()

	username, _ := cmd.Flags().GetString("user")
	if username == "" {
		users, err := st.UserRepo().List(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(out, "No users yet.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "USER\tQUIZZES\tCORRECT\tAVERAGE")
		for _, u := range users {
			g, err := results.General(ctx, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%d\t%d/%d\t%.1f%%\n", u.Username, g.TotalQuizzes, g.TotalCorrect, g.TotalQuestions, g.AverageScore)
		}
		return tw.Flush()
	}

	u, err := st.UserRepo().ByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	g, err := results.General(ctx, u.ID)
	if err != nil {
		return err
	}
	topics, err := results.ByTopic(ctx, u.ID)
	if err != nil {
		return err
	}
	analysis := personalize.New(results, nil, nil, nil).Analysis(ctx, u.ID)
	return printUserStats(out, u, g, topics, analysis)
}

func printUserStats(w io.Writer, u *store.User, g store.GeneralStats, topics []store.TopicStats, a personalize.Analysis) error {
	fmt.Fprintf(w, "%s: %d quizzes, %d/%d correct, %.1f%% average\n",
		u.DisplayName, g.TotalQuizzes, g.TotalCorrect, g.TotalQuestions, g.AverageScore)
	if len(topics) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tATTEMPTS\tAVG\tBEST\tWORST")
	for _, ts := range topics {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%.1f%%\t%.1f%%\n",
			personalize.TopicName(questiongen.Topic(ts.Topic)), ts.Attempts, ts.AvgScore, ts.BestScore, ts.WorstScore)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", a.Recommendation)
	return nil
}
