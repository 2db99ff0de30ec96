package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/ui/components"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print generated questions for a topic (no database)",
	Long: `Generate questions for a topic and print them, or answer them interactively.

This is a stateless developer tool: no database, no duplicate filtering, no results.
Useful for checking question quality and distractors.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("topic", "general", "derivatives, integrals, limits, critical-points or general")
	previewCmd.Flags().String("difficulty", "mixed", "easy, medium, hard or mixed")
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
	previewCmd.Flags().Uint64("seed", 0, "Seed for reproducible output (0 is random)")
	previewCmd.Flags().Bool("json", false, "Print the questions as JSON")
	previewCmd.Flags().Bool("quiz", false, "Answer the questions interactively")
}

func runPreview(cmd *cobra.Command, args []string) error {
	topicVal, _ := cmd.Flags().GetString("topic")
	diffVal, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetUint64("seed")
	asJSON, _ := cmd.Flags().GetBool("json")
	interactive, _ := cmd.Flags().GetBool("quiz")

	topic, err := questiongen.ParseTopic(topicVal)
	if err != nil {
		return err
	}
	d, err := questiongen.ParseDifficulty(diffVal)
	if err != nil {
		return err
	}
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Generator.Seed = seed
	}
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	engine := newEngine(cfg.Generator, log, nil)
	ctx := cmd.Context()

	var qs []questiongen.Question
	if topic == questiongen.TopicGeneral {
		qs, err = engine.GenerateMixed(ctx, count)
	} else {
		qs, err = engine.Generate(ctx, topic, d, count)
	}
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case asJSON:
		raw, err := questiongen.MarshalBatch(qs)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(raw))
		return err
	case interactive:
		return quizLoop(out, os.Stdin, qs)
	default:
		for _, q := range qs {
			printQuestion(out, q, len(qs))
			fmt.Fprintf(out, "Answer: %s\n", components.Math(q.Correct))
			fmt.Fprintf(out, "Explanation: %s\n\n", components.Math(q.Explanation))
		}
		return nil
	}
}

func printQuestion(w io.Writer, q questiongen.Question, total int) {
	fmt.Fprintf(w, "── Question %d/%d (%s, %s) ──\n", q.ID, total, q.Topic, q.Difficulty)
	fmt.Fprintln(w, components.Math(q.Text))
	for j, opt := range q.Options {
		fmt.Fprintf(w, "  %d) %s\n", j+1, components.Math(opt))
	}
}

func quizLoop(w io.Writer, r io.Reader, qs []questiongen.Question) error {
	scanner := bufio.NewScanner(r)
	var correct int

	for _, q := range qs {
		printQuestion(w, q, len(qs))

		fmt.Fprint(w, "\nYour answer (1-4): ")
		if !scanner.Scan() {
			fmt.Fprintln(w, "\n(input closed)")
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || n < 1 || n > len(q.Options) {
			fmt.Fprint(w, "(skipped)\n\n")
			continue
		}

		if n-1 == slices.Index(q.Options, q.Correct) {
			correct++
			fmt.Fprintln(w, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(w, "\033[31m✗ Wrong.\033[0m Answer: %s\n", components.Math(q.Correct))
		}
		fmt.Fprintf(w, "Explanation: %s\n\n", components.Math(q.Explanation))
	}

	fmt.Fprintf(w, "── Summary: %d/%d correct ──\n", correct, len(qs))
	return nil
}
