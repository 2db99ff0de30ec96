// Package practice is the screen that walks a user through one quiz.
package practice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/router"
	"github.com/abhisek/calcmaster/internal/screen"
	"github.com/abhisek/calcmaster/internal/screens/summary"
	"github.com/abhisek/calcmaster/internal/store"
	"github.com/abhisek/calcmaster/internal/ui/components"
	"github.com/abhisek/calcmaster/internal/ui/layout"
	"github.com/abhisek/calcmaster/internal/ui/theme"
)

// Batch is a loaded quiz. Intro is shown above the first question.
type Batch struct {
	Questions []questiongen.Question
	Intro     string
}

type Loader func(ctx context.Context) (Batch, error)

// ResultSaver records finished quizzes. store.ResultRepo satisfies it.
type ResultSaver interface {
	Save(ctx context.Context, userID int64, in store.ResultInput) (int64, error)
}

type Options struct {
	Title string

	// Topic and Difficulty are recorded with the result.
	Topic      string
	Difficulty questiongen.Difficulty
	QuizType   string

	Load    Loader
	Results ResultSaver // nil skips saving
	UserID  int64
}

var errNoQuestions = errors.New("no questions available right now, try another topic")

type batchLoadedMsg struct {
	Batch Batch
	Err   error
}

// PracticeScreen shows one question at a time and scores the answers.
type PracticeScreen struct {
	opts Options

	questions []questiongen.Question
	intro     string
	index     int
	choice    components.MultiChoice
	correct   int
	missed    []summary.Miss
	perTopic  map[questiongen.Topic]*topicScore

	loaded  bool
	errMsg  string
	started time.Time
	now     func() time.Time
}

type topicScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

func New(opts Options) *PracticeScreen {
	return &PracticeScreen{
		opts:     opts,
		perTopic: make(map[questiongen.Topic]*topicScore),
		now:      time.Now,
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	load := s.opts.Load
	return func() tea.Msg {
		b, err := load(context.Background())
		return batchLoadedMsg{Batch: b, Err: err}
	}
}

func (s *PracticeScreen) Title() string {
	return s.opts.Title
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.loaded && s.errMsg == "" && s.choice.Submitted {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Abandon"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "1-4", Description: "Answer"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Abandon"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case batchLoadedMsg:
		s.handleLoaded(msg)
		return s, nil

	case tea.KeyMsg:
		if !s.loaded {
			return s, nil
		}
		if s.errMsg != "" {
			if msg.String() == "enter" {
				return s, router.Pop
			}
			return s, nil
		}
		if s.choice.Submitted {
			if k := msg.String(); k == "enter" || k == "space" || k == "n" {
				return s.next()
			}
			return s, nil
		}
		s.choice = s.choice.Update(msg)
		if s.choice.Submitted {
			s.score()
		}
	}
	return s, nil
}

func (s *PracticeScreen) handleLoaded(msg batchLoadedMsg) {
	s.loaded = true
	switch {
	case msg.Err != nil:
		s.errMsg = msg.Err.Error()
	case len(msg.Batch.Questions) == 0:
		s.errMsg = errNoQuestions.Error()
	default:
		s.questions = msg.Batch.Questions
		s.intro = msg.Batch.Intro
		s.started = s.now()
		s.show(0)
	}
}

func (s *PracticeScreen) show(i int) {
	s.index = i
	q := s.questions[i]
	s.choice = components.NewMultiChoice(q.Options, slices.Index(q.Options, q.Correct))
}

func (s *PracticeScreen) score() {
	q := s.questions[s.index]
	ts, ok := s.perTopic[q.Topic]
	if !ok {
		ts = &topicScore{}
		s.perTopic[q.Topic] = ts
	}
	ts.Total++

	if s.choice.IsCorrect() {
		s.correct++
		ts.Correct++
		return
	}
	s.missed = append(s.missed, summary.Miss{
		Question: q.Text,
		Chosen:   q.Options[s.choice.ChosenIndex],
		Correct:  q.Correct,
	})
}

func (s *PracticeScreen) next() (screen.Screen, tea.Cmd) {
	if s.index+1 < len(s.questions) {
		s.show(s.index + 1)
		return s, nil
	}
	return s, s.finish()
}

// finish saves the result and replaces this screen with the summary.
func (s *PracticeScreen) finish() tea.Cmd {
	res := summary.Result{
		Title:   s.opts.Title,
		Score:   s.correct,
		Total:   len(s.questions),
		Elapsed: s.now().Sub(s.started),
		Missed:  s.missed,
	}
	in := store.ResultInput{
		Topic:      s.opts.Topic,
		Score:      res.Score,
		Total:      res.Total,
		Difficulty: string(s.opts.Difficulty),
		TimeSpent:  int(res.Elapsed.Seconds()),
		Details: map[string]any{
			"quiz_type": s.opts.QuizType,
			"by_topic":  s.perTopic,
		},
	}
	results, userID := s.opts.Results, s.opts.UserID

	return func() tea.Msg {
		if results != nil {
			if _, err := results.Save(context.Background(), userID, in); err != nil {
				res.SaveErr = err
			}
		}
		return router.ReplaceScreenMsg{Screen: summary.New(res)}
	}
}

func (s *PracticeScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Generating questions...")
	}
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\n%s\n\nPress Enter to go back", s.errMsg))
	}

	var b strings.Builder
	q := s.questions[s.index]

	info := fmt.Sprintf("  Question %d/%d   %s %d", s.index+1, len(s.questions),
		lipgloss.NewStyle().Foreground(theme.Success).Render("✓"), s.correct)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(info))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", float64(s.index)/float64(len(s.questions)), false, min(width-4, 60)).View())
	b.WriteString("\n\n")

	if s.index == 0 && s.intro != "" {
		b.WriteString(theme.Hint.Render("  " + s.intro))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().
		Width(max(width-4, 20)).
		Foreground(theme.Text).
		Bold(true).
		Render("  " + components.Math(q.Text)))
	b.WriteString("\n\n")
	b.WriteString(s.choice.View())

	if s.choice.Submitted {
		b.WriteString("\n")
		if s.choice.IsCorrect() {
			b.WriteString(theme.Correct.Render("  Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("  Not quite. Answer: " + components.Math(q.Correct)))
		}
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(max(width-4, 20)).
			Foreground(theme.TextDim).
			Render("  " + components.Math(q.Explanation)))
		b.WriteString("\n")
	}

	return b.String()
}
