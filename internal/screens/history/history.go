// Package history shows a user's recent quizzes, per-topic averages and
// the current recommendation.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/calcmaster/internal/personalize"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/router"
	"github.com/abhisek/calcmaster/internal/screen"
	"github.com/abhisek/calcmaster/internal/store"
	"github.com/abhisek/calcmaster/internal/ui/components"
	"github.com/abhisek/calcmaster/internal/ui/layout"
	"github.com/abhisek/calcmaster/internal/ui/theme"
)

const recentLimit = 10

// Stats reads a user's results. store.ResultRepo satisfies it.
type Stats interface {
	Recent(ctx context.Context, userID int64, limit int) ([]store.Result, error)
	ByTopic(ctx context.Context, userID int64) ([]store.TopicStats, error)
	General(ctx context.Context, userID int64) (store.GeneralStats, error)
}

// Analyzer summarizes the weak topic. *personalize.Service satisfies it.
type Analyzer interface {
	Analysis(ctx context.Context, userID int64) personalize.Analysis
}

type historyLoadedMsg struct {
	General  store.GeneralStats
	Topics   []store.TopicStats
	Recent   []store.Result
	Analysis *personalize.Analysis
	Err      error
}

type HistoryScreen struct {
	stats    Stats
	analyzer Analyzer
	userID   int64

	data   historyLoadedMsg
	loaded bool
	errMsg string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates the screen. analyzer may be nil.
func New(stats Stats, analyzer Analyzer, userID int64) *HistoryScreen {
	return &HistoryScreen{stats: stats, analyzer: analyzer, userID: userID}
}

func (s *HistoryScreen) Init() tea.Cmd {
	stats, analyzer, userID := s.stats, s.analyzer, s.userID
	return func() tea.Msg {
		ctx := context.Background()

		general, err := stats.General(ctx, userID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		topics, err := stats.ByTopic(ctx, userID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		recent, err := stats.Recent(ctx, userID, recentLimit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		msg := historyLoadedMsg{General: general, Topics: topics, Recent: recent}
		if analyzer != nil && general.TotalQuizzes > 0 {
			a := analyzer.Analysis(ctx, userID)
			msg.Analysis = &a
		}
		return msg
	}
}

func (s *HistoryScreen) Title() string {
	return "Progress"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.data = msg
		}
	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading progress...")
	}
	if s.data.General.TotalQuizzes == 0 {
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  No quizzes yet. Start practicing!")
	}

	var b strings.Builder
	g := s.data.General

	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Text).Render(fmt.Sprintf(
		"Quizzes: %d    Correct: %d/%d    Average: %.1f%%",
		g.TotalQuizzes, g.TotalCorrect, g.TotalQuestions, g.AverageScore)))
	b.WriteString("\n")

	if a := s.data.Analysis; a != nil {
		c := theme.Success
		if a.NeedsImprovement {
			c = theme.Accent
		}
		b.WriteString(center.Foreground(c).Render(a.Recommendation))
		b.WriteString("\n")
	}

	if len(s.data.Topics) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("  By topic"))
		b.WriteString("\n")
		barWidth := min(width-8, 60)
		for _, ts := range s.data.Topics {
			label := fmt.Sprintf("%-16s %2d×", topicLabel(ts.Topic), ts.Attempts)
			b.WriteString("  ")
			b.WriteString(components.NewProgressBar(label, ts.AvgScore/100, true, barWidth).View())
			b.WriteString("\n")
		}
	}

	if len(s.data.Recent) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("  Recent"))
		b.WriteString("\n")
		for _, r := range s.data.Recent {
			line := fmt.Sprintf("  %s  %-16s %-7s %2d/%-2d  %5.1f%%",
				r.TakenAt.Local().Format("Jan 02 15:04"),
				topicLabel(r.Topic), r.Difficulty, r.Score, r.Total, r.Percentage)
			b.WriteString(theme.Body.Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func topicLabel(topic string) string {
	return personalize.TopicName(questiongen.Topic(topic))
}
