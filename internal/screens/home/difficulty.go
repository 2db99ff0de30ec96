package home

import (
	"context"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/calcmaster/internal/personalize"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/router"
	"github.com/abhisek/calcmaster/internal/screen"
	"github.com/abhisek/calcmaster/internal/screens/practice"
	"github.com/abhisek/calcmaster/internal/ui/components"
	"github.com/abhisek/calcmaster/internal/ui/theme"
)

var difficulties = []questiongen.Difficulty{
	questiongen.Easy, questiongen.Medium, questiongen.Hard, questiongen.Mixed,
}

var tierBlurbs = map[questiongen.Difficulty]string{
	questiongen.Easy:   "One-step functions to warm up",
	questiongen.Medium: "Products, quotients and compositions",
	questiongen.Hard:   "Multi-step problems",
	questiongen.Mixed:  "A draw from every tier",
}

func tierColor(d questiongen.Difficulty) color.Color {
	switch d {
	case questiongen.Easy:
		return theme.Easy
	case questiongen.Medium:
		return theme.Medium
	case questiongen.Hard:
		return theme.Hard
	}
	return theme.Primary
}

// difficultyScreen picks the tier for a topic quiz.
type difficultyScreen struct {
	topic questiongen.Topic
	menu  components.Menu
}

var _ screen.Screen = (*difficultyScreen)(nil)

func newDifficultyScreen(deps Deps, t questiongen.Topic) *difficultyScreen {
	items := make([]components.MenuItem, 0, len(difficulties))
	for _, d := range difficulties {
		items = append(items, components.MenuItem{
			Label: d.Label(),
			Action: func() tea.Cmd {
				return router.Push(topicQuiz(deps, t, d))
			},
		})
	}
	return &difficultyScreen{topic: t, menu: components.NewMenu(items)}
}

func (s *difficultyScreen) Init() tea.Cmd { return nil }

func (s *difficultyScreen) Title() string {
	return personalize.TopicName(s.topic)
}

func (s *difficultyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *difficultyScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  " + personalize.TopicName(s.topic)))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("  Choose a difficulty"))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())
	b.WriteString("\n\n")
	d := difficulties[s.menu.Selected]
	b.WriteString(lipgloss.NewStyle().Foreground(tierColor(d)).Render("  " + tierBlurbs[d]))
	return b.String()
}

// topicQuiz backfills Mixed quizzes, which draw from every tier of the
// pool and so see the most repeats.
func topicQuiz(deps Deps, t questiongen.Topic, d questiongen.Difficulty) *practice.PracticeScreen {
	return practice.New(practice.Options{
		Title:      personalize.TopicName(t) + " · " + d.Label(),
		Topic:      string(t),
		Difficulty: d,
		QuizType:   "topic",
		Load: func(ctx context.Context) (practice.Batch, error) {
			qs, err := deps.Quizzes.Topic(ctx, deps.UserID, t, d, d == questiongen.Mixed)
			return practice.Batch{Questions: qs}, err
		},
		Results: deps.Results,
		UserID:  deps.UserID,
	})
}
