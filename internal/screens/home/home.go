// Package home is the root screen: pick a topic, a mixed quiz, a smart
// quiz, or review progress.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/calcmaster/internal/personalize"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/quiz"
	"github.com/abhisek/calcmaster/internal/router"
	"github.com/abhisek/calcmaster/internal/screen"
	"github.com/abhisek/calcmaster/internal/screens/history"
	"github.com/abhisek/calcmaster/internal/screens/practice"
	"github.com/abhisek/calcmaster/internal/store"
	"github.com/abhisek/calcmaster/internal/ui/components"
	"github.com/abhisek/calcmaster/internal/ui/theme"
)

const banner = `
  ┌──────────────────────────────┐
  │   ∫ f(x) dx    d/dx    lim   │
  │        C A L C M A S T E R   │
  └──────────────────────────────┘`

// Deps are the services behind the menu.
type Deps struct {
	Quizzes      *quiz.Builder
	Personalizer *personalize.Service
	Results      store.ResultRepo
	UserID       int64
}

var topicHints = map[questiongen.Topic]string{
	questiongen.TopicDerivatives:    "d/dx of polynomials, trig, exp",
	questiongen.TopicIntegrals:      "antiderivatives + C",
	questiongen.TopicLimits:         "lim x→a, including 0/0 forms",
	questiongen.TopicCriticalPoints: "where f'(x) = 0",
}

type generalLoadedMsg struct {
	stats store.GeneralStats
}

type HomeScreen struct {
	deps    Deps
	menu    components.Menu
	general *store.GeneralStats
}

var _ screen.Screen = (*HomeScreen)(nil)

func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}

	var items []components.MenuItem
	for _, t := range questiongen.Topics {
		items = append(items, components.MenuItem{
			Label: personalize.TopicName(t),
			Hint:  topicHints[t],
			Action: func() tea.Cmd {
				return router.Push(newDifficultyScreen(deps, t))
			},
		})
	}
	items = append(items,
		components.MenuItem{Label: "Mixed quiz", Hint: "15 questions across every topic", Action: func() tea.Cmd {
			return router.Push(generalQuiz(deps))
		}},
		components.MenuItem{Label: "Smart quiz", Hint: "focuses on your weakest topic", Action: func() tea.Cmd {
			return router.Push(smartQuiz(deps))
		}},
		components.MenuItem{Label: "Progress", Action: func() tea.Cmd {
			return router.Push(history.New(deps.Results, deps.Personalizer, deps.UserID))
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)
	h.menu = components.NewMenu(items)
	return h
}

// Init loads the running totals shown under the banner.
func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Results == nil {
		return nil
	}
	results, userID := h.deps.Results, h.deps.UserID
	return func() tea.Msg {
		g, err := results.General(context.Background(), userID)
		if err != nil {
			return nil
		}
		return generalLoadedMsg{stats: g}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(generalLoadedMsg); ok {
		h.general = &m.stats
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(banner))
	b.WriteString("\n\n")

	if g := h.general; g != nil && g.TotalQuizzes > 0 {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d quizzes taken, %.1f%% average",
			g.TotalQuizzes, g.AverageScore)))
		b.WriteString("\n\n")
	}

	b.WriteString(h.menu.View())
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func generalQuiz(deps Deps) *practice.PracticeScreen {
	return practice.New(practice.Options{
		Title:      "Mixed quiz",
		Topic:      string(questiongen.TopicGeneral),
		Difficulty: questiongen.Mixed,
		QuizType:   "general",
		Load: func(ctx context.Context) (practice.Batch, error) {
			qs, err := deps.Quizzes.General(ctx, deps.UserID)
			return practice.Batch{Questions: qs}, err
		},
		Results: deps.Results,
		UserID:  deps.UserID,
	})
}

// smartQuiz records its result under "general" so the per-topic
// averages only count single-topic quizzes.
func smartQuiz(deps Deps) *practice.PracticeScreen {
	return practice.New(practice.Options{
		Title:      "Smart quiz",
		Topic:      string(questiongen.TopicGeneral),
		Difficulty: questiongen.Mixed,
		QuizType:   "personalized",
		Load: func(ctx context.Context) (practice.Batch, error) {
			q, err := deps.Personalizer.PersonalizedQuiz(ctx, deps.UserID)
			if err != nil {
				return practice.Batch{}, err
			}
			return practice.Batch{Questions: q.Questions, Intro: q.Explanation}, nil
		},
		Results: deps.Results,
		UserID:  deps.UserID,
	})
}
