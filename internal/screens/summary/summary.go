package summary

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/calcmaster/internal/router"
	"github.com/abhisek/calcmaster/internal/screen"
	"github.com/abhisek/calcmaster/internal/ui/components"
	"github.com/abhisek/calcmaster/internal/ui/layout"
	"github.com/abhisek/calcmaster/internal/ui/theme"
)

// Miss is a wrongly answered question.
type Miss struct {
	Question string
	Chosen   string
	Correct  string
}

// Result is a finished quiz.
type Result struct {
	Title   string
	Score   int
	Total   int
	Elapsed time.Duration
	Missed  []Miss

	// SaveErr is set when the result could not be recorded.
	SaveErr error
}

func (r Result) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) * 100 / float64(r.Total)
}

// SummaryScreen displays the quiz summary.
type SummaryScreen struct {
	result Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

func New(r Result) *SummaryScreen {
	return &SummaryScreen{result: r}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, router.Pop
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	center := func(c color.Color, text string) string {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(c).Render(text)
	}

	var b strings.Builder

	b.WriteString(center(theme.Primary, lipgloss.NewStyle().Bold(true).Render("Quiz complete!")))
	b.WriteString("\n")
	b.WriteString(center(theme.TextDim, r.Title))
	b.WriteString("\n\n")

	mins := int(r.Elapsed.Minutes())
	secs := int(r.Elapsed.Seconds()) % 60
	b.WriteString(center(theme.Text, fmt.Sprintf("Score: %d/%d    %.0f%%    Time: %d:%02d",
		r.Score, r.Total, r.Percentage(), mins, secs)))
	b.WriteString("\n\n")
	b.WriteString(center(gradeColor(r.Percentage()), verdict(r.Percentage())))
	b.WriteString("\n")

	if r.SaveErr != nil {
		b.WriteString("\n")
		b.WriteString(center(theme.Error, "Result not saved: "+r.SaveErr.Error()))
		b.WriteString("\n")
	}

	if len(r.Missed) > 0 {
		b.WriteString("\n")
		b.WriteString(center(theme.TextDim, "Review"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, layout.Divider(width)))
		b.WriteString("\n\n")

		for _, m := range r.Missed {
			b.WriteString(theme.Body.Render("  " + components.Math(m.Question)))
			b.WriteString("\n")
			b.WriteString(theme.Incorrect.Render("    ✗ " + components.Math(m.Chosen)))
			b.WriteString("  ")
			b.WriteString(theme.Correct.Render("✓ " + components.Math(m.Correct)))
			b.WriteString("\n\n")
		}
	}

	return b.String()
}

func verdict(pct float64) string {
	switch {
	case pct >= 90:
		return "Excellent work!"
	case pct >= 75:
		return "Good job."
	case pct >= 50:
		return "Getting there. Review the misses below."
	default:
		return "This topic needs more practice."
	}
}

func gradeColor(pct float64) color.Color {
	switch {
	case pct >= 75:
		return theme.Success
	case pct >= 50:
		return theme.Accent
	default:
		return theme.Error
	}
}
