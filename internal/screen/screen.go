// Package screen defines the contract between the TUI router and the
// screens it stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/calcmaster/internal/ui/layout"
)

type Screen interface {
	// Init returns an initial command when the screen becomes active.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens that replace the default
// footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
