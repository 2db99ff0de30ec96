package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func testChoice() MultiChoice {
	return NewMultiChoice([]string{`\( 2 x \)`, `\( x^{2} \)`, `\( 2 \)`, `\( 0 \)`}, 0)
}

func TestMultiChoice_Navigate(t *testing.T) {
	m := testChoice()
	m = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}
	m = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Submitted || m.ChosenIndex != 1 {
		t.Fatalf("Submitted = %v, ChosenIndex = %d", m.Submitted, m.ChosenIndex)
	}
	if m.IsCorrect() {
		t.Error("option B is wrong")
	}
}

func TestMultiChoice_DigitAndLetter(t *testing.T) {
	m := testChoice().Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	if !m.IsCorrect() {
		t.Error("digit 1 should choose the correct option A")
	}

	m = testChoice().Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	if m.ChosenIndex != 2 {
		t.Errorf("letter c chose %d, want 2", m.ChosenIndex)
	}
}

func TestMultiChoice_FrozenAfterSubmit(t *testing.T) {
	m := testChoice().Update(tea.KeyPressMsg{Code: '4', Text: "4"})
	m = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 3 || m.ChosenIndex != 3 {
		t.Errorf("selection moved after submit: %+v", m)
	}
}

func TestMultiChoice_ViewRendersMath(t *testing.T) {
	view := testChoice().View()
	if !strings.Contains(view, "x²") {
		t.Errorf("view should render x^{2} as x²:\n%s", view)
	}
	if strings.Contains(view, `\(`) {
		t.Errorf("view leaks LaTeX delimiters:\n%s", view)
	}
}
