package summary

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/calcmaster/internal/router"
)

func testResult() Result {
	return Result{
		Title:   "Integrals · Easy",
		Score:   7,
		Total:   10,
		Elapsed: 3*time.Minute + 5*time.Second,
		Missed: []Miss{{
			Question: `What is \( \int x^{2} \, dx \)?`,
			Chosen:   `\( 2 x + C \)`,
			Correct:  `\( \frac{x^{3}}{3} + C \)`,
		}},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testResult())
	if s.Title() != "Quiz Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Quiz Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testResult()).View(80, 24)
	for _, want := range []string{"7/10", "70%", "3:05", "x³/3 + C", "∫ x² dx"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSummaryScreen_SaveError(t *testing.T) {
	r := testResult()
	r.SaveErr = errors.New("database is locked")
	view := New(r).View(80, 24)
	if !strings.Contains(view, "database is locked") {
		t.Errorf("save error not shown:\n%s", view)
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New(testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestResult_Percentage(t *testing.T) {
	if got := (Result{}).Percentage(); got != 0 {
		t.Errorf("empty quiz percentage = %v", got)
	}
	if got := testResult().Percentage(); got != 70 {
		t.Errorf("Percentage = %v, want 70", got)
	}
}
