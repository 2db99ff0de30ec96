package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/calcmaster/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "home"})

	s2 := &stubScreen{title: "quiz"}
	r.Update(PushScreenMsg{Screen: s2})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "quiz" {
		t.Errorf("expected active 'quiz', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPop(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "quiz"})
	r.Update(Pop())

	if r.Depth() != 1 || r.Active().Title() != "home" {
		t.Errorf("after pop: depth %d, active %q", r.Depth(), r.Active().Title())
	}
}

func TestPopNoopAtRoot(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "quiz"})

	summary := &stubScreen{title: "summary"}
	r.Update(Replace(summary)())

	if r.Depth() != 2 || r.Active().Title() != "summary" {
		t.Fatalf("after replace: depth %d, active %q", r.Depth(), r.Active().Title())
	}
	if !summary.initRan {
		t.Error("expected Init() to run on replacement")
	}

	r.Pop()
	if r.Active().Title() != "home" {
		t.Errorf("back from summary should reach home, got %q", r.Active().Title())
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)
	r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(home.got) != 1 {
		t.Errorf("expected 1 forwarded message, got %d", len(home.got))
	}
}
