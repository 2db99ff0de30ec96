package practice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/router"
	"github.com/abhisek/calcmaster/internal/screen"
	"github.com/abhisek/calcmaster/internal/screens/summary"
	"github.com/abhisek/calcmaster/internal/store"
)

type mockResults struct {
	saved  []store.ResultInput
	userID int64
	err    error
}

func (m *mockResults) Save(_ context.Context, userID int64, in store.ResultInput) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.userID = userID
	m.saved = append(m.saved, in)
	return int64(len(m.saved)), nil
}

func testQuestions() []questiongen.Question {
	return []questiongen.Question{
		{
			ID:          1,
			Text:        `What is the derivative of \( f(x) = x^{2} \)?`,
			Options:     []string{`\( 2 x \)`, `\( x \)`, `\( 2 \)`, `\( x^{3} \)`},
			Correct:     `\( 2 x \)`,
			Explanation: `Power rule: \( 2 x \)`,
			Topic:       questiongen.TopicDerivatives,
		},
		{
			ID:          2,
			Text:        `What is \( \lim_{x \to 0} x + 1 \)?`,
			Options:     []string{`\( 0 \)`, `\( 1 \)`, `\( 2 \)`, `\( -1 \)`},
			Correct:     `\( 1 \)`,
			Explanation: `Substitute: \( 1 \)`,
			Topic:       questiongen.TopicLimits,
		},
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testScreen(results ResultSaver) *PracticeScreen {
	s := New(Options{
		Title:      "Mixed quiz",
		Topic:      "general",
		Difficulty: questiongen.Mixed,
		QuizType:   "general",
		Load: func(context.Context) (Batch, error) {
			return Batch{Questions: testQuestions(), Intro: "Warm up"}, nil
		},
		Results: results,
		UserID:  42,
	})
	return s
}

// load runs Init and feeds its message back, as the program would.
func load(t *testing.T, s *PracticeScreen) {
	t.Helper()
	s.Update(s.Init()())
	if !s.loaded {
		t.Fatal("expected screen to be loaded")
	}
}

func TestPracticeScreen_View_Loading(t *testing.T) {
	s := testScreen(nil)
	if view := s.View(80, 24); !strings.Contains(view, "Generating") {
		t.Errorf("expected loading view, got:\n%s", view)
	}
}

func TestPracticeScreen_LoadError(t *testing.T) {
	s := New(Options{Load: func(context.Context) (Batch, error) {
		return Batch{}, errors.New("engine down")
	}})
	load(t, s)
	if !strings.Contains(s.View(80, 24), "engine down") {
		t.Error("expected error in view")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command after Enter on error")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestPracticeScreen_EmptyBatch(t *testing.T) {
	s := New(Options{Load: func(context.Context) (Batch, error) { return Batch{}, nil }})
	load(t, s)
	if s.errMsg == "" {
		t.Error("an empty batch should show an error")
	}
}

func TestPracticeScreen_ShowsQuestion(t *testing.T) {
	s := testScreen(nil)
	load(t, s)
	view := s.View(80, 24)
	for _, want := range []string{"Question 1/2", "Warm up", "f(x) = x²"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPracticeScreen_AnswerShowsFeedback(t *testing.T) {
	s := testScreen(nil)
	load(t, s)

	s.Update(keyPress('2'))
	if !s.choice.Submitted {
		t.Fatal("expected answer to be submitted")
	}
	if s.correct != 0 || len(s.missed) != 1 {
		t.Errorf("correct = %d, missed = %d", s.correct, len(s.missed))
	}
	view := s.View(80, 24)
	if !strings.Contains(view, "Not quite") || !strings.Contains(view, "Power rule") {
		t.Errorf("expected feedback and explanation:\n%s", view)
	}
}

func TestPracticeScreen_FullQuizSavesAndShowsSummary(t *testing.T) {
	results := &mockResults{}
	s := testScreen(results)
	load(t, s)
	s.now = func() time.Time { return s.started.Add(90 * time.Second) }

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('a')) // correct
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	if s.index != 1 {
		t.Fatalf("expected second question, index = %d", s.index)
	}
	scr, _ = scr.Update(keyPress('1')) // wrong
	_, cmd := scr.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected finish command")
	}

	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", msg.Screen)
	}

	if len(results.saved) != 1 {
		t.Fatalf("expected 1 saved result, got %d", len(results.saved))
	}
	in := results.saved[0]
	if results.userID != 42 || in.Score != 1 || in.Total != 2 || in.TimeSpent != 90 {
		t.Errorf("saved %+v for user %d", in, results.userID)
	}
	if in.Topic != "general" || in.Difficulty != "mixed" {
		t.Errorf("topic/difficulty = %q/%q", in.Topic, in.Difficulty)
	}
	byTopic := in.Details["by_topic"].(map[questiongen.Topic]*topicScore)
	if byTopic[questiongen.TopicDerivatives].Correct != 1 || byTopic[questiongen.TopicLimits].Total != 1 {
		t.Errorf("per-topic breakdown wrong: %+v", byTopic)
	}
}

func TestPracticeScreen_SaveErrorStillShowsSummary(t *testing.T) {
	s := testScreen(&mockResults{err: errors.New("locked")})
	load(t, s)
	s.Update(keyPress('1'))
	s.Update(specialKey(tea.KeyEnter))
	s.Update(keyPress('2'))
	_, cmd := s.Update(specialKey(tea.KeyEnter))

	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if !strings.Contains(msg.Screen.View(80, 24), "locked") {
		t.Error("summary should report the save error")
	}
}

func TestPracticeScreen_KeysIgnoredWhileLoading(t *testing.T) {
	s := testScreen(nil)
	if _, cmd := s.Update(keyPress('1')); cmd != nil {
		t.Error("expected no command before load")
	}
}
