package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/kurt/core"
	"github.com/koscakluka/kurt/core/speechtotext"
)

type captureStub struct{ transcript string }

func (c captureStub) Capture(context.Context, ...speechtotext.CaptureOption) (string, error) {
	return c.transcript, nil
}

type modelStub struct{ reply string }

func (m modelStub) Generate(context.Context, string) (string, error) { return m.reply, nil }

func newTestModel(t *testing.T) (Model, *Screen, *orchestration.Orchestrator) {
	t.Helper()

	screen := NewScreen()
	o := orchestration.NewOrchestrator(orchestration.NewSession(), screen,
		orchestration.WithSpeechCapture(captureStub{transcript: "hello"}),
		orchestration.WithLanguageModel(modelStub{reply: "Hi there"}),
	)
	t.Cleanup(func() { o.Shutdown() })
	return NewModel(o, screen), screen, o
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", next)
	}
	return model, cmd
}

func TestNewModelShowsInitialState(t *testing.T) {
	m, screen, _ := newTestModel(t)

	if m.Title() != "Kurt AI Assistant" {
		t.Fatalf("expected title %q, got %q", "Kurt AI Assistant", m.Title())
	}
	if screen.Status() != orchestration.StatusReady {
		t.Fatalf("expected status %q, got %q", orchestration.StatusReady, screen.Status())
	}
	view := m.View()
	for _, fragment := range []string{"Kurt AI Assistant", "Chat History:", orchestration.StatusReady, string(orchestration.MicIconOn)} {
		if !strings.Contains(view, fragment) {
			t.Fatalf("expected view to contain %q, got:\n%s", fragment, view)
		}
	}
}

func TestSpaceStartsPipelineAndResultsAreDispatched(t *testing.T) {
	m, screen, o := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if screen.Status() != orchestration.StatusListening {
		t.Fatalf("expected listening status, got %q", screen.Status())
	}
	if screen.MicEnabled() || screen.MicIcon() != orchestration.MicIconOff {
		t.Fatalf("expected mic to be disabled")
	}

	deadline := time.After(2 * time.Second)
	for !(o.State() == orchestration.StateIdle && o.Session().Len() == 2) {
		select {
		case msg := <-resultMessages(m):
			m, _ = update(t, m, msg)
		case <-deadline:
			t.Fatalf("timed out waiting for pipeline, state %s", o.State())
		}
	}

	if !strings.Contains(m.View(), "Kurt: Hi there") {
		t.Fatalf("expected reply in view, got:\n%s", m.View())
	}
	if !screen.MicEnabled() {
		t.Fatalf("expected mic to be enabled again")
	}
}

func TestQuitShutsDownOrchestrator(t *testing.T) {
	m, _, o := newTestModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	if o.Session().IsRunning() {
		t.Fatalf("expected orchestrator to be shut down")
	}
	if m.View() != "Goodbye!\n" {
		t.Fatalf("expected goodbye view, got %q", m.View())
	}
}

func TestShutdownEndsResultListener(t *testing.T) {
	m, _, o := newTestModel(t)
	o.Shutdown()

	msg := m.listenResults()()
	if _, ok := msg.(shutdownMsg); !ok {
		t.Fatalf("expected shutdown message, got %T", msg)
	}
	_, cmd := update(t, m, msg)
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit after shutdown")
	}
}

func TestWindowResizeFitsTranscript(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.transcript.Width != 116 {
		t.Fatalf("expected transcript width 116, got %d", m.transcript.Width)
	}
	if m.transcript.Height != 40-chromeHeight-1 {
		t.Fatalf("expected transcript height %d, got %d", 40-chromeHeight-1, m.transcript.Height)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	if !m.help.ShowAll {
		t.Fatalf("expected full help after toggle")
	}
	if !strings.Contains(m.View(), "suspend") {
		t.Fatalf("expected full help to list suspend")
	}
}

// resultMessages runs the model's result listener in the background.
func resultMessages(m Model) <-chan tea.Msg {
	out := make(chan tea.Msg, 1)
	go func() { out <- m.listenResults()() }()
	return out
}
