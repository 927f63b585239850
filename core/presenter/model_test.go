package presenter

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	session "github.com/voxline/vox-core/core"
)

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return next
}

func TestModelTracksState(t *testing.T) {
	m := newModel()

	m = update(t, m, stateMsg(session.StateListening))
	if !strings.Contains(m.View(), "listening") {
		t.Fatalf("expected listening indicator, got %q", m.View())
	}

	m = update(t, m, stateMsg(session.StateSpeaking))
	if !strings.Contains(m.View(), "speaking") {
		t.Fatalf("expected speaking indicator, got %q", m.View())
	}
}

func TestLevelMeterOnlyShownWhileListening(t *testing.T) {
	m := newModel()

	m = update(t, m, stateMsg(session.StateListening))
	m = update(t, m, levelMsg(0.5))
	if !strings.Contains(m.View(), "█") {
		t.Fatalf("expected level meter while listening, got %q", m.View())
	}

	m = update(t, m, stateMsg(session.StateIdle))
	if strings.Contains(m.View(), "█") {
		t.Fatalf("expected no level meter while idle, got %q", m.View())
	}
	if m.level != 0 {
		t.Fatalf("expected level reset on leaving listening, got %f", m.level)
	}
}

func TestCountdownLifecycle(t *testing.T) {
	m := newModel()

	m = update(t, m, countdownStartMsg{preview: "send this text"})
	if !m.countdownActive {
		t.Fatal("expected countdown to be active")
	}
	if !strings.Contains(m.View(), "send this text") {
		t.Fatalf("expected countdown preview, got %q", m.View())
	}

	m = update(t, m, countdownCancelMsg{})
	if m.countdownActive {
		t.Fatal("expected countdown to be cancelled")
	}
	if strings.Contains(m.View(), "send this text") {
		t.Fatalf("expected preview to disappear, got %q", m.View())
	}
}

func TestCountdownCompletion(t *testing.T) {
	m := newModel()

	m = update(t, m, countdownStartMsg{preview: "outgoing"})
	m = update(t, m, countdownSendMsg{})
	if m.countdownActive {
		t.Fatal("expected countdown to be finished")
	}
}

func TestReadyIndicator(t *testing.T) {
	m := newModel()

	if strings.Contains(m.View(), "ready") {
		t.Fatalf("expected no ready indicator initially, got %q", m.View())
	}

	m = update(t, m, readyMsg{})
	if !strings.Contains(m.View(), "ready") {
		t.Fatalf("expected ready indicator, got %q", m.View())
	}

	// The ready mark only shows while idle.
	m = update(t, m, stateMsg(session.StateListening))
	if strings.Contains(m.View(), "ready") {
		t.Fatalf("expected ready indicator to yield to listening, got %q", m.View())
	}
}

func TestTranscriptPreviewWraps(t *testing.T) {
	m := newModel()
	m = update(t, m, tea.WindowSizeMsg{Width: 24, Height: 10})
	m = update(t, m, transcriptMsg("a fairly long transcript that should wrap onto several lines"))

	for _, line := range strings.Split(m.View(), "\n") {
		if len([]rune(line)) > 120 {
			t.Fatalf("expected wrapped output, got line %q", line)
		}
	}
	if !strings.Contains(m.View(), "transcript") {
		t.Fatalf("expected transcript text in view, got %q", m.View())
	}
}
