// Package presenter renders session activity onto a terminal the
// session does not own: the hotkey client tells the coordinator which
// tty to draw on, and the presenter mirrors voice state, capture
// levels, and send countdowns there.
package presenter

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	session "github.com/voxline/vox-core/core"
)

type Presenter struct {
	mu      sync.Mutex
	program *tea.Program
	tty     *os.File
}

func New() *Presenter {
	return &Presenter{}
}

// BindTTY points the presenter at a terminal device and starts
// rendering there. Rebinding replaces the previous target.
func (p *Presenter) BindTTY(path string) error {
	if path == "" {
		return fmt.Errorf("empty tty path")
	}

	tty, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open presenter tty: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	program := tea.NewProgram(newModel(),
		tea.WithOutput(tty),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	p.program = program
	p.tty = tty

	go func() {
		if _, err := program.Run(); err != nil {
			logger.Error("presenter stopped", "error", err)
		}
	}()

	logger.Info("presenter bound", "tty", path)
	return nil
}

// Close stops rendering and releases the bound terminal.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Presenter) stopLocked() {
	if p.program != nil {
		p.program.Quit()
		p.program = nil
	}
	if p.tty != nil {
		p.tty.Close()
		p.tty = nil
	}
}

func (p *Presenter) send(msg tea.Msg) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// StartCountdown shows a send countdown with a preview of the text
// about to be submitted.
func (p *Presenter) StartCountdown(preview string) { p.send(countdownStartMsg{preview: preview}) }

// CancelCountdown hides an active countdown without completing it.
func (p *Presenter) CancelCountdown() { p.send(countdownCancelMsg{}) }

// CompleteCountdown marks the countdown as finished and the text sent.
func (p *Presenter) CompleteCountdown() { p.send(countdownSendMsg{}) }

// ShowReady displays the idle-and-ready indicator.
func (p *Presenter) ShowReady() { p.send(readyMsg{}) }

// OnStateChanged mirrors a voice-state transition. Wire it as the
// session's state-changed callback.
func (p *Presenter) OnStateChanged(_, to session.VoiceState) { p.send(stateMsg(to)) }

// OnCaptureLevel mirrors one capture level sample.
func (p *Presenter) OnCaptureLevel(level float64) { p.send(levelMsg(level)) }

// OnTranscript shows the most recent transcript.
func (p *Presenter) OnTranscript(transcript string) { p.send(transcriptMsg(transcript)) }
