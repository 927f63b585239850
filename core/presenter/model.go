package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	session "github.com/voxline/vox-core/core"
)

const (
	countdownDuration = 3 * time.Second
	levelMeterWidth   = 20
	defaultWidth      = 60
)

type (
	stateMsg           session.VoiceState
	levelMsg           float64
	transcriptMsg      string
	readyMsg           struct{}
	countdownStartMsg  struct{ preview string }
	countdownCancelMsg struct{}
	countdownSendMsg   struct{}
	countdownTickMsg   time.Time
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	listeningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	processingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	speakingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	meterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	previewStyle    = lipgloss.NewStyle().Faint(true)
	readyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type model struct {
	state      session.VoiceState
	level      float64
	transcript string
	ready      bool

	countdownActive  bool
	countdownPreview string
	countdownStart   time.Time

	spinner  spinner.Model
	progress progress.Model
	width    int
}

func newModel() model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = processingStyle

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return model{
		state:    session.StateIdle,
		spinner:  s,
		progress: p,
		width:    defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > 4 && m.width-4 < m.progress.Width {
			m.progress.Width = m.width - 4
		}
		return m, nil

	case stateMsg:
		m.state = session.VoiceState(msg)
		if m.state != session.StateListening {
			m.level = 0
		}
		return m, nil

	case levelMsg:
		m.level = float64(msg)
		return m, nil

	case transcriptMsg:
		m.transcript = string(msg)
		return m, nil

	case readyMsg:
		m.ready = true
		return m, nil

	case countdownStartMsg:
		m.countdownActive = true
		m.countdownPreview = msg.preview
		m.countdownStart = time.Now()
		return m, countdownTick()

	case countdownCancelMsg, countdownSendMsg:
		m.countdownActive = false
		m.countdownPreview = ""
		return m, nil

	case countdownTickMsg:
		if !m.countdownActive {
			return m, nil
		}
		return m, countdownTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func countdownTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("voice session"))
	b.WriteString("  ")
	b.WriteString(m.stateView())
	b.WriteString("\n")

	if m.state == session.StateListening {
		b.WriteString(m.levelMeterView())
		b.WriteString("\n")
	}

	if m.countdownActive {
		b.WriteString(m.countdownView())
		b.WriteString("\n")
	}

	if m.transcript != "" {
		b.WriteString(previewStyle.Render(wordwrap.String(m.transcript, m.contentWidth())))
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) stateView() string {
	switch m.state {
	case session.StateListening:
		return listeningStyle.Render("● listening")
	case session.StateProcessing:
		return processingStyle.Render(m.spinner.View() + "processing")
	case session.StateSpeaking:
		return speakingStyle.Render("▶ speaking")
	default:
		if m.ready {
			return readyStyle.Render("✓ ready")
		}
		return idleStyle.Render("idle")
	}
}

func (m model) levelMeterView() string {
	filled := int(m.level * levelMeterWidth)
	if filled > levelMeterWidth {
		filled = levelMeterWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", levelMeterWidth-filled)
	return meterStyle.Render(bar)
}

func (m model) countdownView() string {
	elapsed := time.Since(m.countdownStart)
	fraction := float64(elapsed) / float64(countdownDuration)
	if fraction > 1 {
		fraction = 1
	}

	preview := wordwrap.String(m.countdownPreview, m.contentWidth())
	return fmt.Sprintf("%s\n%s", m.progress.ViewAs(fraction), previewStyle.Render(preview))
}

func (m model) contentWidth() int {
	if m.width <= 4 {
		return defaultWidth
	}
	return m.width - 4
}
