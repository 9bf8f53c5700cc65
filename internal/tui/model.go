package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/kurt/core"
	"github.com/koscakluka/kurt/core/events"
	"github.com/muesli/reflow/wordwrap"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// chromeHeight is the number of lines around the transcript panel.
	chromeHeight = 7
)

// resultMsg carries a pipeline result into the update loop.
type resultMsg struct{ event events.Event }

// shutdownMsg is sent once the orchestrator has shut down.
type shutdownMsg struct{}

// Model is the bubbletea model of the assistant screen. Every orchestrator
// call happens inside Update, which makes the update loop the UI loop.
type Model struct {
	orchestrator *orchestration.Orchestrator
	screen       *Screen
	title        string

	transcript viewport.Model
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	styles     styles

	width    int
	height   int
	quitting bool
}

// NewModel builds the screen model. screen must be the Surface the
// orchestrator was created with.
func NewModel(o *orchestration.Orchestrator, screen *Screen) Model {
	m := Model{
		orchestrator: o,
		screen:       screen,
		title:        o.AssistantName() + " AI Assistant",
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:         help.New(),
		keys:         defaultKeyMap(),
		styles:       newStyles(),
		width:        defaultWidth,
		height:       defaultHeight,
	}
	m.transcript = viewport.New(m.panelWidth(), m.panelHeight())
	m.syncTranscript()
	return m
}

func (m Model) Title() string { return m.title }

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(m.title),
		m.listenResults(),
		m.spinner.Tick,
	)
}

func (m Model) listenResults() tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-m.orchestrator.Results():
			return resultMsg{event: event}
		case <-m.orchestrator.Done():
			return shutdownMsg{}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.orchestrator.OnStop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Mic):
			m.orchestrator.OnMicPressed()
		case key.Matches(msg, m.keys.Pause):
			if m.orchestrator.OnPause() {
				return m, tea.Suspend
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
		default:
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.ResumeMsg:
		m.orchestrator.OnResume()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()

	case resultMsg:
		m.orchestrator.Dispatch(msg.event)
		cmds = append(cmds, m.listenResults())

	case shutdownMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncTranscript()
	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	m.transcript.Width = m.panelWidth()
	m.transcript.Height = m.panelHeight()
}

func (m Model) panelWidth() int {
	return max(m.width-4, 10)
}

func (m Model) panelHeight() int {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = 2
	}
	return max(m.height-chromeHeight-helpHeight, 3)
}

func (m *Model) syncTranscript() {
	content := m.renderTranscript(m.transcript.Width)
	atBottom := m.transcript.AtBottom()
	m.transcript.SetContent(content)
	if atBottom || m.transcript.PastBottom() {
		m.transcript.GotoBottom()
	}
}

// renderTranscript wraps and colors the transcript lines the orchestrator
// rendered.
func (m Model) renderTranscript(width int) string {
	userPrefix := "You: "
	assistantPrefix := m.orchestrator.AssistantName() + ": "

	lines := strings.Split(strings.TrimRight(m.screen.Transcript(), "\n"), "\n")
	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		wrapped := wordwrap.String(line, width)
		switch {
		case strings.HasPrefix(line, userPrefix):
			wrapped = m.styles.userLine.Render(wrapped)
		case strings.HasPrefix(line, assistantPrefix):
			wrapped = m.styles.assistLine.Render(wrapped)
		}
		rendered = append(rendered, wrapped)
	}
	return strings.Join(rendered, "\n")
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render(m.title),
		m.styles.panel.Render(m.transcript.View()),
		m.micLine(),
		m.styles.status.Render(wordwrap.String(m.screen.Status(), m.panelWidth())),
		m.help.View(m.keys),
	)
}

func (m Model) micLine() string {
	if m.screen.MicEnabled() {
		return m.styles.micOn.Render(fmt.Sprintf("● %s", m.screen.MicIcon()))
	}
	return m.styles.micOff.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.screen.MicIcon()))
}
