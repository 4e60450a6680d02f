package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	originalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	translationStyle = lipgloss.NewStyle().Bold(true)
	missingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	partialStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barStyle         = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFDF5")).
				Background(lipgloss.Color("#25A065")).
				Padding(0, 1)
)

type line struct {
	original    string
	translation string
}

type model struct {
	viewport     viewport.Model
	ready        bool
	url          string
	lines        []line
	partial      string
	audioFrames  int
	audioBytes   int
	showOriginal bool
	status       string
	msgs         chan tea.Msg
}

func initialModel(url string, msgs chan tea.Msg) model {
	return model{
		url:          url,
		showOriginal: true,
		status:       "connected",
		msgs:         msgs,
	}
}

// NewProgram builds the listener UI fed by msgs, which Client.Run fills.
func NewProgram(url string, msgs chan tea.Msg) *tea.Program {
	return tea.NewProgram(initialModel(url, msgs), tea.WithAltScreen())
}

func (m model) Init() tea.Cmd {
	return waitForFrame(m.msgs)
}

func waitForFrame(msgs chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-msgs
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "tab":
			m.showOriginal = !m.showOriginal
			m.viewport.SetContent(m.transcriptView())
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMarginHeight := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMarginHeight)
			m.viewport.YPosition = headerHeight
			m.viewport.SetContent(m.transcriptView())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMarginHeight
		}

	case transcriptionMsg:
		m.lines = append(m.lines, line{
			original:    msg.Original,
			translation: msg.Translation,
		})
		m.partial = ""
		m.refresh()
		cmds = append(cmds, waitForFrame(m.msgs))

	case partialMsg:
		m.partial = string(msg)
		m.refresh()
		cmds = append(cmds, waitForFrame(m.msgs))

	case audioMsg:
		m.audioFrames++
		m.audioBytes += int(msg)
		cmds = append(cmds, waitForFrame(m.msgs))

	case disconnectedMsg:
		m.status = fmt.Sprintf("disconnected: %v", msg.err)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) refresh() {
	m.viewport.SetContent(m.transcriptView())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Connecting..."
	}
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.headerView(),
		m.viewport.View(),
		m.footerView(),
	)
}

func (m model) headerView() string {
	title := barStyle.Render("Relay " + m.url)
	line := strings.Repeat(
		"─",
		max(0, m.viewport.Width-lipgloss.Width(title)),
	)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, line)
}

func (m model) footerView() string {
	info := barStyle.Render(fmt.Sprintf(
		"%s · %d audio frames (%d KB) · q quit, Tab toggle original",
		m.status,
		m.audioFrames,
		m.audioBytes/1024,
	))
	line := strings.Repeat("─", max(0, m.viewport.Width-lipgloss.Width(info)))
	return lipgloss.JoinHorizontal(lipgloss.Center, line, info)
}

func (m model) transcriptView() string {
	var b strings.Builder
	for _, l := range m.lines {
		if m.showOriginal {
			b.WriteString(originalStyle.Render(l.original))
			b.WriteString("\n")
		}
		if l.translation == "" {
			b.WriteString(missingStyle.Render("(no translation)"))
		} else {
			b.WriteString(translationStyle.Render(l.translation))
		}
		b.WriteString("\n")
	}
	if m.partial != "" {
		b.WriteString(partialStyle.Render(m.partial))
		b.WriteString("\n")
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
