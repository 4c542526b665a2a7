package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/igorsilveira/faqbot/pkg/chatapi"
	"github.com/igorsilveira/faqbot/pkg/widget"
)

var (
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	badgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Italic(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const (
	headerHeight = 2
	footerHeight = 3
)

type responseMsg struct {
	resp *chatapi.ChatResponse
	err  error
}

// Model renders a widget.Controller in the terminal. The controller owns the
// conversation state; the model only mirrors it into bubbles components.
type Model struct {
	ctx      context.Context
	ctrl     *widget.Controller
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	ready    bool
}

func NewModel(ctx context.Context, ctrl *widget.Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your question..."
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter", "ctrl+s":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if !m.ctrl.InputEnabled() {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()
		return m, nil

	case responseMsg:
		m.ctrl.Finish(msg.resp, msg.err)
		m.refresh()
		return m, m.syncFocus()

	case spinner.TickMsg:
		if !m.ctrl.Typing() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	question, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(m.syncFocus(), m.ask(question), m.spinner.Tick)
}

// ask runs the request off the update loop and reports back as responseMsg.
func (m Model) ask(question string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		resp, err := ctrl.Request(ctx, question)
		return responseMsg{resp: resp, err: err}
	}
}

func (m *Model) syncFocus() tea.Cmd {
	if m.ctrl.InputEnabled() {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	msgs := m.ctrl.Messages()
	if len(msgs) == 0 {
		return dimStyle.Render("Ask a question to get started.")
	}

	wrap := lipgloss.NewStyle().Width(max(m.width-2, 10))
	var b strings.Builder
	for _, msg := range msgs {
		stamp := dimStyle.Render(msg.Timestamp)
		switch {
		case msg.Sender == widget.SenderUser:
			b.WriteString(userStyle.Render("You") + " " + stamp + "\n")
			b.WriteString(wrap.Render(msg.Text))
		case msg.Failed:
			b.WriteString(botStyle.Render("Bot") + " " + stamp + "\n")
			b.WriteString(errorStyle.Inherit(wrap).Render(msg.Text))
		default:
			b.WriteString(botStyle.Render("Bot") + " " + stamp + "\n")
			b.WriteString(wrap.Render(msg.Text))
			if badge := msg.Badge(); badge != "" {
				b.WriteString("\n" + badgeStyle.Render(badge))
			}
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render("FAQ Assistant (Enter to send, PgUp/PgDn to scroll, Esc to quit)"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.ctrl.Typing() {
		b.WriteString(m.spinner.View() + dimStyle.Render(" Bot is typing..."))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.input.View())

	return b.String()
}

func Run(ctx context.Context, ctrl *widget.Controller) error {
	p := tea.NewProgram(NewModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
