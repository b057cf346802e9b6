package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"engagerag/internal/domain"
	"engagerag/internal/history"
)

// Answerer is the TUI-facing subset of the analytics engine.
type Answerer interface {
	Answer(ctx context.Context, query string, history []domain.Exchange) string
}

// answerMsg carries the engine's reply back into the update loop.
type answerMsg struct {
	query  string
	answer string
}

// Model is the Bubble Tea model for the chat REPL.
type Model struct {
	engine   Answerer
	input    textinput.Model
	viewport viewport.Model
	history  []domain.Exchange
	status   string
	pending  bool
	ready    bool
}

// New creates a new chat model.
func New(engine Answerer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your engagement data (exit to quit)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{engine: engine, input: ti, viewport: vp, status: "Ready. Type a question and press Enter."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// History returns the exchanges shown so far, oldest first.
func (m Model) History() []domain.Exchange { return m.history }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, spacer
		vh := msg.Height - reserved - th
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh)
		m.refresh()
		return m, nil
	case answerMsg:
		m.pending = false
		m.history = appendCapped(m.history, domain.AssistantSaid(msg.answer))
		m.status = "Ready."
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			if IsExit(q) {
				return m, tea.Quit
			}
			prior := append([]domain.Exchange(nil), history.Prior(m.history, history.DefaultMaxEntries)...)
			m.history = appendCapped(m.history, domain.UserSaid(q))
			m.input.SetValue("")
			m.pending = true
			m.status = "Thinking..."
			m.refresh()
			return m, m.ask(q, prior)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string, prior []domain.Exchange) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{query: q, answer: m.engine.Answer(context.Background(), q, prior)}
	}
}

// IsExit reports whether the input ends the session.
func IsExit(q string) bool {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "exit", "quit":
		return true
	}
	return false
}

func appendCapped(h []domain.Exchange, e domain.Exchange) []domain.Exchange {
	h = append(h, e)
	if len(h) > history.DefaultMaxEntries {
		h = h[len(h)-history.DefaultMaxEntries:]
	}
	return h
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Social Media Engagement Analytics")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, e := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.Speaker {
		case domain.SpeakerUser:
			b.WriteString(questionStyle.Render("You: " + e.Text))
		default:
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
