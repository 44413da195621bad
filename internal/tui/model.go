// Package tui hosts chat sessions in a terminal UI.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bankbot/internal/chat"
	"bankbot/internal/domain"
	"bankbot/internal/logger"
)

// Deps are the collaborators shared by every session the UI hosts.
type Deps struct {
	Prompt    chat.Prompt
	Retriever domain.Retriever
	Completer domain.Completer
	Handler   *chat.TurnHandler
	Log       *logger.Logger
	// Summary is a short digest of the indexed document shown under the title.
	Summary string
}

type (
	deliveryMsg       string
	sessionStartedMsg struct{ id string }
	turnDoneMsg       struct{ res chat.TurnResult }
)

// channelSink hands delivered text to the Bubble Tea event loop.
type channelSink chan string

func (c channelSink) Deliver(text string) { c <- text }

type entry struct {
	role   domain.Role
	text   string
	failed bool
}

// Model is the Bubble Tea model for the chat UI. One session is active at a
// time; ctrl+n replaces it with a fresh one.
type Model struct {
	deps    Deps
	sink    channelSink
	session *chat.Session
	cancel  context.CancelFunc

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	entries  []entry
	status   string
	busy     bool
	ready    bool
}

// New creates the UI model with an unstarted session.
func New(deps Deps) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the bank app and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	m := Model{
		deps:     deps,
		sink:     make(channelSink, 32),
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Starting session...",
	}
	m.session = m.newSession()
	return m
}

func (m Model) newSession() *chat.Session {
	return chat.NewSession(m.deps.Prompt, m.deps.Retriever, m.deps.Completer, m.sink, m.deps.Log)
}

// Init starts the first session and begins listening for deliveries.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startSession(), waitForDelivery(m.sink))
}

func (m Model) startSession() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		s.Start()
		return sessionStartedMsg{id: s.ID}
	}
}

func waitForDelivery(c channelSink) tea.Cmd {
	return func() tea.Msg { return deliveryMsg(<-c) }
}

func runTurn(ctx context.Context, cancel context.CancelFunc, h *chat.TurnHandler, s *chat.Session, text string) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		return turnDoneMsg{res: h.HandleTurn(ctx, s, text)}
	}
}

// Update handles key, window and session events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := conversationBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // title + summary, status, input box, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-ch)
		m.refresh()
		return m, nil

	case sessionStartedMsg:
		m.status = "Session " + shortID(msg.id) + " started. ctrl+n new session, ctrl+c quit."
		return m, nil

	case deliveryMsg:
		text := string(msg)
		m.entries = append(m.entries, entry{
			role:   domain.RoleAssistant,
			text:   text,
			failed: strings.HasPrefix(text, chat.ErrorPrefix),
		})
		m.refresh()
		return m, waitForDelivery(m.sink)

	case turnDoneMsg:
		m.busy = false
		m.cancel = nil
		if msg.res.OK() {
			m.status = fmt.Sprintf("Answered using %d document segment(s).", msg.res.Segments)
		} else {
			m.status = "Turn failed (" + msg.res.Failure.Kind.String() + ")."
		}
		cmd := m.input.Focus()
		return m, cmd

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m.quit()
		case tea.KeyCtrlN:
			return m.restart()
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	m.input.Blur()
	m.entries = append(m.entries, entry{role: domain.RoleUser, text: text})
	m.busy = true
	m.status = "Thinking..."
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return m, tea.Batch(m.spinner.Tick, runTurn(ctx, cancel, m.deps.Handler, m.session, text))
}

func (m Model) restart() (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "Wait for the current reply before starting a new session."
		return m, nil
	}
	m.session.Stop()
	m.session = m.newSession()
	m.entries = nil
	m.status = "Starting session..."
	m.refresh()
	return m, m.startSession()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.busy && m.cancel != nil {
		// the running turn owns the session until it returns
		m.cancel()
	} else {
		m.session.Stop()
	}
	return m, tea.Quit
}

// View renders the title, the document digest, the conversation and the input.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := titleStyle.Render("Bank Support Assistant")
	summary := summaryStyle.Render(m.deps.Summary)
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return title + "\n" + summary + "\n" +
		conversationBoxStyle.Render(m.viewport.View()) + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	if len(m.entries) == 0 {
		return ""
	}
	width := max(10, m.viewport.Width-2)
	body := lipgloss.NewStyle().Width(width)
	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		var label string
		switch {
		case e.role == domain.RoleUser:
			label = userStyle.Render("You")
		case e.failed:
			label = errorStyle.Render("Assistant")
		default:
			label = assistantStyle.Render("Assistant")
		}
		blocks = append(blocks, label+"\n"+body.Render(e.text))
	}
	return strings.Join(blocks, "\n\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var (
	titleStyle           = lipgloss.NewStyle().Bold(true)
	summaryStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	conversationBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
