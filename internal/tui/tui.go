// Package tui implements the terminal client for the scheduling assistant.
// The left pane is a chat with the assistant; the right pane shows the
// timeline, kept fresh by a polling reconciler.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/planline/planline/internal/event"
	"github.com/planline/planline/internal/provider"
	"github.com/planline/planline/internal/reconciler"
)

type focusArea int

const (
	focusChat focusArea = iota
	focusTimeline
)

type chatReplyMsg struct {
	reply string
	err   error
}

type timelineTickMsg time.Time

type Model struct {
	chat *ChatClient
	rec  *reconciler.Reconciler

	input      textinput.Model
	transcript viewport.Model
	spin       spinner.Model

	history []provider.Message
	lines   []string
	waiting bool

	events []event.Event
	cursor int

	focus    focusArea
	width    int
	height   int
	quitting bool
}

func timelineTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timelineTickMsg(t)
	})
}

// sendCmd posts the history to the server off the update loop.
func (m Model) sendCmd(history []provider.Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		reply, err := m.chat.Send(ctx, history)
		return chatReplyMsg{reply: reply, err: err}
	}
}

// deleteCmd asks the reconciler to drop the selected event.
func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		m.rec.DeleteEvent(ctx, id)
		return timelineTickMsg(time.Now())
	}
}

func NewModel(chat *ChatClient, rec *reconciler.Reconciler) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask the assistant..."
	ti.Focus()
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	vp := viewport.New(60, 20)

	return Model{
		chat:       chat,
		rec:        rec,
		input:      ti,
		transcript: vp,
		spin:       sp,
		width:      120,
		height:     40,
		focus:      focusChat,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, timelineTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Width = max(m.chatWidth()-4, 20)
		m.transcript.Height = max(m.height-8, 5)
		m.input.Width = max(m.chatWidth()-8, 20)
		m.refreshTranscript()
		return m, nil

	case timelineTickMsg:
		m.events = m.rec.Events()
		event.SortByTime(m.events)
		if m.cursor >= len(m.events) {
			m.cursor = max(len(m.events)-1, 0)
		}
		return m, timelineTick()

	case chatReplyMsg:
		m.waiting = false
		if msg.err != nil {
			m.lines = append(m.lines, ErrorStyle.Render("error: "+msg.err.Error()))
			// The failed turn is not part of the history; retyping it retries.
			if n := len(m.history); n > 0 && m.history[n-1].Role == provider.RoleUser {
				m.history = m.history[:n-1]
			}
		} else {
			m.history = append(m.history, provider.Message{Role: provider.RoleAssistant, Content: msg.reply})
			m.lines = append(m.lines, AssistantStyle.Render("assistant: "+msg.reply))
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focus == focusChat {
				m.focus = focusTimeline
				m.input.Blur()
			} else {
				m.focus = focusChat
				m.input.Focus()
			}
			return m, nil
		}

		if m.focus == focusTimeline {
			switch msg.String() {
			case "q":
				m.quitting = true
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(m.events)-1 {
					m.cursor++
				}
			case "d":
				if m.cursor < len(m.events) {
					return m, m.deleteCmd(m.events[m.cursor].ID)
				}
			}
			return m, nil
		}

		if msg.String() == "enter" && !m.waiting {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.history = append(m.history, provider.Message{Role: provider.RoleUser, Content: text})
			m.lines = append(m.lines, UserStyle.Render("you: ")+text)
			m.refreshTranscript()
			m.waiting = true
			return m, m.sendCmd(m.history)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(strings.Join(m.lines, "\n"))
	m.transcript.GotoBottom()
}

func (m Model) chatWidth() int {
	return m.width * 2 / 3
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	status := ""
	if m.waiting {
		status = m.spin.View() + " thinking..."
	}
	chatPane := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Chat"),
		m.transcript.View(),
		status,
		m.input.View(),
	)

	var rows []string
	rows = append(rows, TitleStyle.Render("Timeline"))
	if len(m.events) == 0 {
		rows = append(rows, HelpStyle.Render("no events scheduled"))
	}
	for i, ev := range m.events {
		line := fmt.Sprintf("%s  %s (%dm)", ev.Time, ev.Title, ev.Duration)
		if m.focus == focusTimeline && i == m.cursor {
			rows = append(rows, SelectedEventStyle.Render("> "+line))
		} else {
			rows = append(rows, EventStyle.Render("  "+line))
		}
	}
	timelinePane := lipgloss.JoinVertical(lipgloss.Left, rows...)

	chatStyle, timelineStyle := FocusedPaneStyle, PaneStyle
	if m.focus == focusTimeline {
		chatStyle, timelineStyle = PaneStyle, FocusedPaneStyle
	}

	chatBox := chatStyle.Width(max(m.chatWidth()-2, 30)).Height(max(m.height-4, 10)).Render(chatPane)
	timelineBox := timelineStyle.Width(max(m.width-m.chatWidth()-4, 20)).Height(max(m.height-4, 10)).Render(timelinePane)

	help := HelpStyle.Render("tab: switch pane · enter: send · d: delete event · ctrl+c: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, chatBox, timelineBox),
		help,
	)
}
