// Package tui provides the single-pane terminal interface for sparkdo.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sparkdo/internal/app"
	"sparkdo/store"
)

// Mode indicates the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeConfirmClear
)

const (
	splashFrames  = 8
	frameInterval = 80 * time.Millisecond
)

// Model represents the TUI state
type Model struct {
	app *app.App

	// Data snapshot; the store stays authoritative.
	tasks []store.Task
	stats store.Stats

	// Selection and input
	cursor   int
	mode     Mode
	pending  store.Priority
	input    textinput.Model
	progress progress.Model

	// Cosmetic state
	splashLeft  int
	celebration *Celebration

	// UI dimensions
	width  int
	height int

	// Styles
	titleStyle     lipgloss.Style
	selectedStyle  lipgloss.Style
	completedStyle lipgloss.Style
	lowStyle       lipgloss.Style
	mediumStyle    lipgloss.Style
	highStyle      lipgloss.Style
	helpStyle      lipgloss.Style
	dialogStyle    lipgloss.Style
	statusBarStyle lipgloss.Style
}

type frameMsg time.Time

// Option configures a Model
type Option func(*Model)

// WithSplash enables the cosmetic startup progress animation.
func WithSplash() Option {
	return func(m *Model) { m.splashLeft = splashFrames }
}

// New creates a new TUI model over an orchestrator.
func New(a *app.App, opts ...Option) *Model {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 256

	m := &Model{
		app:      a,
		pending:  store.PriorityMedium,
		input:    ti,
		progress: progress.New(progress.WithDefaultGradient()),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		completedStyle: lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("240")),
		lowStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		mediumStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
		highStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		dialogStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		statusBarStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.refresh()
	return m
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	if m.splashLeft > 0 {
		return frameTick()
	}
	return nil
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// refresh pulls a fresh snapshot from the orchestrator and clamps the
// cursor.
func (m *Model) refresh() {
	m.tasks = m.app.Tasks()
	m.stats = m.app.Stats()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// afterMutation refreshes the snapshot and starts the celebration when the
// mutation completed the whole list.
func (m *Model) afterMutation() tea.Cmd {
	m.refresh()
	if m.app.TakeVictory() {
		m.celebration = NewCelebration(m.width, m.height, time.Now())
		return frameTick()
	}
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 8
		return m, nil

	case frameMsg:
		if m.splashLeft > 0 {
			m.splashLeft--
			if m.splashLeft > 0 {
				return m, frameTick()
			}
			return m, nil
		}
		if m.celebration != nil {
			if m.celebration.Advance(time.Time(msg)) {
				return m, frameTick()
			}
			// Timed auto-dismiss: all particles expired.
			m.celebration = nil
		}
		return m, nil

	case tea.KeyMsg:
		if m.splashLeft > 0 {
			// Any key skips the splash.
			m.splashLeft = 0
			return m, nil
		}
		switch m.mode {
		case ModeAdd:
			return m.handleAddMode(msg)
		case ModeConfirmClear:
			return m.handleConfirmClearMode(msg)
		}
		return m.handleNormalMode(msg)
	}

	return m, nil
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil

	case "K":
		// Move the selected task up one position.
		if m.cursor > 0 && m.cursor < len(m.tasks) {
			m.app.Move(m.tasks[m.cursor].ID, m.cursor-1)
			m.cursor--
			m.refresh()
		}
		return m, nil

	case "J":
		// Move the selected task down one position.
		if m.cursor < len(m.tasks)-1 {
			m.app.Move(m.tasks[m.cursor].ID, m.cursor+1)
			m.cursor++
			m.refresh()
		}
		return m, nil

	case "tab":
		m.pending = m.pending.Next()
		return m, nil

	case "a", "i":
		m.mode = ModeAdd
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink

	case " ", "c":
		if m.cursor < len(m.tasks) {
			m.app.Toggle(m.tasks[m.cursor].ID)
			return m, m.afterMutation()
		}
		return m, nil

	case "d", "x":
		if m.cursor < len(m.tasks) {
			m.app.Delete(m.tasks[m.cursor].ID)
			return m, m.afterMutation()
		}
		return m, nil

	case "C":
		m.app.ClearCompleted()
		return m, m.afterMutation()

	case "X":
		if len(m.tasks) > 0 {
			m.mode = ModeConfirmClear
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := m.input.Value()
		m.mode = ModeNormal
		m.input.Blur()
		if created := m.app.Add(value, m.pending); created != nil {
			m.cursor = 0
		}
		return m, m.afterMutation()

	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case tea.KeyTab:
		m.pending = m.pending.Next()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmClearMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		m.app.ClearAll()
		return m, m.afterMutation()
	case "n", "N", "esc":
		m.mode = ModeNormal
		return m, nil
	}
	return m, nil
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		m.width = 80
		m.height = 24
	}

	if m.splashLeft > 0 {
		return m.renderSplash()
	}

	var b strings.Builder

	b.WriteString(m.titleStyle.Render("sparkdo"))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(float64(m.stats.Percentage) / 100))
	b.WriteString(fmt.Sprintf("  %d/%d done\n\n", m.stats.Completed, m.stats.Total))

	if len(m.tasks) == 0 {
		b.WriteString(m.helpStyle.Render("No tasks. Press a to add one."))
		b.WriteString("\n")
	}
	for i, task := range m.tasks {
		b.WriteString(m.renderTask(task, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	view := b.String()

	switch m.mode {
	case ModeAdd:
		return m.renderAddDialog()
	case ModeConfirmClear:
		return m.renderConfirmClearDialog()
	}

	if m.celebration != nil {
		return overlay(view, m.celebration.Render(m.width, m.height))
	}
	return view
}

func (m *Model) renderTask(task store.Task, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}

	status := "[ ]"
	if task.Completed {
		status = "[✓]"
	}

	badge := m.priorityBadge(task.Priority)

	text := task.Text
	if task.Completed {
		text = m.completedStyle.Render(text)
	} else if selected {
		text = m.selectedStyle.Render(text)
	}

	return cursor + " " + status + " " + badge + " " + text
}

func (m *Model) priorityBadge(p store.Priority) string {
	switch p {
	case store.PriorityHigh:
		return m.highStyle.Render("!!")
	case store.PriorityLow:
		return m.lowStyle.Render("··")
	default:
		return m.mediumStyle.Render(" !")
	}
}

func (m *Model) renderStatusBar() string {
	left := "priority: " + string(m.pending)
	right := "a:add  space:toggle  d:delete  J/K:move  tab:priority  q:quit"

	padding := m.width - len(left) - len(right) - 2
	if padding < 1 {
		padding = 1
	}
	return m.statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m *Model) renderSplash() string {
	done := float64(splashFrames-m.splashLeft) / float64(splashFrames)
	bar := m.progress.ViewAs(done)
	content := m.titleStyle.Render("sparkdo") + "\n\n" + bar
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderAddDialog() string {
	dialog := m.dialogStyle.Render(
		"Add Task  " + m.priorityBadge(m.pending) + " " + string(m.pending) + "\n\n" +
			m.input.View() + "\n\n" +
			m.helpStyle.Render("Enter: add  Tab: priority  Esc: cancel"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) renderConfirmClearDialog() string {
	dialog := m.dialogStyle.Render(
		"Clear all tasks?\n\n" +
			m.helpStyle.Render("y: yes  n: no"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) centerDialog(dialog string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

// overlay draws the celebration frame over the base view line by line.
// Particle cells replace the underlying rune; everything else shows
// through.
func overlay(base, frame string) string {
	baseLines := strings.Split(base, "\n")
	frameLines := strings.Split(frame, "\n")

	var b strings.Builder
	for i := 0; i < len(baseLines) || i < len(frameLines); i++ {
		switch {
		case i >= len(frameLines) || strings.TrimSpace(stripANSI(frameLines[i])) == "":
			if i < len(baseLines) {
				b.WriteString(baseLines[i])
			}
		default:
			b.WriteString(frameLines[i])
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// stripANSI removes escape sequences for emptiness checks.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
