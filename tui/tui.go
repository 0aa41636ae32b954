// Package tui is the terminal interaction surface for a thread. It holds the
// current forest, turns key presses into thread operations, and re-renders
// from whatever the engine returns.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/burntcarrot/threadpad/commons"
	"github.com/burntcarrot/threadpad/thread"
	"github.com/burntcarrot/threadpad/view"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// reservedLines is the number of lines used around the thread: title, blank
// line, two form fields, status bar and help line.
const reservedLines = 6

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Conn is where local operations are sent.
type Conn interface {
	WriteJSON(v interface{}) error
}

type Config struct {
	// Username prefills the name field of new comments.
	Username string

	IDs    thread.IDSource
	Thread thread.Forest

	// Conn may be nil, in which case the thread stays local.
	Conn   Conn
	Logger *logrus.Logger
}

type mode int

const (
	modeBrowse mode = iota
	modeComment
	modeReply
	modeEdit
)

// ErrMsg reports a failure outside the model, such as a dropped connection.
type ErrMsg error

type Model struct {
	thread thread.Forest
	ids    thread.IDSource
	view   *view.View

	name textinput.Model
	body textinput.Model
	mode mode

	// target is the comment being replied to or edited.
	target thread.ID

	username string
	users    []string
	conn     Conn
	logger   *logrus.Logger

	status   string
	err      error
	Quitting bool
}

func New(conf Config) Model {
	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 64
	name.Width = 20

	body := textinput.New()
	body.Placeholder = "Add a comment..."
	body.CharLimit = 1024
	body.Width = 60

	logger := conf.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	f := conf.Thread
	if f == nil {
		f = thread.NewForest()
	}

	var ids thread.IDSource = thread.UUIDSource{}
	if conf.IDs != nil {
		ids = conf.IDs
	}

	m := Model{
		ids:      ids,
		view:     view.NewView(view.ViewConfig{ScrollEnabled: true}),
		name:     name,
		body:     body,
		username: conf.Username,
		conn:     conf.Conn,
		logger:   logger,
	}
	m.setThread(f)
	return m
}

// Thread returns the forest currently shown.
func (m Model) Thread() thread.Forest {
	return m.thread
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.SetSize(msg.Width-2, msg.Height-reservedLines)
		return m, nil

	case commons.Message:
		m.handleMsg(msg)
		return m, nil

	// We handle errors just like any other message
	case ErrMsg:
		m.err = msg
		m.status = msg.Error()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.mode == modeBrowse {
			return m.updateBrowse(msg)
		}
		return m.updateForm(msg)
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.view.Selected()

	switch msg.String() {
	case "q", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		m.view.MoveCursor(-1)
	case "down", "j":
		m.view.MoveCursor(1)
	case "home", "g":
		m.view.MoveCursor(-len(m.view.Rows))
	case "end", "G":
		m.view.MoveCursor(len(m.view.Rows))
	case "n":
		return m, m.openForm(modeComment, "", "")
	case "r":
		if ok {
			return m, m.openForm(modeReply, selected.ID, "")
		}
	case "e":
		if ok {
			return m, m.openForm(modeEdit, selected.ID, selected.Text)
		}
	case "d":
		if ok {
			m.perform(thread.NewDelete(selected.ID))
		}
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeForm()
		return m, nil

	case tea.KeyTab, tea.KeyShiftTab:
		if m.mode != modeEdit {
			if m.name.Focused() {
				m.name.Blur()
				m.body.Focus()
			} else {
				m.body.Blur()
				m.name.Focus()
			}
		}
		return m, nil

	case tea.KeyEnter:
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	if m.name.Focused() {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

// openForm switches to one of the compose modes. The name field is prefilled
// with the session's username, so the body gets the focus.
func (m *Model) openForm(md mode, target thread.ID, text string) tea.Cmd {
	m.mode = md
	m.target = target
	m.name.SetValue(m.username)
	m.body.SetValue(text)
	m.name.Blur()
	m.body.Focus()

	switch md {
	case modeReply:
		m.body.Placeholder = "Reply..."
	case modeEdit:
		m.body.Placeholder = "Edit comment..."
	default:
		m.body.Placeholder = "Add a comment..."
	}
	return textinput.Blink
}

func (m *Model) closeForm() {
	m.mode = modeBrowse
	m.target = ""
	m.name.Blur()
	m.body.Blur()
}

// submit turns the form into an operation. Blank names or texts keep the form open.
func (m *Model) submit() {
	var (
		op thread.Operation
		ok = true
	)

	switch m.mode {
	case modeComment:
		op, ok = thread.NewComment(m.ids, m.name.Value(), m.body.Value())
	case modeReply:
		op, ok = thread.NewReply(m.ids, m.target, m.name.Value(), m.body.Value())
	case modeEdit:
		op = thread.NewEdit(m.target, m.body.Value())
	}

	if !ok {
		m.status = "name and text are required"
		return
	}

	m.closeForm()
	m.perform(op)
}

// perform applies a local operation and sends it over the connection.
func (m *Model) perform(op thread.Operation) {
	f, err := thread.Apply(m.thread, op)
	if err != nil {
		m.logger.Errorf("thread error: %v", err)
		m.status = err.Error()
		return
	}
	m.logger.Infof("LOCAL %s: %s", strings.ToUpper(string(op.Type)), op.ID)
	m.setThread(f)

	if m.conn == nil {
		return
	}
	if err := m.conn.WriteJSON(commons.Message{Type: commons.OperationMessage, Username: m.username, Operation: op}); err != nil {
		m.logger.Errorf("failed to send operation, err: %v", err)
		m.status = "lost connection!"
	}
}

// handleMsg updates the thread with the contents of a message from the server.
func (m *Model) handleMsg(msg commons.Message) {
	switch msg.Type {
	case commons.DocSyncMessage:
		m.logger.Infof("DOCSYNC RECEIVED, %d comments", thread.Len(msg.Thread))
		f := msg.Thread
		if f == nil {
			f = thread.NewForest()
		}
		if o, ok := m.ids.(interface{ Observe(thread.Forest) }); ok {
			o.Observe(f)
		}
		m.setThread(f)

	case commons.OperationMessage:
		f, err := thread.Apply(m.thread, msg.Operation)
		if err != nil {
			m.logger.Errorf("failed to apply remote operation, err: %v", err)
			return
		}
		m.logger.Infof("REMOTE %s: %s", strings.ToUpper(string(msg.Operation.Type)), msg.Operation.ID)
		m.setThread(f)

	case commons.JoinMessage:
		m.status = fmt.Sprintf("%s has joined the session!", msg.Username)

	case commons.UsersMessage:
		m.users = msg.Users

	default:
		m.logger.Warnf("unexpected message type %q", msg.Type)
	}
}

func (m *Model) setThread(f thread.Forest) {
	m.thread = f
	m.view.SetThread(f)
}

func (m Model) View() string {
	if m.Quitting {
		return "\n  See you later!\n\n"
	}

	var b strings.Builder

	title := "threadpad"
	if m.username != "" {
		title += " · " + m.username
	}
	if len(m.users) > 0 {
		title += fmt.Sprintf(" (%d online)", len(m.users))
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	b.WriteString(threadView(m))
	b.WriteString(formView(m))

	b.WriteString(statusStyle.Render(m.status) + "\n")
	b.WriteString(helpStyle.Render(helpText(m.mode)))
	return b.String()
}

func threadView(m Model) string {
	lines := m.view.Lines()
	if len(lines) == 0 {
		return "No comments yet. Press n to write one.\n"
	}

	var b strings.Builder
	cursor := m.view.CursorLine()
	for i, line := range lines {
		if i == cursor && m.mode == modeBrowse {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func formView(m Model) string {
	switch m.mode {
	case modeComment, modeReply:
		return m.name.View() + "\n" + m.body.View() + "\n"
	case modeEdit:
		return m.body.View() + "\n"
	}
	return ""
}

func helpText(md mode) string {
	if md == modeBrowse {
		return "↑/↓ move • n comment • r reply • e edit • d delete • q quit"
	}
	return "enter submit • tab switch field • esc cancel"
}
