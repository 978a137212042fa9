// Package tui is a terminal front end over one local study session.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thywilljoshua/study-companion/internal/export"
	"github.com/thywilljoshua/study-companion/internal/session"
)

// inputMode says what the input line is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputOpenPath
	inputQuestion
	inputExportPath
)

// maxTurnsShown bounds the transcript panel.
const maxTurnsShown = 8

// Model is the root bubbletea model. The session is only touched by one
// command at a time; busy is set while a command runs and the view is
// drawn from the last snapshot.
type Model struct {
	sess    *session.Session
	timeout time.Duration

	state *session.State

	busy      bool
	busyLabel string

	mode  inputMode
	input []rune

	status       string
	errorMessage string

	width  int
	height int
}

// New wraps sess. timeout bounds each model call.
func New(sess *session.Session, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return Model{
		sess:    sess,
		timeout: timeout,
		state:   sess.Snapshot(),
		status:  "Press o to open a PDF course.",
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case UploadDoneMsg:
		m.busy = false
		if msg.State != nil {
			m.state = msg.State
		}
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			return m, nil
		}
		d := m.state.Document
		m.errorMessage = ""
		m.status = fmt.Sprintf("Loaded %s (%d pages). Press s to summarize.", msg.Name, d.Pages)
		return m, nil

	case SummaryDoneMsg:
		m.busy = false
		if msg.State != nil {
			m.state = msg.State
		}
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.status = "Summary ready. Press e to export, c to ask a question."
		return m, nil

	case AnswerDoneMsg:
		m.busy = false
		if msg.State != nil {
			m.state = msg.State
		}
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.status = "Answered."
		return m, nil

	case ExportDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.status = "Summary written to " + msg.Path
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyQuit || key == KeyCtrlC {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch key {
	case KeyOpen:
		m.startInput(inputOpenPath, "")

	case KeyLevel:
		next := m.state.Level.Next()
		if err := m.sess.SetLevel(next); err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.state = m.sess.Snapshot()
		m.status = "Level: " + next.Label()

	case KeySummarize:
		if m.state.Document == nil {
			m.errorMessage = session.ErrNoDocument.Error()
			return m, nil
		}
		m.setBusy("Generating summary...")
		return m, m.summarizeCmd()

	case KeyChat:
		m.startInput(inputQuestion, "")

	case KeyClearChat:
		m.sess.ClearChat()
		m.state = m.sess.Snapshot()
		m.status = "Chat cleared."

	case KeyReset:
		m.sess.Reset()
		m.state = m.sess.Snapshot()
		m.errorMessage = ""
		m.status = "Session reset. Press o to open a PDF course."

	case KeyExport:
		if m.state.Summary == nil {
			m.errorMessage = session.ErrNoSummary.Error()
			return m, nil
		}
		m.startInput(inputExportPath, export.FileName(m.state.Summary.Title, export.PDF))
	}
	return m, nil
}

func (m *Model) startInput(mode inputMode, initial string) {
	m.mode = mode
	m.input = []rune(initial)
	m.errorMessage = ""
}

func (m *Model) setBusy(label string) {
	m.busy = true
	m.busyLabel = label
	m.errorMessage = ""
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.mode = inputNone
		m.input = nil
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeySpace:
		m.input = append(m.input, ' ')
		return m, nil
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
		return m, nil
	case tea.KeyEnter:
	default:
		return m, nil
	}

	value := strings.TrimSpace(string(m.input))
	mode := m.mode
	m.mode = inputNone
	m.input = nil
	if value == "" {
		return m, nil
	}

	switch mode {
	case inputOpenPath:
		m.setBusy("Reading " + filepath.Base(value) + "...")
		return m, m.uploadCmd(value)
	case inputQuestion:
		m.setBusy("Thinking...")
		return m, m.askCmd(value)
	case inputExportPath:
		m.setBusy("Exporting...")
		return m, m.exportCmd(value)
	}
	return m, nil
}

func (m Model) uploadCmd(path string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return UploadDoneMsg{Err: err}
		}
		name := filepath.Base(path)
		err = sess.Upload(name, raw)
		return UploadDoneMsg{State: sess.Snapshot(), Name: name, Err: err}
	}
}

func (m Model) summarizeCmd() tea.Cmd {
	sess, timeout := m.sess, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := sess.Summarize(ctx)
		return SummaryDoneMsg{State: sess.Snapshot(), Err: err}
	}
}

func (m Model) askCmd(question string) tea.Cmd {
	sess, timeout := m.sess, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := sess.Ask(ctx, question)
		return AnswerDoneMsg{State: sess.Snapshot(), Err: err}
	}
}

func (m Model) exportCmd(path string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ext := filepath.Ext(path)
		if ext == "" {
			ext = string(export.PDF)
			path += "." + ext
		}
		format, err := export.ParseFormat(ext)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		f, err := sess.Export(format)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return ExportDoneMsg{Err: err}
		}
		return ExportDoneMsg{Path: path}
	}
}

func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}
	divider := dividerStyle.Render(strings.Repeat("─", width))
	body := lipgloss.NewStyle().Width(width)

	var sections []string
	sections = append(sections, m.renderHeader(), divider)

	if d := m.state.Document; d != nil {
		sections = append(sections, dimStyle.Render(fmt.Sprintf("%s · %d pages · %d characters", d.Name, d.Pages, len([]rune(d.Text)))))
	} else {
		sections = append(sections, dimStyle.Render("No document loaded."))
	}

	if s := m.state.Summary; s != nil {
		sections = append(sections,
			headingStyle.Render("Summary: "+s.Title+" ("+s.Level.Label()+")"),
			body.Render(s.Text))
	}

	if turns := m.state.Transcript; len(turns) > 0 {
		sections = append(sections, headingStyle.Render("Chat"))
		if len(turns) > maxTurnsShown {
			sections = append(sections, dimStyle.Render(fmt.Sprintf("(%d earlier turns)", len(turns)-maxTurnsShown)))
			turns = turns[len(turns)-maxTurnsShown:]
		}
		for _, t := range turns {
			if t.Role == session.RoleUser {
				sections = append(sections, userStyle.Render("you: ")+body.Render(t.Content))
			} else {
				sections = append(sections, body.Render(t.Content))
			}
		}
	}

	sections = append(sections, divider)
	if m.errorMessage != "" {
		sections = append(sections, errorStyle.Render("error: ")+m.errorMessage)
	}
	switch {
	case m.busy:
		sections = append(sections, busyStyle.Render(m.busyLabel))
	case m.mode != inputNone:
		sections = append(sections, promptStyle.Render(m.promptLabel())+string(m.input)+"█")
	default:
		sections = append(sections, dimStyle.Render(m.status))
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	return titleStyle.Render("STUDY COMPANION") + dimStyle.Render("  level: "+m.state.Level.Label())
}

func (m Model) promptLabel() string {
	switch m.mode {
	case inputOpenPath:
		return "PDF path: "
	case inputQuestion:
		return "Question: "
	case inputExportPath:
		return "Export to: "
	}
	return ""
}

func (m Model) renderFooter() string {
	if m.mode != inputNone {
		return dimStyle.Render("enter confirm · esc cancel")
	}
	return dimStyle.Render("o open · l level · s summarize · c chat · x clear chat · R reset · e export · q quit")
}

// Run starts the program on the terminal and blocks until it exits.
func Run(sess *session.Session, timeout time.Duration) error {
	_, err := tea.NewProgram(New(sess, timeout), tea.WithAltScreen()).Run()
	return err
}
