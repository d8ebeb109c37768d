// SPDX-License-Identifier: AGPL-3.0-only

// Package ui provides the interactive terminal front end.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jolks/mcp-remind/internal/errors"
	"github.com/jolks/mcp-remind/internal/model"
	"github.com/jolks/mcp-remind/internal/scheduler"
)

// TaskStore is the part of the task store the TUI edits
type TaskStore interface {
	Add(ctx context.Context, name, deadline string) (model.Task, error)
	Remove(ctx context.Context, name string) error
	List() []model.Task
}

// Checker runs reminder checks and builds summaries
type Checker interface {
	Tick(ctx context.Context) []model.Task
	SummarizePendingBefore(cutoff model.TimeOfDay) scheduler.Summary
}

// Option configures the TUI
type Option func(*Model)

// WithInterval sets how often the TUI checks reminders
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		m.interval = d
	}
}

// WithCutoff sets the cutoff used by the summary key
func WithCutoff(cutoff model.TimeOfDay) Option {
	return func(m *Model) {
		m.cutoff = cutoff
	}
}

// RunTUI runs the TUI until the user quits or ctx is cancelled. Reminders
// delivered to banner during a check are shown as popups.
func RunTUI(ctx context.Context, tasks TaskStore, checker Checker, banner *Banner, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	m := NewModel(ctx, tasks, checker, banner, opts...)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeName
	modeDeadline
)

type tickMsg time.Time

type checkedMsg struct {
	tasks []model.Task
}

// Model is the bubbletea model of the reminder TUI
type Model struct {
	ctx      context.Context
	tasks    TaskStore
	checker  Checker
	banner   *Banner
	interval time.Duration
	cutoff   model.TimeOfDay

	list   []model.Task
	cursor int

	mode      inputMode
	input     []rune
	nameDraft string

	popups []Popup
}

// NewModel creates the TUI model
func NewModel(ctx context.Context, tasks TaskStore, checker Checker, banner *Banner, opts ...Option) *Model {
	if banner == nil {
		banner = NewBanner()
	}
	m := &Model{
		ctx:      ctx,
		tasks:    tasks,
		checker:  checker,
		banner:   banner,
		interval: time.Second,
		cutoff:   model.TimeOfDay{Hour: 17},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.checkCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if len(m.popups) > 0 {
			return m.updatePopup(msg)
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	case tickMsg:
		return m, m.checkCmd()
	case checkedMsg:
		m.setList(msg.tasks)
		m.popups = append(m.popups, m.banner.Drain()...)
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m *Model) updatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
		m.popups = m.popups[1:]
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeName
		m.input = nil
	case "d", "delete":
		m.deleteSelected()
	case "r":
		sum := m.checker.SummarizePendingBefore(m.cutoff)
		m.show(scheduler.SummaryTitle, sum.Message)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = nil
		m.nameDraft = ""
	case tea.KeyEnter:
		m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *Model) submit() {
	text := strings.TrimSpace(string(m.input))
	if text == "" {
		m.show("Incomplete Task", "Please enter both a task and a deadline.")
		return
	}

	if m.mode == modeName {
		m.nameDraft = text
		m.mode = modeDeadline
		m.input = nil
		return
	}

	task, err := m.tasks.Add(m.ctx, m.nameDraft, text)
	switch {
	case errors.IsInvalidDeadlineFormat(err):
		m.input = nil
		m.show("Invalid Deadline", "Please enter a valid deadline in HH:MM format.")
		return
	case err != nil && errors.CodeOf(err) != "":
		m.show("Error", err.Error())
	case err != nil:
		// kept in memory; the next successful save writes it
		m.show("Task Added", fmt.Sprintf("Task %q added but could not be saved: %v", task.Name, err))
	default:
		m.show("Task Added", fmt.Sprintf("Task %q added successfully!", task.Name))
	}
	m.mode = modeBrowse
	m.input = nil
	m.nameDraft = ""
	m.refresh()
}

func (m *Model) deleteSelected() {
	if len(m.list) == 0 {
		m.show("No Task Selected", "Please select a task to delete.")
		return
	}
	name := m.list[m.cursor].Name
	err := m.tasks.Remove(m.ctx, name)
	switch {
	case errors.IsNotFound(err):
		m.show("No Task Selected", fmt.Sprintf("Task %q no longer exists.", name))
	case err != nil:
		m.show("Task Deleted", fmt.Sprintf("Task %q deleted but could not be saved: %v", name, err))
	default:
		m.show("Task Deleted", fmt.Sprintf("Task %q deleted successfully!", name))
	}
	m.refresh()
}

func (m *Model) show(title, body string) {
	m.popups = append(m.popups, Popup{Title: title, Body: body})
}

func (m *Model) refresh() {
	m.setList(m.tasks.List())
}

func (m *Model) setList(tasks []model.Task) {
	m.list = tasks
	if m.cursor >= len(m.list) {
		m.cursor = len(m.list) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// checkCmd runs one reminder check off the UI goroutine
func (m *Model) checkCmd() tea.Cmd {
	return func() tea.Msg {
		return checkedMsg{tasks: m.checker.Tick(m.ctx)}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Reminder"))
	b.WriteString("\n")

	if len(m.list) == 0 {
		b.WriteString(mutedStyle.Render("  No tasks yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, t := range m.list {
		mark := pendingStyle.Render(pendingMark)
		if t.ReminderSent {
			mark = sentStyle.Render(sentMark)
		}
		line := fmt.Sprintf(" %s  %s  %s ", t.Deadline, mark, t.Name)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	switch m.mode {
	case modeName:
		b.WriteString("\n" + promptStyle.Render("Task: ") + string(m.input) + "█\n")
	case modeDeadline:
		b.WriteString(fmt.Sprintf("\nTask: %s\n", m.nameDraft))
		b.WriteString(promptStyle.Render("Deadline (HH:MM): ") + string(m.input) + "█\n")
	}

	if len(m.popups) > 0 {
		p := m.popups[0]
		b.WriteString(popupStyle.Render(popupTitleStyle.Render(p.Title) + "\n\n" + p.Body))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("enter to dismiss"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("a add | d delete | r remind me | ↑/↓ select | q quit | checking every %s", m.interval)))
	b.WriteString("\n")
	return b.String()
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
