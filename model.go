package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Model struct {
	config *Config
	engine *FilterEngine

	// Loaded document and the lines currently shown
	doc      *Document
	filtered []string

	// UI state
	queryInput  textinput.Model
	pathInput   textinput.Model
	viewport    viewport.Model
	activeField InputField
	editMode    bool
	live        bool
	width       int
	height      int
	ready       bool

	status  string
	lastErr error

	// Styles
	headerStyle lipgloss.Style
	labelStyle  lipgloss.Style
	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
}

func NewModel(config *Config) *Model {
	engine := NewFilterEngine()

	queryInput := textinput.New()
	queryInput.Placeholder = "Enter the text to use as a filter..."
	queryInput.CharLimit = 256
	if config.Filter != "" {
		queryInput.SetValue(config.Filter)
	}

	pathInput := textinput.New()
	pathInput.CharLimit = 1024

	m := &Model{
		config:      config,
		engine:      engine,
		queryInput:  queryInput,
		pathInput:   pathInput,
		viewport:    viewport.New(80, 24),
		activeField: filterInput,
		live:        config.Live,
	}

	m.headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))

	m.labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("69"))

	m.statusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	m.errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9"))

	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.config.Path != "" {
		cmds = append(cmds, loadFileCmd(m.engine, m.config.Path))
	}
	return tea.Batch(cmds...)
}

// loadFileCmd runs the load operation and reports the outcome as a
// message.
func loadFileCmd(engine *FilterEngine, path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := engine.Load(path)
		if err != nil {
			return errorMsg{err: err}
		}
		return documentLoadedMsg{doc: doc}
	}
}

func saveFileCmd(engine *FilterEngine, path string, lines []string, label string) tea.Cmd {
	return func() tea.Msg {
		if err := engine.Save(path, lines, label); err != nil {
			return errorMsg{err: err}
		}
		return documentSavedMsg{path: path, lines: len(lines)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Header, filter line and status line take one row each
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-3)
		m.ready = true
		m.viewport.SetContent(m.displayContent())
		return m, nil

	case documentLoadedMsg:
		m.doc = msg.doc
		m.lastErr = nil
		m.status = fmt.Sprintf("Loaded %s (%s, %d lines)", msg.doc.Path, msg.doc.Encoding, len(msg.doc.Lines))
		m.applyFilter()
		m.viewport.GotoTop()
		// Let the user start typing a filter right away
		m.editMode = true
		m.activeField = filterInput
		m.queryInput.Focus()
		return m, textinput.Blink

	case documentSavedMsg:
		m.lastErr = nil
		m.status = fmt.Sprintf("Saved %d lines to %s", msg.lines, msg.path)
		return m, nil

	case errorMsg:
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Keys that work regardless of edit mode
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+f":
		return m, m.focusFilter()

	case "ctrl+o":
		m.editMode = true
		m.activeField = openInput
		m.queryInput.Blur()
		m.pathInput.Placeholder = "Path of the file to open..."
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, textinput.Blink

	case "ctrl+s":
		if m.doc == nil {
			m.lastErr = fmt.Errorf("nothing to save: no file is open")
			return m, nil
		}
		m.editMode = true
		m.activeField = saveInput
		m.queryInput.Blur()
		m.pathInput.Placeholder = "Save filtered lines as..."
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, textinput.Blink

	case "ctrl+w":
		m.closeDocument()
		return m, nil

	case "ctrl+l":
		m.live = !m.live
		if m.live {
			m.applyFilter()
		}
		return m, nil
	}

	if m.editMode {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "/":
		return m, m.focusFilter()

	case "j", "down":
		m.viewport.ScrollDown(1)
		return m, nil

	case "k", "up":
		m.viewport.ScrollUp(1)
		return m, nil

	case "ctrl+d":
		m.viewport.HalfPageDown()
		return m, nil

	case "ctrl+u":
		m.viewport.HalfPageUp()
		return m, nil

	case "g":
		m.viewport.GotoTop()
		return m, nil

	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.blurInputs()
		return m, nil

	case "enter":
		switch m.activeField {
		case filterInput:
			m.applyFilter()
			m.blurInputs()
			return m, nil
		case openInput:
			path := strings.TrimSpace(m.pathInput.Value())
			m.blurInputs()
			if path == "" {
				return m, nil
			}
			return m, loadFileCmd(m.engine, path)
		case saveInput:
			path := strings.TrimSpace(m.pathInput.Value())
			m.blurInputs()
			if path == "" {
				return m, nil
			}
			return m, saveFileCmd(m.engine, path, m.filtered, m.engine.Encoding())
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.activeField == filterInput {
		m.queryInput, cmd = m.queryInput.Update(msg)
		if m.live {
			m.applyFilter()
		}
	} else {
		m.pathInput, cmd = m.pathInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusFilter() tea.Cmd {
	m.editMode = true
	m.activeField = filterInput
	m.pathInput.Blur()
	m.queryInput.Focus()
	return textinput.Blink
}

func (m *Model) blurInputs() {
	m.editMode = false
	m.queryInput.Blur()
	m.pathInput.Blur()
}

// applyFilter recomputes the filtered view from the current query and
// refreshes the viewport.
func (m *Model) applyFilter() {
	m.filtered = m.engine.Filter(m.doc, m.queryInput.Value())
	m.viewport.SetContent(m.displayContent())
}

func (m *Model) closeDocument() {
	m.engine.Close()
	m.doc = nil
	m.filtered = nil
	m.lastErr = nil
	m.status = ""
	m.queryInput.SetValue("")
	m.blurInputs()
	m.viewport.SetContent(m.displayContent())
}

// displayContent renders the filtered lines for the viewport. The
// stored terminators stay on the lines only for saving; for display
// they are stripped so CRLF files render cleanly.
func (m *Model) displayContent() string {
	if m.doc == nil {
		return "No file open. Press Ctrl+O to open a text file."
	}
	if len(m.filtered) == 0 {
		return "No lines match the current filter."
	}

	var content strings.Builder
	for i, line := range m.filtered {
		content.WriteString(strings.TrimRight(line, "\r\n"))
		if i < len(m.filtered)-1 {
			content.WriteByte('\n')
		}
	}
	return content.String()
}

func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	filterLine := m.renderFilterLine()
	status := m.renderStatus()

	return lipgloss.JoinVertical(lipgloss.Left, header, filterLine, m.viewport.View(), status)
}

func (m *Model) renderHeader() string {
	title := " Filterer "

	info := ""
	if m.doc != nil {
		info = fmt.Sprintf("%s [%s]", m.doc.Path, m.doc.Encoding)
	}

	padding := m.width - len(title) - len(info) - 1
	if padding < 1 {
		padding = 1
	}

	return m.headerStyle.Width(m.width).Render(title + strings.Repeat(" ", padding) + info)
}

func (m *Model) renderFilterLine() string {
	if m.editMode && m.activeField != filterInput {
		label := "Open: "
		if m.activeField == saveInput {
			label = "Save as: "
		}
		return m.labelStyle.Render(label) + m.pathInput.View()
	}
	return m.labelStyle.Render("Filter: ") + m.queryInput.View()
}

func (m *Model) renderStatus() string {
	if m.lastErr != nil {
		return m.errorStyle.Render("Error: " + m.lastErr.Error())
	}

	left := m.status
	if m.doc != nil {
		left = fmt.Sprintf("%d/%d lines", len(m.filtered), len(m.doc.Lines))
	}

	right := fmt.Sprintf("[%s] live filtering (ctrl+l)", checkbox(m.live))
	padding := m.width - len(left) - len(right) - 1
	if padding < 1 {
		padding = 1
	}

	return m.statusStyle.Render(left + strings.Repeat(" ", padding) + right)
}

func checkbox(checked bool) string {
	if checked {
		return "x"
	}
	return " "
}
