package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	promptgen "github.com/SchwarzschildX/PromptGen"
	"github.com/SchwarzschildX/PromptGen/assemble"
	"github.com/SchwarzschildX/PromptGen/tree"
)

// ExitState indicates how the program is exiting
type ExitState int

const (
	ExitStateNone  ExitState = iota // Not exiting
	ExitStateAbort                  // Exiting without saving (Ctrl+C)
	ExitStateSave                   // Exiting after saving (q)
)

type mode int

const (
	modeTree mode = iota
	modePrompt
	modeFilter
	modeFind
)

// artifactMsg carries a rebuilt artifact from the session.
type artifactMsg assemble.Artifact

func waitArtifact(updates <-chan assemble.Artifact) tea.Cmd {
	return func() tea.Msg {
		art, ok := <-updates
		if !ok {
			return nil
		}
		return artifactMsg(art)
	}
}

var (
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	paneStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).PaddingLeft(1)
)

const usageHint = "(↑/↓ move, →/← expand/collapse, Space toggle, p prompt, f filter, . hide dot, _ hide __, / find, y copy, q save+quit, Ctrl+C abort)"

// model is the Bubble Tea model of the interactive tree. Every change goes
// through the session; the model only keeps snapshots for rendering.
type model struct {
	session *promptgen.Session

	mode      mode
	exitState ExitState

	rows   []tree.Row
	cursor int

	// find mode restores this cursor on Esc
	findFrom int

	promptText string
	filterText string
	hideDot    bool
	hideDunder bool

	art    assemble.Artifact
	status string
	err    error

	input   textinput.Model
	prompt  textarea.Model
	tree    viewport.Model
	preview viewport.Model
	ready   bool
}

func newModel(s *promptgen.Session, promptText, filterText string, hideDot, hideDunder bool) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0

	ta := textarea.New()
	ta.Placeholder = "Write the prompt..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(promptText)

	return model{
		session:    s,
		promptText: promptText,
		filterText: filterText,
		hideDot:    hideDot,
		hideDunder: hideDunder,
		input:      ti,
		prompt:     ta,
		tree:       viewport.New(0, 0), // sized on tea.WindowSizeMsg
		preview:    viewport.New(0, 0),
	}
}

func (a *App) runTUI(ctx context.Context) error {
	st, err := a.Session.State()
	if err != nil {
		return err
	}
	m := newModel(a.Session, st.Prompt, st.Filter, st.HideDot, st.HideDunder)
	m.refresh()

	// TUI on stderr, like the other commands' diagnostics
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	fm, ok := final.(model)
	if !ok {
		return fmt.Errorf("could not get final model state")
	}
	if fm.exitState != ExitStateSave {
		return nil
	}
	return a.save()
}

func (m model) Init() tea.Cmd {
	return waitArtifact(m.session.Updates())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.exitState != ExitStateNone {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case artifactMsg:
		m.art = assemble.Artifact(msg)
		m.preview.SetContent(m.art.Text)
		// a rebuild may follow a directory change
		m.refresh()
		return m, waitArtifact(m.session.Updates())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.exitState = ExitStateAbort
			return m, tea.Quit
		}
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeFilter:
			return m.updateFilter(msg)
		case modeFind:
			return m.updateFind(msg)
		default:
			return m.updateTree(msg)
		}
	}

	// cursor blinks and the like
	var cmd tea.Cmd
	switch m.mode {
	case modePrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case modeFilter, modeFind:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		m.exitState = ExitStateSave
		return m, tea.Quit

	case "up", "k":
		m.moveTo(m.cursor - 1)

	case "down", "j":
		m.moveTo(m.cursor + 1)

	case "home":
		m.moveTo(0)

	case "end":
		m.moveTo(len(m.rows) - 1)

	case "right", "l":
		if r, ok := m.current(); ok && r.Kind == tree.Directory {
			m.check(m.session.Expand(r.Path))
			m.refresh()
		}

	case "left", "h":
		r, ok := m.current()
		if !ok {
			break
		}
		if r.Kind == tree.Directory && r.Expanded {
			m.check(m.session.Collapse(r.Path))
			m.refresh()
		} else {
			m.moveTo(parentRow(m.rows, m.cursor))
		}

	case " ":
		if r, ok := m.current(); ok {
			_, err := m.session.Toggle(r.Path)
			m.check(err)
			m.refresh()
		}

	case ".":
		m.hideDot = !m.hideDot
		m.applyFilter()

	case "_":
		m.hideDunder = !m.hideDunder
		m.applyFilter()

	case "p":
		m.mode = modePrompt
		m.prompt.SetValue(m.promptText)
		return m, m.prompt.Focus()

	case "f":
		m.mode = modeFilter
		m.input.Placeholder = "Extensions, e.g. .go, .md"
		m.input.SetValue(m.filterText)
		return m, m.input.Focus()

	case "/":
		m.mode = modeFind
		m.findFrom = m.cursor
		m.input.Placeholder = "Type to fuzzy-find a loaded path..."
		m.input.SetValue("")
		return m, m.input.Focus()

	case "y":
		if err := clipboard.WriteAll(m.art.Text); err != nil {
			m.err = err
		} else {
			m.status = "Output copied to clipboard"
		}

	case "pgup":
		m.preview.HalfViewUp()

	case "pgdown":
		m.preview.HalfViewDown()
	}
	return m, nil
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.promptText = m.prompt.Value()
		m.check(m.session.SetPrompt(m.promptText))
		m.prompt.Blur()
		m.mode = modeTree
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterText = m.input.Value()
		m.applyFilter()
		fallthrough
	case "esc":
		m.input.Blur()
		m.mode = modeTree
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateFind(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.moveTo(m.findFrom)
		fallthrough
	case "enter":
		m.input.Blur()
		m.mode = modeTree
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if i := findRow(m.rows, m.input.Value()); i >= 0 {
		m.moveTo(i)
	}
	return m, cmd
}

// check records the error of a session call for the status line.
func (m *model) check(err error) {
	if err != nil {
		m.err = err
	}
}

func (m *model) applyFilter() {
	m.check(m.session.SetFilter(m.filterText, m.hideDot, m.hideDunder))
	m.refresh()
}

func (m *model) current() (tree.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return tree.Row{}, false
	}
	return m.rows[m.cursor], true
}

// refresh re-reads the rows, keeping the cursor on the same path when it is
// still shown.
func (m *model) refresh() {
	var path string
	if r, ok := m.current(); ok {
		path = r.Path
	}
	rows, err := m.session.Rows()
	if err != nil {
		m.err = err
		return
	}
	m.rows = rows
	for i, r := range rows {
		if r.Path == path {
			m.cursor = i
			break
		}
	}
	m.moveTo(m.cursor)
}

func (m *model) moveTo(i int) {
	m.cursor = max(0, min(i, len(m.rows)-1))
	m.renderTree()
	m.ensureCursorVisible()
}

func (m *model) renderTree() {
	var sb strings.Builder
	for i, r := range m.rows {
		line := "  " + formatRow(r)
		if i == m.cursor {
			line = cursorStyle.Render("> " + formatRow(r))
		}
		sb.WriteString(line + "\n")
	}
	m.tree.SetContent(sb.String())
}

// ensureCursorVisible makes sure the cursor is visible in the tree viewport
func (m *model) ensureCursorVisible() {
	if m.tree.Height <= 0 {
		return
	}
	top := m.tree.YOffset
	bottom := top + m.tree.Height - 1
	if m.cursor < top {
		m.tree.SetYOffset(m.cursor)
	} else if m.cursor > bottom {
		m.tree.SetYOffset(m.cursor - m.tree.Height + 1)
	}
}

func (m *model) resize(width, height int) {
	const headerHeight, footerHeight = 2, 3
	bodyHeight := max(1, height-headerHeight-footerHeight)
	treeWidth := width / 2
	previewWidth := max(1, width-treeWidth-paneStyle.GetHorizontalFrameSize())

	m.tree.Width = treeWidth
	m.tree.Height = bodyHeight
	m.preview.Width = previewWidth
	m.preview.Height = bodyHeight
	m.prompt.SetWidth(previewWidth)
	m.prompt.SetHeight(bodyHeight)
	m.input.Width = max(1, width-4)

	if !m.ready {
		m.preview.SetContent(m.art.Text)
		m.ready = true
	}
	m.renderTree()
	m.ensureCursorVisible()
}

func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var header string
	switch m.mode {
	case modeFilter, modeFind:
		header = m.input.View()
	default:
		header = fmt.Sprintf("Filter: %s  Hide dot: %v  Hide __: %v", orNone(m.filterText), m.hideDot, m.hideDunder)
	}

	right := m.preview.View()
	if m.mode == modePrompt {
		right = m.prompt.View()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.tree.View(), paneStyle.Render(right))

	status := statusLine(m.art)
	switch {
	case m.err != nil:
		status += "  " + errorStyle.Render(m.err.Error())
	case m.status != "":
		status += "  " + m.status
	}
	hint := usageHint
	if m.mode == modePrompt {
		hint = "(Esc to finish editing the prompt)"
	}
	return fmt.Sprintf("%s\n\n%s\n%s\n%s", header, body, status, dimStyle.Render(hint))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(all files)"
	}
	return s
}

// parentRow finds the row of the directory containing rows[i], or i itself
// for a root.
func parentRow(rows []tree.Row, i int) int {
	if i < 0 || i >= len(rows) {
		return i
	}
	depth := rows[i].Depth
	for j := i - 1; j >= 0; j-- {
		if rows[j].Depth < depth {
			return j
		}
	}
	return i
}

// findRow returns the index of the best fuzzy match of term among the row
// paths, or -1.
func findRow(rows []tree.Row, term string) int {
	if term == "" {
		return -1
	}
	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.Path
	}
	matches := fuzzy.Find(term, paths)
	if len(matches) == 0 {
		return -1
	}
	return matches[0].Index
}
