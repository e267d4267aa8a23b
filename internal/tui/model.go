// Package tui provides the full-screen editor: a token prompt, a database
// list, a page list and a plain-text editor bound to one Notion page.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/natikgadzhi/notion-editor/internal/document"
	"github.com/natikgadzhi/notion-editor/internal/notion"
)

// Backend is the subset of notion.Client the editor drives.
type Backend interface {
	Authenticated() bool
	SetToken(token string)
	ListDatabases(ctx context.Context) ([]notion.DatabaseSummary, error)
	QueryDatabase(ctx context.Context, databaseID string) ([]notion.PageSummary, error)
	OpenPage(ctx context.Context, pageID string) (string, error)
	SaveCurrentPage(ctx context.Context, content string) error
}

// Options configures the editor.
type Options struct {
	// SaveToken persists a token entered at the prompt. Nil keeps it for
	// this session only.
	SaveToken func(token string) error
	// Files reads and writes local files opened from the editor. Nil uses
	// document.New(false, Logger).
	Files  *document.Files
	Logger *slog.Logger
}

// view is the screen currently shown.
type view int

const (
	viewToken view = iota
	viewDatabases
	viewPages
	viewEditor
)

// Status messages shown after each operation.
const (
	statusDatabasesLoaded = "Databases loaded successfully"
	statusPagesLoaded     = "Pages loaded successfully"
	statusContentLoaded   = "Page content loaded"
	statusSaved           = "Content saved to Notion"
	statusNoPage          = "No page selected"
	statusFileLoaded      = "File loaded locally"
	statusFileSaved       = "File saved locally"
)

// pathAction is what the path prompt does with the entered path.
type pathAction int

const (
	pathNone pathAction = iota
	pathOpen
	pathSave
)

// entry is a database or page row in a list.
type entry struct {
	id    string
	title string
}

func (e entry) Title() string       { return e.title }
func (e entry) Description() string { return e.id }
func (e entry) FilterValue() string { return e.title }

// Messages carrying results of remote operations.
type (
	databasesLoadedMsg struct {
		databases []notion.DatabaseSummary
		err       error
	}

	pagesLoadedMsg struct {
		pages []notion.PageSummary
		err   error
	}

	contentLoadedMsg struct {
		page    entry
		content string
		err     error
	}

	savedMsg struct {
		err error
	}

	tokenSavedMsg struct {
		err error
	}

	fileLoadedMsg struct {
		path    string
		content string
		err     error
	}

	fileSavedMsg struct {
		path string
		err  error
	}
)

// Model is the Bubble Tea model for the editor.
type Model struct {
	ctx     context.Context
	backend Backend
	opts    Options
	logger  *slog.Logger
	files   *document.Files

	view        view
	tokenInput  textinput.Model
	databases   list.Model
	pages       list.Model
	editor      textarea.Model
	spinner     spinner.Model
	loading     bool
	status      string
	statusError bool

	database entry
	page     entry

	// Local file shown in the editor, set by opening or saving one.
	filePath   string
	pathInput  textinput.Model
	pathAction pathAction

	width    int
	height   int
	quitting bool

	// Styles
	headerStyle lipgloss.Style
	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
	dimStyle    lipgloss.Style
	helpStyle   lipgloss.Style
}

// New creates the editor model. It starts at the token prompt when backend
// has no token and at the database list otherwise.
func New(ctx context.Context, backend Backend, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	files := opts.Files
	if files == nil {
		files = document.New(false, logger)
	}

	ti := textinput.New()
	ti.Placeholder = "secret_..."
	ti.Prompt = "Notion token> "
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 0

	databases := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	databases.Title = "Databases"
	databases.SetShowHelp(false)

	pages := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	pages.SetShowHelp(false)

	pi := textinput.New()
	pi.Placeholder = "path/to/file.txt"
	pi.CharLimit = 0

	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = true
	ta.Placeholder = "Empty page"

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		ctx:        ctx,
		backend:    backend,
		opts:       opts,
		logger:     logger,
		files:      files,
		tokenInput: ti,
		pathInput:  pi,
		databases:  databases,
		pages:      pages,
		editor:     ta,
		spinner:    s,

		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		dimStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		helpStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	}

	if backend.Authenticated() {
		m.view = viewDatabases
		m.loading = true
	} else {
		m.view = viewToken
		m.tokenInput.Focus()
	}
	return m
}

// Init starts loading databases when a token is already known.
func (m Model) Init() tea.Cmd {
	if m.view == viewToken {
		return textinput.Blink
	}
	return tea.Batch(m.spinner.Tick, m.loadDatabases())
}

func (m Model) loadDatabases() tea.Cmd {
	return func() tea.Msg {
		dbs, err := m.backend.ListDatabases(m.ctx)
		return databasesLoadedMsg{databases: dbs, err: err}
	}
}

func (m Model) loadPages(databaseID string) tea.Cmd {
	return func() tea.Msg {
		pages, err := m.backend.QueryDatabase(m.ctx, databaseID)
		return pagesLoadedMsg{pages: pages, err: err}
	}
}

func (m Model) openPage(page entry) tea.Cmd {
	return func() tea.Msg {
		content, err := m.backend.OpenPage(m.ctx, page.id)
		return contentLoadedMsg{page: page, content: content, err: err}
	}
}

func (m Model) saveContent(content string) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: m.backend.SaveCurrentPage(m.ctx, content)}
	}
}

func (m Model) openFile(path string) tea.Cmd {
	files := m.files
	return func() tea.Msg {
		content, err := files.Read(path)
		return fileLoadedMsg{path: path, content: content, err: err}
	}
}

func (m Model) saveFile(path, content string) tea.Cmd {
	files := m.files
	return func() tea.Msg {
		return fileSavedMsg{path: path, err: files.Write(path, content)}
	}
}

func (m Model) saveToken(token string) tea.Cmd {
	if m.opts.SaveToken == nil {
		return nil
	}
	save := m.opts.SaveToken
	return func() tea.Msg {
		return tokenSavedMsg{err: save(token)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case databasesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		items := make([]list.Item, 0, len(msg.databases))
		for _, db := range msg.databases {
			items = append(items, entry{id: db.ID, title: db.Title})
		}
		cmd := m.databases.SetItems(items)
		m.setStatus(statusDatabasesLoaded)
		return m, cmd

	case pagesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		items := make([]list.Item, 0, len(msg.pages))
		for _, p := range msg.pages {
			items = append(items, entry{id: p.ID, title: p.Title})
		}
		cmd := m.pages.SetItems(items)
		m.setStatus(statusPagesLoaded)
		return m, cmd

	case contentLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.page = msg.page
		m.filePath = ""
		m.view = viewEditor
		m.editor.SetValue(msg.content)
		m.setStatus(statusContentLoaded)
		return m, m.editor.Focus()

	case savedMsg:
		m.loading = false
		if errors.Is(msg.err, notion.ErrNoPageSelected) {
			m.setError(statusNoPage)
			return m, nil
		}
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.setStatus(statusSaved)
		return m, nil

	case fileLoadedMsg:
		if msg.err != nil {
			m.logger.Debug("opening file failed", "path", msg.path, "error", msg.err)
			m.setError("Error opening file: " + msg.err.Error())
			return m, nil
		}
		m.filePath = msg.path
		m.editor.SetValue(msg.content)
		m.setStatus(statusFileLoaded)
		return m, nil

	case fileSavedMsg:
		if msg.err != nil {
			m.logger.Debug("saving file failed", "path", msg.path, "error", msg.err)
			m.setError("Error saving file: " + msg.err.Error())
			return m, nil
		}
		m.filePath = msg.path
		m.setStatus(statusFileSaved)
		return m, nil

	case tokenSavedMsg:
		if msg.err != nil {
			m.logger.Warn("saving token failed", "error", msg.err)
			m.setError("Error: saving token: " + msg.err.Error())
		}
		return m, nil
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case viewToken:
		if msg.String() == "enter" {
			token := strings.TrimSpace(m.tokenInput.Value())
			if token == "" {
				m.setError("Error: token must not be empty")
				return m, nil
			}
			m.backend.SetToken(token)
			m.tokenInput.Reset()
			m.tokenInput.Blur()
			m.view = viewDatabases
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadDatabases(), m.saveToken(token))
		}

	case viewDatabases:
		if m.databases.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			selected, ok := m.databases.SelectedItem().(entry)
			if !ok {
				return m, nil
			}
			m.database = selected
			m.pages.Title = selected.title
			m.pages.ResetFilter()
			m.view = viewPages
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadPages(selected.id))
		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadDatabases())
		}

	case viewPages:
		if m.pages.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			selected, ok := m.pages.SelectedItem().(entry)
			if !ok {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.openPage(selected))
		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadPages(m.database.id))
		case "esc":
			m.view = viewDatabases
			return m, nil
		}

	case viewEditor:
		if m.pathAction != pathNone {
			return m.handlePathKey(msg)
		}
		switch msg.String() {
		case "ctrl+s":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.saveContent(m.editor.Value()))
		case "ctrl+o":
			return m.promptPath(pathOpen)
		case "ctrl+e":
			return m.promptPath(pathSave)
		case "esc":
			m.editor.Blur()
			m.view = viewPages
			return m, nil
		}
	}

	return m.forward(msg)
}

// promptPath asks for a local file path. Saving starts from the file last
// opened or saved.
func (m Model) promptPath(action pathAction) (tea.Model, tea.Cmd) {
	m.pathAction = action
	m.pathInput.Reset()
	if action == pathOpen {
		m.pathInput.Prompt = "Open file> "
	} else {
		m.pathInput.Prompt = "Save file> "
		m.pathInput.SetValue(m.filePath)
	}
	m.editor.Blur()
	return m, m.pathInput.Focus()
}

func (m Model) handlePathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pathAction = pathNone
		m.pathInput.Blur()
		return m, m.editor.Focus()
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			m.setError("Error: path must not be empty")
			return m, nil
		}
		action := m.pathAction
		m.pathAction = pathNone
		m.pathInput.Blur()
		focus := m.editor.Focus()
		if action == pathOpen {
			return m, tea.Batch(focus, m.openFile(path))
		}
		return m, tea.Batch(focus, m.saveFile(path, m.editor.Value()))
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

// forward passes msg to the component owning the current view.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewToken:
		m.tokenInput, cmd = m.tokenInput.Update(msg)
	case viewDatabases:
		m.databases, cmd = m.databases.Update(msg)
	case viewPages:
		m.pages, cmd = m.pages.Update(msg)
	case viewEditor:
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

// fail reports err on the status line. A missing token sends the user back
// to the prompt.
func (m Model) fail(err error) Model {
	m.logger.Debug("operation failed", "error", err)
	if errors.Is(err, notion.ErrUnauthenticated) {
		m.view = viewToken
		m.tokenInput.Focus()
	}
	m.setError("Error: " + err.Error())
	return m
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusError = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusError = true
}

func (m *Model) resize() {
	// header, status line and help line
	bodyHeight := max(m.height-4, 3)
	m.databases.SetSize(m.width, bodyHeight)
	m.pages.SetSize(m.width, bodyHeight)
	m.editor.SetWidth(m.width)
	m.editor.SetHeight(bodyHeight)
	m.tokenInput.Width = max(m.width-len(m.tokenInput.Prompt)-1, 10)
	m.pathInput.Width = max(m.width-len("Save file> ")-1, 10)
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.headerStyle.Render(m.header()))
	b.WriteString("\n")

	switch m.view {
	case viewToken:
		b.WriteString("\nEnter your Notion integration token.\n\n")
		b.WriteString(m.tokenInput.View())
		b.WriteString("\n")
	case viewDatabases:
		b.WriteString(m.databases.View())
		b.WriteString("\n")
	case viewPages:
		b.WriteString(m.pages.View())
		b.WriteString("\n")
	case viewEditor:
		b.WriteString(m.editor.View())
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.view == viewEditor && m.pathAction != pathNone {
		b.WriteString(m.pathInput.View())
	} else {
		b.WriteString(m.helpStyle.Render(m.help()))
	}

	return b.String()
}

func (m Model) header() string {
	switch m.view {
	case viewToken:
		return "Notion Editor"
	case viewPages:
		return "Notion Editor › " + m.database.title
	case viewEditor:
		title := "Notion Editor › " + m.database.title + " › " + m.page.title
		if m.filePath != "" {
			title += " · " + document.Title(m.filePath)
		}
		return title
	default:
		return "Notion Editor"
	}
}

func (m Model) statusLine() string {
	var parts []string
	if m.loading {
		parts = append(parts, m.spinner.View()+" Loading...")
	}
	if m.status != "" {
		if m.statusError {
			parts = append(parts, m.errorStyle.Render(m.status))
		} else {
			parts = append(parts, m.statusStyle.Render(m.status))
		}
	}
	if m.view == viewEditor {
		parts = append(parts, m.dimStyle.Render(fmt.Sprintf("Lines: %d", document.CountLines(m.editor.Value()))))
	}
	return strings.Join(parts, m.dimStyle.Render(" | "))
}

func (m Model) help() string {
	switch m.view {
	case viewToken:
		return "enter: save token • ctrl+c: quit"
	case viewDatabases:
		return "enter: open • r: refresh • /: filter • ctrl+c: quit"
	case viewPages:
		return "enter: edit • r: refresh • esc: back • /: filter • ctrl+c: quit"
	case viewEditor:
		return "ctrl+s: save to Notion • ctrl+o: open file • ctrl+e: save file • esc: back • ctrl+c: quit"
	}
	return ""
}
