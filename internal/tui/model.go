// Package tui is the terminal front end: a library browser and a paged
// reader built on bubbletea.
package tui

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/metcalfc/peadz/internal/catalog"
	"github.com/metcalfc/peadz/internal/reader"
	"github.com/metcalfc/peadz/internal/state"
)

// Mode is what keystrokes currently drive.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeAdd
	ModeNewFolder
	ModeConfirmDelete
	ModeConfirmDeleteFolder
	ModeGoTo
)

// Options configures a Model.
type Options struct {
	Catalog       *catalog.Catalog
	Marks         state.MarkStore // may be nil
	KeyStrategy   state.KeyStrategy
	DefaultFolder string
	BookMode      bool
	Log           *logrus.Entry
}

// catalogChangedMsg is sent by Run whenever the catalog reports a change.
type catalogChangedMsg catalog.Change

// Model is the bubbletea model for both the library and reader screens.
type Model struct {
	opts Options
	keys KeyMap
	log  *logrus.Entry

	mode    Mode
	folder  string // catalog.AllFolders shows everything
	entries []catalog.Entry
	cursor  int
	input   textinput.Model
	status  string

	// Reader screen. open is true while a document is shown; session is nil
	// when it could not be opened and placeholder says why.
	open        bool
	session     *reader.Session
	placeholder string

	width    int
	height   int
	quitting bool
}

// New builds the model and loads the first page of the library.
func New(opts Options) Model {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}

	input := textinput.New()
	input.CharLimit = 1024
	input.Width = 60

	m := Model{
		opts:   opts,
		keys:   DefaultKeyMap(),
		log:    log.WithField("component", "tui"),
		folder: catalog.AllFolders,
		input:  input,
		width:  80,
		height: 24,
	}
	m.refresh()
	return m
}

// Mode returns the current input mode.
func (m Model) Mode() Mode { return m.mode }

// Folder returns the folder filter, or catalog.AllFolders.
func (m Model) Folder() string { return m.folder }

// Entries returns the documents currently listed.
func (m Model) Entries() []catalog.Entry { return m.entries }

// Cursor returns the highlighted row.
func (m Model) Cursor() int { return m.cursor }

// Session returns the open reading session, if any.
func (m Model) Session() *reader.Session { return m.session }

// Reading reports whether the reader screen is showing.
func (m Model) Reading() bool { return m.open }

// Status returns the last status message.
func (m Model) Status() string { return m.status }

func (m *Model) refresh() {
	if m.folder != catalog.AllFolders && !slices.Contains(m.opts.Catalog.Folders(), m.folder) {
		m.folder = catalog.AllFolders
	}
	m.entries = m.opts.Catalog.List(m.folder)
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) current() (catalog.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return catalog.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case catalogChangedMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode != ModeBrowse {
			return m.updateModal(msg)
		}
		if m.open {
			return m.updateReader(msg)
		}
		return m.updateLibrary(msg)
	}

	return m, nil
}

func (m Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.CycleFolder):
		m.cycleFolder()

	case key.Matches(msg, m.keys.Add):
		return m, m.prompt(ModeAdd, "path/to/document.pdf", "")

	case key.Matches(msg, m.keys.NewFolder):
		return m, m.prompt(ModeNewFolder, "folder name", "")

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.current(); ok {
			m.mode = ModeConfirmDelete
		}

	case key.Matches(msg, m.keys.DeleteFolder):
		if m.folder != catalog.AllFolders {
			m.mode = ModeConfirmDeleteFolder
		}

	case key.Matches(msg, m.keys.Open):
		if e, ok := m.current(); ok {
			m.openEntry(e)
		}
	}
	return m, nil
}

func (m Model) updateReader(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.closeReader()
		return m, nil
	}
	if m.session == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextPage):
		m.session.Next()
	case key.Matches(msg, m.keys.PrevPage):
		m.session.Prev()
	case key.Matches(msg, m.keys.Book):
		m.session.ToggleBookMode()
	case key.Matches(msg, m.keys.GoTo):
		return m, m.prompt(ModeGoTo, "page", m.session.PageInput)
	}
	return m, nil
}

func (m *Model) prompt(mode Mode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.status = ""
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	return m.input.Focus()
}

// updateModal handles keys while a prompt or confirmation is showing.
func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeConfirmDelete, ModeConfirmDeleteFolder:
		if msg.String() == "y" || msg.String() == "Y" {
			m.confirm()
		}
		m.mode = ModeBrowse
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == ModeGoTo && m.session != nil {
			m.session.SubmitInput("")
		}
		m.endPrompt()
		return m, nil
	case tea.KeyEnter:
		m.submit(m.input.Value())
		m.endPrompt()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == ModeGoTo {
		m.input.SetValue(reader.FilterInput(m.input.Value()))
		m.session.PageInput = m.input.Value()
	}
	return m, cmd
}

func (m *Model) endPrompt() {
	m.mode = ModeBrowse
	m.input.Blur()
}

func (m *Model) submit(value string) {
	switch m.mode {
	case ModeAdd:
		m.addDocument(strings.TrimSpace(value))
	case ModeNewFolder:
		m.newFolder(value)
	case ModeGoTo:
		if m.session != nil && !m.session.SubmitInput(value) {
			m.status = fmt.Sprintf("No page %q", value)
		}
	}
}

func (m *Model) addDocument(path string) {
	if path == "" {
		return
	}
	if _, ok := reader.Lookup(path); !ok {
		m.status = fmt.Sprintf("%s: %v", filepath.Base(path), reader.ErrUnsupportedFormat)
		return
	}

	folder := m.folder
	if folder == catalog.AllFolders {
		folder = m.opts.DefaultFolder
	}
	e, err := m.opts.Catalog.Add(path, folder)
	var perr *catalog.PersistError
	switch {
	case errors.Is(err, catalog.ErrDuplicateEntry):
		m.status = fmt.Sprintf("%s is already in the library", e.DisplayName)
	case errors.As(err, &perr):
		m.status = fmt.Sprintf("Added %s but could not save the library", e.DisplayName)
	case err != nil:
		m.status = fmt.Sprintf("Could not add %s: %v", filepath.Base(path), err)
		return
	default:
		m.status = fmt.Sprintf("Added %s", e.DisplayName)
	}

	m.refresh()
	for i, x := range m.entries {
		if x.ID == e.ID {
			m.cursor = i
		}
	}
}

func (m *Model) newFolder(name string) {
	name = strings.TrimSpace(name)
	if err := m.opts.Catalog.CreateFolder(name); err != nil {
		m.status = err.Error()
		return
	}
	m.folder = name
	m.cursor = 0
	m.refresh()
}

func (m *Model) confirm() {
	var err error
	switch m.mode {
	case ModeConfirmDelete:
		e, ok := m.current()
		if !ok {
			return
		}
		err = m.opts.Catalog.DeleteEntry(e.ID)
		m.status = fmt.Sprintf("Removed %s", e.DisplayName)
	case ModeConfirmDeleteFolder:
		name := m.folder
		err = m.opts.Catalog.DeleteFolder(name)
		m.folder = catalog.AllFolders
		m.status = fmt.Sprintf("Removed folder %s", name)
	}
	if err != nil {
		m.status = "Could not save the library: " + err.Error()
	}
	m.refresh()
}

func (m *Model) cycleFolder() {
	options := append([]string{catalog.AllFolders}, m.opts.Catalog.Folders()...)
	next := 0
	for i, f := range options {
		if f == m.folder {
			next = (i + 1) % len(options)
			break
		}
	}
	m.folder = options[next]
	m.cursor = 0
	m.refresh()
}

func (m *Model) openEntry(e catalog.Entry) {
	m.opts.Catalog.Select(e.ID)
	m.open = true
	m.session = nil
	m.placeholder = ""
	m.status = ""

	doc, err := reader.Inspect(e.Location)
	if err != nil {
		m.log.WithError(err).WithField("location", e.Location).Warn("cannot open document")
		m.placeholder = fmt.Sprintf("%s cannot be displayed: %v", e.DisplayName, err)
		return
	}

	markKey, err := state.KeyFor(e.Location, m.opts.KeyStrategy)
	if err != nil {
		m.log.WithError(err).Debug("falling back to base name key")
		markKey = state.Key(e.Location)
	}
	s := reader.NewSession(doc, m.opts.Marks, markKey, m.opts.Log)
	s.BookMode = m.opts.BookMode
	m.session = s
}

func (m *Model) closeReader() {
	m.opts.Catalog.Deselect()
	m.open = false
	m.session = nil
	m.placeholder = ""
	m.refresh()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.open {
		return m.readerView()
	}
	return m.libraryView()
}

func (m Model) libraryView() string {
	var sb strings.Builder

	filter := "All"
	if m.folder != catalog.AllFolders {
		filter = m.folder
	}
	sb.WriteString(titleStyle.Render("peadz"))
	sb.WriteString(folderStyle.Render(filter))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("%d documents", len(m.entries))))
	sb.WriteString("\n\n")

	if len(m.entries) == 0 {
		sb.WriteString(dimStyle.Render("  No documents. Press a to add one."))
		sb.WriteString("\n")
	}

	// Keep the cursor on screen: header, blank, prompt and controls take 5 lines.
	rows := m.height - 5
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(m.entries) && i < start+rows; i++ {
		e := m.entries[i]
		line := "  " + e.DisplayName
		if i == m.cursor {
			line = cursorStyle.Render("> ") + e.DisplayName
		}
		if e.Folder != "" && m.folder == catalog.AllFolders {
			line += " " + dimStyle.Render("["+e.Folder+"]")
		}
		if page, ok := m.lastPage(e); ok {
			line += " " + dimStyle.Render(fmt.Sprintf("p. %d", page+1))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.promptView())
	sb.WriteString("\n")
	sb.WriteString(controlsStyle.Render(helpLine(m.keys.Open, m.keys.Add, m.keys.NewFolder,
		m.keys.CycleFolder, m.keys.Delete, m.keys.DeleteFolder, m.keys.Quit)))
	return sb.String()
}

func (m Model) lastPage(e catalog.Entry) (int, bool) {
	if m.opts.Marks == nil {
		return 0, false
	}
	markKey, err := state.KeyFor(e.Location, m.opts.KeyStrategy)
	if err != nil {
		return 0, false
	}
	return m.opts.Marks.Get(markKey)
}

func (m Model) promptView() string {
	switch m.mode {
	case ModeAdd:
		return promptStyle.Render("Add: ") + m.input.View()
	case ModeNewFolder:
		return promptStyle.Render("New folder: ") + m.input.View()
	case ModeGoTo:
		return promptStyle.Render("Go to page: ") + m.input.View()
	case ModeConfirmDelete:
		if e, ok := m.current(); ok {
			return promptStyle.Render(fmt.Sprintf("Remove %s from the library? (y/n)", e.DisplayName))
		}
	case ModeConfirmDeleteFolder:
		return promptStyle.Render(fmt.Sprintf("Remove folder %s and all its documents? (y/n)", m.folder))
	}
	return statusStyle.Render(m.status)
}

func (m Model) readerView() string {
	if m.session == nil {
		return placeholderStyle.Render(m.placeholder) + "\n\n" +
			controlsStyle.Render(helpLine(m.keys.Close))
	}
	s := m.session

	current, total := s.Progress()
	layout := "single page"
	if s.BookMode {
		layout = "book"
	}
	status := statusStyle.Render(fmt.Sprintf("%s | Page %d of %d | %s", s.Title, current, total, layout))

	// Reserve 3 lines: status, prompt and controls.
	avail := m.height - 3
	if avail < 3 {
		avail = 3
	}
	spread := s.Spread()
	w := (m.width - 2) / len(spread)
	if w < 8 {
		w = 8
	}
	pages := make([]string, len(spread))
	for i, p := range spread {
		pages[i] = pageStyle.Width(w - 2).Height(avail - 2).Render(fmt.Sprintf("%d", p+1))
	}

	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString("\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, pages...))
	sb.WriteString("\n")
	if m.mode == ModeBrowse && s.AtEnd() && m.status == "" {
		sb.WriteString(completeStyle.Render("End of document"))
	} else {
		sb.WriteString(m.promptView())
	}
	sb.WriteString("\n")
	sb.WriteString(controlsStyle.Render(helpLine(m.keys.PrevPage, m.keys.NextPage, m.keys.Book, m.keys.GoTo, m.keys.Close)))
	return sb.String()
}
