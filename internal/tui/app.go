// Package tui is the terminal front end. It maps keys to session intents,
// runs the resulting tasks as bubbletea commands and renders snapshots.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/dbnav/internal/config"
	"github.com/joacominatel/dbnav/internal/database"
	"github.com/joacominatel/dbnav/internal/session"
	"github.com/joacominatel/dbnav/internal/tui/editor"
	"github.com/joacominatel/dbnav/internal/tui/form"
	"github.com/joacominatel/dbnav/internal/tui/picker"
	"github.com/joacominatel/dbnav/internal/tui/results"
	"github.com/joacominatel/dbnav/internal/tui/statusbar"
)

// Custom messages for async operations.
type (
	outcomeMsg struct {
		outcome session.Outcome
	}
	profileLoadedMsg struct {
		name string
		form database.Form
		err  error
	}
)

// Model is the top-level bubbletea model.
type Model struct {
	ctrl           *session.Controller
	state          session.State
	profiles       []config.Connection
	defaultBackend database.Kind
	defaultProfile string

	picker    picker.Model
	form      form.Model
	editor    editor.Model
	results   results.Model
	describe  results.Model
	statusbar statusbar.Model

	// editorFocused is the query screen's focus: editor or results grid.
	editorFocused bool
	profileIdx    int
	showHelp      bool
	width         int
	height        int
}

// NewModel creates the top-level model around a controller.
func NewModel(ctrl *session.Controller, cfg *config.Config) Model {
	m := Model{
		ctrl:       ctrl,
		picker:     picker.New(""),
		form:       form.New(),
		editor:     editor.New(),
		results:    results.New("Results"),
		describe:   results.New(""),
		statusbar:  statusbar.New(),
		profileIdx: -1,
	}
	if cfg != nil {
		m.profiles = cfg.Connections
		m.defaultBackend = database.Kind(cfg.Preferences.DefaultBackend)
		if def := cfg.DefaultConnection(); def != nil {
			m.defaultProfile = def.Name
		}
	}
	m.apply(ctrl.Snapshot())
	return m
}

// State returns the snapshot the model last rendered.
func (m Model) State() session.State {
	return m.state
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.statusbar.Init(), m.form.Init())
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.statusbar, cmd = m.statusbar.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case outcomeMsg:
		cmd := m.apply(m.ctrl.Resolve(msg.outcome))
		return m, cmd

	case picker.ChosenMsg:
		return m.submit(session.SelectionMade{Value: msg.Value})

	case form.SubmitMsg:
		return m.submit(session.ConnectionSubmitted{Form: msg.Form})

	case form.SubmitTargetMsg:
		return m.submit(session.TextSubmitted{Text: msg.Target})

	case editor.SubmitMsg:
		return m.submit(session.TextSubmitted{Text: msg.SQL})

	case results.SetEditorQueryMsg:
		m.editor.SetQuery(msg.Query)
		m.focusEditor(true)
		return m, nil

	case results.StatusNotifyMsg:
		m.statusbar.SetMessage(msg.Message)
		return m, nil

	case profileLoadedMsg:
		if msg.err != nil {
			m.statusbar.SetMessage("Profile " + msg.name + ": " + msg.err.Error())
		}
		m.form.SetForm(msg.form)
		m.form.SetProfile(msg.name)
		return m, nil
	}

	return m.forward(msg)
}

// submit hands an intent to the controller and schedules its task, if any.
func (m Model) submit(in session.Intent) (tea.Model, tea.Cmd) {
	state, task := m.ctrl.Submit(in)
	cmd := m.apply(state)
	if state.Done() {
		return m, tea.Quit
	}
	if task != nil {
		return m, tea.Batch(cmd, runTask(task))
	}
	return m, cmd
}

func runTask(task *session.Task) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg{outcome: task.Run(context.Background())}
	}
}

// apply renders a new snapshot into the components.
func (m *Model) apply(s session.State) tea.Cmd {
	prev := m.state
	m.state = s
	entered := prev.Screen != s.Screen || prev.Kinds == nil

	var cmd tea.Cmd
	switch s.Screen {
	case session.ScreenSelectBackend:
		if entered {
			m.picker = picker.New("Choose a backend")
			m.picker.SetItems(backendItems(s.Kinds))
			m.picker.Select(string(m.defaultBackend))
		}

	case session.ScreenInputConnection:
		if entered && prev.Screen == session.ScreenSelectBackend {
			m.form.Reset(s.Kind, s.Form)
			m.profileIdx = -1
			cmd = m.loadDefaultProfile(s.Kind)
		}
		if entered && prev.Screen == session.ScreenError {
			m.form.SetForm(s.Form)
		}
		m.form.SetNotice(s.Notice)

	case session.ScreenSelectDatabase:
		if entered {
			m.picker = picker.New("Databases")
		}
		m.picker.SetEmptyText("No databases visible to this user")
		m.picker.SetItems(databaseItems(s.Databases))
		if entered {
			m.picker.Select(s.Config.Database)
		}

	case session.ScreenListTables:
		if entered {
			m.picker = picker.New("Tables in " + s.Database.Name)
		}
		m.picker.SetEmptyText("No tables")
		m.picker.SetItems(tableItems(s.Tables))
		names := make([]string, len(s.Tables))
		for i, t := range s.Tables {
			names[i] = t.QualifiedName()
		}
		m.editor.SetTableNames(names)

	case session.ScreenDescribeTable:
		if entered {
			m.describe = results.New(s.Table.QualifiedName())
			m.describe.SetColumns(s.Columns)
			m.describe.SetFocused(true)
		}

	case session.ScreenQueryResult:
		if entered {
			m.results.Clear()
			m.focusEditor(true)
		}
		switch {
		case s.Err != nil:
			m.results.SetError(s.ErrorMessage())
		case s.Result != nil:
			m.results.SetResult(s.Result, s.SQL)
		}
	}

	m.statusbar.SetConnection(s.Connected, s.Config.String())
	m.statusbar.SetScreen(s.Screen.String())
	m.statusbar.SetBusy(s.Busy())
	m.statusbar.SetHints(hints(s))
	switch {
	case s.Notice != "" && s.Screen != session.ScreenInputConnection:
		m.statusbar.SetMessage(s.Notice)
	case entered || s.Busy():
		m.statusbar.SetMessage("")
	}
	m.layout()
	return cmd
}

func (m *Model) focusEditor(f bool) {
	m.editorFocused = f
	m.editor.SetFocused(f)
	m.results.SetFocused(!f)
}

// loadDefaultProfile pre-fills the form from the default profile when it
// matches the chosen backend.
func (m *Model) loadDefaultProfile(kind database.Kind) tea.Cmd {
	for i, p := range m.profiles {
		if p.Name == m.defaultProfile && p.Kind() == kind {
			m.profileIdx = i
			return loadProfile(p)
		}
	}
	return nil
}

// nextProfile cycles through the profiles of the chosen backend.
func (m *Model) nextProfile() tea.Cmd {
	n := len(m.profiles)
	for step := 1; step <= n; step++ {
		i := (m.profileIdx + step) % n
		if i < 0 {
			i += n
		}
		if m.profiles[i].Kind() == m.state.Kind {
			m.profileIdx = i
			return loadProfile(m.profiles[i])
		}
	}
	m.statusbar.SetMessage("No " + m.state.Kind.Label() + " profiles configured")
	return nil
}

// loadProfile resolves the profile password off the UI thread; the keyring
// may block on a desktop prompt.
func loadProfile(p config.Connection) tea.Cmd {
	return func() tea.Msg {
		pw, err := p.ResolvePassword()
		return profileLoadedMsg{name: p.Name, form: p.Form(pw), err: err}
	}
}

func backendItems(kinds []database.Kind) []picker.Item {
	items := make([]picker.Item, len(kinds))
	for i, k := range kinds {
		items[i] = picker.Item{Value: string(k), Label: k.Label()}
		if k == database.KindSQLite {
			items[i].Detail = "(preview)"
		}
	}
	return items
}

func databaseItems(dbs []database.Database) []picker.Item {
	items := make([]picker.Item, len(dbs))
	for i, db := range dbs {
		items[i] = picker.Item{Value: db.Name, Label: db.Name}
	}
	return items
}

func tableItems(tables []database.Table) []picker.Item {
	items := make([]picker.Item, len(tables))
	for i, t := range tables {
		items[i] = picker.Item{Value: t.QualifiedName(), Label: t.QualifiedName()}
	}
	return items
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	avail := m.height - 1 // status bar
	m.statusbar.SetWidth(m.width)
	m.picker.SetSize(m.width-4, avail-2)
	m.form.SetWidth(m.width)
	m.describe.SetSize(m.width-4, avail-2)

	editorHeight := max(avail*40/100, 5)
	m.editor.SetSize(m.width-4, editorHeight)
	m.results.SetSize(m.width-4, avail-editorHeight-4)
}
