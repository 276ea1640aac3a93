package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dvxtools/dvx/internal/cache"
	"github.com/dvxtools/dvx/internal/config"
	"github.com/dvxtools/dvx/internal/dataverse"
	"github.com/dvxtools/dvx/internal/nav"
)

// APIFactory builds a client bound to an environment URL. Switching
// environments constructs a fresh client so the old one can never serve the
// new environment's requests.
type APIFactory func(envURL string) (dataverse.API, error)

// Options configures the UI.
type Options struct {
	Context    context.Context
	API        dataverse.API
	NewAPI     APIFactory
	Store      *cache.Store
	Config     *config.Config
	ConfigPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Wiring
	ctx        context.Context
	api        dataverse.API
	newAPI     APIFactory
	store      *cache.Store
	config     *config.Config
	configPath string

	// Navigation
	stack *nav.Stack
	keys  keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool

	// Users view
	showDisabled bool

	// Modal text input (search, environment switcher)
	input textinput.Model

	// FetchXML console
	console    textarea.Model
	consoleSig string
	consoleRun int

	// Transient status line, cleared on the next key
	status string

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := ""
	vim := false
	if opts.Config != nil {
		themeName = opts.Config.Theme
		vim = opts.Config.Vim
	}

	input := textinput.New()
	input.CharLimit = 120

	console := textarea.New()
	console.Placeholder = `<fetch top="25"><entity name="account"><all-attributes/></entity></fetch>`

	return Model{
		ctx:        ctx,
		api:        opts.API,
		newAPI:     opts.NewAPI,
		store:      opts.Store,
		config:     opts.Config,
		configPath: opts.ConfigPath,
		stack:      nav.New(nav.KindEntities),
		keys:       newKeyMap(vim),
		theme:      GetTheme(themeName),
		input:      input,
		console:    console,
	}
}

// cacheUpdatedMsg signals that some background fetch completed and the view
// should re-read the store.
type cacheUpdatedMsg struct{}

// waitForUpdate blocks on the store's update channel as a command, turning
// fetch completions into Bubble Tea messages.
func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return cacheUpdatedMsg{}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	m.ensureData()
	return tea.Batch(
		tea.EnterAltScreen,
		waitForUpdate(m.store.Updates()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.console.SetWidth(maxInt(20, msg.Width-8))
		m.console.SetHeight(maxInt(3, msg.Height/3))
		return m, nil

	case cacheUpdatedMsg:
		// Data arrived; re-clamp the cursor in case the list shrank and
		// re-arm the wakeup listener.
		m.stack.ClampCursor(len(m.topRows()))
		return m, waitForUpdate(m.store.Updates())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	// ctrl+c always quits, even inside text inputs.
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	top := m.stack.Top()

	// Text-entry frames consume printable keys before global bindings.
	if m.inputActive() {
		return m.handleInputKey(msg)
	}
	if top.Kind == nav.KindFetchXMLConsole && top.Subject == "" {
		return m.handleConsoleKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.popOrQuit()
	case key.Matches(msg, m.keys.Back):
		return m.popOrQuit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.saveTheme()
		return m, nil

	case key.Matches(msg, m.keys.ViewEntities):
		m.stack.JumpTo(nav.KindEntities)
	case key.Matches(msg, m.keys.ViewSolutions):
		m.stack.JumpTo(nav.KindSolutions)
	case key.Matches(msg, m.keys.ViewUsers):
		m.stack.JumpTo(nav.KindUsers)
	case key.Matches(msg, m.keys.ViewOptionSets):
		m.stack.JumpTo(nav.KindOptionSets)

	case key.Matches(msg, m.keys.Up):
		m.stack.MoveCursor(-1, len(m.topRows()))
	case key.Matches(msg, m.keys.Down):
		m.stack.MoveCursor(1, len(m.topRows()))
	case key.Matches(msg, m.keys.Top):
		m.stack.MoveCursor(-1<<30, len(m.topRows()))
	case key.Matches(msg, m.keys.Bottom):
		m.stack.MoveCursor(1<<30, len(m.topRows()))
	case key.Matches(msg, m.keys.Tab):
		m.stack.SwitchTab(1, tabCount(top.Kind))
	case key.Matches(msg, m.keys.BackTab):
		m.stack.SwitchTab(-1, tabCount(top.Kind))

	case key.Matches(msg, m.keys.Open):
		m.openSelection()
	case key.Matches(msg, m.keys.Search):
		m.openSearch()
	case key.Matches(msg, m.keys.GlobalSearch):
		m.openGlobalSearch()
	case key.Matches(msg, m.keys.EnvSwitch):
		m.stack.Push(nav.Frame{Kind: nav.KindEnvSwitcher})
	case key.Matches(msg, m.keys.Discover):
		m.stack.Push(nav.Frame{Kind: nav.KindDiscovery})
	case key.Matches(msg, m.keys.Console):
		m.openConsole()
	case key.Matches(msg, m.keys.Layers):
		m.openLayers()
	case key.Matches(msg, m.keys.Preview):
		m.openPreview()
	case key.Matches(msg, m.keys.Count):
		m.countSelection()

	case key.Matches(msg, m.keys.ToggleDisabled):
		if top.Kind == nav.KindUsers {
			m.showDisabled = !m.showDisabled
			m.stack.ClampCursor(len(m.topRows()))
		}
	case key.Matches(msg, m.keys.Retry):
		if sig := m.topSig(); sig != "" {
			m.store.Retry(sig)
		}
	case key.Matches(msg, m.keys.Refresh):
		if sig := m.topSig(); sig != "" {
			m.store.Invalidate(sig)
		}
	}

	m.ensureData()
	return m, nil
}

func (m Model) popOrQuit() (tea.Model, tea.Cmd) {
	if !m.stack.Pop() {
		return m, tea.Quit
	}
	m.ensureData()
	return m, nil
}

// inputActive reports whether the top frame owns the text input.
func (m *Model) inputActive() bool {
	switch m.stack.Top().Kind {
	case nav.KindSearchPopup, nav.KindGlobalSearch:
		return true
	default:
		return false
	}
}

// tabCount returns the number of tabs a frame kind renders.
func tabCount(k nav.Kind) int {
	switch k {
	case nav.KindEntityDetail:
		return 3 // Attributes, Relationships, Info
	case nav.KindUserDetail:
		return 4 // Roles, Teams, All Roles, Info
	case nav.KindSolutionDetail:
		return 2 // Components, Info
	default:
		return 0
	}
}

func (m *Model) saveTheme() {
	if m.config == nil {
		return
	}
	m.config.Theme = m.theme.Name
	if m.configPath != "" {
		// Best effort; a read-only config dir should not break theming.
		_ = config.Save(m.configPath, *m.config)
	}
}

// switchEnvironment rebinds every layer to a new environment URL: fresh
// client, cleared cache, stack reset to the entity list.
func (m *Model) switchEnvironment(envURL string) {
	if m.newAPI == nil {
		m.status = "environment switching unavailable"
		return
	}
	api, err := m.newAPI(envURL)
	if err != nil {
		m.status = fmt.Sprintf("switch failed: %v", err)
		return
	}
	m.api = api
	m.store.SwitchEnv(envURL)
	m.stack.Reset(nav.KindEntities)
	if m.config != nil {
		m.config.AddEnvironment(envURL)
		if m.configPath != "" {
			_ = config.Save(m.configPath, *m.config)
		}
	}
	m.status = "switched to " + envURL
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	program := tea.NewProgram(New(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
