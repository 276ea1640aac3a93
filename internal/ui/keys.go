package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Back       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Root views
	ViewEntities   key.Binding
	ViewSolutions  key.Binding
	ViewUsers      key.Binding
	ViewOptionSets key.Binding

	// Navigation
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Open    key.Binding
	Tab     key.Binding
	BackTab key.Binding

	// Tools
	Search       key.Binding
	GlobalSearch key.Binding
	EnvSwitch    key.Binding
	Discover     key.Binding
	Console      key.Binding
	Layers       key.Binding
	Preview      key.Binding
	Count        key.Binding

	// List actions
	ToggleDisabled key.Binding
	Retry          key.Binding
	Refresh        key.Binding
}

// newKeyMap builds the bindings. With vim enabled, hjkl and g/G join the
// navigation keys; the tool keys move to their shifted variants to stay clear
// of the motion keys.
func newKeyMap(vim bool) keyMap {
	k := keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Back, quit at root"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		ViewEntities: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Entities"),
		),
		ViewSolutions: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Solutions"),
		),
		ViewUsers: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Users"),
		),
		ViewOptionSets: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Option sets"),
		),

		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "Go to bottom"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next tab"),
		),
		BackTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous tab"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Filter list"),
		),
		GlobalSearch: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "Global search"),
		),
		EnvSwitch: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Switch environment"),
		),
		Discover: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Discover environments"),
		),
		Console: key.NewBinding(
			key.WithKeys("f", "F"),
			key.WithHelp("f", "FetchXML console"),
		),
		Layers: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Customization layers"),
		),
		Preview: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Preview rows"),
		),
		Count: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Count non-null"),
		),

		ToggleDisabled: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Toggle disabled users"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Retry failed fetch"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Refresh view"),
		),
	}

	if vim {
		k.Up = key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		)
		k.Down = key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		)
		k.Top = key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		)
		k.Tab = key.NewBinding(
			key.WithKeys("tab", "l"),
			key.WithHelp("tab/l", "Next tab"),
		)
		k.BackTab = key.NewBinding(
			key.WithKeys("shift+tab", "h"),
			key.WithHelp("shift+tab/h", "Previous tab"),
		)
	}

	return k
}

// ShortHelp returns key bindings for the footer hint line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Search, k.Back, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewEntities, k.ViewSolutions, k.ViewUsers, k.ViewOptionSets},
		{k.Up, k.Down, k.Top, k.Bottom, k.Open, k.Tab},
		{k.Search, k.GlobalSearch, k.EnvSwitch, k.Discover},
		{k.Console, k.Layers, k.Preview, k.Count},
		{k.ToggleDisabled, k.Retry, k.Refresh},
		{k.CycleTheme, k.Help, k.Back, k.Quit},
	}
}
