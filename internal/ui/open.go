package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dvxtools/dvx/internal/dataverse"
	"github.com/dvxtools/dvx/internal/derive"
	"github.com/dvxtools/dvx/internal/nav"
)

// openSelection acts on enter for the row under the cursor.
func (m *Model) openSelection() {
	top := m.stack.Top()
	cursor := top.Cursor

	switch top.Kind {
	case nav.KindEntities:
		entities := m.visibleEntities(top.Filter)
		if cursor < len(entities) {
			e := entities[cursor]
			m.stack.Push(nav.Frame{Kind: nav.KindEntityDetail, Subject: e.LogicalName, Title: e.Display()})
		}

	case nav.KindSolutions:
		solutions := m.visibleSolutions(top.Filter)
		if cursor < len(solutions) {
			s := solutions[cursor]
			m.stack.Push(nav.Frame{Kind: nav.KindSolutionDetail, Subject: s.ID, Title: s.Display()})
		}

	case nav.KindUsers:
		users := m.visibleUsers(top.Filter)
		if cursor < len(users) {
			u := users[cursor]
			m.stack.Push(nav.Frame{Kind: nav.KindUserDetail, Subject: u.ID, Title: u.Display()})
		}

	case nav.KindOptionSets:
		sets := m.visibleOptionSets(top.Filter)
		if cursor < len(sets) {
			o := sets[cursor]
			m.stack.Push(nav.Frame{Kind: nav.KindOptionSetDetail, Subject: o.Name, Title: o.Display()})
		}

	case nav.KindDiscovery:
		instances := m.visibleInstances(top.Filter)
		if cursor < len(instances) {
			m.switchEnvironment(instances[cursor].URL)
		}

	case nav.KindEnvSwitcher:
		if m.config != nil && cursor < len(m.config.Environments) {
			env := m.config.Environments[cursor]
			m.stack.Pop()
			if env != m.store.Env() {
				m.switchEnvironment(env)
			}
		}

	case nav.KindEntityDetail:
		// Relationships tab drills through to the related entity.
		if top.Tab == 1 {
			detail := m.entityDetail(top.Subject)
			rels := m.visibleRelationships(detail, top.Filter)
			if detail != nil && cursor < len(rels) {
				_, related := derive.Classify(rels[cursor], detail.Entity.LogicalName)
				if related != "" && related != top.Subject {
					m.stack.Push(nav.Frame{Kind: nav.KindEntityDetail, Subject: related, Title: related})
				}
			}
		}

	case nav.KindFetchXMLConsole:
		m.openResultLookup(top)
	}
}

// openResultLookup drills from a query result row into the entity behind its
// first lookup column.
func (m *Model) openResultLookup(top *nav.Frame) {
	sig := top.Subject
	if sig == "" {
		sig = m.consoleSig
	}
	result, _ := m.store.Peek(sig).Payload.(*dataverse.QueryResult)
	if result == nil || top.Cursor >= len(result.Rows) {
		return
	}
	for col := range result.Columns {
		if lookup, ok := result.Lookups[dataverse.Cell{Row: top.Cursor, Col: col}]; ok {
			m.stack.Push(nav.Frame{Kind: nav.KindEntityDetail, Subject: lookup.LogicalName, Title: lookup.Display})
			return
		}
	}
}

// openSearch attaches the filter popup to any frame with list content.
func (m *Model) openSearch() {
	top := m.stack.Top()
	if top.Kind.Modal() {
		return
	}
	m.input.SetValue(top.Filter)
	m.input.Placeholder = "Filter..."
	m.input.Focus()
	m.stack.Push(nav.Frame{Kind: nav.KindSearchPopup})
}

func (m *Model) openGlobalSearch() {
	if m.stack.Top().Kind.Modal() {
		return
	}
	m.input.SetValue("")
	m.input.Placeholder = "Search entities, solutions, users..."
	m.input.Focus()
	m.stack.Push(nav.Frame{Kind: nav.KindGlobalSearch})
}

func (m *Model) openConsole() {
	if m.stack.Top().Kind == nav.KindFetchXMLConsole {
		return
	}
	m.console.Focus()
	m.stack.Push(nav.Frame{Kind: nav.KindFetchXMLConsole, Title: "FetchXML"})
}

// openLayers shows the customization layers for the entity in scope: the
// selected row on the entity list, or the viewed entity on its detail.
func (m *Model) openLayers() {
	top := m.stack.Top()
	switch top.Kind {
	case nav.KindEntities:
		entities := m.visibleEntities(top.Filter)
		if top.Cursor < len(entities) {
			e := entities[top.Cursor]
			m.stack.Push(nav.Frame{Kind: nav.KindSolutionLayers, Subject: e.LogicalName, Title: e.Display()})
		}
	case nav.KindEntityDetail:
		m.stack.Push(nav.Frame{Kind: nav.KindSolutionLayers, Subject: top.Subject, Title: top.Title})
	}
}

// openPreview shows the first rows of the entity in scope.
func (m *Model) openPreview() {
	top := m.stack.Top()
	var logical, title string
	switch top.Kind {
	case nav.KindEntities:
		entities := m.visibleEntities(top.Filter)
		if top.Cursor >= len(entities) {
			return
		}
		logical = entities[top.Cursor].LogicalName
		title = entities[top.Cursor].Display()
	case nav.KindEntityDetail:
		logical = top.Subject
		title = top.Title
	default:
		return
	}
	m.stack.Push(nav.Frame{
		Kind:    nav.KindFetchXMLConsole,
		Subject: "preview/" + logical,
		Title:   "Preview: " + title,
	})
}

// handleInputKey routes keys while a text modal (filter popup, global search)
// is on top. The filter applies live on every keystroke.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	top := m.stack.Top()

	switch msg.Type {
	case tea.KeyEsc:
		if top.Kind == nav.KindSearchPopup {
			// Abandoning the popup clears the filter it was editing.
			if below := m.stack.Below(); below != nil {
				below.Filter = ""
				below.Cursor = 0
			}
		}
		m.input.Blur()
		m.stack.Pop()
		return m, nil

	case tea.KeyEnter:
		if top.Kind == nav.KindGlobalSearch {
			hits := m.globalSearchHits(top.Filter)
			if top.Cursor < len(hits) {
				hit := hits[top.Cursor]
				m.input.Blur()
				m.stack.Pop()
				m.stack.Push(nav.Frame{Kind: hit.kind, Subject: hit.subject, Title: hit.label})
				m.ensureData()
				return m, nil
			}
			return m, nil
		}
		// Filter popup: keep the filter, dismiss the popup.
		m.input.Blur()
		m.stack.Pop()
		return m, nil

	case tea.KeyUp:
		m.stack.MoveCursor(-1, len(m.topRows()))
		return m, nil
	case tea.KeyDown:
		m.stack.MoveCursor(1, len(m.topRows()))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	switch top.Kind {
	case nav.KindSearchPopup:
		if below := m.stack.Below(); below != nil && below.Filter != m.input.Value() {
			below.Filter = m.input.Value()
			below.Cursor = 0
		}
	case nav.KindGlobalSearch:
		m.stack.SetFilter(m.input.Value())
		m.ensureData()
	}
	return m, cmd
}

// handleConsoleKey routes keys while the FetchXML editor is on top.
func (m Model) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.console.Blur()
		if !m.stack.Pop() {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyCtrlR:
		m.runConsoleQuery()
		return m, nil
	}

	var cmd tea.Cmd
	m.console, cmd = m.console.Update(msg)
	return m, cmd
}
