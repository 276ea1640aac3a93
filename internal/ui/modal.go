package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dvxtools/dvx/internal/nav"
)

// renderModal draws the active overlay centered over the screen content.
func (m Model) renderModal(styles Styles, screen string) string {
	top := m.stack.Top()

	var content string
	switch top.Kind {
	case nav.KindSearchPopup:
		content = m.renderSearchPopup(styles)
	case nav.KindGlobalSearch:
		content = m.renderGlobalSearch(styles, top)
	case nav.KindEnvSwitcher:
		content = m.renderEnvSwitcher(styles, top)
	default:
		return screen
	}

	modal := styles.Modal.Width(minInt(70, maxInt(30, m.width-10))).Render(content)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

func (m Model) renderSearchPopup(styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Filter"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	count := 0
	if below := m.stack.Below(); below != nil {
		count = len(m.frameRows(below))
	}
	b.WriteString(styles.MutedText.Render(plural(count, "match", "matches")))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter keep, esc clear"))
	return b.String()
}

func (m Model) renderGlobalSearch(styles Styles, top *nav.Frame) string {
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Global Search"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	hits := m.globalSearchHits(top.Filter)
	if top.Filter == "" {
		b.WriteString(styles.FaintText.Render("Type to search entities, solutions, and users"))
		return b.String()
	}
	if len(hits) == 0 {
		b.WriteString(styles.FaintText.Render("No matches"))
		return b.String()
	}

	rows := hitRows(hits)
	start, end := window(top.Cursor, len(rows), 12)
	for i := start; i < end; i++ {
		line := truncate(rows[i], 60)
		if i == top.Cursor {
			b.WriteString(styles.Selected.Render("> " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter open, esc close"))
	return b.String()
}

func (m Model) renderEnvSwitcher(styles Styles, top *nav.Frame) string {
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Switch Environment"))
	b.WriteString("\n\n")

	rows := m.environmentRows()
	if len(rows) == 0 {
		b.WriteString(styles.FaintText.Render("No saved environments. Press D to discover."))
		return b.String()
	}
	for i, row := range rows {
		line := truncate(row, 60)
		if i == top.Cursor {
			b.WriteString(styles.Selected.Render("> " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter switch, esc close"))
	return b.String()
}

// renderHelp renders the help overlay.
func (m Model) renderHelp(styles Styles) string {
	sections := []helpSection{
		{
			title: "Views",
			items: []helpItem{
				{"1/2/3/4", "Entities/Solutions/Users/Option sets"},
				{"enter", "Open selection"},
				{"esc/q", "Back (quit at root)"},
				{"tab", "Switch detail tab"},
			},
		},
		{
			title: "Tools",
			items: []helpItem{
				{"/", "Filter current list"},
				{"G", "Global search"},
				{"f", "FetchXML console"},
				{"L", "Customization layers"},
				{"p", "Preview entity rows"},
				{"c", "Count non-null values"},
			},
		},
		{
			title: "Environment",
			items: []helpItem{
				{"E", "Switch environment"},
				{"D", "Discover environments"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"a", "Toggle disabled users"},
				{"r", "Retry failed fetch"},
				{"R", "Refresh view"},
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := styles.Modal.Width(44).Render(b.String())
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
