package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dvxtools/dvx/internal/cache"
	"github.com/dvxtools/dvx/internal/nav"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	styles := m.theme.Styles()

	header := m.renderHeader(styles)
	footer := m.renderFooter(styles)
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	body := m.renderBody(styles, bodyHeight)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	if m.showHelp {
		return m.renderHelp(styles)
	}
	if m.stack.Top().Kind.Modal() {
		return m.renderModal(styles, screen)
	}
	return screen
}

func (m Model) renderHeader(styles Styles) string {
	crumbs := m.breadcrumbs()
	env := m.store.Env()

	left := styles.AccentText.Bold(true).Render("dvx") + "  " + styles.Text.Render(crumbs)
	right := styles.MutedText.Render(env)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// breadcrumbs names the visible frame, skipping modal overlays.
func (m Model) breadcrumbs() string {
	top := m.stack.Top()
	if top.Kind.Modal() {
		if below := m.stack.Below(); below != nil {
			top = below
		}
	}
	crumb := top.Kind.String()
	if top.Title != "" {
		crumb += ": " + top.Title
	}
	if depth := m.stack.Depth(); depth > 1 {
		crumb = fmt.Sprintf("%s (depth %d)", crumb, depth)
	}
	return crumb
}

func (m Model) renderFooter(styles Styles) string {
	hints := []string{
		"1-4 views", "enter open", "/ filter", "G search", "f fetchxml",
		"E env", "? help", "q quit",
	}
	line := strings.Join(hints, "  ")
	if m.status != "" {
		line = m.status
	}
	return styles.Footer.Width(m.width).Render(truncate(line, maxInt(0, m.width-2)))
}

func (m Model) renderBody(styles Styles, height int) string {
	top := m.stack.Top()
	frame := top
	if top.Kind.Modal() {
		if below := m.stack.Below(); below != nil {
			frame = below
		}
	}

	switch frame.Kind {
	case nav.KindEntityDetail:
		return m.renderEntityDetail(styles, frame, height)
	case nav.KindUserDetail:
		return m.renderUserDetail(styles, frame, height)
	case nav.KindSolutionDetail:
		return m.renderSolutionDetail(styles, frame, height)
	case nav.KindOptionSetDetail:
		return m.renderOptionSetDetail(styles, frame)
	case nav.KindFetchXMLConsole:
		return m.renderConsole(styles, frame, height)
	case nav.KindSolutionLayers:
		return m.renderListFrame(styles, frame, height,
			fmt.Sprintf("%2s  %-34s %-26s %-10s %s", "#", "Solution", "Publisher", "Type", ""))
	case nav.KindEntities:
		return m.renderListFrame(styles, frame, height,
			fmt.Sprintf("%-38s %-32s %s", "Display Name", "Logical Name", "Flags"))
	case nav.KindSolutions:
		return m.renderListFrame(styles, frame, height,
			fmt.Sprintf("%-38s %-24s %-12s %s", "Name", "Unique Name", "Version", "Type"))
	case nav.KindUsers:
		return m.renderListFrame(styles, frame, height,
			fmt.Sprintf("%-30s %-32s %-10s %s", "Name", "Email", "Status", "Business Unit"))
	case nav.KindOptionSets:
		return m.renderListFrame(styles, frame, height,
			fmt.Sprintf("%-38s %-40s %s", "Display Name", "Name", "Flags"))
	case nav.KindDiscovery:
		return m.renderListFrame(styles, frame, height,
			fmt.Sprintf("%-30s %-44s %-10s %s", "Environment", "URL", "Region", "Version"))
	default:
		return m.renderListFrame(styles, frame, height, "")
	}
}

// renderListFrame draws a plain list view: optional column header, state
// banner, and the cursor window over the frame's rows.
func (m Model) renderListFrame(styles Styles, frame *nav.Frame, height int, columns string) string {
	var b strings.Builder

	if columns != "" {
		b.WriteString(styles.MutedText.Render(truncate(columns, m.width-2)))
		b.WriteString("\n")
		height--
	}
	if frame.Filter != "" {
		b.WriteString(styles.InfoText.Render("filter: " + frame.Filter))
		b.WriteString("\n")
		height--
	}

	if banner := m.stateBanner(styles, m.frameSig(frame)); banner != "" {
		b.WriteString(banner)
		return b.String()
	}

	rows := m.frameRows(frame)
	if len(rows) == 0 {
		b.WriteString(styles.FaintText.Render("  (no items)"))
		return b.String()
	}

	start, end := window(frame.Cursor, len(rows), maxInt(1, height))
	for i := start; i < end; i++ {
		line := truncate(rows[i], m.width-4)
		if i == frame.Cursor {
			b.WriteString(styles.Selected.Render("> " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// stateBanner renders the Pending placeholder or Failed banner for a
// signature, or empty when the entry is Ready.
func (m Model) stateBanner(styles Styles, sig string) string {
	if sig == "" {
		return ""
	}
	entry := m.store.Peek(sig)
	switch entry.State {
	case cache.Pending, cache.NotRequested:
		return styles.MutedText.Render("  Loading...")
	case cache.Failed:
		return styles.DangerText.Render("  Failed: "+entry.Err.Error()) + "\n" +
			styles.MutedText.Render("  Press r to retry")
	default:
		return ""
	}
}

// frameSig mirrors topSig for an arbitrary frame, so modals can render the
// state of the frame beneath them.
func (m Model) frameSig(frame *nav.Frame) string {
	switch frame.Kind {
	case nav.KindEntities:
		return sigEntities
	case nav.KindSolutions:
		return sigSolutions
	case nav.KindUsers:
		return m.usersSig()
	case nav.KindOptionSets, nav.KindOptionSetDetail:
		return sigOptionSets
	case nav.KindDiscovery:
		return sigDiscovery
	case nav.KindEntityDetail:
		return "entity/" + frame.Subject
	case nav.KindSolutionDetail:
		return "solution/" + frame.Subject
	case nav.KindUserDetail:
		return "user/" + frame.Subject
	case nav.KindSolutionLayers:
		return "layers/" + frame.Subject
	case nav.KindFetchXMLConsole:
		if frame.Subject != "" {
			return frame.Subject
		}
		return m.consoleSig
	default:
		return ""
	}
}

// frameRows mirrors topRows for an arbitrary frame, so modals can render the
// list they cover.
func (m Model) frameRows(frame *nav.Frame) []string {
	switch frame.Kind {
	case nav.KindEntities:
		return entityRows(m.visibleEntities(frame.Filter))
	case nav.KindSolutions:
		return solutionRows(m.visibleSolutions(frame.Filter))
	case nav.KindUsers:
		return userRows(m.visibleUsers(frame.Filter))
	case nav.KindOptionSets:
		return optionSetRows(m.visibleOptionSets(frame.Filter))
	case nav.KindDiscovery:
		return instanceRows(m.visibleInstances(frame.Filter))
	case nav.KindEnvSwitcher:
		return m.environmentRows()
	case nav.KindEntityDetail:
		return m.entityDetailRows(frame)
	case nav.KindUserDetail:
		return m.userDetailRows(frame)
	case nav.KindSolutionDetail:
		return m.solutionDetailRows(frame)
	case nav.KindSolutionLayers:
		return m.layerRows(frame)
	case nav.KindFetchXMLConsole:
		return m.resultRows(frame)
	case nav.KindGlobalSearch:
		return hitRows(m.globalSearchHits(frame.Filter))
	default:
		return nil
	}
}

// renderTabs draws a tab strip with the active tab highlighted.
func renderTabs(styles Styles, names []string, active int) string {
	parts := make([]string, len(names))
	for i, name := range names {
		if i == active {
			parts[i] = styles.TabActive.Render(name)
		} else {
			parts[i] = styles.TabInactive.Render(name)
		}
	}
	return strings.Join(parts, "   ")
}
