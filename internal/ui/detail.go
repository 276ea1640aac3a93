package ui

import (
	"fmt"
	"strings"

	"github.com/dvxtools/dvx/internal/cache"
	"github.com/dvxtools/dvx/internal/dataverse"
	"github.com/dvxtools/dvx/internal/nav"
)

var entityTabs = []string{"Attributes", "Relationships", "Info"}
var userTabs = []string{"Roles", "Teams", "Effective Roles", "Info"}
var solutionTabs = []string{"Components", "Info"}

func (m Model) renderEntityDetail(styles Styles, frame *nav.Frame, height int) string {
	var b strings.Builder
	b.WriteString(renderTabs(styles, entityTabs, frame.Tab))
	b.WriteString("\n\n")
	height -= 2

	if banner := m.stateBanner(styles, "entity/"+frame.Subject); banner != "" {
		b.WriteString(banner)
		return b.String()
	}
	detail := m.entityDetail(frame.Subject)
	if detail == nil {
		b.WriteString(styles.MutedText.Render("  Loading..."))
		return b.String()
	}

	switch frame.Tab {
	case 0:
		header := fmt.Sprintf("%-34s %-32s %-22s %s", "Display Name", "Logical Name", "Type", "")
		b.WriteString(m.renderRowsWith(styles, frame, height-1, header, m.entityDetailRows(frame)))
		if count := m.countLine(styles, detail, frame); count != "" {
			b.WriteString("\n")
			b.WriteString(count)
		}
	case 1:
		header := fmt.Sprintf("%-4s %-32s %s", "Dir", "Related Entity", "Schema Name")
		b.WriteString(m.renderRowsWith(styles, frame, height, header, m.entityDetailRows(frame)))
	default:
		b.WriteString(renderEntityInfo(styles, detail.Entity))
	}
	return b.String()
}

// countLine shows the most recent non-null count for the selected attribute,
// when one has been requested.
func (m Model) countLine(styles Styles, detail *dataverse.EntityDetail, frame *nav.Frame) string {
	attrs := m.visibleAttributes(detail, frame.Filter)
	if frame.Cursor >= len(attrs) {
		return ""
	}
	attr := attrs[frame.Cursor]
	sig := "count/" + detail.Entity.SetName() + "/" + attr.LogicalName
	entry := m.store.Peek(sig)
	switch entry.State {
	case cache.Pending:
		return styles.MutedText.Render("  counting " + attr.LogicalName + "...")
	case cache.Ready:
		count, _ := entry.Payload.(int64)
		return styles.InfoText.Render(fmt.Sprintf("  %s: %d non-null rows", attr.LogicalName, count))
	case cache.Failed:
		return styles.DangerText.Render("  count failed: " + entry.Err.Error())
	default:
		return ""
	}
}

func renderEntityInfo(styles Styles, e dataverse.Entity) string {
	lines := []struct{ label, value string }{
		{"Display Name", e.Display()},
		{"Logical Name", e.LogicalName},
		{"Schema Name", e.SchemaName},
		{"Entity Set", e.SetName()},
		{"Primary ID", e.PrimaryIDAttribute},
		{"Primary Name", e.PrimaryNameAttribute},
		{"Object Type Code", fmt.Sprintf("%d", e.ObjectTypeCode)},
		{"Custom", boolLabel(e.IsCustomEntity)},
		{"Managed", boolLabel(e.IsManaged)},
		{"Description", e.Description.Text()},
	}
	return renderInfoLines(styles, lines)
}

func (m Model) renderUserDetail(styles Styles, frame *nav.Frame, height int) string {
	var b strings.Builder
	b.WriteString(renderTabs(styles, userTabs, frame.Tab))
	b.WriteString("\n\n")
	height -= 2

	if banner := m.stateBanner(styles, "user/"+frame.Subject); banner != "" {
		b.WriteString(banner)
		return b.String()
	}
	detail, _ := m.store.Peek("user/" + frame.Subject).Payload.(*userDetail)
	if detail == nil {
		b.WriteString(styles.MutedText.Render("  Loading..."))
		return b.String()
	}

	switch frame.Tab {
	case 0:
		header := fmt.Sprintf("%-42s %s", "Role", "Business Unit")
		b.WriteString(m.renderRowsWith(styles, frame, height, header, m.userDetailRows(frame)))
	case 1:
		header := fmt.Sprintf("%-42s %-20s %s", "Team", "Type", "")
		b.WriteString(m.renderRowsWith(styles, frame, height, header, m.userDetailRows(frame)))
	case 2:
		header := fmt.Sprintf("%-42s %s", "Role", "Origin")
		b.WriteString(m.renderRowsWith(styles, frame, height, header, m.userDetailRows(frame)))
	default:
		b.WriteString(renderUserInfo(styles, detail.User))
	}
	return b.String()
}

func renderUserInfo(styles Styles, u dataverse.User) string {
	unit := ""
	if u.BusinessUnit != nil {
		unit = u.BusinessUnit.Name
	}
	lines := []struct{ label, value string }{
		{"Name", u.Display()},
		{"Domain Name", u.DomainName},
		{"Email", u.Email},
		{"Title", u.Title},
		{"Status", u.Status()},
		{"Business Unit", unit},
		{"Created On", u.CreatedOn},
		{"User ID", u.ID},
	}
	return renderInfoLines(styles, lines)
}

func (m Model) renderSolutionDetail(styles Styles, frame *nav.Frame, height int) string {
	var b strings.Builder
	b.WriteString(renderTabs(styles, solutionTabs, frame.Tab))
	b.WriteString("\n\n")
	height -= 2

	if banner := m.stateBanner(styles, "solution/"+frame.Subject); banner != "" {
		b.WriteString(banner)
		return b.String()
	}
	detail, _ := m.store.Peek("solution/" + frame.Subject).Payload.(*solutionDetail)
	if detail == nil {
		b.WriteString(styles.MutedText.Render("  Loading..."))
		return b.String()
	}

	if frame.Tab == 0 {
		header := fmt.Sprintf("%-26s %s", "Component Type", "Object ID")
		b.WriteString(m.renderRowsWith(styles, frame, height, header, m.solutionDetailRows(frame)))
	} else {
		s := detail.Solution
		kind := "Unmanaged"
		if s.IsManaged {
			kind = "Managed"
		}
		lines := []struct{ label, value string }{
			{"Name", s.Display()},
			{"Unique Name", s.UniqueName},
			{"Version", s.Version},
			{"Type", kind},
			{"Installed On", s.InstalledOn},
			{"Description", s.Description},
			{"Solution ID", s.ID},
		}
		b.WriteString(renderInfoLines(styles, lines))
	}
	return b.String()
}

func (m Model) renderOptionSetDetail(styles Styles, frame *nav.Frame) string {
	sets, _ := m.optionSetList()
	for _, o := range sets {
		if o.Name != frame.Subject {
			continue
		}
		lines := []struct{ label, value string }{
			{"Display Name", o.Display()},
			{"Name", o.Name},
			{"Custom", boolLabel(o.IsCustom)},
			{"Description", o.Description.Text()},
			{"Metadata ID", o.MetadataID},
		}
		return renderInfoLines(styles, lines)
	}
	return styles.MutedText.Render("  Loading...")
}

// renderConsole draws the FetchXML editor, or a result table for frames bound
// to a finished query (console runs and entity previews).
func (m Model) renderConsole(styles Styles, frame *nav.Frame, height int) string {
	var b strings.Builder

	sig := frame.Subject
	if sig == "" {
		sig = m.consoleSig
	}

	if frame.Subject == "" {
		b.WriteString(styles.AccentText.Render("FetchXML"))
		b.WriteString(styles.MutedText.Render("   ctrl+r run, esc close"))
		b.WriteString("\n")
		b.WriteString(m.console.View())
		b.WriteString("\n")
	}

	if sig == "" {
		return b.String()
	}

	entry := m.store.Peek(sig)
	switch entry.State {
	case cache.Pending:
		b.WriteString(styles.MutedText.Render("  Running..."))
	case cache.Failed:
		b.WriteString(styles.DangerText.Render("  " + entry.Err.Error()))
	case cache.Ready:
		result, _ := entry.Payload.(*dataverse.QueryResult)
		if result == nil {
			break
		}
		cols := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			cols[i] = fmt.Sprintf("%-20s", truncate(col, 20))
		}
		b.WriteString(styles.MutedText.Render(truncate(strings.Join(cols, " "), m.width-2)))
		b.WriteString("\n")
		b.WriteString(m.renderRowsWith(styles, frame, height-4, "", m.resultRows(frame)))
		b.WriteString("\n")
		summary := fmt.Sprintf("%d rows", len(result.Rows))
		if result.NextLink != "" {
			summary += " (more available)"
		}
		b.WriteString(styles.FaintText.Render("  " + summary))
	}
	return b.String()
}

// renderRowsWith draws a cursor window over pre-built rows with an optional
// column header.
func (m Model) renderRowsWith(styles Styles, frame *nav.Frame, height int, header string, rows []string) string {
	var b strings.Builder
	if header != "" {
		b.WriteString(styles.MutedText.Render("  " + truncate(header, m.width-4)))
		b.WriteString("\n")
		height--
	}
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

func renderInfoLines(styles Styles, lines []struct{ label, value string }) string {
	var b strings.Builder
	for i, line := range lines {
		value := line.value
		if value == "" {
			value = "-"
		}
		b.WriteString(styles.MutedText.Width(18).Render(line.label))
		b.WriteString(styles.Text.Render(value))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func boolLabel(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
