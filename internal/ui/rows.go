package ui

import (
	"fmt"
	"strings"

	"github.com/dvxtools/dvx/internal/dataverse"
	"github.com/dvxtools/dvx/internal/derive"
	"github.com/dvxtools/dvx/internal/nav"
	"github.com/dvxtools/dvx/internal/search"
)

// visible filters items by the frame's query against their display text,
// preserving order. Both cursor movement and rendering go through this, so
// the row under the cursor is always the row on screen.
func visible[T any](items []T, query string, display func(T) string) []T {
	if query == "" {
		return items
	}
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = display(item)
	}
	matched := search.Filter(texts, query)
	out := make([]T, 0, len(matched))
	for _, idx := range matched {
		out = append(out, items[idx])
	}
	return out
}

// topRows renders the top frame's list as display lines, post-filter. Frames
// without list content return nil; the cursor pins to zero there.
func (m *Model) topRows() []string {
	top := m.stack.Top()
	switch top.Kind {
	case nav.KindEntities:
		return entityRows(m.visibleEntities(top.Filter))
	case nav.KindSolutions:
		return solutionRows(m.visibleSolutions(top.Filter))
	case nav.KindUsers:
		return userRows(m.visibleUsers(top.Filter))
	case nav.KindOptionSets:
		return optionSetRows(m.visibleOptionSets(top.Filter))
	case nav.KindDiscovery:
		return instanceRows(m.visibleInstances(top.Filter))
	case nav.KindEnvSwitcher:
		return m.environmentRows()
	case nav.KindEntityDetail:
		return m.entityDetailRows(top)
	case nav.KindUserDetail:
		return m.userDetailRows(top)
	case nav.KindSolutionDetail:
		return m.solutionDetailRows(top)
	case nav.KindSolutionLayers:
		return m.layerRows(top)
	case nav.KindFetchXMLConsole:
		return m.resultRows(top)
	case nav.KindGlobalSearch:
		return hitRows(m.globalSearchHits(top.Filter))
	default:
		return nil
	}
}

func (m *Model) visibleEntities(query string) []dataverse.Entity {
	entities, _ := m.entityList()
	return visible(entities, query, func(e dataverse.Entity) string {
		return e.Display() + " " + e.LogicalName
	})
}

func (m *Model) visibleSolutions(query string) []dataverse.Solution {
	solutions, _ := m.solutionList()
	return visible(solutions, query, func(s dataverse.Solution) string {
		return s.Display() + " " + s.UniqueName
	})
}

func (m *Model) visibleUsers(query string) []dataverse.User {
	users, _ := m.userList()
	return visible(users, query, func(u dataverse.User) string {
		return u.Display() + " " + u.DomainName + " " + u.Email
	})
}

func (m *Model) visibleOptionSets(query string) []dataverse.OptionSet {
	sets, _ := m.optionSetList()
	return visible(sets, query, func(o dataverse.OptionSet) string {
		return o.Display() + " " + o.Name
	})
}

func (m *Model) visibleInstances(query string) []dataverse.Instance {
	instances, _ := m.instanceList()
	return visible(instances, query, func(i dataverse.Instance) string {
		return i.FriendlyName + " " + i.UniqueName + " " + i.URL
	})
}

func (m *Model) visibleAttributes(detail *dataverse.EntityDetail, query string) []dataverse.Attribute {
	if detail == nil {
		return nil
	}
	return visible(detail.Attributes, query, func(a dataverse.Attribute) string {
		return a.Display() + " " + a.LogicalName
	})
}

func (m *Model) visibleRelationships(detail *dataverse.EntityDetail, query string) []dataverse.Relationship {
	if detail == nil {
		return nil
	}
	all := make([]dataverse.Relationship, 0,
		len(detail.OneToMany)+len(detail.ManyToOne)+len(detail.ManyToMany))
	all = append(all, detail.OneToMany...)
	all = append(all, detail.ManyToOne...)
	all = append(all, detail.ManyToMany...)
	return visible(all, query, func(r dataverse.Relationship) string {
		return r.SchemaName
	})
}

func entityRows(entities []dataverse.Entity) []string {
	rows := make([]string, len(entities))
	for i, e := range entities {
		flags := ""
		if e.IsCustomEntity {
			flags = "custom"
		}
		if e.IsManaged {
			flags = joinNonEmpty([]string{flags, "managed"}, ", ")
		}
		rows[i] = fmt.Sprintf("%-38s %-32s %s", truncate(e.Display(), 38), e.LogicalName, flags)
	}
	return rows
}

func solutionRows(solutions []dataverse.Solution) []string {
	rows := make([]string, len(solutions))
	for i, s := range solutions {
		kind := "unmanaged"
		if s.IsManaged {
			kind = "managed"
		}
		rows[i] = fmt.Sprintf("%-38s %-24s %-12s %s", truncate(s.Display(), 38), s.UniqueName, s.Version, kind)
	}
	return rows
}

func userRows(users []dataverse.User) []string {
	rows := make([]string, len(users))
	for i, u := range users {
		unit := ""
		if u.BusinessUnit != nil {
			unit = u.BusinessUnit.Name
		}
		rows[i] = fmt.Sprintf("%-30s %-32s %-10s %s", truncate(u.Display(), 30), truncate(u.Email, 32), u.Status(), unit)
	}
	return rows
}

func optionSetRows(sets []dataverse.OptionSet) []string {
	rows := make([]string, len(sets))
	for i, o := range sets {
		flags := ""
		if o.IsCustom {
			flags = "custom"
		}
		rows[i] = fmt.Sprintf("%-38s %-40s %s", truncate(o.Display(), 38), o.Name, flags)
	}
	return rows
}

func instanceRows(instances []dataverse.Instance) []string {
	rows := make([]string, len(instances))
	for i, inst := range instances {
		rows[i] = fmt.Sprintf("%-30s %-44s %-10s %s", truncate(inst.FriendlyName, 30), inst.URL, inst.Region, inst.Version)
	}
	return rows
}

func (m *Model) environmentRows() []string {
	if m.config == nil {
		return nil
	}
	rows := make([]string, len(m.config.Environments))
	for i, env := range m.config.Environments {
		marker := "  "
		if env == m.store.Env() {
			marker = "* "
		}
		rows[i] = marker + env
	}
	return rows
}

func (m *Model) entityDetailRows(top *nav.Frame) []string {
	detail := m.entityDetail(top.Subject)
	if detail == nil {
		return nil
	}
	switch top.Tab {
	case 0:
		attrs := m.visibleAttributes(detail, top.Filter)
		rows := make([]string, len(attrs))
		for i, a := range attrs {
			required := ""
			if a.Required() {
				required = "required"
			}
			rows[i] = fmt.Sprintf("%-34s %-32s %-22s %s", truncate(a.Display(), 34), a.LogicalName, a.Type(), required)
		}
		return rows
	case 1:
		rels := m.visibleRelationships(detail, top.Filter)
		rows := make([]string, len(rels))
		for i, r := range rels {
			dir, related := derive.Classify(r, detail.Entity.LogicalName)
			rows[i] = fmt.Sprintf("%-4s %-32s %s", dir, related, r.SchemaName)
		}
		return rows
	default:
		return nil
	}
}

func (m *Model) userDetailRows(top *nav.Frame) []string {
	detail, _ := m.store.Peek("user/" + top.Subject).Payload.(*userDetail)
	if detail == nil {
		return nil
	}
	switch top.Tab {
	case 0:
		roles := visible(detail.DirectRoles, top.Filter, func(r dataverse.Role) string { return r.Name })
		rows := make([]string, len(roles))
		for i, r := range roles {
			rows[i] = fmt.Sprintf("%-42s %s", truncate(r.Name, 42), r.BusinessUnitName())
		}
		return rows
	case 1:
		teams := visible(detail.Teams, top.Filter, func(t dataverse.Team) string { return t.Name })
		rows := make([]string, len(teams))
		for i, t := range teams {
			def := ""
			if t.IsDefault {
				def = "default"
			}
			rows[i] = fmt.Sprintf("%-42s %-20s %s", truncate(t.Name, 42), t.TypeName(), def)
		}
		return rows
	case 2:
		assignments := visible(detail.Assignments, top.Filter, func(a derive.RoleAssignment) string {
			return a.Role.Name + " " + a.Origin.String()
		})
		rows := make([]string, len(assignments))
		for i, a := range assignments {
			rows[i] = fmt.Sprintf("%-42s %s", truncate(a.Role.Name, 42), a.Origin)
		}
		return rows
	default:
		return nil
	}
}

func (m *Model) solutionDetailRows(top *nav.Frame) []string {
	detail, _ := m.store.Peek("solution/" + top.Subject).Payload.(*solutionDetail)
	if detail == nil {
		return nil
	}
	if top.Tab != 0 {
		return nil
	}
	components := visible(detail.Components, top.Filter, func(c dataverse.SolutionComponent) string {
		return c.TypeName() + " " + c.ObjectID
	})
	rows := make([]string, len(components))
	for i, c := range components {
		rows[i] = fmt.Sprintf("%-26s %s", c.TypeName(), c.ObjectID)
	}
	return rows
}

func (m *Model) layerRows(top *nav.Frame) []string {
	layers, _ := m.store.Peek("layers/" + top.Subject).Payload.([]derive.Layer)
	rows := make([]string, len(layers))
	for i, layer := range layers {
		kind := "unmanaged"
		if layer.Managed {
			kind = "managed"
		}
		active := ""
		if layer.Active {
			active = "active"
		}
		rows[i] = fmt.Sprintf("%2d  %-34s %-26s %-10s %s",
			layer.Order, truncate(layer.SolutionName, 34), truncate(layer.PublisherName, 26), kind, active)
	}
	return rows
}

func (m *Model) resultRows(top *nav.Frame) []string {
	sig := top.Subject
	if sig == "" {
		sig = m.consoleSig
	}
	if sig == "" {
		return nil
	}
	result, _ := m.store.Peek(sig).Payload.(*dataverse.QueryResult)
	if result == nil {
		return nil
	}
	rows := make([]string, len(result.Rows))
	for i, row := range result.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprintf("%-20s", truncate(cell, 20))
		}
		rows[i] = strings.Join(cells, " ")
	}
	return rows
}

// searchHit is one global search result, carrying enough to jump straight to
// the record's detail view.
type searchHit struct {
	kind    nav.Kind
	subject string
	label   string
	source  string
}

const maxSearchHits = 50

// globalSearchHits matches the query against every list that is currently
// Ready. Lists still loading contribute nothing; they appear as the data
// lands and the view re-renders.
func (m *Model) globalSearchHits(query string) []searchHit {
	if query == "" {
		return nil
	}
	var hits []searchHit

	entities, _ := m.entityList()
	for _, e := range entities {
		if len(hits) >= maxSearchHits {
			return hits
		}
		if search.Match(e.Display()+" "+e.LogicalName, query) {
			hits = append(hits, searchHit{
				kind: nav.KindEntityDetail, subject: e.LogicalName,
				label: e.Display(), source: "Entity",
			})
		}
	}

	solutions, _ := m.solutionList()
	for _, s := range solutions {
		if len(hits) >= maxSearchHits {
			return hits
		}
		if search.Match(s.Display()+" "+s.UniqueName, query) {
			hits = append(hits, searchHit{
				kind: nav.KindSolutionDetail, subject: s.ID,
				label: s.Display(), source: "Solution",
			})
		}
	}

	users, _ := m.userList()
	for _, u := range users {
		if len(hits) >= maxSearchHits {
			return hits
		}
		if search.Match(u.Display()+" "+u.DomainName+" "+u.Email, query) {
			hits = append(hits, searchHit{
				kind: nav.KindUserDetail, subject: u.ID,
				label: u.Display(), source: "User",
			})
		}
	}

	return hits
}

func hitRows(hits []searchHit) []string {
	rows := make([]string, len(hits))
	for i, hit := range hits {
		rows[i] = fmt.Sprintf("%-10s %s", hit.source, hit.label)
	}
	return rows
}
