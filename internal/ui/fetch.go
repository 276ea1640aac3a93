package ui

import (
	"context"
	"fmt"

	"github.com/dvxtools/dvx/internal/cache"
	"github.com/dvxtools/dvx/internal/dataverse"
	"github.com/dvxtools/dvx/internal/derive"
	"github.com/dvxtools/dvx/internal/nav"
)

// Cache signatures. List views use fixed signatures; detail views append the
// subject identifier so each record caches independently.
const (
	sigEntities   = "entities"
	sigSolutions  = "solutions"
	sigOptionSets = "optionsets"
	sigDiscovery  = "discovery"
)

func (m *Model) usersSig() string {
	if m.showDisabled {
		return "users/all"
	}
	return "users/enabled"
}

// solutionDetail bundles the solution row with its component list.
type solutionDetail struct {
	Solution   dataverse.Solution
	Components []dataverse.SolutionComponent
}

// userDetail bundles everything the user detail view shows: the raw
// associations plus the resolved effective roles.
type userDetail struct {
	User        dataverse.User
	DirectRoles []dataverse.Role
	Teams       []dataverse.Team
	Assignments []derive.RoleAssignment
}

// topSig returns the cache signature backing the top frame, or empty for
// frames that need no data (environment switcher, editor with no run yet).
func (m *Model) topSig() string {
	top := m.stack.Top()
	switch top.Kind {
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
		return "entity/" + top.Subject
	case nav.KindSolutionDetail:
		return "solution/" + top.Subject
	case nav.KindUserDetail:
		return "user/" + top.Subject
	case nav.KindSolutionLayers:
		return "layers/" + top.Subject
	case nav.KindFetchXMLConsole:
		if top.Subject != "" {
			return top.Subject
		}
		return m.consoleSig
	default:
		return ""
	}
}

// ensureData issues the fetch backing the top frame. GetOrFetch is a no-op
// for entries already Pending, Ready, or Failed, so calling this after every
// navigation change is cheap.
func (m *Model) ensureData() {
	top := m.stack.Top()
	api := m.api
	if api == nil {
		return
	}

	switch top.Kind {
	case nav.KindEntities:
		m.store.GetOrFetch(m.ctx, sigEntities, func(ctx context.Context) (any, error) {
			return api.ListEntities(ctx)
		})

	case nav.KindSolutions:
		m.store.GetOrFetch(m.ctx, sigSolutions, func(ctx context.Context) (any, error) {
			return api.ListSolutions(ctx)
		})

	case nav.KindUsers:
		includeDisabled := m.showDisabled
		m.store.GetOrFetch(m.ctx, m.usersSig(), func(ctx context.Context) (any, error) {
			return api.ListUsers(ctx, includeDisabled)
		})

	case nav.KindOptionSets, nav.KindOptionSetDetail:
		m.store.GetOrFetch(m.ctx, sigOptionSets, func(ctx context.Context) (any, error) {
			return api.ListOptionSets(ctx)
		})

	case nav.KindDiscovery:
		m.store.GetOrFetch(m.ctx, sigDiscovery, func(ctx context.Context) (any, error) {
			return api.DiscoverEnvironments(ctx)
		})

	case nav.KindEntityDetail:
		logical := top.Subject
		m.store.GetOrFetch(m.ctx, "entity/"+logical, func(ctx context.Context) (any, error) {
			return api.FetchEntityDetail(ctx, logical)
		})

	case nav.KindSolutionDetail:
		solution := m.solutionByID(top.Subject)
		solutionID := top.Subject
		m.store.GetOrFetch(m.ctx, "solution/"+solutionID, func(ctx context.Context) (any, error) {
			components, err := api.SolutionComponents(ctx, solutionID)
			if err != nil {
				return nil, err
			}
			return &solutionDetail{Solution: solution, Components: components}, nil
		})

	case nav.KindUserDetail:
		user := m.userByID(top.Subject)
		m.store.GetOrFetch(m.ctx, "user/"+top.Subject, func(ctx context.Context) (any, error) {
			return fetchUserDetail(ctx, api, user)
		})

	case nav.KindSolutionLayers:
		component := top.Subject
		m.store.GetOrFetch(m.ctx, "layers/"+component, func(ctx context.Context) (any, error) {
			records, err := api.ComponentLayers(ctx, component)
			if err != nil {
				return nil, err
			}
			return derive.OrderLayers(records), nil
		})

	case nav.KindFetchXMLConsole:
		if top.Subject == "" {
			return // editor; runs are issued explicitly
		}
		m.ensurePreview(top.Subject)

	case nav.KindGlobalSearch:
		// Global search spans the three primary lists.
		m.store.GetOrFetch(m.ctx, sigEntities, func(ctx context.Context) (any, error) {
			return api.ListEntities(ctx)
		})
		m.store.GetOrFetch(m.ctx, sigSolutions, func(ctx context.Context) (any, error) {
			return api.ListSolutions(ctx)
		})
		includeDisabled := m.showDisabled
		m.store.GetOrFetch(m.ctx, m.usersSig(), func(ctx context.Context) (any, error) {
			return api.ListUsers(ctx, includeDisabled)
		})
	}
}

// ensurePreview fetches the first rows of an entity for a preview frame whose
// subject is "preview/<logical name>".
func (m *Model) ensurePreview(subject string) {
	api := m.api
	logical := subject[len("preview/"):]
	set := m.entitySetFor(logical)
	m.store.GetOrFetch(m.ctx, subject, func(ctx context.Context) (any, error) {
		return api.ExecuteQuery(ctx, dataverse.QueryDefinition{
			EntityName: logical,
			EntitySet:  set,
			Top:        25,
		})
	})
}

// fetchUserDetail assembles a user's detail payload: direct roles, teams,
// team roles, and the business unit chain, resolved into effective
// assignments. Association calls that fail degrade to empty slices except the
// direct role load, which the view cannot do without.
func fetchUserDetail(ctx context.Context, api dataverse.API, user dataverse.User) (*userDetail, error) {
	direct, err := api.UserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	teams, err := api.UserTeams(ctx, user.ID)
	if err != nil {
		teams = nil
	}
	teamRoles := make(map[string][]dataverse.Role, len(teams))
	for _, team := range teams {
		roles, err := api.TeamRoles(ctx, team.ID)
		if err != nil {
			continue
		}
		teamRoles[team.ID] = roles
	}

	units, err := api.ListBusinessUnits(ctx)
	if err != nil {
		units = nil
	}
	orgRoles, err := api.ListRoles(ctx)
	if err != nil {
		orgRoles = nil
	}

	unitID := ""
	if user.BusinessUnit != nil {
		unitID = user.BusinessUnit.ID
	}
	assignments := derive.ResolveRoles(derive.RoleInput{
		UserBusinessUnitID: unitID,
		DirectRoles:        direct,
		Teams:              teams,
		TeamRoles:          teamRoles,
		BusinessUnits:      units,
		OrgRoles:           orgRoles,
	}, nil)

	return &userDetail{
		User:        user,
		DirectRoles: direct,
		Teams:       teams,
		Assignments: assignments,
	}, nil
}

// runConsoleQuery validates and dispatches the console's FetchXML. Each run
// gets a fresh signature so reruns never collide with a stale entry.
func (m *Model) runConsoleQuery() {
	fetchXML := m.console.Value()
	entityName, err := dataverse.FetchEntityName(fetchXML)
	if err != nil {
		m.status = err.Error()
		return
	}
	set := m.entitySetFor(entityName)

	m.consoleRun++
	sig := fmt.Sprintf("fetchxml/%d", m.consoleRun)
	m.consoleSig = sig

	api := m.api
	m.store.GetOrFetch(m.ctx, sig, func(ctx context.Context) (any, error) {
		return api.ExecuteFetchXML(ctx, set, fetchXML)
	})
	m.status = "running query against " + entityName
}

// countSelection kicks off a non-null count for the attribute under the
// cursor on the entity detail's attributes tab.
func (m *Model) countSelection() {
	top := m.stack.Top()
	if top.Kind != nav.KindEntityDetail || top.Tab != 0 {
		return
	}
	detail := m.entityDetail(top.Subject)
	if detail == nil {
		return
	}
	attrs := m.visibleAttributes(detail, top.Filter)
	if top.Cursor >= len(attrs) {
		return
	}
	attr := attrs[top.Cursor]
	set := detail.Entity.SetName()
	sig := "count/" + set + "/" + attr.LogicalName

	api := m.api
	m.store.GetOrFetch(m.ctx, sig, func(ctx context.Context) (any, error) {
		return api.CountNonNull(ctx, set, attr.LogicalName)
	})
	m.status = "counting " + attr.LogicalName
}

// Typed payload accessors. All of these peek; ensureData owns triggering.

func (m *Model) entityList() ([]dataverse.Entity, cache.Entry) {
	entry := m.store.Peek(sigEntities)
	list, _ := entry.Payload.([]dataverse.Entity)
	return list, entry
}

func (m *Model) solutionList() ([]dataverse.Solution, cache.Entry) {
	entry := m.store.Peek(sigSolutions)
	list, _ := entry.Payload.([]dataverse.Solution)
	return list, entry
}

func (m *Model) userList() ([]dataverse.User, cache.Entry) {
	entry := m.store.Peek(m.usersSig())
	list, _ := entry.Payload.([]dataverse.User)
	return list, entry
}

func (m *Model) optionSetList() ([]dataverse.OptionSet, cache.Entry) {
	entry := m.store.Peek(sigOptionSets)
	list, _ := entry.Payload.([]dataverse.OptionSet)
	return list, entry
}

func (m *Model) instanceList() ([]dataverse.Instance, cache.Entry) {
	entry := m.store.Peek(sigDiscovery)
	list, _ := entry.Payload.([]dataverse.Instance)
	return list, entry
}

func (m *Model) entityDetail(logical string) *dataverse.EntityDetail {
	detail, _ := m.store.Peek("entity/" + logical).Payload.(*dataverse.EntityDetail)
	return detail
}

func (m *Model) entitySetFor(logical string) string {
	entities, _ := m.entityList()
	for _, e := range entities {
		if e.LogicalName == logical {
			return e.SetName()
		}
	}
	return logical + "s"
}

func (m *Model) solutionByID(id string) dataverse.Solution {
	solutions, _ := m.solutionList()
	for _, s := range solutions {
		if s.ID == id {
			return s
		}
	}
	return dataverse.Solution{ID: id}
}

func (m *Model) userByID(id string) dataverse.User {
	users, _ := m.userList()
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return dataverse.User{ID: id}
}
