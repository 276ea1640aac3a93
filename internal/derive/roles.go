package derive

import (
	"sort"
	"strings"

	"github.com/dvxtools/dvx/internal/dataverse"
)

// OriginKind ranks how a role reached a user. Lower values are more specific
// and win deduplication.
type OriginKind int

const (
	// OriginDirect means the role is assigned to the user directly.
	OriginDirect OriginKind = iota
	// OriginTeam means the role is inherited through team membership.
	OriginTeam
	// OriginBusinessUnit means the role is inherited through the business
	// unit parent chain.
	OriginBusinessUnit
)

// Origin describes how a role assignment reached the user. Path holds the
// team name for OriginTeam, or the business unit chain (user's unit first)
// for OriginBusinessUnit.
type Origin struct {
	Kind OriginKind
	Path []string
}

// String renders the origin for display.
func (o Origin) String() string {
	switch o.Kind {
	case OriginDirect:
		return "Direct"
	case OriginTeam:
		if len(o.Path) > 0 {
			return "Team: " + o.Path[0]
		}
		return "Team"
	case OriginBusinessUnit:
		if len(o.Path) > 0 {
			return "Business unit: " + strings.Join(o.Path, " / ")
		}
		return "Business unit"
	default:
		return "Unknown"
	}
}

// RoleAssignment is one resolved (role, origin) pair for a user.
type RoleAssignment struct {
	Role   dataverse.Role
	Origin Origin
}

// RoleInput is the raw material for one user's effective-role resolution.
type RoleInput struct {
	UserBusinessUnitID string
	DirectRoles        []dataverse.Role
	Teams              []dataverse.Team
	TeamRoles          map[string][]dataverse.Role // keyed by team ID
	BusinessUnits      []dataverse.BusinessUnit
	OrgRoles           []dataverse.Role // all roles with their owning unit
}

// InheritancePolicy decides whether a business-unit-level role counts as
// inherited by a user whose unit chain passes through the owning unit. The
// platform's exact rule is environment-dependent, so it stays pluggable.
type InheritancePolicy func(role dataverse.Role, owner dataverse.BusinessUnit, depth int) bool

// AncestorUnitsInherit is the default policy: roles owned by a strict
// ancestor of the user's business unit are reported as inherited; roles owned
// by the user's own unit only count when directly or team assigned.
func AncestorUnitsInherit(role dataverse.Role, owner dataverse.BusinessUnit, depth int) bool {
	return depth > 0
}

// ResolveRoles computes a user's effective role assignments with origins.
//
// Direct roles come first, then team roles, then business-unit-chain roles
// admitted by the policy. When the same role arrives through several paths
// the most specific origin is kept (Direct beats Team beats BusinessUnit).
// The business unit chain is walked iteratively with a visited set, so cyclic
// parent data terminates with a partial result instead of hanging.
func ResolveRoles(input RoleInput, policy InheritancePolicy) []RoleAssignment {
	if policy == nil {
		policy = AncestorUnitsInherit
	}

	resolved := make(map[string]RoleAssignment)

	add := func(role dataverse.Role, origin Origin) {
		if role.ID == "" {
			return
		}
		if existing, ok := resolved[role.ID]; ok && existing.Origin.Kind <= origin.Kind {
			return
		}
		resolved[role.ID] = RoleAssignment{Role: role, Origin: origin}
	}

	for _, role := range input.DirectRoles {
		add(role, Origin{Kind: OriginDirect})
	}

	for _, team := range input.Teams {
		for _, role := range input.TeamRoles[team.ID] {
			add(role, Origin{Kind: OriginTeam, Path: []string{team.Name}})
		}
	}

	unitsByID := make(map[string]dataverse.BusinessUnit, len(input.BusinessUnits))
	for _, unit := range input.BusinessUnits {
		unitsByID[unit.ID] = unit
	}
	rolesByUnit := make(map[string][]dataverse.Role)
	for _, role := range input.OrgRoles {
		if role.BusinessUnitID != "" {
			rolesByUnit[role.BusinessUnitID] = append(rolesByUnit[role.BusinessUnitID], role)
		}
	}

	// Walk the parent chain from the user's unit upward. A visited set guards
	// against cyclic parent links in malformed data.
	visited := make(map[string]bool)
	var chain []string
	depth := 0
	for unitID := input.UserBusinessUnitID; unitID != "" && !visited[unitID]; depth++ {
		visited[unitID] = true
		unit, ok := unitsByID[unitID]
		if !ok {
			break
		}
		chain = append(chain, unit.Name)
		for _, role := range rolesByUnit[unitID] {
			if policy(role, unit, depth) {
				path := make([]string, len(chain))
				copy(path, chain)
				add(role, Origin{Kind: OriginBusinessUnit, Path: path})
			}
		}
		unitID = unit.ParentID
	}

	out := make([]RoleAssignment, 0, len(resolved))
	for _, assignment := range resolved {
		out = append(out, assignment)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role.Name != out[j].Role.Name {
			return out[i].Role.Name < out[j].Role.Name
		}
		return out[i].Origin.Kind < out[j].Origin.Kind
	})
	return out
}
