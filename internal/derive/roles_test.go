package derive

import (
	"testing"

	"github.com/dvxtools/dvx/internal/dataverse"
)

func role(id, name string) dataverse.Role {
	return dataverse.Role{ID: id, Name: name}
}

func unitRole(id, name, unitID string) dataverse.Role {
	return dataverse.Role{ID: id, Name: name, BusinessUnitID: unitID}
}

func TestResolveRoles_DirectBeatsTeam(t *testing.T) {
	input := RoleInput{
		DirectRoles: []dataverse.Role{role("r1", "Salesperson")},
		Teams:       []dataverse.Team{{ID: "t1", Name: "Sales Team"}},
		TeamRoles: map[string][]dataverse.Role{
			"t1": {role("r1", "Salesperson"), role("r2", "Scheduler")},
		},
	}

	got := ResolveRoles(input, nil)
	if len(got) != 2 {
		t.Fatalf("assignments = %d, want 2 (deduplicated)", len(got))
	}

	// Sorted by role name: Salesperson, Scheduler.
	if got[0].Role.ID != "r1" || got[0].Origin.Kind != OriginDirect {
		t.Fatalf("r1 = %+v, want Direct origin kept", got[0])
	}
	if got[1].Role.ID != "r2" || got[1].Origin.Kind != OriginTeam {
		t.Fatalf("r2 = %+v, want Team origin", got[1])
	}
	if got[1].Origin.String() != "Team: Sales Team" {
		t.Fatalf("origin = %q, want team name in path", got[1].Origin.String())
	}
}

func TestResolveRoles_TeamBeatsBusinessUnit(t *testing.T) {
	input := RoleInput{
		UserBusinessUnitID: "bu-child",
		Teams:              []dataverse.Team{{ID: "t1", Name: "Ops"}},
		TeamRoles: map[string][]dataverse.Role{
			"t1": {unitRole("r9", "Auditor", "bu-root")},
		},
		BusinessUnits: []dataverse.BusinessUnit{
			{ID: "bu-child", Name: "Child", ParentID: "bu-root"},
			{ID: "bu-root", Name: "Root"},
		},
		OrgRoles: []dataverse.Role{unitRole("r9", "Auditor", "bu-root")},
	}

	got := ResolveRoles(input, nil)
	if len(got) != 1 {
		t.Fatalf("assignments = %d, want 1", len(got))
	}
	if got[0].Origin.Kind != OriginTeam {
		t.Fatalf("origin = %v, want Team to beat BusinessUnit", got[0].Origin.Kind)
	}
}

func TestResolveRoles_BusinessUnitChainPath(t *testing.T) {
	input := RoleInput{
		UserBusinessUnitID: "bu-leaf",
		BusinessUnits: []dataverse.BusinessUnit{
			{ID: "bu-leaf", Name: "Leaf", ParentID: "bu-mid"},
			{ID: "bu-mid", Name: "Mid", ParentID: "bu-root"},
			{ID: "bu-root", Name: "Root"},
		},
		OrgRoles: []dataverse.Role{
			unitRole("r1", "Basic User", "bu-root"),
			unitRole("r2", "Leaf Only", "bu-leaf"),
		},
	}

	got := ResolveRoles(input, nil)
	if len(got) != 1 {
		t.Fatalf("assignments = %v, want only the ancestor-unit role", got)
	}
	if got[0].Role.ID != "r1" || got[0].Origin.Kind != OriginBusinessUnit {
		t.Fatalf("assignment = %+v, want r1 via business unit", got[0])
	}
	wantPath := []string{"Leaf", "Mid", "Root"}
	if len(got[0].Origin.Path) != len(wantPath) {
		t.Fatalf("path = %v, want %v", got[0].Origin.Path, wantPath)
	}
	for i := range wantPath {
		if got[0].Origin.Path[i] != wantPath[i] {
			t.Fatalf("path = %v, want %v", got[0].Origin.Path, wantPath)
		}
	}
}

func TestResolveRoles_CycleTerminates(t *testing.T) {
	input := RoleInput{
		UserBusinessUnitID: "bu-a",
		BusinessUnits: []dataverse.BusinessUnit{
			{ID: "bu-a", Name: "A", ParentID: "bu-b"},
			{ID: "bu-b", Name: "B", ParentID: "bu-a"}, // cycle
		},
		OrgRoles: []dataverse.Role{unitRole("r1", "Basic User", "bu-b")},
	}

	got := ResolveRoles(input, nil)
	if len(got) != 1 {
		t.Fatalf("assignments = %v, want finite result despite cycle", got)
	}
	if got[0].Role.ID != "r1" {
		t.Fatalf("assignment = %+v, want r1 from unit B", got[0])
	}
}

func TestResolveRoles_CustomPolicy(t *testing.T) {
	noInheritance := func(role dataverse.Role, owner dataverse.BusinessUnit, depth int) bool {
		return false
	}
	input := RoleInput{
		UserBusinessUnitID: "bu-a",
		BusinessUnits: []dataverse.BusinessUnit{
			{ID: "bu-a", Name: "A", ParentID: "bu-b"},
			{ID: "bu-b", Name: "B"},
		},
		OrgRoles: []dataverse.Role{unitRole("r1", "Basic User", "bu-b")},
	}

	got := ResolveRoles(input, noInheritance)
	if len(got) != 0 {
		t.Fatalf("assignments = %v, want none under a deny-all policy", got)
	}
}

func TestResolveRoles_DeterministicOrder(t *testing.T) {
	input := RoleInput{
		DirectRoles: []dataverse.Role{
			role("r3", "Zeta"),
			role("r1", "Alpha"),
			role("r2", "Mid"),
		},
	}
	first := ResolveRoles(input, nil)
	for i := 0; i < 5; i++ {
		again := ResolveRoles(input, nil)
		for j := range first {
			if first[j].Role.ID != again[j].Role.ID {
				t.Fatalf("order changed between runs")
			}
		}
	}
	if first[0].Role.Name != "Alpha" || first[2].Role.Name != "Zeta" {
		t.Fatalf("order = %v, want sorted by role name", first)
	}
}
