package derive

import (
	"testing"

	"github.com/dvxtools/dvx/internal/dataverse"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		rel         dataverse.Relationship
		from        string
		wantDir     Direction
		wantRelated string
	}{
		{
			name:        "one to many",
			rel:         dataverse.Relationship{ReferencedEntity: "account", ReferencingEntity: "contact"},
			from:        "account",
			wantDir:     OneToMany,
			wantRelated: "contact",
		},
		{
			name:        "many to one",
			rel:         dataverse.Relationship{ReferencedEntity: "systemuser", ReferencingEntity: "account"},
			from:        "account",
			wantDir:     ManyToOne,
			wantRelated: "systemuser",
		},
		{
			name:        "many to many",
			rel:         dataverse.Relationship{Entity1LogicalName: "account", Entity2LogicalName: "lead", IntersectEntityName: "accountleads"},
			from:        "account",
			wantDir:     ManyToMany,
			wantRelated: "lead",
		},
		{
			name:        "self referential",
			rel:         dataverse.Relationship{ReferencedEntity: "account", ReferencingEntity: "account"},
			from:        "account",
			wantDir:     OneToMany,
			wantRelated: "account",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir, related := Classify(tc.rel, tc.from)
			if dir != tc.wantDir {
				t.Fatalf("direction = %v, want %v", dir, tc.wantDir)
			}
			if related != tc.wantRelated {
				t.Fatalf("related = %q, want %q", related, tc.wantRelated)
			}
		})
	}
}

func TestDirectionString(t *testing.T) {
	if OneToMany.String() != "1:N" || ManyToOne.String() != "N:1" || ManyToMany.String() != "N:N" {
		t.Fatalf("direction labels wrong: %s %s %s", OneToMany, ManyToOne, ManyToMany)
	}
}
