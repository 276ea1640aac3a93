package derive

import "github.com/dvxtools/dvx/internal/dataverse"

// Direction classifies a relationship relative to a viewing entity.
type Direction int

const (
	// OneToMany: the viewing entity is referenced by the other end.
	OneToMany Direction = iota
	// ManyToOne: the viewing entity references the other end.
	ManyToOne
	// ManyToMany: both ends join through an intersect entity.
	ManyToMany
)

// String returns the conventional notation for the direction.
func (d Direction) String() string {
	switch d {
	case OneToMany:
		return "1:N"
	case ManyToOne:
		return "N:1"
	case ManyToMany:
		return "N:N"
	default:
		return "?"
	}
}

// Classify determines a relationship's direction as seen from fromEntity and
// resolves the entity at the other end. Self-referential relationships report
// fromEntity as the related entity.
func Classify(rel dataverse.Relationship, fromEntity string) (Direction, string) {
	if rel.IntersectEntityName != "" || (rel.Entity1LogicalName != "" && rel.Entity2LogicalName != "") {
		related := rel.Entity1LogicalName
		if related == fromEntity {
			related = rel.Entity2LogicalName
		}
		return ManyToMany, related
	}
	if rel.ReferencingEntity == fromEntity && rel.ReferencedEntity != fromEntity {
		return ManyToOne, rel.ReferencedEntity
	}
	if rel.ReferencedEntity == fromEntity && rel.ReferencingEntity != fromEntity {
		return OneToMany, rel.ReferencingEntity
	}
	// Self-referential or ambiguous rows read as 1:N on the viewing entity.
	return OneToMany, fromEntity
}
