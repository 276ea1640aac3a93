package dataverse

// odataList is the generic OData collection envelope.
type odataList[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
	Count    int64  `json:"@odata.count"`
}

// Label is the localized label structure Dataverse uses for display names and
// descriptions.
type Label struct {
	LocalizedLabels    []LabelValue `json:"LocalizedLabels"`
	UserLocalizedLabel *LabelValue  `json:"UserLocalizedLabel"`
}

// LabelValue is one language's text for a Label.
type LabelValue struct {
	Label        string `json:"Label"`
	LanguageCode int    `json:"LanguageCode"`
}

// Text returns the user's localized text, or empty when none is set.
func (l *Label) Text() string {
	if l == nil || l.UserLocalizedLabel == nil {
		return ""
	}
	return l.UserLocalizedLabel.Label
}

// Entity is a row from EntityDefinitions.
type Entity struct {
	MetadataID           string `json:"MetadataId"`
	LogicalName          string `json:"LogicalName"`
	SchemaName           string `json:"SchemaName"`
	DisplayName          *Label `json:"DisplayName"`
	Description          *Label `json:"Description"`
	PrimaryIDAttribute   string `json:"PrimaryIdAttribute"`
	PrimaryNameAttribute string `json:"PrimaryNameAttribute"`
	EntitySetName        string `json:"EntitySetName"`
	IsCustomEntity       bool   `json:"IsCustomEntity"`
	IsManaged            bool   `json:"IsManaged"`
	ObjectTypeCode       int    `json:"ObjectTypeCode"`
}

// Display returns the display name, falling back to the logical name.
func (e Entity) Display() string {
	if text := e.DisplayName.Text(); text != "" {
		return text
	}
	return e.LogicalName
}

// SetName returns the entity set name used in query URLs, guessing a plural
// when the service did not provide one.
func (e Entity) SetName() string {
	if e.EntitySetName != "" {
		return e.EntitySetName
	}
	return e.LogicalName + "s"
}

// boolManaged wraps the BooleanManagedProperty shape some metadata fields use.
type boolManaged struct {
	Value bool `json:"Value"`
}

// stringWrapped wraps metadata fields of the form {"Value": "..."}.
type stringWrapped struct {
	Value string `json:"Value"`
}

// Attribute is a row from an entity's Attributes collection.
type Attribute struct {
	MetadataID    string         `json:"MetadataId"`
	LogicalName   string         `json:"LogicalName"`
	SchemaName    string         `json:"SchemaName"`
	DisplayName   *Label         `json:"DisplayName"`
	Description   *Label         `json:"Description"`
	AttributeType string         `json:"AttributeType"`
	TypeName      *stringWrapped `json:"AttributeTypeName"`
	RequiredLevel *stringWrapped `json:"RequiredLevel"`
	IsCustom      bool           `json:"IsCustomAttribute"`
	IsPrimaryID   bool           `json:"IsPrimaryId"`
	IsPrimaryName bool           `json:"IsPrimaryName"`
	MaxLength     *int           `json:"MaxLength"`
}

// Display returns the display name, falling back to the logical name.
func (a Attribute) Display() string {
	if text := a.DisplayName.Text(); text != "" {
		return text
	}
	return a.LogicalName
}

// Type returns the most specific attribute type name available.
func (a Attribute) Type() string {
	if a.TypeName != nil && a.TypeName.Value != "" {
		return a.TypeName.Value
	}
	if a.AttributeType != "" {
		return a.AttributeType
	}
	return "Unknown"
}

// Required reports whether the platform enforces a value for this attribute.
func (a Attribute) Required() bool {
	if a.RequiredLevel == nil {
		return false
	}
	return a.RequiredLevel.Value == "ApplicationRequired" || a.RequiredLevel.Value == "SystemRequired"
}

// Relationship is a row from an entity's relationship collections. 1:N and N:1
// rows populate the Referencing/Referenced fields; N:N rows populate the
// Entity1/Entity2/Intersect fields.
type Relationship struct {
	SchemaName           string `json:"SchemaName"`
	ReferencingEntity    string `json:"ReferencingEntity"`
	ReferencingAttribute string `json:"ReferencingAttribute"`
	ReferencedEntity     string `json:"ReferencedEntity"`
	ReferencedAttribute  string `json:"ReferencedAttribute"`
	Entity1LogicalName   string `json:"Entity1LogicalName"`
	Entity2LogicalName   string `json:"Entity2LogicalName"`
	IntersectEntityName  string `json:"IntersectEntityName"`
}

// EntityDetail bundles everything the entity detail view needs for one entity.
type EntityDetail struct {
	Entity     Entity
	Attributes []Attribute
	OneToMany  []Relationship
	ManyToOne  []Relationship
	ManyToMany []Relationship
}

// Solution is a row from the solutions entity set.
type Solution struct {
	ID           string `json:"solutionid"`
	UniqueName   string `json:"uniquename"`
	FriendlyName string `json:"friendlyname"`
	Version      string `json:"version"`
	IsManaged    bool   `json:"ismanaged"`
	Description  string `json:"description"`
	InstalledOn  string `json:"installedon"`
}

// Display returns the friendly name, falling back to the unique name.
func (s Solution) Display() string {
	if s.FriendlyName != "" {
		return s.FriendlyName
	}
	return s.UniqueName
}

// SolutionComponent is a row from solutioncomponents.
type SolutionComponent struct {
	ID            string `json:"solutioncomponentid"`
	ComponentType int    `json:"componenttype"`
	ObjectID      string `json:"objectid"`
	RootBehavior  int    `json:"rootcomponentbehavior"`
}

// TypeName maps the component type code to a display name.
func (c SolutionComponent) TypeName() string {
	if name, ok := componentTypeNames[c.ComponentType]; ok {
		return name
	}
	return "Unknown"
}

// componentTypeNames covers the component type codes dvx displays. The full
// platform list is much longer; unknown codes render as "Unknown".
var componentTypeNames = map[int]string{
	1:  "Entity",
	2:  "Attribute",
	3:  "Relationship",
	9:  "Option Set",
	10: "Entity Relationship",
	13: "Managed Property",
	14: "Entity Key",
	20: "Security Role",
	21: "Role Privilege",
	26: "View",
	29: "Workflow/Flow",
	31: "Report",
	36: "Email Template",
	44: "Duplicate Rule",
	50: "Ribbon",
	59: "Chart",
	60: "Form",
	61: "Web Resource",
	62: "Site Map",
	63: "Connection Role",
	66: "Custom",
	70: "Field Security Profile",
	71: "Field Permission",
	80: "App Module",
	90: "Plugin Type",
	91: "Plugin Assembly",
	92: "Plugin Step",
}

// LayerRecord is a row from msdyn_componentlayers: one solution's contribution
// to a component's customization history.
type LayerRecord struct {
	ID            string `json:"msdyn_componentlayerid"`
	SolutionName  string `json:"msdyn_solutionname"`
	ComponentName string `json:"msdyn_componentname"`
	Order         int    `json:"msdyn_order"`
	IsManaged     bool   `json:"msdyn_ismanaged"`
	PublisherName string `json:"msdyn_publishername"`
}

// BusinessUnitRef is the expanded businessunitid lookup on users and roles.
type BusinessUnitRef struct {
	ID   string `json:"businessunitid"`
	Name string `json:"name"`
}

// BusinessUnit is a row from the businessunits entity set, including the
// parent link used for hierarchy traversal.
type BusinessUnit struct {
	ID       string `json:"businessunitid"`
	Name     string `json:"name"`
	ParentID string `json:"_parentbusinessunitid_value"`
}

// User is a row from systemusers.
type User struct {
	ID           string           `json:"systemuserid"`
	FullName     string           `json:"fullname"`
	DomainName   string           `json:"domainname"`
	Email        string           `json:"internalemailaddress"`
	IsDisabled   bool             `json:"isdisabled"`
	Title        string           `json:"title"`
	CreatedOn    string           `json:"createdon"`
	BusinessUnit *BusinessUnitRef `json:"businessunitid"`
}

// Display returns the full name, falling back to the domain name.
func (u User) Display() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.DomainName != "" {
		return u.DomainName
	}
	return "Unknown"
}

// Status renders the enabled/disabled state.
func (u User) Status() string {
	if u.IsDisabled {
		return "Disabled"
	}
	return "Enabled"
}

// Team is a row from the teams entity set.
type Team struct {
	ID        string `json:"teamid"`
	Name      string `json:"name"`
	TeamType  int    `json:"teamtype"`
	IsDefault bool   `json:"isdefault"`
}

// TypeName maps the team type code to a display name.
func (t Team) TypeName() string {
	switch t.TeamType {
	case 0:
		return "Owner"
	case 1:
		return "Access"
	case 2:
		return "AAD Security Group"
	case 3:
		return "AAD Office Group"
	default:
		return "Unknown"
	}
}

// Role is a row from the roles entity set or a role association.
type Role struct {
	ID             string           `json:"roleid"`
	Name           string           `json:"name"`
	IsManaged      bool             `json:"ismanaged"`
	BusinessUnit   *BusinessUnitRef `json:"businessunitid"`
	BusinessUnitID string           `json:"_businessunitid_value"`
}

// BusinessUnitName returns the owning business unit's name, or "-".
func (r Role) BusinessUnitName() string {
	if r.BusinessUnit != nil && r.BusinessUnit.Name != "" {
		return r.BusinessUnit.Name
	}
	return "-"
}

// OptionSet is a row from GlobalOptionSetDefinitions.
type OptionSet struct {
	MetadataID  string `json:"MetadataId"`
	Name        string `json:"Name"`
	DisplayName *Label `json:"DisplayName"`
	Description *Label `json:"Description"`
	IsCustom    bool   `json:"IsCustomOptionSet"`
}

// Display returns the display name, falling back to the schema name.
func (o OptionSet) Display() string {
	if text := o.DisplayName.Text(); text != "" {
		return text
	}
	return o.Name
}

// Instance is one environment from the Global Discovery Service.
type Instance struct {
	ID           string `json:"Id"`
	URL          string `json:"Url"`
	UniqueName   string `json:"UniqueName"`
	FriendlyName string `json:"FriendlyName"`
	Region       string `json:"Region"`
	Version      string `json:"Version"`
	State        int    `json:"State"`
}
