package dataverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dvxtools/dvx/internal/auth"
)

// API defines the metadata-service surface the rest of dvx consumes.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	EnvironmentURL() string
	ListEntities(ctx context.Context) ([]Entity, error)
	FetchEntityDetail(ctx context.Context, logicalName string) (*EntityDetail, error)
	ListSolutions(ctx context.Context) ([]Solution, error)
	SolutionComponents(ctx context.Context, solutionID string) ([]SolutionComponent, error)
	ComponentLayers(ctx context.Context, componentName string) ([]LayerRecord, error)
	ListUsers(ctx context.Context, includeDisabled bool) ([]User, error)
	UserTeams(ctx context.Context, userID string) ([]Team, error)
	UserRoles(ctx context.Context, userID string) ([]Role, error)
	TeamRoles(ctx context.Context, teamID string) ([]Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	ListBusinessUnits(ctx context.Context) ([]BusinessUnit, error)
	ListOptionSets(ctx context.Context) ([]OptionSet, error)
	DiscoverEnvironments(ctx context.Context) ([]Instance, error)
	ExecuteFetchXML(ctx context.Context, entitySet, fetchXML string) (*QueryResult, error)
	ExecuteQuery(ctx context.Context, q QueryDefinition) (*QueryResult, error)
	CountNonNull(ctx context.Context, entitySet, attribute string) (int64, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the Dataverse Web API for one environment.
type Client struct {
	envURL    string
	baseURL   *url.URL
	http      *http.Client
	tokens    auth.TokenProvider
	userAgent string
}

const (
	apiVersion       = "v9.2"
	defaultUserAgent = "dvx/0.1"
	requestTimeout   = 30 * time.Second

	discoveryEndpoint = "https://globaldisco.crm.dynamics.com/api/discovery/v2.0/Instances"
	discoveryScope    = "https://globaldisco.crm.dynamics.com"
)

// NewClient builds a Client for the given environment URL.
func NewClient(envURL string, tokens auth.TokenProvider) (*Client, error) {
	base, normalized, err := parseEnvironmentURL(envURL)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, fmt.Errorf("token provider is nil")
	}
	return &Client{
		envURL:    normalized,
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		tokens:    tokens,
		userAgent: defaultUserAgent,
	}, nil
}

// EnvironmentURL returns the normalized environment URL this client targets.
func (c *Client) EnvironmentURL() string {
	return c.envURL
}

const entitySelect = "LogicalName,DisplayName,SchemaName,Description,PrimaryIdAttribute," +
	"PrimaryNameAttribute,EntitySetName,IsCustomEntity,IsManaged,ObjectTypeCode"

// ListEntities retrieves all entity definitions.
func (c *Client) ListEntities(ctx context.Context) ([]Entity, error) {
	params := url.Values{}
	params.Set("$select", entitySelect)
	return getList[Entity](ctx, c, rel("EntityDefinitions", params))
}

const attributeSelect = "LogicalName,DisplayName,SchemaName,Description,AttributeType," +
	"AttributeTypeName,RequiredLevel,IsCustomAttribute,IsPrimaryId,IsPrimaryName"

// FetchEntityDetail retrieves attributes and all three relationship collections
// for one entity. Relationship failures degrade to empty lists; attributes are
// the load-bearing payload.
func (c *Client) FetchEntityDetail(ctx context.Context, logicalName string) (*EntityDetail, error) {
	root := fmt.Sprintf("EntityDefinitions(LogicalName='%s')", logicalName)

	var entity Entity
	params := url.Values{}
	params.Set("$select", entitySelect)
	if err := c.getJSON(ctx, rel(root, params), &entity); err != nil {
		return nil, err
	}

	params = url.Values{}
	params.Set("$select", attributeSelect)
	attrs, err := getList[Attribute](ctx, c, rel(root+"/Attributes", params))
	if err != nil {
		return nil, err
	}

	detail := &EntityDetail{Entity: entity, Attributes: attrs}

	oneToMany := url.Values{}
	oneToMany.Set("$select", "SchemaName,ReferencingEntity,ReferencingAttribute,ReferencedEntity,ReferencedAttribute")
	if rels, err := getList[Relationship](ctx, c, rel(root+"/OneToManyRelationships", oneToMany)); err == nil {
		detail.OneToMany = rels
	}
	if rels, err := getList[Relationship](ctx, c, rel(root+"/ManyToOneRelationships", oneToMany)); err == nil {
		detail.ManyToOne = rels
	}
	manyToMany := url.Values{}
	manyToMany.Set("$select", "SchemaName,Entity1LogicalName,Entity2LogicalName,IntersectEntityName")
	if rels, err := getList[Relationship](ctx, c, rel(root+"/ManyToManyRelationships", manyToMany)); err == nil {
		detail.ManyToMany = rels
	}
	return detail, nil
}

// ListSolutions retrieves all solutions ordered by friendly name.
func (c *Client) ListSolutions(ctx context.Context) ([]Solution, error) {
	params := url.Values{}
	params.Set("$select", "solutionid,uniquename,friendlyname,version,ismanaged,description,installedon")
	params.Set("$orderby", "friendlyname")
	return getList[Solution](ctx, c, rel("solutions", params))
}

// SolutionComponents retrieves the components contained in one solution.
func (c *Client) SolutionComponents(ctx context.Context, solutionID string) ([]SolutionComponent, error) {
	params := url.Values{}
	params.Set("$select", "solutioncomponentid,componenttype,objectid,rootcomponentbehavior")
	params.Set("$filter", fmt.Sprintf("_solutionid_value eq %s", solutionID))
	return getList[SolutionComponent](ctx, c, rel("solutioncomponents", params))
}

// ComponentLayers retrieves the customization layers applied to one component,
// unordered; derive.OrderLayers establishes base-to-top order.
func (c *Client) ComponentLayers(ctx context.Context, componentName string) ([]LayerRecord, error) {
	params := url.Values{}
	params.Set("$select", "msdyn_componentlayerid,msdyn_solutionname,msdyn_componentname,msdyn_order,msdyn_ismanaged,msdyn_publishername")
	params.Set("$filter", fmt.Sprintf("msdyn_componentname eq '%s'", componentName))
	return getList[LayerRecord](ctx, c, rel("msdyn_componentlayers", params))
}

const userSelect = "systemuserid,fullname,domainname,internalemailaddress,isdisabled,title,createdon"

// ListUsers retrieves system users, optionally including disabled accounts.
func (c *Client) ListUsers(ctx context.Context, includeDisabled bool) ([]User, error) {
	params := url.Values{}
	params.Set("$select", userSelect)
	params.Set("$expand", "businessunitid($select=businessunitid,name)")
	params.Set("$orderby", "fullname")
	if !includeDisabled {
		params.Set("$filter", "isdisabled eq false")
	}
	return getList[User](ctx, c, rel("systemusers", params))
}

// UserTeams retrieves the teams a user belongs to.
func (c *Client) UserTeams(ctx context.Context, userID string) ([]Team, error) {
	params := url.Values{}
	params.Set("$select", "teamid,name,teamtype,isdefault")
	return getList[Team](ctx, c, rel(fmt.Sprintf("systemusers(%s)/teammembership_association", userID), params))
}

const roleSelect = "roleid,name,ismanaged"

// UserRoles retrieves the security roles directly assigned to a user.
func (c *Client) UserRoles(ctx context.Context, userID string) ([]Role, error) {
	params := url.Values{}
	params.Set("$select", roleSelect)
	params.Set("$expand", "businessunitid($select=businessunitid,name)")
	return getList[Role](ctx, c, rel(fmt.Sprintf("systemusers(%s)/systemuserroles_association", userID), params))
}

// TeamRoles retrieves the security roles assigned to a team.
func (c *Client) TeamRoles(ctx context.Context, teamID string) ([]Role, error) {
	params := url.Values{}
	params.Set("$select", roleSelect)
	params.Set("$expand", "businessunitid($select=businessunitid,name)")
	return getList[Role](ctx, c, rel(fmt.Sprintf("teams(%s)/teamroles_association", teamID), params))
}

// ListRoles retrieves all security roles with their owning business unit.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	params := url.Values{}
	params.Set("$select", "roleid,name,ismanaged,_businessunitid_value")
	return getList[Role](ctx, c, rel("roles", params))
}

// ListBusinessUnits retrieves the business unit hierarchy.
func (c *Client) ListBusinessUnits(ctx context.Context) ([]BusinessUnit, error) {
	params := url.Values{}
	params.Set("$select", "businessunitid,name,_parentbusinessunitid_value")
	return getList[BusinessUnit](ctx, c, rel("businessunits", params))
}

// ListOptionSets retrieves global option set definitions.
func (c *Client) ListOptionSets(ctx context.Context) ([]OptionSet, error) {
	params := url.Values{}
	params.Set("$select", "Name,DisplayName,Description,IsCustomOptionSet")
	return getList[OptionSet](ctx, c, rel("GlobalOptionSetDefinitions", params))
}

// DiscoverEnvironments lists the environments visible to the signed-in user
// via the Global Discovery Service. The discovery service uses its own token
// scope, independent of the active environment.
func (c *Client) DiscoverEnvironments(ctx context.Context) ([]Instance, error) {
	abs, err := url.Parse(discoveryEndpoint)
	if err != nil {
		return nil, malformedError(err)
	}
	var payload odataList[Instance]
	if err := c.getURL(ctx, abs, discoveryScope, &payload); err != nil {
		return nil, err
	}
	return payload.Value, nil
}

// ExecuteFetchXML runs a raw FetchXML query against an entity set and
// flattens the response into displayable rows.
func (c *Client) ExecuteFetchXML(ctx context.Context, entitySet, fetchXML string) (*QueryResult, error) {
	if err := ValidateFetchXML(fetchXML); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("fetchXml", fetchXML)
	var raw map[string]any
	if err := c.getJSON(ctx, rel(entitySet, params), &raw); err != nil {
		return nil, err
	}
	return FlattenResult(raw), nil
}

// ExecuteQuery runs an ad-hoc OData query built from a QueryDefinition.
func (c *Client) ExecuteQuery(ctx context.Context, q QueryDefinition) (*QueryResult, error) {
	target, err := q.BuildURL()
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := c.getJSON(ctx, target, &raw); err != nil {
		return nil, err
	}
	return FlattenResult(raw), nil
}

// CountNonNull returns the number of records where the attribute has a value.
func (c *Client) CountNonNull(ctx context.Context, entitySet, attribute string) (int64, error) {
	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("%s ne null", attribute))
	body, err := c.getRaw(ctx, rel(entitySet+"/$count", params), c.envURL)
	if err != nil {
		return 0, err
	}
	count, parseErr := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if parseErr != nil {
		return 0, malformedError(parseErr)
	}
	return count, nil
}

func rel(resource string, params url.Values) *url.URL {
	return &url.URL{Path: resource, RawQuery: params.Encode()}
}

func getList[T any](ctx context.Context, c *Client, u *url.URL) ([]T, error) {
	var payload odataList[T]
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	return payload.Value, nil
}

func (c *Client) getJSON(ctx context.Context, u *url.URL, dest any) error {
	return c.getURL(ctx, c.baseURL.ResolveReference(u), c.envURL, dest)
}

func (c *Client) getURL(ctx context.Context, target *url.URL, scope string, dest any) error {
	body, err := c.getRawURL(ctx, target, scope)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return malformedError(err)
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, u *url.URL, scope string) ([]byte, error) {
	return c.getRawURL(ctx, c.baseURL.ResolveReference(u), scope)
}

func (c *Client) getRawURL(ctx context.Context, target *url.URL, scope string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	token, err := c.tokens.Token(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("credential: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("Prefer", `odata.include-annotations="*"`)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode >= 400 {
		return nil, classifyResponse(resp.StatusCode, body)
	}
	return body, nil
}

func parseEnvironmentURL(envURL string) (*url.URL, string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(envURL), "/")
	if trimmed == "" {
		return nil, "", fmt.Errorf("environment URL is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, "", fmt.Errorf("parse environment URL %q: %w", envURL, err)
	}
	if u.Host == "" {
		return nil, "", fmt.Errorf("environment URL %q has no host", envURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	normalized := u.String()

	base := *u
	base.Path = "/api/data/" + apiVersion + "/"
	return &base, normalized, nil
}
