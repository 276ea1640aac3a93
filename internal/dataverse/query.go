package dataverse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidFetchXML indicates user-supplied FetchXML that was rejected before
// being sent to the service.
var ErrInvalidFetchXML = errors.New("invalid FetchXML")

// QueryDefinition is an ad-hoc OData query against one entity set.
type QueryDefinition struct {
	EntityName string   // logical name, for display
	EntitySet  string   // entity set name, for the URL
	Select     []string // columns to select; empty selects all
	Filter     string
	OrderBy    string
	Top        int
	Skip       int
}

// BuildURL renders the query as a relative URL under the Web API root.
func (q QueryDefinition) BuildURL() (*url.URL, error) {
	if strings.TrimSpace(q.EntitySet) == "" {
		return nil, fmt.Errorf("query has no entity set")
	}
	params := url.Values{}
	if len(q.Select) > 0 {
		params.Set("$select", strings.Join(q.Select, ","))
	}
	if q.Filter != "" {
		params.Set("$filter", q.Filter)
	}
	if q.OrderBy != "" {
		params.Set("$orderby", q.OrderBy)
	}
	if q.Top > 0 {
		params.Set("$top", fmt.Sprintf("%d", q.Top))
	}
	if q.Skip > 0 {
		params.Set("$skip", fmt.Sprintf("%d", q.Skip))
	}
	return &url.URL{Path: q.EntitySet, RawQuery: params.Encode()}, nil
}

// Clear resets everything except the entity binding.
func (q *QueryDefinition) Clear() {
	q.Select = nil
	q.Filter = ""
	q.OrderBy = ""
	q.Top = 0
	q.Skip = 0
}

// ValidateFetchXML rejects queries that are not well-formed XML rooted at a
// <fetch> element. Validation runs locally so a typo never costs a round trip.
func ValidateFetchXML(fetchXML string) error {
	trimmed := strings.TrimSpace(fetchXML)
	if trimmed == "" {
		return fmt.Errorf("%w: query is empty", ErrInvalidFetchXML)
	}

	decoder := xml.NewDecoder(strings.NewReader(trimmed))
	sawRoot := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("%w: %v", ErrInvalidFetchXML, err)
		}
		if start, ok := tok.(xml.StartElement); ok && !sawRoot {
			if start.Name.Local != "fetch" {
				return fmt.Errorf("%w: root element is <%s>, want <fetch>", ErrInvalidFetchXML, start.Name.Local)
			}
			sawRoot = true
		}
	}
	if !sawRoot {
		return fmt.Errorf("%w: no elements found", ErrInvalidFetchXML)
	}
	return nil
}

// FetchEntityName extracts the root entity's logical name from a FetchXML
// query. The result routes the query to the right entity set.
func FetchEntityName(fetchXML string) (string, error) {
	if err := ValidateFetchXML(fetchXML); err != nil {
		return "", err
	}
	decoder := xml.NewDecoder(strings.NewReader(strings.TrimSpace(fetchXML)))
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("%w: %v", ErrInvalidFetchXML, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "entity" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "name" && attr.Value != "" {
				return attr.Value, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no <entity name=...> element", ErrInvalidFetchXML)
}

// Cell addresses one value in a QueryResult.
type Cell struct {
	Row, Col int
}

// Lookup carries the target of a lookup-valued cell so the UI can offer
// drill-through.
type Lookup struct {
	ID          string
	LogicalName string
	Display     string
}

// QueryResult is a flattened, display-ready query response.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	Lookups  map[Cell]Lookup
	Count    int64
	NextLink string
}

const (
	formattedValueSuffix = "@OData.Community.Display.V1.FormattedValue"
	lookupLogicalSuffix  = "@Microsoft.Dynamics.CRM.lookuplogicalname"
)

// FlattenResult converts a raw OData response into a QueryResult. Formatted
// value annotations win over raw values; lookup annotations are captured per
// cell; @-prefixed annotation keys never become columns. Column order is
// sorted so repeated queries render identically.
func FlattenResult(raw map[string]any) *QueryResult {
	result := &QueryResult{Lookups: make(map[Cell]Lookup)}

	if link, ok := raw["@odata.nextLink"].(string); ok {
		result.NextLink = link
	}
	if count, ok := raw["@odata.count"].(float64); ok {
		result.Count = int64(count)
	}

	records, ok := raw["value"].([]any)
	if !ok {
		return result
	}

	// Columns come from the union of all record keys; sparse rows are common
	// because Dataverse omits null attributes.
	seen := map[string]bool{}
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		for key := range obj {
			if strings.Contains(key, "@") {
				continue
			}
			seen[key] = true
		}
	}
	for key := range seen {
		result.Columns = append(result.Columns, key)
	}
	sort.Strings(result.Columns)

	for rowIdx, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		row := make([]string, len(result.Columns))
		for colIdx, col := range result.Columns {
			display := "-"
			if formatted, ok := obj[col+formattedValueSuffix].(string); ok {
				display = formatted
			} else if value, present := obj[col]; present {
				display = formatValue(value)
			}
			row[colIdx] = display

			if logical, ok := obj[col+lookupLogicalSuffix].(string); ok {
				if id, ok := obj[col].(string); ok {
					result.Lookups[Cell{Row: rowIdx, Col: colIdx}] = Lookup{
						ID:          id,
						LogicalName: logical,
						Display:     display,
					}
				}
			}
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	case []any:
		return fmt.Sprintf("[%d items]", len(v))
	case map[string]any:
		return "{...}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
