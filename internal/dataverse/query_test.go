package dataverse

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestQueryDefinition_BuildURL(t *testing.T) {
	q := QueryDefinition{
		EntitySet: "accounts",
		Select:    []string{"name", "accountnumber"},
		Filter:    "statecode eq 0",
		OrderBy:   "name",
		Top:       10,
	}
	u, err := q.BuildURL()
	if err != nil {
		t.Fatalf("BuildURL returned error: %v", err)
	}
	if u.Path != "accounts" {
		t.Fatalf("path = %q, want accounts", u.Path)
	}
	params := u.Query()
	if params.Get("$select") != "name,accountnumber" {
		t.Fatalf("$select = %q", params.Get("$select"))
	}
	if params.Get("$filter") != "statecode eq 0" {
		t.Fatalf("$filter = %q", params.Get("$filter"))
	}
	if params.Get("$orderby") != "name" || params.Get("$top") != "10" {
		t.Fatalf("$orderby = %q $top = %q", params.Get("$orderby"), params.Get("$top"))
	}
	if params.Has("$skip") {
		t.Fatalf("$skip present, want omitted when zero")
	}
}

func TestQueryDefinition_BuildURLRequiresEntitySet(t *testing.T) {
	var q QueryDefinition
	if _, err := q.BuildURL(); err == nil {
		t.Fatalf("BuildURL returned nil error, want error without entity set")
	}
}

func TestValidateFetchXML(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", `<fetch top="3"><entity name="account"/></fetch>`, true},
		{"empty", "   ", false},
		{"unbalanced", `<fetch><entity></fetch>`, false},
		{"wrong root", `<query><entity name="account"/></query>`, false},
		{"not xml", `select * from account`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFetchXML(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("ValidateFetchXML(%q) = %v, want nil", tc.input, err)
			}
			if !tc.ok {
				if !errors.Is(err, ErrInvalidFetchXML) {
					t.Fatalf("ValidateFetchXML(%q) = %v, want ErrInvalidFetchXML", tc.input, err)
				}
			}
		})
	}
}

func TestFetchEntityName(t *testing.T) {
	got, err := FetchEntityName(`<fetch top="5"><entity name="contact"><attribute name="fullname"/></entity></fetch>`)
	if err != nil {
		t.Fatalf("FetchEntityName returned error: %v", err)
	}
	if got != "contact" {
		t.Fatalf("entity = %q, want contact", got)
	}

	if _, err := FetchEntityName(`<fetch></fetch>`); !errors.Is(err, ErrInvalidFetchXML) {
		t.Fatalf("missing entity element: err = %v, want ErrInvalidFetchXML", err)
	}
	if _, err := FetchEntityName(`not xml`); !errors.Is(err, ErrInvalidFetchXML) {
		t.Fatalf("malformed query: err = %v, want ErrInvalidFetchXML", err)
	}
}

func TestFlattenResult_PrefersFormattedValuesAndDetectsLookups(t *testing.T) {
	raw := map[string]any{}
	payload := `{
		"@odata.count": 2,
		"@odata.nextLink": "https://org/api/data/v9.2/accounts?$skiptoken=x",
		"value": [
			{
				"name": "Contoso",
				"revenue": 1000000.0,
				"revenue@OData.Community.Display.V1.FormattedValue": "$1,000,000.00",
				"_ownerid_value": "guid-1",
				"_ownerid_value@OData.Community.Display.V1.FormattedValue": "Ada Lovelace",
				"_ownerid_value@Microsoft.Dynamics.CRM.lookuplogicalname": "systemuser"
			},
			{
				"name": "Fabrikam",
				"revenue": 5.5
			}
		]
	}`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	result := FlattenResult(raw)

	wantColumns := []string{"_ownerid_value", "name", "revenue"}
	if len(result.Columns) != len(wantColumns) {
		t.Fatalf("Columns = %v, want %v", result.Columns, wantColumns)
	}
	for i, col := range wantColumns {
		if result.Columns[i] != col {
			t.Fatalf("Columns = %v, want sorted %v", result.Columns, wantColumns)
		}
	}

	if len(result.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(result.Rows))
	}
	// Row 0: formatted values win, annotations never become columns.
	if result.Rows[0][1] != "Contoso" || result.Rows[0][2] != "$1,000,000.00" {
		t.Fatalf("row 0 = %v, want formatted revenue", result.Rows[0])
	}
	if result.Rows[0][0] != "Ada Lovelace" {
		t.Fatalf("row 0 owner = %q, want formatted lookup display", result.Rows[0][0])
	}
	// Row 1: missing column renders a dash.
	if result.Rows[1][0] != "-" {
		t.Fatalf("row 1 owner = %q, want '-' for absent value", result.Rows[1][0])
	}
	if result.Rows[1][2] != "5.5" {
		t.Fatalf("row 1 revenue = %q, want 5.5", result.Rows[1][2])
	}

	lookup, ok := result.Lookups[Cell{Row: 0, Col: 0}]
	if !ok {
		t.Fatalf("lookup cell not detected: %v", result.Lookups)
	}
	if lookup.ID != "guid-1" || lookup.LogicalName != "systemuser" || lookup.Display != "Ada Lovelace" {
		t.Fatalf("lookup = %#v", lookup)
	}

	if result.Count != 2 {
		t.Fatalf("Count = %d, want 2", result.Count)
	}
	if result.NextLink == "" {
		t.Fatalf("NextLink empty, want captured")
	}
}

func TestFlattenResult_MissingValueArray(t *testing.T) {
	result := FlattenResult(map[string]any{"unexpected": true})
	if len(result.Columns) != 0 || len(result.Rows) != 0 {
		t.Fatalf("result = %#v, want empty", result)
	}
}

func TestFlattenResult_DeterministicAcrossRuns(t *testing.T) {
	raw := map[string]any{
		"value": []any{
			map[string]any{"b": "2", "a": "1", "c": "3"},
		},
	}
	first := FlattenResult(raw)
	for i := 0; i < 10; i++ {
		again := FlattenResult(raw)
		for j := range first.Columns {
			if first.Columns[j] != again.Columns[j] {
				t.Fatalf("column order changed between runs: %v vs %v", first.Columns, again.Columns)
			}
		}
	}
}
