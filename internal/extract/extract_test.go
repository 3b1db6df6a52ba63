package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/Benjamin-Hogan/restload/internal/httpc"
)

func sampleResponse() *httpc.Response {
	return &httpc.Response{
		StatusCode: 201,
		Headers: map[string]string{
			"content-type": "application/json",
			"location":     "/users/42",
		},
		Body: `{"id":42,"name":"kim","active":true,"score":1.5,` +
			`"tags":["a","b"],"items":[{"name":"first"},{"name":"second"}],` +
			`"meta":{"nested":{"deep":"v"}},"gone":null}`,
	}
}

func TestExtract_Values(t *testing.T) {
	resp := sampleResponse()

	tests := []struct {
		name string
		path string
		want any
	}{
		{"status code", "status_code", 201},
		{"raw body", "body", resp.Body},
		{"header exact", "headers.location", "/users/42"},
		{"header mixed case", "headers.Content-Type", "application/json"},
		{"json number", "json.id", float64(42)},
		{"json string", "json.name", "kim"},
		{"json bool", "json.active", true},
		{"json float", "json.score", 1.5},
		{"bare shorthand", "id", float64(42)},
		{"array index", "json.tags.0", "a"},
		{"object in array", "json.items.1.name", "second"},
		{"deep nesting", "json.meta.nested.deep", "v"},
		{"null leaf", "json.gone", nil},
		{"whitespace trimmed", "  json.id  ", float64(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(resp, tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch want := tt.want.(type) {
			case nil:
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
			default:
				if got != want {
					t.Errorf("expected %v (%T), got %v (%T)", want, want, got, got)
				}
			}
		})
	}
}

func TestExtract_WholeBodyForms(t *testing.T) {
	resp := sampleResponse()

	v, err := Extract(resp, "json")
	if err != nil {
		t.Fatal(err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", v)
	}
	if m["name"] != "kim" {
		t.Errorf("expected full object, got %v", m)
	}

	v, err = Extract(resp, "json.tags")
	if err != nil {
		t.Fatal(err)
	}
	if arr, ok := v.([]any); !ok || len(arr) != 2 {
		t.Errorf("expected decoded array, got %T %v", v, v)
	}
}

func TestExtract_Errors(t *testing.T) {
	resp := sampleResponse()

	tests := []struct {
		name   string
		resp   *httpc.Response
		path   string
		reason string
	}{
		{"nil response", nil, "json.id", "no response recorded"},
		{"empty path", resp, "", "empty path"},
		{"blank path", resp, "   ", "empty path"},
		{"headers without name", resp, "headers", "missing header name"},
		{"missing header", resp, "headers.x-absent", `header "x-absent" not present`},
		{"missing key", resp, "json.nope", `key "nope" not found`},
		{"non-numeric index", resp, "json.tags.first", `segment "first" is not an array index`},
		{"negative index", resp, "json.tags.-1", `segment "-1" is not an array index`},
		{"index out of range", resp, "json.tags.5", "index 5 out of range (2 elements)"},
		{"through null", resp, "json.gone.x", `cannot navigate "x" through null`},
		{"through scalar", resp, "json.id.x", `cannot navigate "x" through a Number value`},
		{"through string", resp, "json.name.x", `cannot navigate "x" through a String value`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.resp, tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var ee *Error
			if !errors.As(err, &ee) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if !strings.Contains(ee.Reason, tt.reason) {
				t.Errorf("expected reason containing %q, got %q", tt.reason, ee.Reason)
			}
			if ee.Path != tt.path {
				t.Errorf("expected original path %q kept, got %q", tt.path, ee.Path)
			}
		})
	}
}

func TestExtract_NonJSONBody(t *testing.T) {
	resp := &httpc.Response{StatusCode: 200, Body: "plain text, not json"}

	if _, err := Extract(resp, "json.id"); err == nil {
		t.Fatal("expected error for non-JSON body")
	} else if !strings.Contains(err.Error(), "response body is not valid JSON") {
		t.Errorf("unexpected error: %v", err)
	}

	// body and status_code still work without JSON
	if v, err := Extract(resp, "body"); err != nil || v != resp.Body {
		t.Errorf("expected raw body, got %v (err=%v)", v, err)
	}
	if v, err := Extract(resp, "status_code"); err != nil || v != 200 {
		t.Errorf("expected status, got %v (err=%v)", v, err)
	}
}

func TestExtract_EmptyArray(t *testing.T) {
	resp := &httpc.Response{StatusCode: 200, Body: `{"items":[]}`}

	_, err := Extract(resp, "json.items.0")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "index 0 out of range (0 elements)") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExtract_TopLevelArray(t *testing.T) {
	resp := &httpc.Response{StatusCode: 200, Body: `[{"id":1},{"id":2}]`}

	v, err := Extract(resp, "json.1.id")
	if err != nil {
		t.Fatal(err)
	}
	if v != float64(2) {
		t.Errorf("expected 2, got %v", v)
	}
}

func TestError_Message(t *testing.T) {
	e := &Error{Path: "json.x", Reason: `key "x" not found`}
	want := `extract "json.x": key "x" not found`
	if e.Error() != want {
		t.Errorf("expected %q, got %q", want, e.Error())
	}
}
