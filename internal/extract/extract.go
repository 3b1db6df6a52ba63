// Package extract pulls values out of recorded HTTP responses using the
// dotted path expressions understood by extractVars and by history
// template references.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Benjamin-Hogan/restload/internal/httpc"
	"github.com/tidwall/gjson"
)

// Error reports a failed extraction for a single variable. It never aborts
// the task it occurred in.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %q: %s", e.Path, e.Reason)
}

// Extract evaluates a path expression against a recorded response.
// Supported forms:
//
//	status_code          response status as an integer
//	body                 raw response text
//	headers.<name>       case-insensitive header lookup
//	json.<seg>(.<seg>)*  navigation into the parsed JSON body
//	<seg>(.<seg>)*       shorthand for the json. form
//
// On an array a segment must be a non-negative integer index; on an object
// it is a key. Missing keys, out-of-range indexes and navigation through
// null or scalar values are extraction errors.
func Extract(resp *httpc.Response, pathExpr string) (any, error) {
	if resp == nil {
		return nil, &Error{Path: pathExpr, Reason: "no response recorded"}
	}

	expr := strings.TrimSpace(pathExpr)
	switch {
	case expr == "":
		return nil, &Error{Path: pathExpr, Reason: "empty path"}
	case expr == "status_code":
		return resp.StatusCode, nil
	case expr == "body":
		return resp.Body, nil
	case expr == "headers":
		return nil, &Error{Path: pathExpr, Reason: "missing header name"}
	case strings.HasPrefix(expr, "headers."):
		name := strings.ToLower(expr[len("headers."):])
		if v, ok := resp.Headers[name]; ok {
			return v, nil
		}
		return nil, &Error{Path: pathExpr, Reason: fmt.Sprintf("header %q not present", name)}
	}

	path := expr
	if expr == "json" {
		path = ""
	} else if strings.HasPrefix(expr, "json.") {
		path = expr[len("json."):]
	}

	if !gjson.Valid(resp.Body) {
		return nil, &Error{Path: pathExpr, Reason: "response body is not valid JSON"}
	}
	cur := gjson.Parse(resp.Body)
	if path == "" {
		return cur.Value(), nil
	}

	for _, seg := range strings.Split(path, ".") {
		next, err := step(cur, seg)
		if err != nil {
			return nil, &Error{Path: pathExpr, Reason: err.Error()}
		}
		cur = next
	}
	return cur.Value(), nil
}

// step advances one navigation segment. Arrays take integer indexes,
// objects take keys; anything else cannot be navigated through.
func step(cur gjson.Result, seg string) (gjson.Result, error) {
	switch {
	case cur.IsArray():
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 {
			return gjson.Result{}, fmt.Errorf("segment %q is not an array index", seg)
		}
		arr := cur.Array()
		if idx >= len(arr) {
			return gjson.Result{}, fmt.Errorf("index %d out of range (%d elements)", idx, len(arr))
		}
		return arr[idx], nil
	case cur.IsObject():
		v, ok := cur.Map()[seg]
		if !ok {
			return gjson.Result{}, fmt.Errorf("key %q not found", seg)
		}
		return v, nil
	case cur.Type == gjson.Null:
		return gjson.Result{}, fmt.Errorf("cannot navigate %q through null", seg)
	default:
		return gjson.Result{}, fmt.Errorf("cannot navigate %q through a %s value", seg, cur.Type)
	}
}
