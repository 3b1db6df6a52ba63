package vars

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/extract"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	historyRe     = regexp.MustCompile(`^(\d+)\.response(?:\.(.+))?$`)
)

// ResolutionError reports a placeholder that could not be resolved. The
// engine treats it as fatal for the task that produced it.
type ResolutionError struct {
	Placeholder string
	Reason      string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %s", e.Placeholder, e.Reason)
}

// Resolver substitutes {{...}} placeholders using a run context. Time
// expressions are evaluated per placeholder at resolution time.
type Resolver struct {
	ctx *Context

	// now is swapped in tests.
	now func() time.Time
}

// NewResolver returns a resolver reading from ctx.
func NewResolver(ctx *Context) *Resolver {
	return &Resolver{ctx: ctx, now: time.Now}
}

// Resolve substitutes every placeholder in s. When s is exactly one
// placeholder with nothing around it, the resolved value keeps its native
// type; otherwise all values are stringified and spliced into the text.
func (r *Resolver) Resolve(s string) (any, error) {
	m := placeholderRe.FindStringSubmatchIndex(s)
	if m == nil {
		return s, nil
	}
	if m[0] == 0 && m[1] == len(s) {
		return r.resolveExpr(strings.TrimSpace(s[m[2]:m[3]]))
	}
	return r.resolveText(s)
}

// ResolveString substitutes every placeholder in s and always returns
// text. Used for URLs, header values and raw bodies.
func (r *Resolver) ResolveString(s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	return r.resolveText(s)
}

// ResolveValue walks a decoded JSON tree and resolves every string leaf
// with Resolve, so single-placeholder leaves keep their native type.
func (r *Resolver) ResolveValue(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return r.Resolve(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			res, err := r.ResolveValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = res
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			res, err := r.ResolveValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	default:
		return v, nil
	}
}

func (r *Resolver) resolveText(s string) (string, error) {
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(ph string) string {
		if firstErr != nil {
			return ph
		}
		expr := strings.TrimSpace(ph[2 : len(ph)-2])
		v, err := r.resolveExpr(expr)
		if err != nil {
			firstErr = err
			return ph
		}
		return Stringify(v)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// resolveExpr evaluates one placeholder expression: a time keyword, a
// history reference of the form <index>.response.<path>, or a variable
// name from the run context.
func (r *Resolver) resolveExpr(expr string) (any, error) {
	switch expr {
	case "":
		return nil, &ResolutionError{Placeholder: "{{}}", Reason: "empty expression"}
	case "timestamp":
		return r.now().UTC().Format(time.RFC3339), nil
	case "timestampUnix":
		return r.now().Unix(), nil
	}

	if m := historyRe.FindStringSubmatch(expr); m != nil {
		return r.resolveHistory(expr, m[1], m[2])
	}

	if v, ok := r.ctx.Lookup(expr); ok {
		return v, nil
	}
	return nil, &ResolutionError{
		Placeholder: "{{" + expr + "}}",
		Reason:      "unknown variable",
	}
}

func (r *Resolver) resolveHistory(expr, idx, path string) (any, error) {
	ph := "{{" + expr + "}}"
	i, err := strconv.Atoi(idx)
	if err != nil {
		return nil, &ResolutionError{Placeholder: ph, Reason: "invalid history index"}
	}
	res := r.ctx.Result(i)
	if res == nil {
		return nil, &ResolutionError{
			Placeholder: ph,
			Reason:      fmt.Sprintf("history index %d out of range (%d recorded)", i, r.ctx.Size()),
		}
	}
	if path == "" {
		return nil, &ResolutionError{Placeholder: ph, Reason: "history reference needs a response path"}
	}
	v, err := extract.Extract(res.Response, path)
	if err != nil {
		return nil, &ResolutionError{Placeholder: ph, Reason: err.Error()}
	}
	return v, nil
}

// Stringify renders a resolved value for splicing into text. Whole
// floats print without a decimal part so JSON-decoded integers round-trip
// cleanly; composites render as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
