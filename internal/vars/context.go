// Package vars holds the per-run execution context and the template
// placeholder resolver that reads from it.
package vars

import (
	"maps"

	"github.com/Benjamin-Hogan/restload/internal/task"
)

// Context is the mutable state of one batch run: the ordered result
// history and the variable table written by extraction. A Context belongs
// to exactly one run; the engine is its only writer.
type Context struct {
	history   []*task.Result
	variables map[string]any
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{variables: make(map[string]any)}
}

// Append records a result. Its index is the executed order, which is what
// history template references count by.
func (c *Context) Append(r *task.Result) {
	c.history = append(c.history, r)
}

// History returns the recorded results in execution order.
func (c *Context) History() []*task.Result {
	return c.history
}

// Size returns the number of recorded results.
func (c *Context) Size() int {
	return len(c.history)
}

// Result returns history entry i, or nil when i is out of range.
func (c *Context) Result(i int) *task.Result {
	if i < 0 || i >= len(c.history) {
		return nil
	}
	return c.history[i]
}

// Set writes a variable. Later writes under the same name overwrite
// earlier ones; entries are never removed during a run.
func (c *Context) Set(name string, value any) {
	c.variables[name] = value
}

// Lookup reads a variable.
func (c *Context) Lookup(name string) (any, bool) {
	v, ok := c.variables[name]
	return v, ok
}

// Variables returns a copy of the variable table.
func (c *Context) Variables() map[string]any {
	return maps.Clone(c.variables)
}
