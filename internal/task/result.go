package task

import (
	"fmt"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/httpc"
)

// ErrorKind classifies why a task failed.
type ErrorKind string

const (
	KindVariableResolution ErrorKind = "VariableResolutionError"
	KindConfigNotFound     ErrorKind = "ConfigNotFoundError"
	KindFile               ErrorKind = "FileError"
	KindExtraction         ErrorKind = "ExtractionError"
	KindTransport          ErrorKind = "TransportError"
)

// ErrorInfo describes a task failure.
type ErrorInfo struct {
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	Field       string    `json:"field,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

func (e *ErrorInfo) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s in %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Warning records a non-fatal extraction failure on a successful task.
type Warning struct {
	Var     string `json:"var"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is one recorded task outcome. Instances are created once, in
// execution order, and never mutated after the run moves past them.
type Result struct {
	Task      *Task           `json:"task"`
	Success   bool            `json:"success"`
	Response  *httpc.Response `json:"response"`
	Error     *ErrorInfo      `json:"error"`
	Timestamp time.Time       `json:"timestamp"`
	Warnings  []Warning       `json:"warnings,omitempty"`
}

// Failure builds an errored result for t.
func Failure(t *Task, errInfo *ErrorInfo) *Result {
	return &Result{
		Task:      t,
		Success:   false,
		Error:     errInfo,
		Timestamp: time.Now().UTC(),
	}
}
