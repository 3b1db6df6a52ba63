package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Task is one declarative HTTP call within a batch. Tasks are read-only
// input; the engine works on resolved copies.
type Task struct {
	ConfigName     string              `json:"configName" yaml:"configName"`
	Method         string              `json:"method" yaml:"method"`
	Path           string              `json:"path" yaml:"path"`
	Params         Pairs               `json:"params,omitempty" yaml:"params,omitempty"`
	Headers        Pairs               `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body           string              `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFile       string              `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`
	MultipartData  Pairs               `json:"multipartData,omitempty" yaml:"multipartData,omitempty"`
	MultipartFiles map[string]FileSpec `json:"multipartFiles,omitempty" yaml:"multipartFiles,omitempty"`
	DelayBefore    Duration            `json:"delayBefore,omitempty" yaml:"delayBefore,omitempty"`
	DelayAfter     Duration            `json:"delayAfter,omitempty" yaml:"delayAfter,omitempty"`
	ExtractVars    Pairs               `json:"extractVars,omitempty" yaml:"extractVars,omitempty"`
}

var supportedMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// CanonicalMethod returns the upper-cased, trimmed HTTP method.
func (t *Task) CanonicalMethod() string {
	return strings.ToUpper(strings.TrimSpace(t.Method))
}

// Validate reports structural problems that make the task unrunnable.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ConfigName) == "" {
		return errors.New("configName is required")
	}
	if !supportedMethods[t.CanonicalMethod()] {
		return fmt.Errorf("unsupported method %q", t.Method)
	}
	if strings.TrimSpace(t.Path) == "" {
		return errors.New("path is required")
	}
	if t.DelayBefore < 0 || t.DelayAfter < 0 {
		return errors.New("delays must not be negative")
	}
	for field, spec := range t.MultipartFiles {
		if strings.TrimSpace(spec.Path) == "" {
			return fmt.Errorf("multipart file %q: path is required", field)
		}
	}
	return nil
}

// Clone returns a deep copy safe to mutate during resolution.
func (t *Task) Clone() *Task {
	c := *t
	c.Params = slices.Clone(t.Params)
	c.Headers = slices.Clone(t.Headers)
	c.MultipartData = slices.Clone(t.MultipartData)
	c.ExtractVars = slices.Clone(t.ExtractVars)
	c.MultipartFiles = maps.Clone(t.MultipartFiles)
	return &c
}

// Duration is a wait interval. Batch documents may give it either as a
// plain number of seconds or as a Go duration string such as "500ms".
type Duration time.Duration

// Std converts to the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String renders the Go duration form.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON renders the duration as its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a number (seconds) or a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return d.fromString(s)
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// UnmarshalYAML accepts a number (seconds) or a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs float64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	return d.fromString(s)
}

func (d *Duration) fromString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}
