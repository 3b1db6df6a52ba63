package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Batch is the top-level document shape: {"tasks": [...]}.
type Batch struct {
	Tasks []*Task `json:"tasks" yaml:"tasks"`
}

// LoadBatch reads and parses a batch document. YAML is selected by the
// .yaml/.yml extension, JSON otherwise. Relative bodyFile and multipart
// file paths are rebased onto the batch file's directory.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var b *Batch
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = ParseBatchYAML(data)
	default:
		b, err = ParseBatch(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}

	b.RebaseFiles(filepath.Dir(path))
	return b, nil
}

// ParseBatch decodes a JSON batch document.
func ParseBatch(data []byte) (*Batch, error) {
	var b Batch
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&b); err != nil {
		return nil, err
	}
	if b.Tasks == nil {
		return nil, errors.New("batch: missing tasks list")
	}
	return &b, nil
}

// ParseBatchYAML decodes a YAML batch document.
func ParseBatchYAML(data []byte) (*Batch, error) {
	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b.Tasks == nil {
		return nil, errors.New("batch: missing tasks list")
	}
	return &b, nil
}

// RebaseFiles makes relative file references absolute against dir. Paths
// that are already absolute are left alone.
func (b *Batch) RebaseFiles(dir string) {
	if dir == "" || dir == "." {
		return
	}
	for _, t := range b.Tasks {
		if t == nil {
			continue
		}
		if t.BodyFile != "" && !filepath.IsAbs(t.BodyFile) {
			t.BodyFile = filepath.Join(dir, t.BodyFile)
		}
		for field, spec := range t.MultipartFiles {
			if spec.Path != "" && !filepath.IsAbs(spec.Path) {
				spec.Path = filepath.Join(dir, spec.Path)
				t.MultipartFiles[field] = spec
			}
		}
	}
}

// Validate checks every task, reporting the first structural problem with
// its index.
func (b *Batch) Validate() error {
	for i, t := range b.Tasks {
		if t == nil {
			return fmt.Errorf("task %d: is null", i)
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}
