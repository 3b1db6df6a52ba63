package task

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FileSpec names one file attached to a multipart request. Batch documents
// may give it as a bare path string, as a [path, contentType, filename]
// array (trailing elements optional), or as an object with those fields.
type FileSpec struct {
	Path        string `json:"path" yaml:"path"`
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Filename    string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

func (f *FileSpec) fromParts(parts []string) error {
	switch len(parts) {
	case 3:
		f.Filename = parts[2]
		fallthrough
	case 2:
		f.ContentType = parts[1]
		fallthrough
	case 1:
		f.Path = parts[0]
	default:
		return fmt.Errorf("multipart file: expected 1 to 3 elements, got %d", len(parts))
	}
	if f.Path == "" {
		return errors.New("multipart file: path is required")
	}
	return nil
}

// UnmarshalJSON accepts the string, array and object forms.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("multipart file: empty value")
	}
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &f.Path); err != nil {
			return err
		}
		if f.Path == "" {
			return errors.New("multipart file: path is required")
		}
		return nil
	case '[':
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		return f.fromParts(parts)
	default:
		type plain FileSpec
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*f = FileSpec(p)
		if f.Path == "" {
			return errors.New("multipart file: path is required")
		}
		return nil
	}
}

// UnmarshalYAML accepts the string, sequence and mapping forms.
func (f *FileSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if err := value.Decode(&f.Path); err != nil {
			return err
		}
		if f.Path == "" {
			return errors.New("multipart file: path is required")
		}
		return nil
	case yaml.SequenceNode:
		var parts []string
		if err := value.Decode(&parts); err != nil {
			return err
		}
		return f.fromParts(parts)
	case yaml.MappingNode:
		type plain FileSpec
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*f = FileSpec(p)
		if f.Path == "" {
			return errors.New("multipart file: path is required")
		}
		return nil
	default:
		return fmt.Errorf("multipart file: unsupported node kind %v", value.Kind)
	}
}
