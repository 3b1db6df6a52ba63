package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Pair is a single key-value entry of an ordered mapping.
type Pair struct {
	Key   string
	Value string
}

// Pairs is a string mapping that preserves the order of the source
// document. JSON and YAML objects decode into it without losing key
// order; a duplicate key overwrites the value but keeps the original
// position.
type Pairs []Pair

// Get returns the value stored under key.
func (p Pairs) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set stores value under key, appending when the key is new.
func (p *Pairs) Set(key, value string) {
	for i, kv := range *p {
		if kv.Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Pair{Key: key, Value: value})
}

// Len returns the number of entries.
func (p Pairs) Len() int { return len(p) }

// Map returns an unordered copy, for callers that do not care about order.
func (p Pairs) Map() map[string]string {
	if p == nil {
		return nil
	}
	m := make(map[string]string, len(p))
	for _, kv := range p {
		m[kv.Key] = kv.Value
	}
	return m
}

// FromMap builds Pairs from a plain map with keys sorted for determinism.
func FromMap(m map[string]string) Pairs {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := make(Pairs, 0, len(m))
	for _, k := range keys {
		p = append(p, Pair{Key: k, Value: m[k]})
	}
	return p
}

// MarshalJSON renders the mapping as a JSON object in entry order.
func (p Pairs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object via the token stream so that entry
// order survives. Scalar values other than strings are stringified.
func (p *Pairs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ordered mapping: expected object, got %v", tok)
	}

	*p = (*p)[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered mapping: unexpected key token %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		var val string
		switch v := valTok.(type) {
		case string:
			val = v
		case json.Number:
			val = v.String()
		case bool:
			val = strconv.FormatBool(v)
		case nil:
			val = ""
		default:
			return fmt.Errorf("ordered mapping: value for %q must be a scalar", key)
		}
		p.Set(key, val)
	}

	// consume the closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// UnmarshalYAML decodes a YAML mapping node preserving entry order.
func (p *Pairs) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("ordered mapping: expected mapping node, got %v", value.Kind)
	}

	*p = (*p)[:0]
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return fmt.Errorf("ordered mapping: %w", err)
		}

		var val string
		if err := valNode.Decode(&val); err != nil {
			// numbers and booleans decode into any, then stringify
			var anyVal any
			if err2 := valNode.Decode(&anyVal); err2 != nil {
				return fmt.Errorf("ordered mapping: value for %q: %w", key, err)
			}
			val = fmt.Sprint(anyVal)
		}
		p.Set(key, val)
	}
	return nil
}
