// Package openapi parses OpenAPI 3.x and Swagger 2.0 documents into a
// flat endpoint table. It reads just enough of the document to list and
// describe callable endpoints; it is not a full schema model.
package openapi

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the parsed, flattened form of an API description.
type Document struct {
	Title       string     `json:"title"`
	Version     string     `json:"version"`
	SpecVersion string     `json:"spec_version"`
	BaseURL     string     `json:"base_url,omitempty"`
	Endpoints   []Endpoint `json:"endpoints"`
}

// Endpoint is one method+path operation.
type Endpoint struct {
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Summary     string   `json:"summary,omitempty"`
	OperationID string   `json:"operation_id,omitempty"`
	Parameters  []Param  `json:"parameters,omitempty"`
	HasBody     bool     `json:"has_body,omitempty"`
	BodyTypes   []string `json:"body_types,omitempty"`
}

// Param describes one operation parameter.
type Param struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Required bool   `json:"required,omitempty"`
	Type     string `json:"type,omitempty"`
}

var methodOrder = []string{"get", "post", "put", "patch", "delete", "head", "options"}

// Load reads and parses the document at path. YAML and JSON both parse
// (JSON is a YAML subset).
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: %s: %w", path, err)
	}
	return doc, nil
}

// Parse parses a raw OpenAPI 3.x or Swagger 2.0 document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("empty document")
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, errors.New("document root must be a mapping")
	}

	p := &parser{root: top}
	switch {
	case strings.HasPrefix(scalar(mapGet(top, "openapi")), "3"):
		p.v3 = true
		p.specVersion = scalar(mapGet(top, "openapi"))
	case scalar(mapGet(top, "swagger")) == "2.0":
		p.specVersion = "2.0"
	default:
		return nil, errors.New("unsupported document: need openapi 3.x or swagger 2.0")
	}
	return p.parse()
}

// Find returns the endpoint with the given method and path, matched
// exactly (template segments included).
func (d *Document) Find(method, path string) (*Endpoint, bool) {
	m := strings.ToUpper(strings.TrimSpace(method))
	for i := range d.Endpoints {
		if d.Endpoints[i].Method == m && d.Endpoints[i].Path == path {
			return &d.Endpoints[i], true
		}
	}
	return nil, false
}

type parser struct {
	root        *yaml.Node
	v3          bool
	specVersion string
}

func (p *parser) parse() (*Document, error) {
	doc := &Document{SpecVersion: p.specVersion}

	if info := mapGet(p.root, "info"); info != nil {
		doc.Title = scalar(mapGet(info, "title"))
		doc.Version = scalar(mapGet(info, "version"))
	}
	doc.BaseURL = p.baseURL()

	paths := mapGet(p.root, "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return nil, errors.New("document has no paths")
	}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path := paths.Content[i].Value
		item := paths.Content[i+1]
		if item.Kind != yaml.MappingNode {
			continue
		}
		shared, err := p.parameters(mapGet(item, "parameters"))
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", path, err)
		}
		for _, method := range methodOrder {
			op := mapGet(item, method)
			if op == nil {
				continue
			}
			ep, err := p.endpoint(method, path, op, shared)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			doc.Endpoints = append(doc.Endpoints, *ep)
		}
	}
	return doc, nil
}

func (p *parser) baseURL() string {
	if p.v3 {
		servers := mapGet(p.root, "servers")
		if servers != nil && servers.Kind == yaml.SequenceNode && len(servers.Content) > 0 {
			return scalar(mapGet(servers.Content[0], "url"))
		}
		return ""
	}
	host := scalar(mapGet(p.root, "host"))
	if host == "" {
		return ""
	}
	scheme := "https"
	if schemes := mapGet(p.root, "schemes"); schemes != nil && schemes.Kind == yaml.SequenceNode && len(schemes.Content) > 0 {
		scheme = schemes.Content[0].Value
	}
	return scheme + "://" + host + scalar(mapGet(p.root, "basePath"))
}

func (p *parser) endpoint(method, path string, op *yaml.Node, shared []Param) (*Endpoint, error) {
	ep := &Endpoint{
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     scalar(mapGet(op, "summary")),
		OperationID: scalar(mapGet(op, "operationId")),
	}
	ep.Parameters = append(ep.Parameters, shared...)

	own, err := p.parameters(mapGet(op, "parameters"))
	if err != nil {
		return nil, err
	}
	for _, param := range own {
		if param.In == "body" {
			// swagger 2.0 models the body as a parameter
			ep.HasBody = true
			continue
		}
		ep.Parameters = append(ep.Parameters, param)
	}

	if p.v3 {
		if rb, err := p.resolve(mapGet(op, "requestBody")); err != nil {
			return nil, err
		} else if rb != nil {
			ep.HasBody = true
			if content := mapGet(rb, "content"); content != nil && content.Kind == yaml.MappingNode {
				for i := 0; i+1 < len(content.Content); i += 2 {
					ep.BodyTypes = append(ep.BodyTypes, content.Content[i].Value)
				}
			}
		}
	} else if ep.HasBody {
		consumes := mapGet(op, "consumes")
		if consumes == nil {
			consumes = mapGet(p.root, "consumes")
		}
		if consumes != nil && consumes.Kind == yaml.SequenceNode {
			for _, n := range consumes.Content {
				ep.BodyTypes = append(ep.BodyTypes, n.Value)
			}
		}
	}
	return ep, nil
}

func (p *parser) parameters(list *yaml.Node) ([]Param, error) {
	if list == nil || list.Kind != yaml.SequenceNode {
		return nil, nil
	}
	out := make([]Param, 0, len(list.Content))
	for _, item := range list.Content {
		node, err := p.resolve(item)
		if err != nil {
			return nil, err
		}
		if node == nil || node.Kind != yaml.MappingNode {
			continue
		}
		param := Param{
			Name:     scalar(mapGet(node, "name")),
			In:       scalar(mapGet(node, "in")),
			Required: scalar(mapGet(node, "required")) == "true",
			Type:     scalar(mapGet(node, "type")),
		}
		if param.Type == "" {
			if schema := mapGet(node, "schema"); schema != nil {
				param.Type = scalar(mapGet(schema, "type"))
			}
		}
		out = append(out, param)
	}
	return out, nil
}

// resolve follows local $ref pointers, guarding against cycles.
func (p *parser) resolve(node *yaml.Node) (*yaml.Node, error) {
	seen := map[string]bool{}
	for node != nil && node.Kind == yaml.MappingNode {
		ref := scalar(mapGet(node, "$ref"))
		if ref == "" {
			return node, nil
		}
		if seen[ref] {
			return nil, fmt.Errorf("circular $ref %s", ref)
		}
		seen[ref] = true
		target, err := p.lookupRef(ref)
		if err != nil {
			return nil, err
		}
		node = target
	}
	return node, nil
}

func (p *parser) lookupRef(ref string) (*yaml.Node, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, fmt.Errorf("unsupported external $ref %s", ref)
	}
	node := p.root
	for _, seg := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		node = mapGet(node, seg)
		if node == nil {
			return nil, fmt.Errorf("unresolvable $ref %s", ref)
		}
	}
	return node, nil
}

// mapGet returns the value node for key in a mapping node, or nil.
func mapGet(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func scalar(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}
