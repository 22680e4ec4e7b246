package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/roadtest/pkg/behavior"
	"gopkg.in/yaml.v3"
)

// Document is the declarative form of a scenario.
type Document struct {
	Name     string      `yaml:"name" json:"name"`
	Timeout  float64     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Actors   []ActorSpec `yaml:"actors,omitempty" json:"actors,omitempty"`
	Behavior NodeSpec    `yaml:"behavior" json:"behavior"`
	Criteria []NodeSpec  `yaml:"criteria,omitempty" json:"criteria,omitempty"`
}

// ActorSpec names an actor and, optionally, the simulator agent id it is bound to.
type ActorSpec struct {
	Name    string `yaml:"name" json:"name"`
	AgentID string `yaml:"agent_id,omitempty" json:"agent_id,omitempty"`
}

// NodeSpec declares one node. Composite types take children, leaf types take params.
type NodeSpec struct {
	Type     string         `yaml:"type" json:"type"`
	Name     string         `yaml:"name,omitempty" json:"name,omitempty"`
	Children []NodeSpec     `yaml:"children,omitempty" json:"children,omitempty"`
	Params   map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// LoadFile reads a scenario document. Files ending in .json are parsed as JSON,
// anything else as YAML.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// Parse decodes a scenario document.
func Parse(data []byte, isJSON bool) (*Document, error) {
	var doc Document
	if isJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse scenario json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
		}
	}
	if doc.Name == "" {
		return nil, errors.New("scenario has no name")
	}
	if doc.Behavior.Type == "" {
		return nil, fmt.Errorf("scenario %q has no behavior", doc.Name)
	}
	return &doc, nil
}

// Builder returns a Builder creating the document's scenario from r.
func (d *Document) Builder(r *Registry) Builder {
	return func(env *Env) (*Scenario, error) {
		return d.Scenario(env, r)
	}
}

// Scenario registers the document's actors with env and builds its nodes.
func (d *Document) Scenario(env *Env, r *Registry) (*Scenario, error) {
	for _, a := range d.Actors {
		if err := env.Provider.RegisterAgent(a.Name, a.AgentID); err != nil {
			return nil, err
		}
	}

	b := &nodeBuilder{env: env, registry: r}
	root, err := b.build(d.Behavior, "behavior")
	if err != nil {
		return nil, err
	}

	s := &Scenario{Name: d.Name, Behavior: root, Timeout: d.Timeout}
	for i, c := range d.Criteria {
		n, err := b.build(c, fmt.Sprintf("criteria[%d]", i))
		if err != nil {
			return nil, err
		}
		s.Criteria = append(s.Criteria, n)
	}
	return s, nil
}

type nodeBuilder struct {
	env      *Env
	registry *Registry
}

func (b *nodeBuilder) build(ns NodeSpec, path string) (*behavior.Node, error) {
	name := ns.Name
	if name == "" {
		name = ns.Type
	}

	var policy behavior.Policy
	switch ns.Type {
	case TypeSequence:
		policy = behavior.PolicySequence
	case TypeParallelAny:
		policy = behavior.PolicyParallelAny
	case TypeParallelAll:
		policy = behavior.PolicyParallelAll
	default:
		if len(ns.Children) > 0 {
			return nil, fmt.Errorf("%s: leaf %q cannot have children", path, ns.Type)
		}
		leaf, err := b.registry.leaf(b.env, ns.Type, ns.Params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return behavior.Leaf(name, leaf), nil
	}

	if len(ns.Params) > 0 {
		return nil, fmt.Errorf("%s: composite %q takes no params", path, ns.Type)
	}
	node, err := behavior.Composite(name, policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, c := range ns.Children {
		child, err := b.build(c, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		node.AddChild(child)
	}
	return node, nil
}
