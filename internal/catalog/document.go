package catalog

import (
	"fmt"

	"github.com/oriys/oapi/internal/transport"
	"gopkg.in/yaml.v3"
)

// document is the YAML shape of a catalog file.
type document struct {
	Version    string                          `yaml:"version"`
	Program    string                          `yaml:"program"`
	Extends    string                          `yaml:"extends,omitempty"`
	Components map[string]map[string]methodDoc `yaml:"components"`
}

// methodDoc accepts either a bare parameter list or a mapping with
// params plus method-level flags.
type methodDoc struct {
	Deprecated bool       `yaml:"deprecated,omitempty"`
	Params     []paramDoc `yaml:"params"`
}

func (md *methodDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&md.Params)
	}
	type plain methodDoc
	return node.Decode((*plain)(md))
}

type paramDoc struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Dir      string `yaml:"dir,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	Default  any    `yaml:"default,omitempty"`
}

func (md methodDoc) method(component, name string) (*Method, error) {
	m := &Method{Component: component, Name: name, Deprecated: md.Deprecated}
	for i, pd := range md.Params {
		p, err := pd.param()
		if err != nil {
			return nil, fmt.Errorf("%s.%s param %d: %w", component, name, i, err)
		}
		m.Params = append(m.Params, p)
	}
	return m, nil
}

func (pd paramDoc) param() (Param, error) {
	kind, err := transport.ParseKind(pd.Kind)
	if err != nil {
		return Param{}, err
	}
	dir, err := transport.ParseDirection(pd.Dir)
	if err != nil {
		return Param{}, err
	}
	p := Param{Name: pd.Name, Kind: kind, Dir: dir, Optional: pd.Optional}
	if !pd.Optional {
		if pd.Default != nil {
			return Param{}, fmt.Errorf("%s: default on a required parameter", pd.Name)
		}
		return p, nil
	}
	if dir == transport.Out {
		p.Default = transport.Zero(kind)
		return p, nil
	}
	if p.Default, err = transport.FromAny(kind, pd.Default); err != nil {
		return Param{}, fmt.Errorf("%s default: %w", pd.Name, err)
	}
	return p, nil
}
