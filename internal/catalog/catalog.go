// Package catalog holds the method contracts of the automation API: for
// each component and method, the positional parameters with their kind,
// direction, optionality and default.
package catalog

import (
	"embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/oriys/oapi/internal/transport"
	"gopkg.in/yaml.v3"
)

//go:embed v14.yaml v15.yaml
var builtinFS embed.FS

// Param is one positional parameter of a method.
type Param struct {
	Name     string
	Kind     transport.Kind
	Dir      transport.Direction
	Optional bool
	// Default is sent when an optional parameter is omitted. For out
	// parameters it is always the zero placeholder of Kind.
	Default transport.Value
}

// Method is the contract of one remote method.
type Method struct {
	Component  string
	Name       string
	Params     []Param
	Deprecated bool
}

// Arity is the number of positional slots every call of m sends.
func (m *Method) Arity() int {
	return len(m.Params)
}

// RequiredArity is the number of leading parameters a caller must supply.
func (m *Method) RequiredArity() int {
	for i, p := range m.Params {
		if p.Optional {
			return i
		}
	}
	return len(m.Params)
}

func (m *Method) String() string {
	return m.Component + "." + m.Name
}

// Catalog is the set of method contracts for one API version.
type Catalog struct {
	Version string
	Program string
	methods map[string]map[string]*Method
}

// New returns an empty catalog.
func New(version, program string) *Catalog {
	return &Catalog{Version: version, Program: program, methods: make(map[string]map[string]*Method)}
}

// Add registers m, replacing any existing contract with the same
// component and name.
func (c *Catalog) Add(m *Method) error {
	if err := validate(m); err != nil {
		return err
	}
	byName := c.methods[m.Component]
	if byName == nil {
		byName = make(map[string]*Method)
		c.methods[m.Component] = byName
	}
	byName[m.Name] = m
	return nil
}

// Merge copies every contract of other into c. Entries of other win.
func (c *Catalog) Merge(other *Catalog) {
	for comp, byName := range other.methods {
		for _, m := range byName {
			if c.methods[comp] == nil {
				c.methods[comp] = make(map[string]*Method)
			}
			c.methods[comp][m.Name] = m
		}
	}
}

// Lookup returns the contract for component.method. Names are
// case-sensitive. A miss wraps transport.ErrUnknownMethod.
func (c *Catalog) Lookup(component, method string) (*Method, error) {
	if m, ok := c.methods[component][method]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s.%s (%s)", transport.ErrUnknownMethod, component, method, c.Version)
}

// Components returns the component suffixes in sorted order.
func (c *Catalog) Components() []string {
	out := make([]string, 0, len(c.methods))
	for comp := range c.methods {
		out = append(out, comp)
	}
	sort.Strings(out)
	return out
}

// Methods returns the contracts of one component sorted by name.
func (c *Catalog) Methods(component string) []*Method {
	byName := c.methods[component]
	out := make([]*Method, 0, len(byName))
	for _, m := range byName {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of method contracts.
func (c *Catalog) Len() int {
	n := 0
	for _, byName := range c.methods {
		n += len(byName)
	}
	return n
}

func validate(m *Method) error {
	if m.Component == "" || m.Name == "" {
		return fmt.Errorf("method needs a component and a name")
	}
	seenOptional := false
	for i, p := range m.Params {
		if p.Kind == transport.KindInvalid {
			return fmt.Errorf("%s param %d (%s): invalid kind", m, i, p.Name)
		}
		if p.Optional {
			seenOptional = true
		} else if seenOptional {
			return fmt.Errorf("%s param %d (%s): required parameter after an optional one", m, i, p.Name)
		}
		if p.Optional && p.Default.Kind != p.Kind {
			return fmt.Errorf("%s param %d (%s): default is %s, want %s", m, i, p.Name, p.Default.Kind, p.Kind)
		}
	}
	return nil
}

// Builtin returns the embedded catalog for version ("v14" or "v15"),
// with its extends chain resolved.
func Builtin(version string) (*Catalog, error) {
	data, err := builtinFS.ReadFile(version + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no builtin catalog for %q", version)
	}
	return parse(data, 0)
}

// Versions lists the embedded catalog versions.
func Versions() []string {
	return []string{"v14", "v15"}
}

// Load parses a catalog document. An extends field names a builtin
// version to inherit from.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(data, 0)
}

// LoadFile parses a catalog document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

const maxExtendsDepth = 8

func parse(data []byte, depth int) (*Catalog, error) {
	if depth > maxExtendsDepth {
		return nil, fmt.Errorf("catalog extends chain too deep")
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var c *Catalog
	if doc.Extends != "" {
		base, err := builtinFS.ReadFile(doc.Extends + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("catalog %s extends unknown version %q", doc.Version, doc.Extends)
		}
		if c, err = parse(base, depth+1); err != nil {
			return nil, err
		}
		c.Version = doc.Version
		if doc.Program != "" {
			c.Program = doc.Program
		}
	} else {
		c = New(doc.Version, doc.Program)
	}

	for comp, methods := range doc.Components {
		for name, md := range methods {
			m, err := md.method(comp, name)
			if err != nil {
				return nil, err
			}
			if err := c.Add(m); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}
