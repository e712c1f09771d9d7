package stub

import (
	"fmt"
	"io"
	"os"

	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/journal"
	"github.com/oriys/oapi/internal/transport"
	"gopkg.in/yaml.v3"
)

// Script is the YAML form of a stub configuration:
//
//	unavailable: false
//	rules:
//	  - component: cPointObj
//	    method: GetCoordCartesian
//	    status: 0
//	    writes:
//	      - {param: x, value: 1.5}
//	      - {at: 2, kind: double, value: 2.5}
//	    once: false
type Script struct {
	Unavailable bool         `yaml:"unavailable,omitempty"`
	Rules       []ScriptRule `yaml:"rules"`
}

// ScriptRule is one rule in a Script.
type ScriptRule struct {
	Component string        `yaml:"component"`
	Method    string        `yaml:"method"`
	Status    int32         `yaml:"status,omitempty"`
	Writes    []ScriptWrite `yaml:"writes,omitempty"`
	// Once queues the rule for a single call instead of installing it.
	Once bool `yaml:"once,omitempty"`
}

// ScriptWrite targets a position either directly (At) or by parameter name
// (Param, resolved through the catalog). Kind may be omitted when the
// catalog knows the parameter.
type ScriptWrite struct {
	At    *int   `yaml:"at,omitempty"`
	Param string `yaml:"param,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
	Value any    `yaml:"value"`
}

// LoadScript parses a YAML script. cat may be nil when every write names
// its position and kind.
func LoadScript(r io.Reader, cat *catalog.Catalog) (*Script, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse stub script: %w", err)
	}
	// Validate eagerly so a bad script fails at load time.
	for i, rule := range s.Rules {
		if _, err := rule.compile(cat); err != nil {
			return nil, fmt.Errorf("rule %d (%s.%s): %w", i, rule.Component, rule.Method, err)
		}
	}
	return &s, nil
}

// LoadScriptFile is LoadScript on a file.
func LoadScriptFile(path string, cat *catalog.Catalog) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stub script: %w", err)
	}
	defer f.Close()
	return LoadScript(f, cat)
}

// Apply installs the script's rules on e.
func (s *Script) Apply(e *Endpoint, cat *catalog.Catalog) error {
	for i, sr := range s.Rules {
		rule, err := sr.compile(cat)
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if sr.Once {
			e.Enqueue(sr.Component, sr.Method, rule)
		} else {
			e.Set(sr.Component, sr.Method, rule)
		}
	}
	e.SetUnavailable(s.Unavailable)
	return nil
}

func (sr ScriptRule) compile(cat *catalog.Catalog) (Rule, error) {
	if sr.Component == "" || sr.Method == "" {
		return Rule{}, fmt.Errorf("component and method are required")
	}
	var m *catalog.Method
	if cat != nil {
		m, _ = cat.Lookup(sr.Component, sr.Method)
	}

	rule := Rule{Status: sr.Status}
	if len(sr.Writes) > 0 {
		rule.Writes = make(map[int]transport.Value, len(sr.Writes))
	}
	for i, w := range sr.Writes {
		pos, kind, err := w.target(m)
		if err != nil {
			return Rule{}, fmt.Errorf("write %d: %w", i, err)
		}
		v, err := transport.FromAny(kind, w.Value)
		if err != nil {
			return Rule{}, fmt.Errorf("write %d: %w", i, err)
		}
		rule.Writes[pos] = v
	}
	return rule, nil
}

func (w ScriptWrite) target(m *catalog.Method) (int, transport.Kind, error) {
	pos := -1
	switch {
	case w.At != nil:
		pos = *w.At
	case w.Param != "" && m != nil:
		for i, p := range m.Params {
			if p.Name == w.Param {
				pos = i
				break
			}
		}
		if pos < 0 {
			return 0, 0, fmt.Errorf("no parameter %q in %s", w.Param, m)
		}
	case w.Param != "":
		return 0, 0, fmt.Errorf("parameter %q needs a catalog entry", w.Param)
	default:
		return 0, 0, fmt.Errorf("write needs at or param")
	}

	if w.Kind != "" {
		k, err := transport.ParseKind(w.Kind)
		return pos, k, err
	}
	if m == nil || pos >= len(m.Params) {
		return 0, 0, fmt.Errorf("kind is required without a catalog entry")
	}
	return pos, m.Params[pos].Kind, nil
}

// FromJournal queues one rule per journaled call, in order, so that the
// stub answers a replayed session exactly as the original endpoint did.
// Calls that failed in the original session are skipped.
func FromJournal(records []journal.Record, opts ...Option) *Endpoint {
	e := New(opts...)
	for _, rec := range records {
		if rec.Error != "" {
			continue
		}
		rule := Rule{Status: rec.Status}
		for i, v := range rec.Returned {
			if !v.IsValid() {
				continue
			}
			if rule.Writes == nil {
				rule.Writes = make(map[int]transport.Value)
			}
			rule.Writes[i] = v
		}
		e.Enqueue(rec.Component(), rec.Method, rule)
	}
	return e
}
