package bridge

import (
	"fmt"

	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/transport"
)

// Encode packs args against the contract m. The result always has
// m.Arity() entries: omitted trailing optional parameters and Default()
// placeholders take the catalog default, cells become mutable slots, and
// arrays are copied so the endpoint cannot alias caller memory.
func Encode(m *catalog.Method, args []Arg) ([]transport.Value, error) {
	if len(args) > m.Arity() {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrArityMismatch, m, m.Arity(), len(args))
	}

	out := make([]transport.Value, m.Arity())
	for i, p := range m.Params {
		if i >= len(args) || args[i].IsDefault() {
			if !p.Optional {
				return nil, fmt.Errorf("%w: %s requires %s (position %d)", ErrArityMismatch, m, p.Name, i)
			}
			v := p.Default.Clone()
			v.Ref = p.Dir.Mutable()
			out[i] = v
			continue
		}

		v, err := encodeArg(p, args[i])
		if err != nil {
			return nil, fmt.Errorf("%s %s (position %d): %w", m, p.Name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

func encodeArg(p catalog.Param, a Arg) (transport.Value, error) {
	if a.form == formCell {
		if p.Dir == transport.In {
			return transport.Value{}, fmt.Errorf("%w: output cell for an input parameter", ErrDirectionMismatch)
		}
		if k := a.cell.Kind(); k != p.Kind {
			return transport.Value{}, fmt.Errorf("%w: %s cell, want %s", ErrTypeMismatch, k, p.Kind)
		}
		return a.cell.slot(p.Dir), nil
	}

	if p.Dir == transport.Out {
		return transport.Value{}, fmt.Errorf("%w: plain %s value for an output parameter", ErrDirectionMismatch, a.val.Kind)
	}
	if a.val.Kind != p.Kind {
		return transport.Value{}, fmt.Errorf("%w: got %s, want %s", ErrTypeMismatch, a.val.Kind, p.Kind)
	}
	v := a.val.Clone()
	v.Ref = p.Dir == transport.InOut
	return v, nil
}
