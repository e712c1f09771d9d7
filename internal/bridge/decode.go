package bridge

import (
	"fmt"

	"github.com/oriys/oapi/internal/transport"
)

// Decode copies the endpoint's returned slots into the wanted cells among
// args. Plain values and unwanted cells are left alone, whatever the
// endpoint returned in their slots. A slot the endpoint did not write (an
// invalid Value, or every slot when returned is empty) keeps what was sent:
// the cell is filled with its placeholder, or its seed for in/out.
//
// The reply is validated before any cell is touched, so a malformed reply
// fills nothing.
func Decode(args []Arg, sent, returned []transport.Value) error {
	_, err := decode(args, sent, returned)
	return err
}

func decode(args []Arg, sent, returned []transport.Value) (int, error) {
	if len(returned) != 0 && len(returned) != len(sent) {
		return 0, fmt.Errorf("%w: %d slots returned for %d sent", ErrMalformedReply, len(returned), len(sent))
	}

	for i, r := range returned {
		if !r.IsValid() {
			continue
		}
		if r.Kind != sent[i].Kind {
			return 0, fmt.Errorf("%w: slot %d returned %s, sent %s", ErrMalformedReply, i, r.Kind, sent[i].Kind)
		}
	}

	filled := 0
	for i, a := range args {
		if a.form != formCell || a.cell.IsUnused() || i >= len(sent) {
			continue
		}
		r := sent[i]
		if i < len(returned) && returned[i].IsValid() {
			r = returned[i]
		}
		if err := a.cell.fill(r); err != nil {
			return filled, err
		}
		filled++
	}
	return filled, nil
}
