package bridge

import (
	"fmt"

	"github.com/oriys/oapi/internal/transport"
)

// CellValue is the set of Go types an output cell can hold.
type CellValue interface {
	int32 | float64 | bool | string | []int32 | []float64 | []bool | []string
}

type cellState uint8

const (
	stateUnused cellState = iota
	statePending
	stateFilled
)

func (s cellState) String() string {
	switch s {
	case stateUnused:
		return "unused"
	case statePending:
		return "pending"
	default:
		return "filled"
	}
}

// Cell receives a value written by the endpoint into a mutable slot.
//
// A cell created unwanted still occupies its position in the call but is
// never written. A wanted cell is pending until a call fills it; after that
// Read returns the same value on every call.
type Cell[T CellValue] struct {
	state  cellState
	seed   T
	seeded bool
	val    T
}

// NewCell returns a cell that is pending when want is true and unused
// otherwise.
func NewCell[T CellValue](want bool) *Cell[T] {
	if want {
		return &Cell[T]{state: statePending}
	}
	return &Cell[T]{state: stateUnused}
}

// Want returns a pending cell.
func Want[T CellValue]() *Cell[T] { return NewCell[T](true) }

// Unused returns a cell that only holds its slot.
func Unused[T CellValue]() *Cell[T] { return NewCell[T](false) }

// Seed returns a pending cell whose initial value is sent for in/out
// parameters.
func Seed[T CellValue](v T) *Cell[T] {
	return &Cell[T]{state: statePending, seed: v, seeded: true}
}

// Seeded returns the seed and whether the cell has one.
func (c *Cell[T]) Seeded() (T, bool) { return c.seed, c.seeded }

// IsUnused reports whether the cell was created unwanted.
func (c *Cell[T]) IsUnused() bool { return c.state == stateUnused }

// IsFilled reports whether a call has written the cell.
func (c *Cell[T]) IsFilled() bool { return c.state == stateFilled }

// Read returns the filled value. It fails with ErrInvalidState while the
// cell is unused or pending.
func (c *Cell[T]) Read() (T, error) {
	if c.state != stateFilled {
		var zero T
		return zero, fmt.Errorf("%w: cell is %s", ErrInvalidState, c.state)
	}
	return c.val, nil
}

// Get returns the filled value, or the zero value and false.
func (c *Cell[T]) Get() (T, bool) {
	if c.state != stateFilled {
		var zero T
		return zero, false
	}
	return c.val, true
}

func (c *Cell[T]) String() string {
	if c.state != stateFilled {
		return "<" + c.state.String() + ">"
	}
	return toValue(c.val).String()
}

// OutputCell is the type-erased view of a Cell used by the encoder and
// decoder. It is implemented only by *Cell[T].
type OutputCell interface {
	IsUnused() bool
	IsFilled() bool
	Kind() transport.Kind

	slot(dir transport.Direction) transport.Value
	fill(v transport.Value) error
}

// Kind returns the transport kind of the cell's element type.
func (c *Cell[T]) Kind() transport.Kind {
	var zero T
	return kindOf(zero)
}

// slot returns the value sent in the cell's position: the seed (or the
// last filled value) for in/out parameters, otherwise the zero placeholder.
func (c *Cell[T]) slot(dir transport.Direction) transport.Value {
	var v transport.Value
	switch {
	case dir == transport.InOut && c.state == stateFilled:
		v = toValue(c.val).Clone()
	case dir == transport.InOut && c.seeded:
		v = toValue(c.seed).Clone()
	default:
		v = transport.Zero(c.Kind())
	}
	v.Ref = true
	return v
}

func (c *Cell[T]) fill(v transport.Value) error {
	if c.state == stateUnused {
		return nil
	}
	got, err := fromValue[T](v)
	if err != nil {
		return err
	}
	c.val = got
	c.state = stateFilled
	return nil
}

func kindOf(v any) transport.Kind {
	switch v.(type) {
	case int32:
		return transport.KindInt
	case float64:
		return transport.KindDouble
	case bool:
		return transport.KindBool
	case string:
		return transport.KindString
	case []int32:
		return transport.KindIntArray
	case []float64:
		return transport.KindDoubleArray
	case []bool:
		return transport.KindBoolArray
	case []string:
		return transport.KindStringArray
	}
	return transport.KindInvalid
}

func toValue[T CellValue](v T) transport.Value {
	switch x := any(v).(type) {
	case int32:
		return transport.Int(x)
	case float64:
		return transport.Double(x)
	case bool:
		return transport.Bool(x)
	case string:
		return transport.Str(x)
	case []int32:
		return transport.Ints(x)
	case []float64:
		return transport.Doubles(x)
	case []bool:
		return transport.Bools(x)
	case []string:
		return transport.Strs(x)
	}
	return transport.Value{}
}

func fromValue[T CellValue](v transport.Value) (T, error) {
	var out T
	if want := kindOf(out); v.Kind != want {
		return out, fmt.Errorf("%w: endpoint wrote %s into a %s cell", ErrMalformedReply, v.Kind, want)
	}
	v = v.Clone()
	var x any
	switch v.Kind {
	case transport.KindInt:
		x = v.Int
	case transport.KindDouble:
		x = v.Double
	case transport.KindBool:
		x = v.Bool
	case transport.KindString:
		x = v.Str
	case transport.KindIntArray:
		x = v.Ints
	case transport.KindDoubleArray:
		x = v.Doubles
	case transport.KindBoolArray:
		x = v.Bools
	case transport.KindStringArray:
		x = v.Strs
	}
	return x.(T), nil
}
