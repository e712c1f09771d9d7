package bridge

import "github.com/oriys/oapi/internal/transport"

type argForm uint8

const (
	formValue argForm = iota
	formCell
	formDefault
)

// Arg is one positional argument supplied by a wrapper: a plain value, an
// output cell, or the Default placeholder.
type Arg struct {
	form argForm
	val  transport.Value
	cell OutputCell
}

func Int(v int32) Arg         { return Value(transport.Int(v)) }
func Double(v float64) Arg    { return Value(transport.Double(v)) }
func Bool(v bool) Arg         { return Value(transport.Bool(v)) }
func Text(v string) Arg       { return Value(transport.Str(v)) }
func Ints(v []int32) Arg      { return Value(transport.Ints(v)) }
func Doubles(v []float64) Arg { return Value(transport.Doubles(v)) }
func Bools(v []bool) Arg      { return Value(transport.Bools(v)) }
func Texts(v []string) Arg    { return Value(transport.Strs(v)) }

// Value wraps an already-built transport value.
func Value(v transport.Value) Arg {
	return Arg{form: formValue, val: v}
}

// ValueOf wraps any cell-compatible Go value.
func ValueOf[T CellValue](v T) Arg {
	return Value(toValue(v))
}

// Out passes c in an out or in/out position. A nil cell is sent as an
// unwanted placeholder of T's kind.
func Out[T CellValue](c *Cell[T]) Arg {
	if c == nil {
		c = Unused[T]()
	}
	return Arg{form: formCell, cell: c}
}

// Default asks for the catalog default of an optional parameter. It may
// appear anywhere an optional parameter is expected, which lets callers skip
// one optional argument and still supply a later one.
func Default() Arg {
	return Arg{form: formDefault}
}

// IsDefault reports whether a is the Default placeholder.
func (a Arg) IsDefault() bool { return a.form == formDefault }

// Cell returns the output cell carried by a, or nil.
func (a Arg) Cell() OutputCell { return a.cell }

func (a Arg) String() string {
	switch a.form {
	case formDefault:
		return "<default>"
	case formCell:
		if a.cell.IsUnused() {
			return "<out:" + a.cell.Kind().String() + ",unused>"
		}
		return "<out:" + a.cell.Kind().String() + ">"
	}
	return a.val.String()
}

// Opt is an optional trailing argument for wrapper option structs. The zero
// Opt is unset and encodes as Default().
type Opt[T CellValue] struct {
	v   T
	set bool
}

// Some returns a set Opt.
func Some[T CellValue](v T) Opt[T] {
	return Opt[T]{v: v, set: true}
}

// IsSet reports whether the option was given a value.
func (o Opt[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was set.
func (o Opt[T]) Get() (T, bool) { return o.v, o.set }

// Arg converts o to a positional argument.
func (o Opt[T]) Arg() Arg {
	if !o.set {
		return Default()
	}
	return ValueOf(o.v)
}
