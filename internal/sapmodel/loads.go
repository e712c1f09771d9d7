package sapmodel

import (
	"context"

	"github.com/oriys/oapi/internal/bridge"
)

// LoadPatterns manages load patterns.
type LoadPatterns struct {
	component
}

// AddLoadPatternOptions are the optional inputs of Add.
type AddLoadPatternOptions struct {
	SelfWTMultiplier bridge.Opt[float64]
	AddLoadCase      bridge.Opt[bool]
}

func (l *LoadPatterns) Add(ctx context.Context, name string, myType LoadPatternType, o AddLoadPatternOptions) (int, error) {
	return l.call(ctx, "Add", bridge.Text(name), bridge.Int(int32(myType)),
		o.SelfWTMultiplier.Arg(), o.AddLoadCase.Arg())
}

func (l *LoadPatterns) GetNameList(ctx context.Context, count *bridge.Cell[int32], names *bridge.Cell[[]string]) (int, error) {
	return l.call(ctx, "GetNameList", bridge.Out(count), bridge.Out(names))
}

// AutoSeismic reads automatic seismic load parameters.
type AutoSeismic struct {
	component
}

// SeismicBase holds the outputs every auto seismic code shares.
type SeismicBase struct {
	DirFlag    *bridge.Cell[int32]
	Eccen      *bridge.Cell[float64]
	PeriodFlag *bridge.Cell[int32]
	CT         *bridge.Cell[float64]
	UserT      *bridge.Cell[float64]
	UserZ      *bridge.Cell[bool]
	TopZ       *bridge.Cell[float64]
	BottomZ    *bridge.Cell[float64]
}

func (s SeismicBase) args() []bridge.Arg {
	return []bridge.Arg{
		bridge.Out(s.DirFlag), bridge.Out(s.Eccen), bridge.Out(s.PeriodFlag), bridge.Out(s.CT),
		bridge.Out(s.UserT), bridge.Out(s.UserZ), bridge.Out(s.TopZ), bridge.Out(s.BottomZ),
	}
}

// AS11702007 receives the outputs of GetAS11702007.
type AS11702007 struct {
	SeismicBase
	SiteClass *bridge.Cell[int32]
	Kp        *bridge.Cell[float64]
	Z         *bridge.Cell[float64]
	Sp        *bridge.Cell[float64]
	Mu        *bridge.Cell[float64]
}

func (a *AutoSeismic) GetAS11702007(ctx context.Context, name string, out AS11702007) (int, error) {
	args := append([]bridge.Arg{bridge.Text(name)}, out.args()...)
	args = append(args, bridge.Out(out.SiteClass), bridge.Out(out.Kp), bridge.Out(out.Z), bridge.Out(out.Sp), bridge.Out(out.Mu))
	return a.call(ctx, "GetAS11702007", args...)
}

// Eurocode82004 receives the outputs of GetEurocode82004.
type Eurocode82004 struct {
	SeismicBase
	GroundType   *bridge.Cell[int32]
	SpectrumType *bridge.Cell[int32]
	Ag           *bridge.Cell[float64]
	Beta         *bridge.Cell[float64]
	Q            *bridge.Cell[float64]
	Lambda       *bridge.Cell[float64]
}

// GetEurocode82004 is deprecated in v15 in favour of GetEurocode82004_1.
func (a *AutoSeismic) GetEurocode82004(ctx context.Context, name string, out Eurocode82004) (int, error) {
	args := append([]bridge.Arg{bridge.Text(name)}, out.args()...)
	args = append(args, bridge.Out(out.GroundType), bridge.Out(out.SpectrumType),
		bridge.Out(out.Ag), bridge.Out(out.Beta), bridge.Out(out.Q), bridge.Out(out.Lambda))
	return a.call(ctx, "GetEurocode82004", args...)
}

// Eurocode820041 receives the outputs of GetEurocode82004_1.
type Eurocode820041 struct {
	SeismicBase
	Country      *bridge.Cell[int32]
	SpectrumType *bridge.Cell[int32]
	GroundType   *bridge.Cell[int32]
	Ag           *bridge.Cell[float64]
	S            *bridge.Cell[float64]
	Tb, Tc, Td   *bridge.Cell[float64]
	Beta         *bridge.Cell[float64]
	Q            *bridge.Cell[float64]
	Lambda       *bridge.Cell[float64]
}

// GetEurocode820041 exists from v15 on.
func (a *AutoSeismic) GetEurocode820041(ctx context.Context, name string, out Eurocode820041) (int, error) {
	args := append([]bridge.Arg{bridge.Text(name)}, out.args()...)
	args = append(args,
		bridge.Out(out.Country), bridge.Out(out.SpectrumType), bridge.Out(out.GroundType),
		bridge.Out(out.Ag), bridge.Out(out.S), bridge.Out(out.Tb), bridge.Out(out.Tc), bridge.Out(out.Td),
		bridge.Out(out.Beta), bridge.Out(out.Q), bridge.Out(out.Lambda))
	return a.call(ctx, "GetEurocode82004_1", args...)
}
