package sapmodel

import (
	"context"

	"github.com/oriys/oapi/internal/bridge"
)

// Tagging holds the display options shared by property definitions.
type Tagging struct {
	Color bridge.Opt[int32]
	Notes bridge.Opt[string]
	GUID  bridge.Opt[string]
}

func (t Tagging) args() []bridge.Arg {
	return []bridge.Arg{t.Color.Arg(), t.Notes.Arg(), t.GUID.Arg()}
}

// PropMaterial defines material properties.
type PropMaterial struct {
	component
}

// SetMaterial adds or re-initializes a material.
func (p *PropMaterial) SetMaterial(ctx context.Context, name string, matType MatType, o Tagging) (int, error) {
	args := append([]bridge.Arg{bridge.Text(name), bridge.Int(int32(matType))}, o.args()...)
	return p.call(ctx, "SetMaterial", args...)
}

// SetMPIsotropic sets isotropic mechanical properties: modulus e, Poisson's
// ratio u and thermal coefficient a, at temperature temp.
func (p *PropMaterial) SetMPIsotropic(ctx context.Context, name string, e, u, a float64, temp bridge.Opt[float64]) (int, error) {
	return p.call(ctx, "SetMPIsotropic", bridge.Text(name), bridge.Double(e), bridge.Double(u), bridge.Double(a), temp.Arg())
}

// Isotropic receives the outputs of GetMPIsotropic.
type Isotropic struct {
	E, U, A, G *bridge.Cell[float64]
}

func (p *PropMaterial) GetMPIsotropic(ctx context.Context, name string, out Isotropic, temp bridge.Opt[float64]) (int, error) {
	return p.call(ctx, "GetMPIsotropic", bridge.Text(name),
		bridge.Out(out.E), bridge.Out(out.U), bridge.Out(out.A), bridge.Out(out.G), temp.Arg())
}

func (p *PropMaterial) GetNameList(ctx context.Context, count *bridge.Cell[int32], names *bridge.Cell[[]string]) (int, error) {
	return p.call(ctx, "GetNameList", bridge.Out(count), bridge.Out(names))
}

// PropFrame defines frame section properties.
type PropFrame struct {
	component
}

// SetRectangle defines a solid rectangular section of depth t3 and width t2.
func (p *PropFrame) SetRectangle(ctx context.Context, name, matProp string, t3, t2 float64, o Tagging) (int, error) {
	args := append([]bridge.Arg{bridge.Text(name), bridge.Text(matProp), bridge.Double(t3), bridge.Double(t2)}, o.args()...)
	return p.call(ctx, "SetRectangle", args...)
}

// Rectangle receives the outputs of GetRectangle.
type Rectangle struct {
	FileName, MatProp *bridge.Cell[string]
	T3, T2            *bridge.Cell[float64]
	Color             *bridge.Cell[int32]
	Notes, GUID       *bridge.Cell[string]
}

func (p *PropFrame) GetRectangle(ctx context.Context, name string, out Rectangle) (int, error) {
	return p.call(ctx, "GetRectangle", bridge.Text(name),
		bridge.Out(out.FileName), bridge.Out(out.MatProp), bridge.Out(out.T3), bridge.Out(out.T2),
		bridge.Out(out.Color), bridge.Out(out.Notes), bridge.Out(out.GUID))
}

// SetModifiers assigns the eight section modifiers. The program may write
// the array back; seed value with the modifiers to send.
func (p *PropFrame) SetModifiers(ctx context.Context, name string, value *bridge.Cell[[]float64]) (int, error) {
	return p.call(ctx, "SetModifiers", bridge.Text(name), bridge.Out(value))
}

// PropArea defines area section properties.
type PropArea struct {
	component
}

// Shell describes a shell section for SetShell_1.
type Shell struct {
	ShellType          int32
	IncludeDrillingDOF bool
	MatProp            string
	MatAng             float64
	Thickness          float64
	Bending            float64
}

func (p *PropArea) SetShell1(ctx context.Context, name string, s Shell, o Tagging) (int, error) {
	args := append([]bridge.Arg{
		bridge.Text(name),
		bridge.Int(s.ShellType),
		bridge.Bool(s.IncludeDrillingDOF),
		bridge.Text(s.MatProp),
		bridge.Double(s.MatAng),
		bridge.Double(s.Thickness),
		bridge.Double(s.Bending),
	}, o.args()...)
	return p.call(ctx, "SetShell_1", args...)
}

// ShellOut receives the outputs of GetShell_1.
type ShellOut struct {
	ShellType          *bridge.Cell[int32]
	IncludeDrillingDOF *bridge.Cell[bool]
	MatProp            *bridge.Cell[string]
	MatAng             *bridge.Cell[float64]
	Thickness          *bridge.Cell[float64]
	Bending            *bridge.Cell[float64]
	Color              *bridge.Cell[int32]
	Notes, GUID        *bridge.Cell[string]
}

func (p *PropArea) GetShell1(ctx context.Context, name string, out ShellOut) (int, error) {
	return p.call(ctx, "GetShell_1", bridge.Text(name),
		bridge.Out(out.ShellType), bridge.Out(out.IncludeDrillingDOF), bridge.Out(out.MatProp),
		bridge.Out(out.MatAng), bridge.Out(out.Thickness), bridge.Out(out.Bending),
		bridge.Out(out.Color), bridge.Out(out.Notes), bridge.Out(out.GUID))
}
