package sapmodel

import (
	"context"

	"github.com/oriys/oapi/internal/bridge"
)

// PointObj manages point objects.
type PointObj struct {
	component
}

// AddPointOptions are the optional inputs of AddCartesian.
type AddPointOptions struct {
	UserName    bridge.Opt[string]
	CSys        bridge.Opt[string]
	MergeOff    bridge.Opt[bool]
	MergeNumber bridge.Opt[int32]
}

// AddCartesian adds a point at (x, y, z). name receives the assigned name.
func (p *PointObj) AddCartesian(ctx context.Context, x, y, z float64, name *bridge.Cell[string], o AddPointOptions) (int, error) {
	return p.call(ctx, "AddCartesian",
		bridge.Double(x), bridge.Double(y), bridge.Double(z), bridge.Out(name),
		o.UserName.Arg(), o.CSys.Arg(), o.MergeOff.Arg(), o.MergeNumber.Arg())
}

// Count returns the number of point objects through the status.
func (p *PointObj) Count(ctx context.Context) (int, error) {
	return p.call(ctx, "Count")
}

// Coord receives the outputs of GetCoordCartesian.
type Coord struct {
	X, Y, Z *bridge.Cell[float64]
}

func (p *PointObj) GetCoordCartesian(ctx context.Context, name string, out Coord, cSys bridge.Opt[string]) (int, error) {
	return p.call(ctx, "GetCoordCartesian", bridge.Text(name),
		bridge.Out(out.X), bridge.Out(out.Y), bridge.Out(out.Z), cSys.Arg())
}

func (p *PointObj) GetNameList(ctx context.Context, count *bridge.Cell[int32], names *bridge.Cell[[]string]) (int, error) {
	return p.call(ctx, "GetNameList", bridge.Out(count), bridge.Out(names))
}

// SetRestraint assigns the six restraint flags seeded in value.
func (p *PointObj) SetRestraint(ctx context.Context, name string, value *bridge.Cell[[]bool], itemType bridge.Opt[int32]) (int, error) {
	return p.call(ctx, "SetRestraint", bridge.Text(name), bridge.Out(value), itemType.Arg())
}

func (p *PointObj) GetRestraint(ctx context.Context, name string, value *bridge.Cell[[]bool]) (int, error) {
	return p.call(ctx, "GetRestraint", bridge.Text(name), bridge.Out(value))
}

// LoadOptions are the optional inputs shared by load assignments.
type LoadOptions struct {
	Replace  bridge.Opt[bool]
	CSys     bridge.Opt[string]
	ItemType bridge.Opt[int32]
}

// SetLoadForce assigns the six force components seeded in value to a
// point for load pattern loadPat.
func (p *PointObj) SetLoadForce(ctx context.Context, name, loadPat string, value *bridge.Cell[[]float64], o LoadOptions) (int, error) {
	return p.call(ctx, "SetLoadForce", bridge.Text(name), bridge.Text(loadPat), bridge.Out(value),
		o.Replace.Arg(), o.CSys.Arg(), o.ItemType.Arg())
}

// FrameObj manages frame objects.
type FrameObj struct {
	component
}

// AddFrameOptions are the optional inputs of AddByCoord and AddByPoint.
// CSys applies to AddByCoord only.
type AddFrameOptions struct {
	PropName bridge.Opt[string]
	UserName bridge.Opt[string]
	CSys     bridge.Opt[string]
}

// AddByCoord adds a frame between (xi, yi, zi) and (xj, yj, zj).
func (f *FrameObj) AddByCoord(ctx context.Context, xi, yi, zi, xj, yj, zj float64, name *bridge.Cell[string], o AddFrameOptions) (int, error) {
	return f.call(ctx, "AddByCoord",
		bridge.Double(xi), bridge.Double(yi), bridge.Double(zi),
		bridge.Double(xj), bridge.Double(yj), bridge.Double(zj),
		bridge.Out(name), o.PropName.Arg(), o.UserName.Arg(), o.CSys.Arg())
}

// AddByPoint adds a frame between two existing points.
func (f *FrameObj) AddByPoint(ctx context.Context, point1, point2 string, name *bridge.Cell[string], o AddFrameOptions) (int, error) {
	return f.call(ctx, "AddByPoint", bridge.Text(point1), bridge.Text(point2),
		bridge.Out(name), o.PropName.Arg(), o.UserName.Arg())
}

// Count returns the number of frame objects of myType ("All" by default)
// through the status.
func (f *FrameObj) Count(ctx context.Context, myType bridge.Opt[string]) (int, error) {
	return f.call(ctx, "Count", myType.Arg())
}

func (f *FrameObj) GetNameList(ctx context.Context, count *bridge.Cell[int32], names *bridge.Cell[[]string]) (int, error) {
	return f.call(ctx, "GetNameList", bridge.Out(count), bridge.Out(names))
}

func (f *FrameObj) GetPoints(ctx context.Context, name string, point1, point2 *bridge.Cell[string]) (int, error) {
	return f.call(ctx, "GetPoints", bridge.Text(name), bridge.Out(point1), bridge.Out(point2))
}

// DistributedLoad describes a load for SetLoadDistributed.
type DistributedLoad struct {
	LoadPat      string
	MyType       int32 // 1 force, 2 moment
	Dir          int32
	Dist1, Dist2 float64
	Val1, Val2   float64
}

// DistributedLoadOptions are the optional inputs of SetLoadDistributed.
type DistributedLoadOptions struct {
	CSys     bridge.Opt[string]
	RelDist  bridge.Opt[bool]
	Replace  bridge.Opt[bool]
	ItemType bridge.Opt[int32]
}

func (f *FrameObj) SetLoadDistributed(ctx context.Context, name string, l DistributedLoad, o DistributedLoadOptions) (int, error) {
	return f.call(ctx, "SetLoadDistributed",
		bridge.Text(name), bridge.Text(l.LoadPat), bridge.Int(l.MyType), bridge.Int(l.Dir),
		bridge.Double(l.Dist1), bridge.Double(l.Dist2), bridge.Double(l.Val1), bridge.Double(l.Val2),
		o.CSys.Arg(), o.RelDist.Arg(), o.Replace.Arg(), o.ItemType.Arg())
}

// AreaObj manages area objects.
type AreaObj struct {
	component
}

// AddByCoord adds an area through the points seeded in x, y and z.
// numberPoints is taken from the length of x.
func (a *AreaObj) AddByCoord(ctx context.Context, x, y, z *bridge.Cell[[]float64], name *bridge.Cell[string], o AddFrameOptions) (int, error) {
	n := 0
	if x != nil {
		if v, ok := x.Seeded(); ok {
			n = len(v)
		}
	}
	return a.call(ctx, "AddByCoord", bridge.Int(int32(n)),
		bridge.Out(x), bridge.Out(y), bridge.Out(z), bridge.Out(name),
		o.PropName.Arg(), o.UserName.Arg(), o.CSys.Arg())
}

// AddByPoint adds an area through the existing points seeded in point.
func (a *AreaObj) AddByPoint(ctx context.Context, point *bridge.Cell[[]string], name *bridge.Cell[string], o AddFrameOptions) (int, error) {
	n := 0
	if point != nil {
		if v, ok := point.Seeded(); ok {
			n = len(v)
		}
	}
	return a.call(ctx, "AddByPoint", bridge.Int(int32(n)), bridge.Out(point), bridge.Out(name),
		o.PropName.Arg(), o.UserName.Arg())
}

// Count returns the number of area objects through the status.
func (a *AreaObj) Count(ctx context.Context) (int, error) {
	return a.call(ctx, "Count")
}

func (a *AreaObj) DeleteLoadGravity(ctx context.Context, name, loadPat string, itemType bridge.Opt[int32]) (int, error) {
	return a.call(ctx, "DeleteLoadGravity", bridge.Text(name), bridge.Text(loadPat), itemType.Arg())
}

func (a *AreaObj) GetNameList(ctx context.Context, count *bridge.Cell[int32], names *bridge.Cell[[]string]) (int, error) {
	return a.call(ctx, "GetNameList", bridge.Out(count), bridge.Out(names))
}

func (a *AreaObj) GetPoints(ctx context.Context, name string, count *bridge.Cell[int32], points *bridge.Cell[[]string]) (int, error) {
	return a.call(ctx, "GetPoints", bridge.Text(name), bridge.Out(count), bridge.Out(points))
}
