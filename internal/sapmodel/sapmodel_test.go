package sapmodel

import (
	"context"
	"testing"

	"github.com/oriys/oapi/internal/bridge"
	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/stub"
	"github.com/oriys/oapi/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, v Version) (*SapObject, *stub.Endpoint) {
	t.Helper()
	cat, err := v.Catalog()
	require.NoError(t, err)
	ep := stub.New(stub.WithCatalog(cat))
	sap, err := Open(ep, v)
	require.NoError(t, err)
	return sap, ep
}

func TestHandlesCarryProgramIdentity(t *testing.T) {
	sap14, _ := open(t, V14)
	sap15, _ := open(t, V15)
	assert.Equal(t, "Sap2000.SapObject", sap14.Handle().String())
	assert.Equal(t, "Sap2000v15.cPointObj", sap15.SapModel().PointObj().Handle().String())
	assert.Equal(t, V15, sap15.Version())
}

func TestApplicationStartDefaults(t *testing.T) {
	sap, ep := open(t, V14)
	status, err := sap.ApplicationStart(context.Background(), ApplicationStartOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, status)

	last, _ := ep.LastCall()
	require.Len(t, last.Args, 3)
	assert.True(t, last.Args[0].Equal(transport.Int(3)))
	assert.True(t, last.Args[1].Equal(transport.Bool(true)))
	assert.True(t, last.Args[2].Equal(transport.Str("")))

	_, err = sap.ApplicationStart(context.Background(), ApplicationStartOptions{Units: KNmC.Opt(), Visible: bridge.Some(false)})
	require.NoError(t, err)
	last, _ = ep.LastCall()
	assert.True(t, last.Args[0].Equal(transport.Int(int32(KNmC))))
	assert.True(t, last.Args[1].Equal(transport.Bool(false)))
}

func TestGetPresentUnitsUsesStatus(t *testing.T) {
	sap, ep := open(t, V14)
	ep.Respond("cSapModel", "GetPresentUnits", int32(KNmC), nil)
	u, err := sap.SapModel().GetPresentUnits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KNmC, u)
	assert.Equal(t, "kN_m_C", u.String())
}

func TestAddCartesianFillsName(t *testing.T) {
	sap, ep := open(t, V14)
	ep.Respond("cPointObj", "AddCartesian", 0, map[int]transport.Value{3: transport.Str("7")})

	name := bridge.Want[string]()
	status, err := sap.SapModel().PointObj().AddCartesian(context.Background(), 1, 2, 3, name, AddPointOptions{CSys: bridge.Some("Local")})
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	got, err := name.Read()
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	last, _ := ep.LastCall()
	require.Len(t, last.Args, 8)
	assert.True(t, last.Args[5].Equal(transport.Str("Local")))
	assert.True(t, last.Args[7].Equal(transport.Int(0)))
}

func TestGetCoordCartesianPartialOutputs(t *testing.T) {
	sap, ep := open(t, V14)
	ep.Respond("cPointObj", "GetCoordCartesian", 0, map[int]transport.Value{
		1: transport.Double(10), 2: transport.Double(20), 3: transport.Double(30),
	})
	out := Coord{X: bridge.Want[float64](), Z: bridge.Want[float64]()}
	_, err := sap.SapModel().PointObj().GetCoordCartesian(context.Background(), "1", out, bridge.Opt[string]{})
	require.NoError(t, err)

	x, _ := out.X.Read()
	z, _ := out.Z.Read()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 30.0, z)

	last, _ := ep.LastCall()
	assert.True(t, last.Args[4].Equal(transport.Str("Global")))
}

func TestSetRestraintSendsSeed(t *testing.T) {
	sap, ep := open(t, V14)
	restraint := bridge.Seed([]bool{true, true, true, false, false, false})
	_, err := sap.SapModel().PointObj().SetRestraint(context.Background(), "1", restraint, Group.Opt())
	require.NoError(t, err)

	last, _ := ep.LastCall()
	assert.Equal(t, []bool{true, true, true, false, false, false}, last.Args[1].Bools)
	assert.True(t, last.Args[1].Ref)
	assert.True(t, last.Args[2].Equal(transport.Int(int32(Group))))
}

func TestAreaAddByCoordCountsPoints(t *testing.T) {
	sap, ep := open(t, V14)
	x := bridge.Seed([]float64{0, 1, 1, 0})
	y := bridge.Seed([]float64{0, 0, 1, 1})
	z := bridge.Seed([]float64{0, 0, 0, 0})
	_, err := sap.SapModel().AreaObj().AddByCoord(context.Background(), x, y, z, nil, AddFrameOptions{PropName: bridge.Some("ASEC1")})
	require.NoError(t, err)

	last, _ := ep.LastCall()
	require.Len(t, last.Args, 8)
	assert.True(t, last.Args[0].Equal(transport.Int(4)))
	assert.True(t, last.Args[4].Ref)
	assert.True(t, last.Args[5].Equal(transport.Str("ASEC1")))
	assert.True(t, last.Args[7].Equal(transport.Str("Global")))
}

func TestJointDisplArrays(t *testing.T) {
	sap, ep := open(t, V14)
	ep.Respond("cAnalysisResults", "JointDispl", 0, map[int]transport.Value{
		2:  transport.Int(2),
		3:  transport.Strs([]string{"1", "1"}),
		10: transport.Doubles([]float64{-0.25, -0.5}),
	})
	out := JointDisplOut{
		NumberResults: bridge.Want[int32](),
		Obj:           bridge.Want[[]string](),
		U3:            bridge.Want[[]float64](),
		U1:            bridge.Unused[[]float64](),
	}
	status, err := sap.SapModel().Results().JointDispl(context.Background(), "1", ObjectElm, out)
	require.NoError(t, err)
	assert.Equal(t, 0, status)

	n, _ := out.NumberResults.Read()
	u3, _ := out.U3.Read()
	assert.Equal(t, int32(2), n)
	assert.Equal(t, []float64{-0.25, -0.5}, u3)
	assert.True(t, out.U1.IsUnused())

	last, _ := ep.LastCall()
	assert.Len(t, last.Args, 14)
}

func TestVersionOnlyMethods(t *testing.T) {
	sap14, ep14 := open(t, V14)
	_, err := sap14.SapModel().AutoSeismic().GetEurocode820041(context.Background(), "EQX", Eurocode820041{})
	assert.ErrorIs(t, err, bridge.ErrUnknownMethod)
	assert.Empty(t, ep14.Calls())

	sap15, ep15 := open(t, V15)
	ep15.Respond("cAutoSeismic", "GetEurocode82004_1", 0, map[int]transport.Value{12: transport.Double(0.3)})
	out := Eurocode820041{Ag: bridge.Want[float64]()}
	status, err := sap15.SapModel().AutoSeismic().GetEurocode820041(context.Background(), "EQX", out)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	ag, _ := out.Ag.Read()
	assert.Equal(t, 0.3, ag)
	last, _ := ep15.LastCall()
	assert.Len(t, last.Args, 20)

	// The deprecated method still works on v15.
	_, err = sap15.SapModel().AutoSeismic().GetEurocode82004(context.Background(), "EQX", Eurocode82004{})
	assert.NoError(t, err)
}

func TestNonzeroStatusPassesThrough(t *testing.T) {
	sap, ep := open(t, V15)
	ep.Respond("cAnalyze", "RunAnalysis", 1, nil)
	status, err := sap.SapModel().Analyze().RunAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status)
}

func TestEverySapModelAccessorIsInCatalog(t *testing.T) {
	cat, err := catalog.Builtin("v14")
	require.NoError(t, err)
	sap, _ := open(t, V14)
	m := sap.SapModel()
	handles := []bridge.Handle{
		m.Handle(), m.File().Handle(), m.PropMaterial().Handle(), m.PropFrame().Handle(), m.PropArea().Handle(),
		m.PointObj().Handle(), m.FrameObj().Handle(), m.AreaObj().Handle(), m.LoadPatterns().Handle(),
		m.AutoSeismic().Handle(), m.DesignSteel().Handle(), m.Analyze().Handle(), m.Results().Handle(),
		m.ResultsSetup().Handle(),
	}
	components := map[string]bool{}
	for _, c := range cat.Components() {
		components[c] = true
	}
	for _, h := range handles {
		assert.True(t, components[h.Component()], h.String())
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("15")
	require.NoError(t, err)
	assert.Equal(t, V15, v)
	_, err = ParseVersion("v16")
	assert.Error(t, err)
}
