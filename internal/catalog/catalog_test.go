package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/oriys/oapi/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinV14(t *testing.T) {
	c, err := Builtin("v14")
	require.NoError(t, err)
	assert.Equal(t, "v14", c.Version)
	assert.Equal(t, "Sap2000", c.Program)

	m, err := c.Lookup("cFrameObj", "AddByCoord")
	require.NoError(t, err)
	assert.Equal(t, 10, m.Arity())
	assert.Equal(t, 6, m.RequiredArity())

	name := m.Params[6]
	assert.Equal(t, transport.Out, name.Dir)
	assert.True(t, name.Optional)
	assert.True(t, name.Default.Equal(transport.Str("")))

	prop := m.Params[7]
	assert.True(t, prop.Default.Equal(transport.Str("Default")))
	assert.True(t, m.Params[9].Default.Equal(transport.Str("Global")))
}

func TestBuiltinDefaultsMatchKinds(t *testing.T) {
	c, err := Builtin("v14")
	require.NoError(t, err)

	m, err := c.Lookup("cPropMaterial", "SetMPIsotropic")
	require.NoError(t, err)
	assert.True(t, m.Params[4].Default.Equal(transport.Double(0)))

	m, err = c.Lookup("SapObject", "ApplicationStart")
	require.NoError(t, err)
	assert.True(t, m.Params[0].Default.Equal(transport.Int(3)))
	assert.True(t, m.Params[1].Default.Equal(transport.Bool(true)))

	m, err = c.Lookup("cAnalysisResults", "JointDispl")
	require.NoError(t, err)
	assert.Equal(t, 14, m.Arity())
	assert.Equal(t, 2, m.RequiredArity())
	assert.Equal(t, 0, m.Params[8].Default.Len())
}

func TestV15ExtendsV14(t *testing.T) {
	v14, err := Builtin("v14")
	require.NoError(t, err)
	v15, err := Builtin("v15")
	require.NoError(t, err)

	assert.Equal(t, "Sap2000v15", v15.Program)
	assert.Equal(t, v14.Len()+1, v15.Len())

	_, err = v15.Lookup("cAreaObj", "AddByCoord")
	assert.NoError(t, err)

	m, err := v15.Lookup("cAutoSeismic", "GetEurocode82004_1")
	require.NoError(t, err)
	assert.Equal(t, 20, m.Arity())

	_, err = v14.Lookup("cAutoSeismic", "GetEurocode82004_1")
	assert.True(t, errors.Is(err, transport.ErrUnknownMethod))

	old, err := v15.Lookup("cAutoSeismic", "GetEurocode82004")
	require.NoError(t, err)
	assert.True(t, old.Deprecated)
}

func TestLookupIsCaseSensitive(t *testing.T) {
	c, err := Builtin("v14")
	require.NoError(t, err)
	_, err = c.Lookup("cAreaObj", "addByCoord")
	assert.ErrorIs(t, err, transport.ErrUnknownMethod)
}

func TestLoadRejectsRequiredAfterOptional(t *testing.T) {
	doc := `
version: test
program: Demo
components:
  cThing:
    Bad:
      - {name: a, kind: int, optional: true, default: 1}
      - {name: b, kind: int}
`
	_, err := Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required parameter after an optional one")
}

func TestLoadRejectsMistypedDefault(t *testing.T) {
	doc := `
version: test
program: Demo
components:
  cThing:
    Bad:
      - {name: a, kind: bool, optional: true, default: "yes"}
`
	_, err := Load(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestLoadExtendsBuiltinAndMerge(t *testing.T) {
	doc := `
version: site
extends: v14
components:
  cFrameObj:
    Count: []
  cCableObj:
    Count: []
`
	c, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Sap2000", c.Program)

	m, err := c.Lookup("cFrameObj", "Count")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Arity())

	base, err := Builtin("v14")
	require.NoError(t, err)
	base.Merge(c)
	_, err = base.Lookup("cCableObj", "Count")
	assert.NoError(t, err)
}

func TestComponentsAndMethodsSorted(t *testing.T) {
	c, err := Builtin("v14")
	require.NoError(t, err)
	comps := c.Components()
	require.NotEmpty(t, comps)
	for i := 1; i < len(comps); i++ {
		assert.Less(t, comps[i-1], comps[i])
	}
	ms := c.Methods("cPointObj")
	require.NotEmpty(t, ms)
	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Name, ms[i].Name)
	}
}
