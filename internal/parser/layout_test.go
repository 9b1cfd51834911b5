package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tis100sim/internal/sim"
)

func TestParseLayoutBasic(t *testing.T) {
	text := `3 4
C C C C
C S C C
C C C D
I0 ASCII -
O3 ASCII STDOUT`
	spec, err := ParseLayout(text)
	require.NoError(t, err)
	assert.Equal(t, 3, spec.Rows)
	assert.Equal(t, 4, spec.Cols)
	require.Len(t, spec.Kinds, 12)
	assert.Equal(t, sim.NodeStack, spec.Kinds[5], "Kinds[5] (row1,col1) should be STACK")
	assert.Equal(t, sim.NodeDamaged, spec.Kinds[11], "Kinds[11] (row2,col3) should be DAMAGED")
	require.Len(t, spec.Bindings, 2)
	assert.Equal(t, IOBinding{Col: 0, IsOutput: false, Type: sim.IOAscii, Stream: "-", Separator: -1}, spec.Bindings[0])
	assert.Equal(t, 3, spec.Bindings[1].Col)
	assert.True(t, spec.Bindings[1].IsOutput)
}

func TestParseLayoutTranslatorMode(t *testing.T) {
	spec, err := ParseLayout("0 1\nI0 ASCII -\nO0 ASCII STDOUT")
	require.NoError(t, err)
	assert.Equal(t, 0, spec.Rows)
	assert.Equal(t, 1, spec.Cols)
	assert.Empty(t, spec.Kinds, "translator mode has no grid nodes")
}

func TestParseLayoutNumericSeparator(t *testing.T) {
	spec, err := ParseLayout("1 1\nC\nO0 NUMERIC STDOUT 44")
	require.NoError(t, err)
	require.Len(t, spec.Bindings, 1)
	assert.Equal(t, 44, spec.Bindings[0].Separator)
}

func TestParseLayoutRejectsUnknownKind(t *testing.T) {
	_, err := ParseLayout("1 1\nX")
	assert.Error(t, err, "expected an error for an unrecognized node-kind token")
}

func TestParseLayoutRejectsShortKindList(t *testing.T) {
	_, err := ParseLayout("1 2\nC")
	assert.Error(t, err, "expected an error when fewer kind tokens than rows*cols are given")
}

func TestParseLayoutIgnoresOutOfRangeBinding(t *testing.T) {
	spec, err := ParseLayout("1 1\nC\nI5 ASCII -")
	require.NoError(t, err)
	assert.Empty(t, spec.Bindings, "out-of-range column should be ignored")
}

func TestDefaultLayoutShape(t *testing.T) {
	spec := DefaultLayout(false)
	assert.Equal(t, 3, spec.Rows)
	assert.Equal(t, 4, spec.Cols)
	assert.Equal(t, 12, spec.CountCompute(), "all-compute default")
}

func TestShapedLayoutNumericIO(t *testing.T) {
	spec := ShapedLayout(2, 2, true)
	for _, b := range spec.Bindings {
		assert.Equal(t, sim.IONumeric, b.Type)
	}
}
