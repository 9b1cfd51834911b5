package runner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tis100sim/internal/parser"
)

func build(t *testing.T, layoutText, sourceText string, stdin string) (*bytes.Buffer, Result) {
	t.Helper()
	layout, err := parser.ParseLayout(layoutText)
	require.NoError(t, err, "ParseLayout")
	programs, _, err := parser.ParseSource(sourceText, layout.CountCompute())
	require.NoError(t, err, "ParseSource")
	var out bytes.Buffer
	grid, closeAll, err := Build(layout, programs, Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: &out,
	})
	require.NoError(t, err, "Build")
	defer closeAll()
	return &out, Run(grid, 500)
}

// TestIdentityTranslator feeds bytes straight through a single-column
// translator grid (Rows == 0), confirming the bypass path in
// OutputColumn.step that reads directly from the paired InputSource.
func TestIdentityTranslator(t *testing.T) {
	layout := "0 1\nI0 ASCII -\nO0 ASCII STDOUT"
	out, result := build(t, layout, "", "abc")
	require.Equal(t, "abc", out.String())
	require.True(t, result.Quiescent, "result = %+v, want quiescent", result)
}

// TestSaturatingAddThroughGrid adds 999 twice to an input value on one
// compute node, forwards the sum through a second node, and confirms the
// result saturates at word.Max rather than overflowing.
func TestSaturatingAddThroughGrid(t *testing.T) {
	layout := "1 2\nC C\nI0 NUMERIC -\nO1 NUMERIC STDOUT"
	source := `@0
MOV UP, ACC
ADD 999
ADD 999
MOV ACC, RIGHT
@1
MOV LEFT, DOWN
`
	out, _ := build(t, layout, source, "1\n")
	require.Equal(t, "999", strings.TrimSpace(out.String()), "saturated sum")
}

// TestStackMemoryRoundTrip routes a value through a STACK node between two
// compute nodes and confirms it survives the round trip unchanged.
func TestStackMemoryRoundTrip(t *testing.T) {
	layout := "1 3\nC S C\nI0 NUMERIC -\nO2 NUMERIC STDOUT"
	source := `@0
MOV UP, RIGHT
@1
MOV LEFT, DOWN
`
	out, _ := build(t, layout, source, "42\n")
	require.Equal(t, "42", strings.TrimSpace(out.String()))
}

// TestHcfHaltsImmediately confirms a lone HCF instruction halts the run on
// the very first tick without requiring quiescence.
func TestHcfHaltsImmediately(t *testing.T) {
	layout := "1 1\nC"
	source := "@0\nHCF\n"
	_, result := build(t, layout, source, "")
	require.True(t, result.Halted, "result = %+v, want Halted", result)
	require.Equal(t, 1, result.Ticks)
}

// TestMovFromEmptyInputBlocksButQuiesces: a MOV reading from an exhausted
// input source blocks forever (READ_WAIT every tick), but the grid still
// reaches quiescence since that's a stable, unchanging state.
func TestMovFromEmptyInputBlocksButQuiesces(t *testing.T) {
	layout := "1 1\nC\nI0 ASCII -"
	source := "@0\nMOV UP, ACC\n"
	_, result := build(t, layout, source, "") // empty stdin: the source is exhausted immediately
	require.True(t, result.Quiescent, "result = %+v, want quiescent (blocked read is a stable state)", result)
}
