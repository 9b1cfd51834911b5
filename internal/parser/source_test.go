package parser

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tis100sim/internal/ops"
)

func TestParseSourceBasicProgram(t *testing.T) {
	text := `@0
## demo
MOV 5, RIGHT
ADD ACC
loop: JMP loop
`
	programs, title, err := ParseSource(text, 1)
	require.NoError(t, err)
	assert.Equal(t, "demo", title)
	prog, ok := programs[0]
	require.True(t, ok, "expected a program for node 0")

	// The "## demo" comment line occupies slot 0 as an empty slot.
	line1 := prog[1]
	if line1.Opcode != ops.Mov || line1.Src.Con != 5 || line1.Dst.Reg != ops.RegRight {
		t.Errorf("line 1 = %s, want MOV 5, RIGHT", spew.Sdump(line1))
	}
	if prog[2].Opcode != ops.Add || prog[2].Src.Reg != ops.RegAcc {
		t.Errorf("line 2 = %s, want ADD ACC", spew.Sdump(prog[2]))
	}
	if prog[3].Label != "loop" || prog[3].Opcode != ops.Jmp || prog[3].Src.Label != "loop" {
		t.Errorf("line 3 = %s, want label loop: JMP loop", spew.Sdump(prog[3]))
	}
}

func TestParseSourceDiscardsOutOfRangeBlock(t *testing.T) {
	text := "@5\nNOP\n"
	programs, _, err := ParseSource(text, 1)
	require.NoError(t, err)
	assert.Empty(t, programs, "node id out of range should produce no program")
}

func TestParseSourceRejectsUnknownOpcode(t *testing.T) {
	_, _, err := ParseSource("@0\nBOGUS ACC\n", 1)
	assert.Error(t, err, "expected an error for an unrecognized opcode")
}

func TestParseSourceRejectsBakAsOperand(t *testing.T) {
	_, _, err := ParseSource("@0\nMOV BAK, ACC\n", 1)
	assert.Error(t, err, "BAK cannot be read directly")
	_, _, err = ParseSource("@0\nMOV ACC, BAK\n", 1)
	assert.Error(t, err, "BAK cannot be written directly")
}

func TestParseSourceRejectsWrongArity(t *testing.T) {
	_, _, err := ParseSource("@0\nMOV ACC\n", 1)
	assert.Error(t, err, "MOV needs two operands")
	_, _, err = ParseSource("@0\nADD ACC, BAK\n", 1)
	assert.Error(t, err, "ADD takes exactly one operand")
}

func TestParseSourceLabelOnCommentOnlyLine(t *testing.T) {
	programs, _, err := ParseSource("@0\nstart: # just a label\nMOV UP, DOWN\n", 1)
	require.NoError(t, err)
	prog := programs[0]
	if prog[0].Label != "start" || !prog[0].IsEmpty() {
		t.Errorf("line 0 = %s, want empty slot carrying label %q", spew.Sdump(prog[0]), "start")
	}
	assert.Equal(t, ops.Mov, prog[1].Opcode)
}

func TestParseSourceClampsOutOfRangeLiteral(t *testing.T) {
	programs, _, err := ParseSource("@0\nMOV 5000, ACC\n", 1)
	require.NoError(t, err)
	assert.Equal(t, 999, programs[0][0].Src.Con, "literal should clamp to 999")
}

// TestParseSourceLabelSharingOpcodeKeyword confirms a label spelled the same
// as an opcode keyword (e.g. "ADD:") is parsed as a label, not a syntax
// error, since the ':' split happens before opcode lookup.
func TestParseSourceLabelSharingOpcodeKeyword(t *testing.T) {
	programs, _, err := ParseSource("@0\nADD: MOV 1, ACC\nJMP ADD\n", 1)
	require.NoError(t, err)
	prog := programs[0]
	if prog[0].Label != "ADD" || prog[0].Opcode != ops.Mov {
		t.Errorf("line 0 = %s, want label ADD: MOV 1, ACC", spew.Sdump(prog[0]))
	}
	if prog[1].Opcode != ops.Jmp || prog[1].Src.Label != "ADD" {
		t.Errorf("line 1 = %s, want JMP ADD", spew.Sdump(prog[1]))
	}
}

func TestParseSourceHonorsLineCap(t *testing.T) {
	text := "@0\n"
	for i := 0; i < 20; i++ {
		text += "NOP\n"
	}
	programs, _, err := ParseSource(text, 1)
	require.NoError(t, err)
	count := 0
	for _, op := range programs[0] {
		if !op.IsEmpty() {
			count++
		}
	}
	assert.Equal(t, ops.LineCount, count, "non-empty lines should be capped")
}
