package parser

import (
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"tis100sim/internal/ops"
	"tis100sim/internal/word"
)

var opArity = map[ops.Opcode]int{
	ops.Nop: 0, ops.Hcf: 0, ops.Sav: 0, ops.Swp: 0, ops.Neg: 0,
	ops.Add: 1, ops.Sub: 1, ops.Jmp: 1, ops.Jez: 1, ops.Jgz: 1, ops.Jlz: 1, ops.Jnz: 1, ops.Jro: 1,
	ops.Mov: 2,
}

const maxLineLen = 19

// ParseSource lowers the line-oriented source grammar from spec.md §4.7.
// numComputeNodes bounds the valid @<id> range; ids outside it are warned
// and their block discarded. Grounded on the teacher's line-scanning
// preprocessLine (gvm/vm/compile.go), generalized to this grammar's
// @block/label/opcode structure instead of a flat instruction stream.
func ParseSource(text string, numComputeNodes int) (map[int]ops.Program, string, error) {
	programs := make(map[int]ops.Program)

	var title string
	titleSet := false

	buildingID := -1
	var building ops.Program
	buildIdx := 0

	commit := func() {
		if buildingID >= 0 {
			programs[buildingID] = building
		}
	}

	lines := strings.Split(text, "\n")
	for lineNo, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.HasPrefix(line, "@") {
			commit()
			rest := line[1:]
			i := 0
			for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
				i++
			}
			if i == 0 {
				return nil, "", errors.Errorf("source line %d: %q is not a valid @<id> directive", lineNo+1, line)
			}
			id, err := strconv.Atoi(rest[:i])
			if err != nil {
				return nil, "", errors.Wrapf(err, "source line %d: invalid node id", lineNo+1)
			}
			if strings.TrimSpace(rest[i:]) != "" {
				glog.Warningf("source line %d: trailing garbage after @%d ignored", lineNo+1, id)
			}
			if id < 0 || id >= numComputeNodes {
				glog.Warningf("source line %d: @%d does not name an existing compute node, discarding block", lineNo+1, id)
				buildingID = -1
				continue
			}
			buildingID = id
			building = ops.Program{}
			buildIdx = 0
			continue
		}

		if buildingID < 0 {
			continue // no open block (before the first @, or inside a discarded one)
		}
		if buildIdx >= ops.LineCount {
			if strings.TrimSpace(stripComment(line)) != "" {
				glog.Warningf("source line %d: node %d already has %d lines, ignoring extra line", lineNo+1, buildingID, ops.LineCount)
			}
			continue
		}

		op, err := parseProgramLine(line, lineNo+1, &titleSet, &title)
		if err != nil {
			return nil, "", err
		}
		op.LineNum = buildIdx
		building[buildIdx] = op
		buildIdx++
	}
	commit()

	return programs, title, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// parseProgramLine implements spec.md §4.7's "Per program-line parsing"
// seven-step order.
func parseProgramLine(line string, lineNo int, titleSet *bool, title *string) (ops.Operation, error) {
	if len(line) > maxLineLen {
		glog.Warningf("source line %d: %d characters exceeds the %d-character soft limit", lineNo, len(line), maxLineLen)
	}

	// Step 1: title.
	if !*titleSet {
		if i := strings.Index(line, "##"); i >= 0 {
			rest := strings.TrimLeft(line[i+2:], " \t")
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				*title = fields[0]
				*titleSet = true
			}
		}
	}

	// Step 2: strip comment.
	body := stripComment(line)

	op := ops.Operation{LineText: line}

	// Step 3: label.
	if i := strings.IndexByte(body, ':'); i >= 0 {
		op.Label = body[:i]
		body = body[i+1:]
	}

	// Step 4: tokenize.
	toks := strings.FieldsFunc(body, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(toks) == 0 {
		op.Opcode = ops.Invalid
		return op, nil
	}

	opcode, ok := ops.LookupOpcode(strings.ToUpper(toks[0]))
	if !ok {
		return ops.Operation{}, errors.Errorf("source line %d: unrecognized opcode %q", lineNo, toks[0])
	}
	op.Opcode = opcode
	arity := opArity[opcode]
	args := toks[1:]
	if len(args) < arity {
		return ops.Operation{}, errors.Errorf("source line %d: %s expects %d operand(s), got %d", lineNo, opcode, arity, len(args))
	}

	if arity >= 1 {
		arg, err := parseFirstOperand(opcode, args[0], lineNo)
		if err != nil {
			return ops.Operation{}, err
		}
		op.Src = arg
	}
	if arity >= 2 {
		arg, err := parseRegisterOperand(args[1], lineNo)
		if err != nil {
			return ops.Operation{}, err
		}
		op.Dst = arg
	}

	// Step 7: trailing garbage.
	if len(args) > arity {
		return ops.Operation{}, errors.Errorf("source line %d: unexpected extra operand %q", lineNo, args[arity])
	}

	return op, nil
}

func parseFirstOperand(opcode ops.Opcode, tok string, lineNo int) (ops.Arg, error) {
	if opcode.IsJumpWithLabel() {
		return ops.Arg{Type: ops.ArgLabel, Label: tok}, nil
	}
	if reg, ok := ops.LookupRegister(strings.ToUpper(tok)); ok {
		if reg == ops.RegBak {
			return ops.Arg{}, errors.Errorf("source line %d: BAK cannot be read directly", lineNo)
		}
		return ops.Arg{Type: ops.ArgRegister, Reg: reg}, nil
	}
	n, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return ops.Arg{}, errors.Errorf("source line %d: %q is neither a register nor an integer literal", lineNo, tok)
	}
	clamped := word.Clamp(int(n))
	if int(clamped) != int(n) {
		glog.Warningf("source line %d: literal %d out of range, clamped to %d", lineNo, n, clamped)
	}
	return ops.Arg{Type: ops.ArgConstant, Con: int(clamped)}, nil
}

func parseRegisterOperand(tok string, lineNo int) (ops.Arg, error) {
	reg, ok := ops.LookupRegister(strings.ToUpper(tok))
	if !ok {
		return ops.Arg{}, errors.Errorf("source line %d: %q is not a register", lineNo, tok)
	}
	if reg == ops.RegBak {
		return ops.Arg{}, errors.Errorf("source line %d: BAK cannot be written directly", lineNo)
	}
	return ops.Arg{Type: ops.ArgRegister, Reg: reg}, nil
}
