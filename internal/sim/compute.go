package sim

import (
	"tis100sim/internal/ops"
	"tis100sim/internal/word"
)

// stepCompute executes one instruction of a compute node against its parent
// grid, per spec.md §4.2's opcode table. Grounded directly on
// original_source/tis_ops.c's step()/step_defer() — including the
// jump_label goto pattern shared by JEZ/JGZ/JLZ/JMP/JNZ, reproduced here as
// the shared jumpTo helper.
func stepCompute(g *Grid, n *ComputeNode, op ops.Operation) StepResult {
	switch op.Opcode {
	case ops.Nop:
		return ResultOK

	case ops.Add, ops.Sub:
		v, res := evalArg(g, n, op.Src)
		if res != ResultOK {
			return res
		}
		if op.Opcode == ops.Add {
			n.Acc = word.Clamp(int(n.Acc) + int(v))
		} else {
			n.Acc = word.Clamp(int(n.Acc) - int(v))
		}
		return ResultOK

	case ops.Neg:
		n.Acc = -n.Acc
		return ResultOK

	case ops.Sav:
		n.Bak = n.Acc
		return ResultOK

	case ops.Swp:
		n.Acc, n.Bak = n.Bak, n.Acc
		return ResultOK

	case ops.Mov:
		return stepMov(g, n, op)

	case ops.Jmp:
		return jumpTo(n, op.Src.Label)
	case ops.Jez:
		if n.Acc == 0 {
			return jumpTo(n, op.Src.Label)
		}
		return ResultOK
	case ops.Jnz:
		if n.Acc != 0 {
			return jumpTo(n, op.Src.Label)
		}
		return ResultOK
	case ops.Jgz:
		if n.Acc > 0 {
			return jumpTo(n, op.Src.Label)
		}
		return ResultOK
	case ops.Jlz:
		if n.Acc < 0 {
			return jumpTo(n, op.Src.Label)
		}
		return ResultOK

	case ops.Jro:
		v, res := evalArg(g, n, op.Src)
		if res != ResultOK {
			return res
		}
		target := jroTarget(&n.Program, n.ip, int(v))
		// compensate for the common "advance by one" applied on ResultOK
		n.ip = (target - 1 + ops.LineCount) % ops.LineCount
		return ResultOK

	case ops.Hcf:
		n.Halted = true
		return ResultOK

	default: // ops.Invalid
		return ResultErr
	}
}

func stepMov(g *Grid, n *ComputeNode, op ops.Operation) StepResult {
	if n.port.reg != ops.RegInvalid {
		return ResultWriteWait
	}
	v, res := evalArg(g, n, op.Src)
	if res != ResultOK {
		return res
	}
	dst := op.Dst.Reg
	res = g.WriteRegister(n, dst, v)
	if res == ResultWriteWait {
		resolved := dst
		if resolved == ops.RegLast {
			resolved = n.port.last
		}
		n.pendingDir = resolved
	}
	return res
}

// evalArg reduces a source Arg (constant or register) to a word, via the
// port protocol for registers. Constants are pre-clamped at parse time.
func evalArg(g *Grid, n *ComputeNode, a ops.Arg) (word.Word, StepResult) {
	if a.Type == ops.ArgConstant {
		return word.Clamp(a.Con), ResultOK
	}
	return g.ReadRegister(n, a.Reg)
}

// jumpTo resolves a label to a slot index and sets the instruction pointer
// so that the scheduler's common +1-mod-15 advance lands exactly on it.
// Grounded on the "scan for label, then target-1" rule in spec.md §4.2,
// matching tis_ops.c's `goto jump_label` search.
func jumpTo(n *ComputeNode, label string) StepResult {
	for i := 0; i < ops.LineCount; i++ {
		if n.Program[i].Label == label {
			n.ip = (i - 1 + ops.LineCount) % ops.LineCount
			return ResultOK
		}
	}
	return ResultErr
}

// jroTarget implements spec.md §4.2's skip-INVALID JRO walk: count `disp`
// non-empty slots away from start in the sign of disp, passing over the
// program's ends (slot 14 to slot 0 and back) as needed, and stopping at the
// farthest reachable slot rather than circling back to start.
func jroTarget(prog *ops.Program, start int, disp int) int {
	if disp == 0 {
		return start
	}
	dir := 1
	steps := disp
	if disp < 0 {
		dir = -1
		steps = -disp
	}
	seq := make([]int, 0, ops.LineCount-1)
	idx := start
	for i := 0; i < ops.LineCount; i++ {
		idx = ((idx+dir)%ops.LineCount + ops.LineCount) % ops.LineCount
		if idx == start {
			break
		}
		if !prog[idx].IsEmpty() {
			seq = append(seq, idx)
		}
	}
	if len(seq) == 0 {
		return start
	}
	if steps > len(seq) {
		steps = len(seq)
	}
	return seq[steps-1]
}
