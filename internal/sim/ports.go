package sim

import (
	"tis100sim/internal/ops"
	"tis100sim/internal/word"
)

// ReadRegister implements spec.md §4.3's read_register for any addressable
// cell (compute or stack). Grounded on original_source/tis_node.c's
// read_register/read_port_register_maybe.
func (g *Grid) ReadRegister(cell Cell, reg ops.Register) (word.Word, StepResult) {
	switch reg {
	case ops.RegAcc:
		cn, ok := cell.(*ComputeNode)
		if !ok {
			return 0, ResultErr
		}
		return cn.Acc, ResultOK
	case ops.RegNil:
		return 0, ResultOK
	case ops.RegBak:
		return 0, ResultErr
	case ops.RegUp, ops.RegDown, ops.RegLeft, ops.RegRight:
		return g.readDirectional(cell, reg)
	case ops.RegAny:
		for _, dir := range []ops.Register{ops.RegLeft, ops.RegRight, ops.RegUp, ops.RegDown} {
			if v, res := g.readDirectional(cell, dir); res == ResultOK {
				cell.Port().last = dir
				return v, ResultOK
			}
		}
		return 0, ResultReadWait
	case ops.RegLast:
		last := cell.Port().last
		if last == ops.RegInvalid || last == ops.RegNil {
			return 0, ResultErr
		}
		return g.readDirectional(cell, last)
	default:
		return 0, ResultErr
	}
}

// WriteRegister implements spec.md §4.3's write_register.
func (g *Grid) WriteRegister(cell Cell, reg ops.Register, value word.Word) StepResult {
	switch reg {
	case ops.RegAcc:
		cn, ok := cell.(*ComputeNode)
		if !ok {
			return ResultErr
		}
		cn.Acc = value
		return ResultOK
	case ops.RegNil:
		return ResultOK
	case ops.RegBak, ops.RegInvalid:
		return ResultErr
	case ops.RegUp, ops.RegDown, ops.RegLeft, ops.RegRight, ops.RegAny:
		p := cell.Port()
		p.buf = value
		row := cell.Row()
		if (reg == ops.RegDown || reg == ops.RegAny) && row == g.Rows-1 {
			// Visible to the output column stepped later in this same
			// phase-1 pass, which is what gives output writes a one-tick
			// cost instead of the usual two (spec.md §9).
			p.reg = reg
		}
		return ResultWriteWait
	case ops.RegLast:
		last := cell.Port().last
		if last == ops.RegInvalid || last == ops.RegNil {
			return ResultErr
		}
		return g.WriteRegister(cell, last, value)
	default:
		return ResultErr
	}
}

// readDirectional resolves the peer on one cardinal edge of cell and
// attempts to drain its parked write, per spec.md §4.3's UP/DOWN/LEFT/RIGHT
// bullet. UP at row 0 delegates to the input column; DOWN at the last row
// returns ResultReadWait, since output columns never produce data.
func (g *Grid) readDirectional(cell Cell, dir ops.Register) (word.Word, StepResult) {
	row, col := cell.Row(), cell.Col()
	switch dir {
	case ops.RegUp:
		if row == 0 {
			return g.readInput(col)
		}
		return g.drain(g.at(row-1, col), ops.RegDown)
	case ops.RegDown:
		if row == g.Rows-1 {
			return 0, ResultReadWait // output columns never produce data
		}
		return g.drain(g.at(row+1, col), ops.RegUp)
	case ops.RegLeft:
		if col == 0 {
			return 0, ResultReadWait
		}
		return g.drain(g.at(row, col-1), ops.RegRight)
	case ops.RegRight:
		if col == g.Cols-1 {
			return 0, ResultReadWait
		}
		return g.drain(g.at(row, col+1), ops.RegLeft)
	default:
		return 0, ResultErr
	}
}

// drain attempts to take a peer's parked write, where complement is the
// direction the peer must have targeted (its own outgoing direction toward
// the reader) to match.
func (g *Grid) drain(peer Cell, complement ops.Register) (word.Word, StepResult) {
	p := peer.Port()
	if p.reg != complement && p.reg != ops.RegAny {
		return 0, ResultReadWait
	}
	wasAny := p.reg == ops.RegAny
	v := p.buf
	p.reg = ops.RegNil
	if wasAny {
		p.last = complement
	}
	return v, ResultOK
}

// readInput drains the input column at col the same way drain() does for an
// interior peer, matching original_source's "peer" treatment of inputs.
func (g *Grid) readInput(col int) (word.Word, StepResult) {
	if col < 0 || col >= len(g.Inputs) || g.Inputs[col] == nil {
		return 0, ResultReadWait
	}
	ic := g.Inputs[col]
	p := &ic.port
	if p.reg != ops.RegDown && p.reg != ops.RegAny {
		return 0, ResultReadWait
	}
	wasAny := p.reg == ops.RegAny
	v := p.buf
	p.reg = ops.RegNil
	if wasAny {
		p.last = ops.RegDown
	}
	return v, ResultOK
}
