package sim

import (
	"tis100sim/internal/ops"
	"tis100sim/internal/word"
)

// Cell is one grid position: a COMPUTE, STACK, RAM, DAMAGED, or RESERVED
// node. The four concrete kinds below play the same role as gvm/vm/devices.go's
// HardwareDevice implementations: a closed set of variants behind one
// interface, since Go has no sum types.
type Cell interface {
	Kind() NodeKind
	Row() int
	Col() int
	Port() *portState
	State() NodeState

	// step runs phase 1. A ResultWriteWait return marks the node deferred
	// for phase 2 in the same tick.
	step(g *Grid) StepResult
	// stepDefer runs phase 2, only for nodes that returned ResultWriteWait
	// from step this tick.
	stepDefer(g *Grid) StepResult
}

type position struct {
	row, col int
}

func (p position) Row() int { return p.row }
func (p position) Col() int { return p.col }

// DamagedNode is a permanent wall: its port never has a pending write, so
// reads against it block forever, and nothing ever drains a write parked
// toward it. RESERVED nodes behave identically (spec.md leaves RESERVED's
// behavior as a bare type tag, same as DAMAGED).
type DamagedNode struct {
	position
	kind  NodeKind
	port  portState
	state NodeState
}

func NewDamagedNode(row, col int) *DamagedNode {
	return &DamagedNode{position: position{row, col}, kind: NodeDamaged, port: newPortState()}
}

func NewReservedNode(row, col int) *DamagedNode {
	return &DamagedNode{position: position{row, col}, kind: NodeReserved, port: newPortState()}
}

func (n *DamagedNode) Kind() NodeKind       { return n.kind }
func (n *DamagedNode) Port() *portState     { return &n.port }
func (n *DamagedNode) State() NodeState     { return n.state }
func (n *DamagedNode) step(*Grid) StepResult {
	n.state = StateIdle
	return ResultOK
}
func (n *DamagedNode) stepDefer(*Grid) StepResult { return ResultOK }

// RamNode is a type-only stand-in: no memory semantics are specified, so it
// never runs and never progresses (spec.md §3/§9, SPEC_FULL.md §4.8).
type RamNode struct {
	position
	port  portState
	state NodeState
}

func NewRamNode(row, col int) *RamNode {
	return &RamNode{position: position{row, col}, port: newPortState()}
}

func (n *RamNode) Kind() NodeKind   { return NodeRAM }
func (n *RamNode) Port() *portState { return &n.port }
func (n *RamNode) State() NodeState { return n.state }
func (n *RamNode) step(*Grid) StepResult {
	n.state = StateIdle
	return ResultOK
}
func (n *RamNode) stepDefer(*Grid) StepResult { return ResultOK }

// ComputeNode executes a 15-line Program against ACC/BAK and the four
// ports. Grounded on original_source/tis_node.c's run()/run_defer() for a
// TIS_NODE_TYPE_COMPUTE node and tis_ops.c's step()/step_defer().
type ComputeNode struct {
	position
	port    portState
	state   NodeState
	Program ops.Program
	ip      int
	Acc     word.Word
	Bak     word.Word
	Halted  bool // set by HCF; the scheduler/runner halts the whole process

	pendingDir ops.Register // direction this tick's MOV parked its write under
}

func NewComputeNode(row, col int, program ops.Program) *ComputeNode {
	return &ComputeNode{position: position{row, col}, port: newPortState(), Program: program}
}

func (n *ComputeNode) Kind() NodeKind   { return NodeCompute }
func (n *ComputeNode) Port() *portState { return &n.port }
func (n *ComputeNode) State() NodeState { return n.state }

// IP is the index of the next instruction slot to execute, 0-based into the
// 15-line Program.
func (n *ComputeNode) IP() int { return n.ip }

func advanceIP(ip int) int { return (ip + 1) % ops.LineCount }

// fetch scans forward from ip (inclusive) for the next non-empty slot,
// wrapping at most once around the 15 lines. Returns ok=false if every slot
// is empty (pure blank/label/comment program): the node is permanently IDLE.
func (n *ComputeNode) fetch() (ops.Operation, bool) {
	start := n.ip
	for {
		op := n.Program[n.ip]
		if !op.IsEmpty() {
			return op, true
		}
		n.ip = advanceIP(n.ip)
		if n.ip == start {
			return ops.Operation{}, false
		}
	}
}

func (n *ComputeNode) step(g *Grid) StepResult {
	op, ok := n.fetch()
	if !ok {
		n.state = StateIdle
		return ResultOK
	}
	res := stepCompute(g, n, op)
	switch res {
	case ResultOK:
		n.ip = advanceIP(n.ip)
		n.state = StateRunning
	case ResultReadWait:
		n.state = StateReadWait
	case ResultWriteWait:
		n.state = StateWriteWait
	case ResultErr:
		n.state = StateIdle
	}
	return res
}

func (n *ComputeNode) stepDefer(g *Grid) StepResult {
	res := deferWrite(&n.port, n.pendingDir)
	switch res {
	case ResultOK:
		n.ip = advanceIP(n.ip)
		n.state = StateRunning
	case ResultWriteWait:
		n.state = StateWriteWait
	}
	return res
}

// StackNode is the 15-cell LIFO memory node. Grounded on
// original_source/tis_node.c's TIS_NODE_TYPE_MEMORY_STACK branches of
// run()/run_defer().
type StackNode struct {
	position
	port     portState
	state    NodeState
	data     [ops.LineCount]word.Word
	sp       int
	deferred bool
}

func NewStackNode(row, col int) *StackNode {
	return &StackNode{position: position{row, col}, port: newPortState()}
}

func (n *StackNode) Kind() NodeKind   { return NodeStack }
func (n *StackNode) Port() *portState { return &n.port }
func (n *StackNode) State() NodeState { return n.state }

// Depth is the number of cells currently occupied, for tests and dumps.
func (n *StackNode) Depth() int { return n.sp }

// step re-evaluates both the push and pop attempts fresh every tick,
// independent of each other, per tis_node.c's TIS_NODE_TYPE_MEMORY_STACK
// branch of run(). One consequence the source itself flags as unresolved
// (its own "TODO experiment" comment): if a pop offer sits unconsumed
// across several ticks while new pushes keep landing, the offered value
// is recomputed from the live top each tick and can "jump" to a more
// recently pushed value rather than preserving strict arrival order. That
// only matters when a consumer falls more than one push behind; the
// common case (roughly one push per pop) is unaffected.
func (n *StackNode) step(g *Grid) StepResult {
	progressed := false
	if n.sp < ops.LineCount {
		if v, res := g.ReadRegister(n, ops.RegAny); res == ResultOK {
			n.data[n.sp] = v
			n.sp++
			progressed = true
		}
	}
	n.deferred = false
	result := ResultReadWait
	if n.sp > 0 {
		res := g.WriteRegister(n, ops.RegAny, n.data[n.sp-1])
		if res == ResultOK {
			n.sp--
			progressed = true
			result = ResultOK
		} else {
			n.deferred = true
			result = ResultWriteWait
		}
	} else if progressed {
		result = ResultOK
	}
	switch result {
	case ResultOK:
		n.state = StateRunning
	case ResultWriteWait:
		n.state = StateWriteWait
	default:
		n.state = StateReadWait
	}
	return result
}

func (n *StackNode) stepDefer(g *Grid) StepResult {
	if !n.deferred {
		return ResultOK
	}
	res := deferWrite(&n.port, ops.RegAny)
	if res == ResultOK {
		n.sp--
		n.state = StateRunning
	} else {
		n.state = StateWriteWait
	}
	return res
}

// deferWrite is the shared phase-2 finalizer for any parked port write,
// used identically by ComputeNode's MOV and StackNode's pop attempt.
// Grounded on write_port_register_defer_maybe in original_source/tis_node.c.
func deferWrite(p *portState, dir ops.Register) StepResult {
	if p.reg == ops.RegNil {
		p.reg = ops.RegInvalid
		return ResultOK
	}
	p.reg = dir
	return ResultWriteWait
}
