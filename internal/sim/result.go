// Package sim is the running grid: nodes, ports, I/O columns, and the
// two-phase scheduler that steps them. Grounded on the teacher's
// HardwareDevice interface + concrete-struct-per-kind pattern
// (gvm/vm/devices.go) for the node-kind polymorphism, and on
// original_source/tis_node.c and tis_ops.c for every handshake and
// stepper algorithm.
package sim

import (
	"tis100sim/internal/ops"
	"tis100sim/internal/word"
)

// StepResult is the per-component outcome of one phase of one tick.
type StepResult byte

const (
	ResultOK StepResult = iota
	ResultReadWait
	ResultWriteWait
	ResultErr
)

func (r StepResult) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultReadWait:
		return "READ_WAIT"
	case ResultWriteWait:
		return "WRITE_WAIT"
	case ResultErr:
		return "ERR"
	default:
		return "?"
	}
}

// NodeState is the state recorded for a component after phase 2 of a tick,
// the value the scheduler compares tick-to-tick to detect quiescence.
type NodeState byte

const (
	StateIdle NodeState = iota
	StateRunning
	StateReadWait
	StateWriteWait
)

func (s NodeState) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateReadWait:
		return "READ_WAIT"
	case StateWriteWait:
		return "WRITE_WAIT"
	default:
		return "IDLE"
	}
}

// NodeKind tags the variant a Cell implements, mirroring
// original_source/tis_types.h's tis_node_type_t.
type NodeKind byte

const (
	NodeDamaged NodeKind = iota
	NodeReserved
	NodeCompute
	NodeStack
	NodeRAM
)

func (k NodeKind) String() string {
	switch k {
	case NodeCompute:
		return "COMPUTE"
	case NodeStack:
		return "STACK"
	case NodeRAM:
		return "RAM"
	case NodeReserved:
		return "RESERVED"
	default:
		return "DAMAGED"
	}
}

// portState is the shared write-side port bookkeeping every addressable
// node (compute, stack) and the input column carry: a parked value, the
// register a pending write is directed at, and the last direction an ANY
// resolved to. Grounded on tis_node_t's writebuf/writereg/last fields.
type portState struct {
	buf  word.Word
	reg  ops.Register // RegInvalid (idle), RegNil (consumed, awaiting finalize), or a direction/ANY (parked)
	last ops.Register // RegInvalid until the first ANY resolves
}

func newPortState() portState {
	return portState{reg: ops.RegInvalid, last: ops.RegInvalid}
}
