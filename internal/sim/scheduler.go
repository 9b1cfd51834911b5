package sim

import "github.com/golang/glog"

// Scheduler drives one Grid through repeated two-phase ticks, per spec.md
// §4.6. Grounded on original_source/tis.c's main loop calling run()/
// run_defer() over every node in a fixed order.
type Scheduler struct {
	Grid *Grid

	prevInterior []NodeState
	prevInputs   []NodeState
	prevOutputs  []NodeState
}

func NewScheduler(g *Grid) *Scheduler {
	return &Scheduler{
		Grid:         g,
		prevInterior: make([]NodeState, len(g.Interior)),
		prevInputs:   make([]NodeState, len(g.Inputs)),
		prevOutputs:  make([]NodeState, len(g.Outputs)),
	}
}

// Tick runs phase 1 then phase 2 across every component in the fixed
// {inputs, interior row-major, outputs} order and reports whether the grid
// is now quiescent (spec.md §4.6's "equals the state recorded from the
// previous tick and is not RUNNING").
//
// HCF is checked after every interior node's phase-1 step, not just at the
// end of the tick: original_source/tis_node.c's halt() macro calls exit()
// the instant HCF executes, so nothing ordered after it in the fixed visit
// order — later interior nodes, output columns, or phase-2 deferrals — may
// run or produce further observable effects in that same tick (spec.md §5,
// §8). Bailing out of the phase-1 interior loop skips the output and
// phase-2 passes entirely, since HCF can only be set during phase 1.
func (s *Scheduler) Tick() bool {
	g := s.Grid
	deferredInterior := make([]bool, len(g.Interior))
	deferredInputs := make(map[int]bool, len(g.Inputs))

	// Phase 1.
	if g.Rows > 0 {
		for _, ic := range g.Inputs {
			if ic == nil {
				continue
			}
			if ic.step() == ResultWriteWait {
				deferredInputs[ic.Col] = true
			}
		}
	}
	for i, cell := range g.Interior {
		if cell == nil {
			continue
		}
		res := cell.step(g)
		if res == ResultErr {
			glog.Errorf("node at (%d,%d): instruction failed", cell.Row(), cell.Col())
		}
		if res == ResultWriteWait {
			deferredInterior[i] = true
		}
		if cn, ok := cell.(*ComputeNode); ok && cn.Halted {
			return false
		}
	}
	for _, oc := range g.Outputs {
		if oc == nil {
			continue
		}
		oc.step(g)
	}

	// Phase 2.
	for _, ic := range g.Inputs {
		if ic == nil || !deferredInputs[ic.Col] {
			continue
		}
		ic.stepDefer()
	}
	for i, cell := range g.Interior {
		if cell == nil || !deferredInterior[i] {
			continue
		}
		cell.stepDefer(g)
	}

	return s.checkQuiescence()
}

func (s *Scheduler) checkQuiescence() bool {
	quiescent := true
	g := s.Grid
	for i, cell := range g.Interior {
		if cell == nil {
			continue
		}
		st := cell.State()
		if st == StateRunning || st != s.prevInterior[i] {
			quiescent = false
		}
		s.prevInterior[i] = st
	}
	for _, ic := range g.Inputs {
		if ic == nil {
			continue
		}
		st := ic.State()
		if st == StateRunning || st != s.prevInputs[ic.Col] {
			quiescent = false
		}
		s.prevInputs[ic.Col] = st
	}
	for _, oc := range g.Outputs {
		if oc == nil {
			continue
		}
		st := oc.State()
		if st == StateRunning || st != s.prevOutputs[oc.Col] {
			quiescent = false
		}
		s.prevOutputs[oc.Col] = st
	}
	return quiescent
}
