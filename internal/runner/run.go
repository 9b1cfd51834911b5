package runner

import (
	"github.com/golang/glog"

	"tis100sim/internal/sim"
)

// Result summarizes how a Run terminated.
type Result struct {
	Ticks      int
	Quiescent  bool
	Halted     bool
	CycleLimit bool // the cycle budget was exhausted before quiescence/halt
}

// Run alternates ticks until the grid quiesces, a compute node executes
// HCF, or cycleLimit ticks have elapsed (0 means unlimited), per spec.md §2
// item 9 and §5's "cancellation and timeouts".
func Run(g *sim.Grid, cycleLimit int) Result {
	sched := sim.NewScheduler(g)
	ticks := 0
	for cycleLimit <= 0 || ticks < cycleLimit {
		quiescent := sched.Tick()
		ticks++
		if g.Halted() {
			glog.V(1).Infof("halted via HCF after %d ticks", ticks)
			return Result{Ticks: ticks, Halted: true}
		}
		if quiescent {
			glog.V(1).Infof("quiescent after %d ticks", ticks)
			return Result{Ticks: ticks, Quiescent: true}
		}
	}
	glog.V(1).Infof("cycle limit %d reached without quiescence", cycleLimit)
	return Result{Ticks: ticks, CycleLimit: true}
}
