package sim

import (
	"bufio"
	"io"
	"strconv"

	"github.com/golang/glog"

	"tis100sim/internal/ops"
	"tis100sim/internal/word"
)

// IOType tags the stream format (or generator family) an I/O column is
// bound to, mirroring original_source/tis_types.h's tis_io_type_t.
type IOType byte

const (
	IOAscii IOType = iota
	IONumeric
	IOGeneratorList
	IOGeneratorCyclic
	IOGeneratorAlgebraic
	IOGeneratorGeometric
	IOGeneratorHarmonic
	IOGeneratorRandom
	IOGeneratorOEIS
)

func (t IOType) String() string {
	switch t {
	case IOAscii:
		return "ASCII"
	case IONumeric:
		return "NUMERIC"
	case IOGeneratorList:
		return "LIST"
	case IOGeneratorCyclic:
		return "CYCLIC"
	case IOGeneratorAlgebraic:
		return "ALGEBRAIC"
	case IOGeneratorGeometric:
		return "GEOMETRIC"
	case IOGeneratorHarmonic:
		return "HARMONIC"
	case IOGeneratorRandom:
		return "RANDOM"
	case IOGeneratorOEIS:
		return "OEIS"
	default:
		return "?"
	}
}

// InputSource produces the words an InputColumn feeds into the grid. OK is
// false once the source is exhausted. Stream-backed sources (ASCII,
// NUMERIC) and the generator families below both satisfy this, per
// SPEC_FULL.md §3.1.
type InputSource interface {
	Next() (word.Word, bool)
}

// AsciiSource reads one byte at a time from r, per spec.md §6's "byte value
// interpreted as an unsigned word on ingest".
type AsciiSource struct {
	r *bufio.Reader
}

func NewAsciiSource(r io.Reader) *AsciiSource { return &AsciiSource{r: bufio.NewReader(r)} }

func (s *AsciiSource) Next() (word.Word, bool) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, false
	}
	return word.Clamp(int(b)), true
}

// NumericSource reads whitespace-separated decimal integers, per spec.md
// §6's NUMERIC input format.
type NumericSource struct {
	sc *bufio.Scanner
}

func NewNumericSource(r io.Reader) *NumericSource {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &NumericSource{sc: sc}
}

func (s *NumericSource) Next() (word.Word, bool) {
	if !s.sc.Scan() {
		return 0, false
	}
	n, err := strconv.Atoi(s.sc.Text())
	if err != nil {
		glog.Warningf("numeric input: skipping unparseable token %q", s.sc.Text())
		return s.Next()
	}
	return word.Clamp(n), true
}

// ListGenerator echoes a fixed sequence once, then exhausts.
// IGENERATOR_LIST per original_source/tis_types.h.
type ListGenerator struct {
	Values []word.Word
	idx    int
}

func (g *ListGenerator) Next() (word.Word, bool) {
	if g.idx >= len(g.Values) {
		return 0, false
	}
	v := g.Values[g.idx]
	g.idx++
	return v, true
}

// CyclicGenerator repeats a fixed sequence forever.
// IGENERATOR_CYCLIC per original_source/tis_types.h.
type CyclicGenerator struct {
	Values []word.Word
	idx    int
}

func (g *CyclicGenerator) Next() (word.Word, bool) {
	if len(g.Values) == 0 {
		return 0, false
	}
	v := g.Values[g.idx%len(g.Values)]
	g.idx++
	return v, true
}

// AlgebraicGenerator produces start, start+step, start+2*step, ... clamped,
// forever. IGENERATOR_ALGEBRAIC per original_source/tis_types.h.
type AlgebraicGenerator struct {
	Start, Step int
	current     int
	primed      bool
}

func (g *AlgebraicGenerator) Next() (word.Word, bool) {
	if !g.primed {
		g.current = g.Start
		g.primed = true
	} else {
		g.current += g.Step
	}
	return word.Clamp(g.current), true
}

// InputColumn is the top-edge synthetic node at one column, per spec.md
// §4.5. Grounded on original_source/tis_io.c's input() plus tis_node.c's
// handling of TIS_REGISTER_UP at row 0.
type InputColumn struct {
	Col    int
	source InputSource
	port   portState
	state  NodeState
}

func NewInputColumn(col int, source InputSource) *InputColumn {
	return &InputColumn{Col: col, source: source, port: newPortState()}
}

func (ic *InputColumn) State() NodeState { return ic.state }

func (ic *InputColumn) step() StepResult {
	if ic.port.reg != ops.RegInvalid {
		ic.state = StateWriteWait
		return ResultWriteWait
	}
	v, ok := ic.source.Next()
	if !ok {
		ic.state = StateReadWait
		return ResultReadWait
	}
	ic.port.buf = v
	ic.state = StateWriteWait
	return ResultWriteWait
}

func (ic *InputColumn) stepDefer() StepResult {
	if ic.port.reg == ops.RegNil {
		ic.port.reg = ops.RegInvalid
		ic.state = StateRunning
		return ResultOK
	}
	ic.port.reg = ops.RegDown
	ic.state = StateWriteWait
	return ResultWriteWait
}

// OutputColumn is the bottom-edge synthetic node at one column, per
// spec.md §4.5. Grounded on original_source/tis_io.c's output() plus
// tis_node.c's write_port_register_maybe delegate for DOWN/ANY at the last
// row.
type OutputColumn struct {
	Col      int
	ioType   IOType
	sep      int // -1 disables the NUMERIC separator byte
	w        io.Writer
	disabled bool
	state    NodeState
}

func NewOutputColumn(col int, ioType IOType, w io.Writer, sep int) *OutputColumn {
	return &OutputColumn{Col: col, ioType: ioType, w: w, sep: sep}
}

func (oc *OutputColumn) State() NodeState { return oc.state }

// step examines the bottom-row node (or, in translator mode, pulls directly
// from the paired input source) and emits a word on success.
func (oc *OutputColumn) step(g *Grid) StepResult {
	if g.Rows == 0 {
		if oc.Col >= len(g.Inputs) || g.Inputs[oc.Col] == nil {
			oc.state = StateReadWait
			return ResultReadWait
		}
		v, ok := g.Inputs[oc.Col].source.Next()
		if !ok {
			oc.state = StateReadWait
			return ResultReadWait
		}
		oc.emit(v)
		oc.state = StateRunning
		return ResultOK
	}
	node := g.at(g.Rows-1, oc.Col)
	p := node.Port()
	if p.reg != ops.RegDown && p.reg != ops.RegAny {
		oc.state = StateReadWait
		return ResultReadWait
	}
	wasAny := p.reg == ops.RegAny
	v := p.buf
	p.reg = ops.RegNil
	if wasAny {
		p.last = ops.RegDown
	}
	oc.emit(v)
	oc.state = StateRunning
	return ResultOK
}

func (oc *OutputColumn) emit(v word.Word) {
	if oc.disabled {
		return
	}
	var err error
	switch oc.ioType {
	case IOAscii:
		b := byte(((int32(v) % 256) + 256) % 256)
		_, err = oc.w.Write([]byte{b})
	case IONumeric:
		_, err = io.WriteString(oc.w, strconv.Itoa(int(v)))
		if err == nil && oc.sep >= 0 {
			_, err = oc.w.Write([]byte{byte(oc.sep)})
		}
	}
	if err != nil {
		oc.disabled = true
		glog.Errorf("output column %d: write failed, disabling further emission: %v", oc.Col, err)
	}
}
