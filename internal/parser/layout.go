// Package parser lowers the two external text grammars from spec.md §4.7
// into typed data: LayoutSpec (grid geometry + I/O bindings) and per-node
// ops.Program. Grounded on the teacher's preprocessLine/parseInputLine
// line-oriented parsing style (gvm/vm/compile.go), generalized from a
// single assembler grammar to these two.
package parser

import (
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"tis100sim/internal/sim"
)

// IOBinding is one `{I|O}<col> <type> <stream> [<sep>]` layout declaration.
type IOBinding struct {
	Col       int
	IsOutput  bool
	Type      sim.IOType
	Stream    string // filename, "-", or STDIN/STDOUT/STDERR
	Separator int    // NUMERIC outputs: the supplied byte, else '\n'; -1 for every other binding
}

// LayoutSpec is the lowered form of a layout file: grid geometry, one node
// kind per cell (row-major), and the I/O bindings to wire onto it.
type LayoutSpec struct {
	Rows, Cols int
	Kinds      []sim.NodeKind // len Rows*Cols
	Bindings   []IOBinding
}

// DefaultLayout is spec.md §4.7's "no layout file" fallback: 3x4, all
// compute, input column 0 from stdin, output column cols-1 to stdout.
func DefaultLayout(numeric bool) *LayoutSpec {
	return ShapedLayout(3, 4, numeric)
}

// ShapedLayout is the `<source> <rows> <cols>` CLI form: an all-compute grid
// (or, when rows == 0, translator mode) with the same default I/O wiring as
// DefaultLayout.
func ShapedLayout(rows, cols int, numeric bool) *LayoutSpec {
	kinds := make([]sim.NodeKind, rows*cols)
	for i := range kinds {
		kinds[i] = sim.NodeCompute
	}
	ioType := sim.IOAscii
	if numeric {
		ioType = sim.IONumeric
	}
	sep := -1
	if numeric {
		sep = '\n'
	}
	return &LayoutSpec{
		Rows: rows, Cols: cols, Kinds: kinds,
		Bindings: []IOBinding{
			{Col: 0, IsOutput: false, Type: ioType, Stream: "-", Separator: -1},
			{Col: cols - 1, IsOutput: true, Type: ioType, Stream: "STDOUT", Separator: sep},
		},
	}
}

// CountCompute returns the number of COMPUTE cells in the layout, i.e. the
// valid range [0, CountCompute()) for a source file's @<id> directives.
func (l *LayoutSpec) CountCompute() int {
	n := 0
	for _, k := range l.Kinds {
		if k == sim.NodeCompute {
			n++
		}
	}
	return n
}

var layoutKindChars = map[string]sim.NodeKind{
	"C": sim.NodeCompute,
	"M": sim.NodeStack,
	"S": sim.NodeStack,
	"R": sim.NodeRAM,
	"D": sim.NodeDamaged,
}

// ParseLayout lowers the whitespace-delimited layout grammar from spec.md
// §4.7 / §6.
func ParseLayout(text string) (*LayoutSpec, error) {
	toks := strings.Fields(text)
	if len(toks) < 2 {
		return nil, errors.New("layout: expected row and column counts")
	}
	rows, err := strconv.Atoi(toks[0])
	if err != nil {
		return nil, errors.Wrapf(err, "layout: invalid row count %q", toks[0])
	}
	cols, err := strconv.Atoi(toks[1])
	if err != nil {
		return nil, errors.Wrapf(err, "layout: invalid column count %q", toks[1])
	}
	if rows == 0 && cols < 1 {
		return nil, errors.New("layout: translator mode (rows = 0) requires cols >= 1")
	}
	if rows < 0 || cols < 0 {
		return nil, errors.New("layout: row and column counts must be non-negative")
	}

	pos := 2
	need := rows * cols
	kinds := make([]sim.NodeKind, 0, need)
	for i := 0; i < need; i++ {
		if pos >= len(toks) {
			return nil, errors.Errorf("layout: expected %d node-kind tokens, found %d", need, len(kinds))
		}
		kind, ok := layoutKindChars[strings.ToUpper(toks[pos])]
		if !ok {
			return nil, errors.Errorf("layout: unrecognized node kind %q", toks[pos])
		}
		kinds = append(kinds, kind)
		pos++
	}

	spec := &LayoutSpec{Rows: rows, Cols: cols, Kinds: kinds}
	for pos < len(toks) {
		tok := strings.ToUpper(toks[pos])
		if len(tok) < 2 || (tok[0] != 'I' && tok[0] != 'O') {
			return nil, errors.Errorf("layout: expected an I<col>/O<col> declaration, found %q", toks[pos])
		}
		isOutput := tok[0] == 'O'
		col, err := strconv.Atoi(tok[1:])
		if err != nil {
			return nil, errors.Wrapf(err, "layout: invalid column in %q", toks[pos])
		}
		pos++
		if pos >= len(toks) {
			return nil, errors.Errorf("layout: %s missing a type token", tok)
		}
		var ioType sim.IOType
		switch strings.ToUpper(toks[pos]) {
		case "ASCII":
			ioType = sim.IOAscii
		case "NUMERIC":
			ioType = sim.IONumeric
		default:
			return nil, errors.Errorf("layout: unrecognized I/O type %q", toks[pos])
		}
		pos++
		if pos >= len(toks) {
			return nil, errors.Errorf("layout: %s missing a stream token", tok)
		}
		stream := toks[pos]
		pos++
		sep := -1
		if isOutput && ioType == sim.IONumeric {
			sep = '\n'
			if pos < len(toks) {
				if n, err := strconv.Atoi(toks[pos]); err == nil {
					sep = n
					pos++
				}
			}
		}
		if col < 0 || col >= cols {
			glog.Warningf("layout: %s declaration references out-of-range column %d, ignoring", tok, col)
			continue
		}
		spec.Bindings = append(spec.Bindings, IOBinding{
			Col: col, IsOutput: isOutput, Type: ioType, Stream: stream, Separator: sep,
		})
	}
	return spec, nil
}
