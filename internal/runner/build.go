// Package runner wires a parsed LayoutSpec and a node-program map into a
// runnable sim.Grid, opens the external streams an I/O binding names, and
// drives the top-level tick loop. This is the "glue" layer spec.md §1
// treats as a collaborator around the core engine.
package runner

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"tis100sim/internal/ops"
	"tis100sim/internal/parser"
	"tis100sim/internal/sim"
)

// Options carries the standard streams a "-" or STDIN/STDOUT/STDERR layout
// binding resolves to.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Build lowers a LayoutSpec plus a per-node-id program map into a running
// sim.Grid, opening whatever files its I/O bindings name. The returned
// closer releases every opened file handle; callers should defer it.
func Build(layout *parser.LayoutSpec, programs map[int]ops.Program, opts Options) (*sim.Grid, func(), error) {
	g := sim.NewGrid(layout.Rows, layout.Cols)

	if layout.Rows > 0 {
		nextID := 0
		for r := 0; r < layout.Rows; r++ {
			for c := 0; c < layout.Cols; c++ {
				kind := layout.Kinds[r*layout.Cols+c]
				var cell sim.Cell
				switch kind {
				case sim.NodeCompute:
					prog := programs[nextID]
					cell = sim.NewComputeNode(r, c, prog)
					nextID++
				case sim.NodeStack:
					cell = sim.NewStackNode(r, c)
				case sim.NodeRAM:
					cell = sim.NewRamNode(r, c)
				case sim.NodeReserved:
					cell = sim.NewReservedNode(r, c)
				default:
					cell = sim.NewDamagedNode(r, c)
				}
				g.Set(r, c, cell)
			}
		}
	}

	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	for _, b := range layout.Bindings {
		if b.IsOutput {
			w, closer, err := resolveOutput(b.Stream, opts)
			if err != nil {
				closeAll()
				return nil, nil, errors.Wrapf(err, "opening output column %d", b.Col)
			}
			if closer != nil {
				closers = append(closers, closer)
			}
			g.Outputs[b.Col] = sim.NewOutputColumn(b.Col, b.Type, w, b.Separator)
		} else {
			r, closer, err := resolveInput(b.Stream, opts)
			if err != nil {
				closeAll()
				return nil, nil, errors.Wrapf(err, "opening input column %d", b.Col)
			}
			if closer != nil {
				closers = append(closers, closer)
			}
			var src sim.InputSource
			if b.Type == sim.IONumeric {
				src = sim.NewNumericSource(r)
			} else {
				src = sim.NewAsciiSource(r)
			}
			g.Inputs[b.Col] = sim.NewInputColumn(b.Col, src)
		}
	}

	return g, closeAll, nil
}

func resolveInput(stream string, opts Options) (io.Reader, func() error, error) {
	switch strings.ToUpper(stream) {
	case "-", "STDIN":
		return opts.Stdin, nil, nil
	default:
		f, err := os.Open(stream)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
}

func resolveOutput(stream string, opts Options) (io.Writer, func() error, error) {
	switch strings.ToUpper(stream) {
	case "-", "STDOUT":
		return opts.Stdout, nil, nil
	case "STDERR":
		return opts.Stderr, nil, nil
	default:
		f, err := os.Create(stream)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
}
