// Command tis100sim is the CLI driver for the grid simulator: it reads a
// source file and an optional layout, builds the grid, runs it to
// quiescence or HCF, and reports the outcome via glog and the process exit
// code, per spec.md §6.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"

	"tis100sim/internal/parser"
	"tis100sim/internal/runner"
)

var (
	cycles       = flag.Int("cycles", 0, "cycle budget; 0 means unlimited")
	layoutString = flag.String("layout-string", "", "inline layout text, in place of a layout file argument")
	numeric      = flag.Bool("numeric", false, "use NUMERIC instead of ASCII for the default/shaped layout's I/O")
	verbose      = flag.Int("verbose", 0, "diagnostic verbosity level, forwarded to glog -v")
	quiet        = flag.Bool("quiet", false, "suppress warning and error diagnostics below FATAL")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = usage
	flag.Parse()

	if *quiet {
		flag.Set("stderrthreshold", "FATAL")
	} else {
		flag.Set("logtostderr", "true")
		flag.Set("v", strconv.Itoa(*verbose))
	}
	defer glog.Flush()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		return 2
	}

	sourceBytes, err := os.ReadFile(args[0])
	if err != nil {
		glog.Errorf("reading source file: %v", err)
		return 1
	}

	layout, err := resolveLayout(args)
	if err != nil {
		glog.Errorf("parsing layout: %v", err)
		return 1
	}

	programs, title, err := parser.ParseSource(string(sourceBytes), layout.CountCompute())
	if err != nil {
		glog.Errorf("parsing source: %v", err)
		return 1
	}
	if title != "" {
		glog.V(1).Infof("grid title: %s", title)
	}

	grid, closeStreams, err := runner.Build(layout, programs, runner.Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		glog.Errorf("building grid: %v", err)
		return 1
	}
	defer closeStreams()

	result := runner.Run(grid, *cycles)
	if result.CycleLimit {
		glog.Warningf("stopped after %d ticks without reaching quiescence", result.Ticks)
	}
	return 0
}

// resolveLayout implements spec.md §6's three positional forms:
// `<source>`, `<source> <layout-path>`, and `<source> <rows> <cols>`, plus
// the -layout-string escape hatch for inline layout text.
func resolveLayout(args []string) (*parser.LayoutSpec, error) {
	if *layoutString != "" {
		return parser.ParseLayout(*layoutString)
	}
	switch len(args) {
	case 1:
		return parser.DefaultLayout(*numeric), nil
	case 2:
		layoutBytes, err := os.ReadFile(args[1])
		if err != nil {
			return nil, err
		}
		return parser.ParseLayout(string(layoutBytes))
	case 3:
		rows, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, err
		}
		cols, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, err
		}
		return parser.ShapedLayout(rows, cols, *numeric), nil
	default:
		return nil, fmt.Errorf("expected 1-3 positional arguments, got %d", len(args))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tis100sim <source> [layout-path | rows cols]")
	flag.PrintDefaults()
}
