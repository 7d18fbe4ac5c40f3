// Command ringelect runs a Chang-Roberts leader election over N processes
// connected as a ring of loopback TCP links.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	plog "github.com/prometheus/common/log"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/jabolina/go-ringelect/internal/idgen"
	"github.com/jabolina/go-ringelect/pkg/ring"
	"github.com/jabolina/go-ringelect/pkg/ring/input"
)

var (
	app       = kingpin.New("ringelect", "Chang-Roberts leader election over a loopback TCP ring.")
	inputFile = app.Arg("input-file", "path to the node count/delay file").Required().String()
	debug     = app.Flag("debug", "enable per-pass debug logging").Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	out := colorable.NewColorableStdout()

	// Before a node-specific Logger exists, bootstrap failures go through
	// prometheus/common's process-global logger rather than ring.Logging.
	delays, err := input.Parse(*inputFile)
	if err != nil {
		plog.Fatalf("reading input file: %v", err)
	}

	if prob := idgen.CollisionProbability(len(delays)); prob > 0.01 {
		fmt.Fprintf(out, "warning: estimated id collision probability for %d nodes is %.4f\n", len(delays), prob)
	}

	logging, err := ring.NewLogging()
	if err != nil {
		plog.Fatalf("opening output.log: %v", err)
	}
	defer logging.Close()
	logging.ToggleDebug(*debug)

	env := ring.NewEnvironment(logging)

	driver, err := ring.NewDriver(env, delays)
	if err != nil {
		fatal(out, err)
	}

	leader, err := driver.Run()
	if err != nil {
		fatal(out, err)
	}

	color.New(color.FgGreen, color.Bold).Fprintf(out, "election complete: leader is node %d\n", leader)
}

func fatal(out io.Writer, err error) {
	color.New(color.FgRed, color.Bold).Fprintf(out, "fatal: %v\n", err)
	os.Exit(1)
}
