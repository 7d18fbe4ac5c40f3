package ring

import (
	"fmt"
	"os"
	"sync"
)

const logFileName = "output.log"

// Logger is the interface every node logs through.
type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
}

// Logging is the process-wide sink: output.log is truncated at driver
// start, every line is prefixed with the zero-padded producing node's
// id, and the same line is mirrored to stdout under a single print lock
// shared by every node.
type Logging struct {
	mutex *sync.Mutex
	file  *os.File
	debug bool
}

// NewLogging truncates (or creates) output.log in the working directory
// and returns a sink ready to be handed node-scoped loggers.
func NewLogging() (*Logging, error) {
	f, err := os.Create(logFileName)
	if err != nil {
		return nil, fmt.Errorf("ring: opening %s: %w", logFileName, err)
	}
	return &Logging{mutex: &sync.Mutex{}, file: f}, nil
}

// Close releases the underlying log file. Callers should defer this from
// the driver's entry point.
func (l *Logging) Close() error {
	return l.file.Close()
}

// ToggleDebug enables or disables Debugf lines across every node sharing
// this sink, returning the new value.
func (l *Logging) ToggleDebug(value bool) bool {
	l.debug = value
	return l.debug
}

func (l *Logging) writeln(id Id, line string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	prefixed := fmt.Sprintf("[%05d] %s", id, line)
	fmt.Fprintln(os.Stdout, prefixed)
	fmt.Fprintln(l.file, prefixed)
}

// NodeLogger returns a Logger scoped to one node id; every line it emits
// passes through the shared print lock and file.
func (l *Logging) NodeLogger(id Id) Logger {
	return &nodeLogger{sink: l, id: id}
}

type nodeLogger struct {
	sink *Logging
	id   Id
}

func (n *nodeLogger) Infof(format string, v ...interface{}) {
	n.sink.writeln(n.id, "[INFO]: "+fmt.Sprintf(format, v...))
}

func (n *nodeLogger) Warnf(format string, v ...interface{}) {
	n.sink.writeln(n.id, "[WARN]: "+fmt.Sprintf(format, v...))
}

func (n *nodeLogger) Errorf(format string, v ...interface{}) {
	n.sink.writeln(n.id, "[ERROR]: "+fmt.Sprintf(format, v...))
}

func (n *nodeLogger) Debugf(format string, v ...interface{}) {
	if n.sink.debug {
		n.sink.writeln(n.id, "[DEBUG]: "+fmt.Sprintf(format, v...))
	}
}

// Fatalf logs then terminates the process. Network-setup failures are
// only ever observed from within a node's listener/talker goroutine,
// which has no clean synchronous path back to the driver; exiting here
// is how those failures surface with a non-zero exit code.
func (n *nodeLogger) Fatalf(format string, v ...interface{}) {
	n.sink.writeln(n.id, "[FATAL]: "+fmt.Sprintf(format, v...))
	os.Exit(1)
}
