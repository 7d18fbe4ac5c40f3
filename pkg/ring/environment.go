package ring

import (
	"sync"

	"github.com/jabolina/go-ringelect/internal/idgen"
)

const basePort = 1025

// Environment bundles the process-wide shared state that would otherwise
// live as package globals: the id and port allocators. It is constructed
// once and passed explicitly to every node, rather than hidden behind
// package-level state, so tests can swap in a deterministic id source.
type Environment struct {
	ids      idgen.Source
	mutex    sync.Mutex
	nextPort int
	Logging  *Logging
}

// NewEnvironment builds the production environment: a non-deterministic
// id generator and ports starting at 1025.
func NewEnvironment(logging *Logging) *Environment {
	return NewEnvironmentWithIds(logging, idgen.NewGenerator())
}

// NewEnvironmentWithIds builds an environment around a caller-supplied id
// source, letting tests fix the ring's ids and so make election outcomes
// deterministic.
func NewEnvironmentWithIds(logging *Logging, ids idgen.Source) *Environment {
	return &Environment{
		ids:      ids,
		nextPort: basePort,
		Logging:  logging,
	}
}

// AllocateId draws the next node id from the configured source.
func (e *Environment) AllocateId() Id {
	return e.ids.Next()
}

// AllocatePort returns the next unused port, starting at 1025 and
// incrementing by one per call; ports are never reused within a run.
func (e *Environment) AllocatePort() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	p := e.nextPort
	e.nextPort++
	return p
}
