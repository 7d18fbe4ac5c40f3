package ring

import (
	"fmt"
	"sync"
	"time"
)

const driverPollInterval = 100 * time.Millisecond

// Driver is the top-level orchestrator: it constructs every node, wires
// the ring, starts all node activities, waits for global consensus, and
// verifies it.
type Driver struct {
	env   *Environment
	nodes []*Node
	wg    sync.WaitGroup
}

// NewDriver constructs one node per delay (in order), verifies id
// uniqueness, and wires the ring. Both failures are returned before any
// node activity is started.
func NewDriver(env *Environment, delays []time.Duration) (*Driver, error) {
	if len(delays) == 0 {
		return nil, fmt.Errorf("ring: at least one node delay is required")
	}

	nodes := make([]*Node, len(delays))
	for i, d := range delays {
		nodes[i] = NewNode(env, d)
	}

	if err := verifyUniqueIds(nodes); err != nil {
		return nil, err
	}
	wireRing(nodes)

	return &Driver{env: env, nodes: nodes}, nil
}

// Nodes exposes the constructed nodes, mainly for tests that want to
// inspect per-node state after Run returns.
func (d *Driver) Nodes() []*Node {
	return d.nodes
}

// Run starts every node, polls until all have finished, joins every
// activity, and verifies the resulting consensus. It returns the agreed
// leader id, or an error if a node finished without a leader or the nodes
// disagree. There is no timeout: Run keeps polling for as long as any
// node has not finished.
func (d *Driver) Run() (Id, error) {
	for _, n := range d.nodes {
		n.Start(&d.wg)
	}

	for !d.allFinished() {
		time.Sleep(driverPollInterval)
	}

	d.wg.Wait()

	return d.verifyConsensus()
}

func (d *Driver) allFinished() bool {
	for _, n := range d.nodes {
		if !n.Finished() {
			return false
		}
	}
	return true
}

// verifyConsensus checks that every node shares the same leader, equal
// to the max id, with exactly one node terminating in state Leader.
func (d *Driver) verifyConsensus() (Id, error) {
	var leader *Id
	leaderCount := 0
	maxId := d.nodes[0].Id()

	for _, n := range d.nodes {
		if n.Id() > maxId {
			maxId = n.Id()
		}

		l := n.Leader()
		if l == nil {
			return 0, fmt.Errorf("ring: node %d finished without agreeing on a leader", n.Id())
		}
		if leader == nil {
			leader = l
		} else if *leader != *l {
			return 0, fmt.Errorf("ring: consensus mismatch: node %d holds leader %d, expected %d", n.Id(), *l, *leader)
		}

		if n.State() == Leader {
			leaderCount++
		}
	}

	if leaderCount != 1 {
		return 0, fmt.Errorf("ring: expected exactly one node in state Leader, found %d", leaderCount)
	}
	if *leader != maxId {
		return 0, fmt.Errorf("ring: agreed leader %d does not match the maximum id %d", *leader, maxId)
	}

	return *leader, nil
}
