package ring

import "fmt"

// verifyUniqueIds enforces that ids are unique across the ring for the
// lifetime of the run. A duplicate is a fatal startup error, raised
// before any network activity begins.
func verifyUniqueIds(nodes []*Node) error {
	seen := make(map[Id]struct{}, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.id]; dup {
			return fmt.Errorf("ring: duplicate node id %d", n.id)
		}
		seen[n.id] = struct{}{}
	}
	return nil
}

// wireRing configures each node's talk target: node i transmits to node
// i-1 (mod N), i.e. n[i].talker dials n[i-1].listener, forming a single
// counter-clockwise cycle. The direction is arbitrary; only internal
// consistency matters.
func wireRing(nodes []*Node) {
	count := len(nodes)
	for i, n := range nodes {
		predecessor := nodes[(i-1+count)%count]
		n.talkPort = predecessor.port
	}
}
