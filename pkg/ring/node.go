package ring

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// State is a node's position in the election lifecycle, advancing
// monotonically: Offline -> Participating -> {Decided, Leader}. Decided
// and Leader are terminal.
type State int

const (
	Offline State = iota
	Participating
	Decided
	Leader
)

func (s State) String() string {
	switch s {
	case Offline:
		return "Offline"
	case Participating:
		return "Participating"
	case Decided:
		return "Decided"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

const (
	// greetingValue and electionValue are empty: the state machine never
	// inspects Value, only Source and Type.
	greetingValue = ""
	electionValue = ""

	connectDeadline    = 3 * time.Second
	listenPollInterval = 50 * time.Millisecond
	dialRetryInterval  = 50 * time.Millisecond
	processorCadence   = 200 * time.Millisecond
)

// Node is a single ring participant owning three concurrent activities
// (listener, talker, processor) and the state the Chang-Roberts
// algorithm mutates as messages pass through.
type Node struct {
	mutex sync.Mutex

	id    Id
	port  int
	delay time.Duration

	// talkPort is this node's downstream neighbor's listen port, set by
	// wireRing before Start is called.
	talkPort int

	log Logger

	sendQueue    *MessageQueue
	receiveQueue *MessageQueue

	peers map[Id]struct{}

	state    State
	leader   *Id
	allReady bool
	finished int32 // atomic bool
}

// NewNode constructs a node with the given outbound delay, allocating its
// id and port from env. The node is not started; call Start once the
// whole ring has been wired (see NewDriver).
func NewNode(env *Environment, delay time.Duration) *Node {
	id := env.AllocateId()
	return &Node{
		id:           id,
		port:         env.AllocatePort(),
		delay:        delay,
		log:          env.Logging.NodeLogger(id),
		sendQueue:    NewMessageQueue(),
		receiveQueue: NewMessageQueue(),
		peers:        map[Id]struct{}{id: {}},
		state:        Offline,
	}
}

func (n *Node) Id() Id               { return n.id }
func (n *Node) Port() int            { return n.port }
func (n *Node) Delay() time.Duration { return n.delay }

// State reports the node's current position in the election lifecycle.
func (n *Node) State() State {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.state
}

// Leader reports the agreed leader id once known, or nil before then.
func (n *Node) Leader() *Id {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.leader
}

// PeerCount reports the size of the greeting census.
func (n *Node) PeerCount() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return len(n.peers)
}

// Finished reports whether the node has received the ElectedLeader
// announcement and stopped processing. The leader enters state Leader
// first and only finishes once its own announcement returns.
func (n *Node) Finished() bool {
	return atomic.LoadInt32(&n.finished) != 0
}

func (n *Node) setFinished() {
	atomic.StoreInt32(&n.finished, 1)
}

// Start spawns the node's three activities: seed the outbound greeting,
// bring the listener up, then the talker, then enter the election loop.
// The listener/talker ordering uses a readiness handshake (listenerReady)
// rather than a coarse fixed sleep, giving a deterministic barrier
// between the two sockets coming up.
func (n *Node) Start(wg *sync.WaitGroup) {
	n.sendQueue.Push(Message{Source: n.id, Type: Greetings, Value: greetingValue})

	listenerReady := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		runListener(n, listenerReady)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-listenerReady
		runTalker(n)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		n.runProcessor()
	}()
}

// runProcessor is the election state machine's main loop: on a fixed
// cadence, consume at most one message and apply the one-and-only
// origination rule.
func (n *Node) runProcessor() {
	ticker := time.NewTicker(processorCadence)
	defer ticker.Stop()

	for range ticker.C {
		n.processOnePass()
		if n.Finished() {
			return
		}
	}
}

func (n *Node) processOnePass() {
	if msg, ok := n.receiveQueue.Pop(); ok {
		n.log.Debugf("dispatching %s from %d", msg.Type, msg.Source)
		n.dispatch(msg)
	}

	n.mutex.Lock()
	originate := n.state == Offline && n.allReady
	if originate {
		n.state = Participating
	}
	n.mutex.Unlock()

	if originate {
		n.log.Infof("all peers ready, originating election")
		n.sendQueue.Push(Message{Source: n.id, Type: ElectionStart, Value: electionValue})
	}
}

func (n *Node) dispatch(msg Message) {
	switch msg.Type {
	case Greetings:
		n.onGreetings(msg)
	case ElectionStart:
		n.onElectionStart(msg)
	case ElectedLeader:
		n.onElectedLeader(msg)
	default:
		n.log.Warnf("dropping message with unknown kind %d", msg.Type)
	}
}

// onGreetings implements the barrier traversal: every greeting not our
// own grows the peer census and is forwarded; our own greeting returning
// means it has circled the ring once, so every node is online.
func (n *Node) onGreetings(msg Message) {
	if msg.Source != n.id {
		n.mutex.Lock()
		n.peers[msg.Source] = struct{}{}
		n.mutex.Unlock()
		n.sendQueue.Push(msg)
		return
	}

	n.mutex.Lock()
	n.allReady = true
	count := len(n.peers)
	n.mutex.Unlock()
	n.log.Infof("greeting barrier complete, %d peers observed", count)
}

// onElectionStart is Chang-Roberts proper: larger ids survive and are
// forwarded, smaller ids are replaced by our own the first time we see
// one (and discarded thereafter), and our own id coming back means we
// are the maximum and thus the leader.
func (n *Node) onElectionStart(msg Message) {
	switch {
	case msg.Source > n.id:
		n.mutex.Lock()
		n.state = Participating
		n.mutex.Unlock()
		n.sendQueue.Push(msg)

	case msg.Source < n.id:
		n.mutex.Lock()
		alreadyParticipating := n.state == Participating
		if !alreadyParticipating {
			n.state = Participating
		}
		n.mutex.Unlock()
		if alreadyParticipating {
			return
		}
		n.sendQueue.Push(Message{Source: n.id, Type: ElectionStart, Value: msg.Value})

	default: // msg.Source == n.id
		n.mutex.Lock()
		id := n.id
		n.leader = &id
		n.state = Leader
		n.mutex.Unlock()
		n.log.Infof("elected self as leader")
		n.sendQueue.Push(Message{Source: n.id, Type: ElectedLeader, Value: msg.Value})
	}
}

// onElectedLeader records the agreed leader and relays the announcement
// once more around the ring, unless it has already completed the loop.
// Either way this is a terminal event for the node.
func (n *Node) onElectedLeader(msg Message) {
	if msg.Source != n.id {
		leader := msg.Source
		n.mutex.Lock()
		n.leader = &leader
		n.state = Decided
		n.mutex.Unlock()
		n.sendQueue.Push(msg)
	}
	n.setFinished()
}

func (n *Node) address() string {
	return addressForPort(n.port)
}

func addressForPort(port int) string {
	return fmt.Sprintf("127.0.0.1:%d", port)
}
