package ring

import (
	"errors"
	"io"
	"net"
	"time"
)

// runListener binds 127.0.0.1:port, accepts exactly one inbound
// connection within connectDeadline, then repeatedly polls it with a
// short read timeout, pushing decoded frames onto n.receiveQueue until
// the node finishes. Bind or accept failures are fatal to the node.
func runListener(n *Node, ready chan<- struct{}) {
	ln, err := net.Listen("tcp", n.address())
	if err != nil {
		n.log.Fatalf("failed binding listener on %s: %v", n.address(), err)
		return
	}
	close(ready)

	if tcpLn, ok := ln.(*net.TCPListener); ok {
		_ = tcpLn.SetDeadline(time.Now().Add(connectDeadline))
	}

	conn, err := ln.Accept()
	_ = ln.Close()
	if err != nil {
		n.log.Fatalf("no inbound connection on %s within %s: %v", n.address(), connectDeadline, err)
		return
	}
	defer conn.Close()

	assembler := &FrameAssembler{}
	buf := make([]byte, 4096)

	for !n.Finished() {
		_ = conn.SetReadDeadline(time.Now().Add(listenPollInterval))
		read, err := conn.Read(buf)
		if read > 0 {
			assembler.Feed(buf[:read])
			for {
				payload, ok := assembler.Next()
				if !ok {
					break
				}
				msg, derr := DecodeMessage(payload)
				if derr != nil {
					n.log.Errorf("dropping undecodable payload: %v", derr)
					continue
				}
				n.receiveQueue.Push(msg)
			}
		}
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			return
		}
	}
}

// runTalker dials the downstream neighbor within connectDeadline, then
// repeatedly drains n.sendQueue, honoring the configured delay before
// each framed write. Connect failures are fatal to the node.
func runTalker(n *Node) {
	addr := addressForPort(n.talkPort)

	deadline := time.Now().Add(connectDeadline)
	var conn net.Conn
	for {
		var err error
		conn, err = net.DialTimeout("tcp", addr, listenPollInterval)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			n.log.Fatalf("failed connecting to %s within %s: %v", addr, connectDeadline, err)
			return
		}
		time.Sleep(dialRetryInterval)
	}
	defer conn.Close()

	for !n.Finished() {
		msg, ok := n.sendQueue.Pop()
		if !ok {
			time.Sleep(listenPollInterval)
			continue
		}
		sendOne(n, conn, msg)
	}

	// The processor may enqueue a final ElectedLeader in the same pass
	// that flips finished; drain it before disconnecting.
	for {
		msg, ok := n.sendQueue.Pop()
		if !ok {
			return
		}
		sendOne(n, conn, msg)
	}
}

func sendOne(n *Node, conn net.Conn, msg Message) {
	if n.delay > 0 {
		time.Sleep(n.delay)
	}
	frame := EncodeFrame(EncodeMessage(msg))
	if _, err := conn.Write(frame); err != nil {
		n.log.Errorf("failed writing frame to %s: %v", conn.RemoteAddr(), err)
	}
}
