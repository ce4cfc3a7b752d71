package distsort

import (
	"net"

	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// Transport abstracts how the coordinator reaches a worker and how a
// worker accepts the coordinator's connection. Production uses TCP;
// tests use net.Pipe() conns directly against RunCoordinator/RunWorker,
// bypassing Transport entirely, which is why its surface is this small.
type Transport interface {
	Dial(addr string) (net.Conn, error)
	Listen(addr string) (net.Listener, error)
}

// TCPTransport is the production Transport: plain TCP, no TLS — the
// engine assumes a trusted cluster network, matching spec §4.7's silence
// on transport security.
type TCPTransport struct{}

func (TCPTransport) Dial(addr string) (net.Conn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &sorterr.IoError{Op: "dial worker", Path: addr, Err: err}
	}
	return conn, nil
}

func (TCPTransport) Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &sorterr.IoError{Op: "listen", Path: addr, Err: err}
	}
	return ln, nil
}
